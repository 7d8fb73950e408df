package repository

import (
	"context"

	"arcadia_backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DiscussionRepository struct {
	db *pgxpool.Pool
}

func NewDiscussionRepository(db *pgxpool.Pool) *DiscussionRepository {
	return &DiscussionRepository{db: db}
}

const discussionColumns = `id, author_id, title, body, game, tags, upvotes, comment_count, created_at, updated_at`

// создает обсуждение
func (r *DiscussionRepository) Create(ctx context.Context, d *domain.Discussion) error {
	d.ID = uuid.New()
	err := r.db.QueryRow(ctx, `
		INSERT INTO discussions (id, author_id, title, body, game, tags)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, d.ID, d.AuthorID, d.Title, d.Body, d.Game, d.Tags).Scan(&d.CreatedAt, &d.UpdatedAt)
	return MapError(err)
}

// получает обсуждение по id
func (r *DiscussionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Discussion, error) {
	row := r.db.QueryRow(ctx, `SELECT `+discussionColumns+` FROM discussions WHERE id = $1`, id)
	return scanDiscussion(row)
}

// список обсуждений с фильтром по игре и тегу
func (r *DiscussionRepository) List(ctx context.Context, game, tag string, limit, offset int) ([]*domain.Discussion, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+discussionColumns+`
		FROM discussions
		WHERE ($1 = '' OR game = $1)
		  AND ($2 = '' OR $2 = ANY(tags))
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, game, tag, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Discussion
	for rows.Next() {
		d, err := scanDiscussion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// удаляет обсуждение
func (r *DiscussionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM discussions WHERE id = $1`, id)
	return MapError(err)
}

// апвоут; повторный голос того же пользователя дает ErrDuplicate
func (r *DiscussionRepository) Upvote(ctx context.Context, discussionID uuid.UUID, userID int64) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO discussion_upvotes (discussion_id, user_id) VALUES ($1, $2)
	`, discussionID, userID); err != nil {
		return 0, MapError(err)
	}

	var upvotes int
	if err := tx.QueryRow(ctx, `
		UPDATE discussions SET upvotes = upvotes + 1 WHERE id = $1 RETURNING upvotes
	`, discussionID).Scan(&upvotes); err != nil {
		return 0, MapError(err)
	}

	return upvotes, tx.Commit(ctx)
}

// добавляет комментарий и инкрементирует счетчик на обсуждении
func (r *DiscussionRepository) AddComment(ctx context.Context, c *domain.Comment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	c.ID = uuid.New()
	if err := tx.QueryRow(ctx, `
		INSERT INTO discussion_comments (id, discussion_id, author_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, c.ID, c.DiscussionID, c.AuthorID, c.Body).Scan(&c.CreatedAt); err != nil {
		return MapError(err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE discussions SET comment_count = comment_count + 1 WHERE id = $1
	`, c.DiscussionID); err != nil {
		return MapError(err)
	}

	return tx.Commit(ctx)
}

// получает комментарий по id
func (r *DiscussionRepository) GetComment(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	var c domain.Comment
	if err := r.db.QueryRow(ctx, `
		SELECT id, discussion_id, author_id, body, created_at
		FROM discussion_comments
		WHERE id = $1
	`, id).Scan(&c.ID, &c.DiscussionID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// удаляет комментарий и декрементирует счетчик на обсуждении
func (r *DiscussionRepository) DeleteComment(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var discussionID uuid.UUID
	if err := tx.QueryRow(ctx, `
		DELETE FROM discussion_comments WHERE id = $1 RETURNING discussion_id
	`, id).Scan(&discussionID); err != nil {
		if err == pgx.ErrNoRows {
			return nil
		}
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE discussions SET comment_count = comment_count - 1 WHERE id = $1
	`, discussionID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// комментарии обсуждения в хронологическом порядке
func (r *DiscussionRepository) ListComments(ctx context.Context, discussionID uuid.UUID, limit, offset int) ([]*domain.Comment, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, discussion_id, author_id, body, created_at
		FROM discussion_comments
		WHERE discussion_id = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`, discussionID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.DiscussionID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func scanDiscussion(row pgx.Row) (*domain.Discussion, error) {
	var d domain.Discussion
	var game *string

	if err := row.Scan(
		&d.ID, &d.AuthorID, &d.Title, &d.Body, &game, &d.Tags,
		&d.Upvotes, &d.CommentCount, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if game != nil {
		d.Game = *game
	}

	return &d, nil
}
