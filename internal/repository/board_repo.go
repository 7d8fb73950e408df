package repository

import (
	"context"

	"arcadia_backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BoardRepository struct {
	db *pgxpool.Pool
}

func NewBoardRepository(db *pgxpool.Pool) *BoardRepository {
	return &BoardRepository{db: db}
}

const boardColumns = `id, owner_id, title, game, size, cells, settings, public, votes, created_at, updated_at`

// создает доску; клетки и настройки лежат в jsonb
func (r *BoardRepository) Create(ctx context.Context, b *domain.Board) error {
	b.ID = uuid.New()
	err := r.db.QueryRow(ctx, `
		INSERT INTO boards (id, owner_id, title, game, size, cells, settings, public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, b.ID, b.OwnerID, b.Title, b.Game, b.Size, b.Cells, b.Settings, b.Public).
		Scan(&b.CreatedAt, &b.UpdatedAt)
	return MapError(err)
}

// получает доску по id
func (r *BoardRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	row := r.db.QueryRow(ctx, `SELECT `+boardColumns+` FROM boards WHERE id = $1`, id)
	return scanBoard(row)
}

// список публичных досок плюс собственные доски запрашивающего
func (r *BoardRepository) List(ctx context.Context, viewerID int64, game string, limit, offset int) ([]*domain.Board, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+boardColumns+`
		FROM boards
		WHERE (public = TRUE OR owner_id = $1)
		  AND ($2 = '' OR game = $2)
		ORDER BY votes DESC, created_at DESC
		LIMIT $3 OFFSET $4
	`, viewerID, game, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []*domain.Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// список досок владельца
func (r *BoardRepository) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]*domain.Board, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+boardColumns+`
		FROM boards
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []*domain.Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// обновляет доску
func (r *BoardRepository) Update(ctx context.Context, b *domain.Board) error {
	_, err := r.db.Exec(ctx, `
		UPDATE boards
		SET title = $2, game = $3, size = $4, cells = $5, settings = $6, public = $7, updated_at = NOW()
		WHERE id = $1
	`, b.ID, b.Title, b.Game, b.Size, b.Cells, b.Settings, b.Public)
	return MapError(err)
}

// удаляет доску
func (r *BoardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM boards WHERE id = $1`, id)
	return MapError(err)
}

// голос за доску; повторный голос того же пользователя дает ErrDuplicate
func (r *BoardRepository) Vote(ctx context.Context, boardID uuid.UUID, userID int64) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO board_votes (board_id, user_id) VALUES ($1, $2)
	`, boardID, userID); err != nil {
		return 0, MapError(err)
	}

	var votes int
	if err := tx.QueryRow(ctx, `
		UPDATE boards SET votes = votes + 1 WHERE id = $1 RETURNING votes
	`, boardID).Scan(&votes); err != nil {
		return 0, MapError(err)
	}

	return votes, tx.Commit(ctx)
}

func scanBoard(row pgx.Row) (*domain.Board, error) {
	var b domain.Board
	if err := row.Scan(
		&b.ID, &b.OwnerID, &b.Title, &b.Game, &b.Size, &b.Cells, &b.Settings,
		&b.Public, &b.Votes, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
