package repository

import (
	"context"
	"errors"

	"arcadia_backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrEventFull = errors.New("событие заполнено")

type EventRepository struct {
	db *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, creator_id, title, description, game, status, max_participants,
	participant_count, starts_at, ends_at, created_at`

// создает событие
func (r *EventRepository) Create(ctx context.Context, e *domain.Event) error {
	e.ID = uuid.New()
	err := r.db.QueryRow(ctx, `
		INSERT INTO events (id, creator_id, title, description, game, status, max_participants, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`, e.ID, e.CreatorID, e.Title, e.Description, e.Game, e.Status, e.MaxParticipants, e.StartsAt, e.EndsAt).
		Scan(&e.CreatedAt)
	return MapError(err)
}

// получает событие по id
func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	row := r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	return scanEvent(row)
}

// список событий по статусу
func (r *EventRepository) List(ctx context.Context, status domain.EventStatus, limit, offset int) ([]*domain.Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE ($1 = '' OR status = $1)
		ORDER BY starts_at
		LIMIT $2 OFFSET $3
	`, string(status), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// записывает пользователя на событие с проверкой вместимости
func (r *EventRepository) Join(ctx context.Context, eventID uuid.UUID, userID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var maxParticipants, count int
	if err := tx.QueryRow(ctx, `
		SELECT max_participants, participant_count FROM events WHERE id = $1 FOR UPDATE
	`, eventID).Scan(&maxParticipants, &count); err != nil {
		if err == pgx.ErrNoRows {
			return ErrForeignKey
		}
		return err
	}

	if maxParticipants > 0 && count >= maxParticipants {
		return ErrEventFull
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO event_participants (event_id, user_id) VALUES ($1, $2)
	`, eventID, userID); err != nil {
		return MapError(err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE events SET participant_count = participant_count + 1 WHERE id = $1
	`, eventID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// снимает пользователя с события
func (r *EventRepository) Leave(ctx context.Context, eventID uuid.UUID, userID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		DELETE FROM event_participants WHERE event_id = $1 AND user_id = $2
	`, eventID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE events SET participant_count = participant_count - 1 WHERE id = $1
	`, eventID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	var game *string

	if err := row.Scan(
		&e.ID, &e.CreatorID, &e.Title, &e.Description, &game, &e.Status,
		&e.MaxParticipants, &e.ParticipantCount, &e.StartsAt, &e.EndsAt, &e.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if game != nil {
		e.Game = *game
	}

	return &e, nil
}
