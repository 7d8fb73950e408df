package repository

import (
	"context"

	"arcadia_backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PlayerRepository struct {
	db *pgxpool.Pool
}

func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

const playerColumns = `id, session_id, user_id, display_name, color, team, is_host, joined_at, left_at`

// добавляет игрока в сессию; занятый цвет дает ErrDuplicate
func (r *PlayerRepository) Create(ctx context.Context, p *domain.SessionPlayer) error {
	p.ID = uuid.New()
	err := r.db.QueryRow(ctx, `
		INSERT INTO session_players (id, session_id, user_id, display_name, color, team, is_host)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING joined_at
	`, p.ID, p.SessionID, p.UserID, p.DisplayName, p.Color, p.Team, p.IsHost).Scan(&p.JoinedAt)
	return MapError(err)
}

// получает игрока по id
func (r *PlayerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SessionPlayer, error) {
	row := r.db.QueryRow(ctx, `SELECT `+playerColumns+` FROM session_players WHERE id = $1`, id)
	return scanPlayer(row)
}

// получает активного игрока пользователя в сессии
func (r *PlayerRepository) GetBySessionAndUser(ctx context.Context, sessionID uuid.UUID, userID int64) (*domain.SessionPlayer, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+playerColumns+`
		FROM session_players
		WHERE session_id = $1 AND user_id = $2 AND left_at IS NULL
	`, sessionID, userID)
	return scanPlayer(row)
}

// список игроков сессии, не покинувших ее
func (r *PlayerRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.SessionPlayer, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+playerColumns+`
		FROM session_players
		WHERE session_id = $1 AND left_at IS NULL
		ORDER BY joined_at
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []*domain.SessionPlayer
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// помечает игрока покинувшим сессию
func (r *PlayerRepository) MarkLeft(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE session_players SET left_at = NOW() WHERE id = $1 AND left_at IS NULL
	`, id)
	return err
}

func scanPlayer(row pgx.Row) (*domain.SessionPlayer, error) {
	var p domain.SessionPlayer
	var team *string

	if err := row.Scan(
		&p.ID, &p.SessionID, &p.UserID, &p.DisplayName, &p.Color, &team,
		&p.IsHost, &p.JoinedAt, &p.LeftAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if team != nil {
		p.Team = *team
	}

	return &p, nil
}
