package repository

import (
	"context"
	"time"

	"arcadia_backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, board_id, host_id, join_code, status, version, state, settings,
	winner_player_id, winner_team, win_reason, started_at, ended_at, created_at`

// Begin открывает транзакцию для мутаций состояния
func (r *SessionRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.db.Begin(ctx)
}

// создает сессию; код присоединения уникален среди незавершенных сессий
func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	s.ID = uuid.New()
	err := r.db.QueryRow(ctx, `
		INSERT INTO sessions (id, board_id, host_id, join_code, status, version, state, settings, started_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $7, NOW())
		RETURNING started_at, created_at
	`, s.ID, s.BoardID, s.HostID, s.JoinCode, s.Status, s.State, s.Settings).
		Scan(&s.StartedAt, &s.CreatedAt)
	return MapError(err)
}

// получает сессию по id
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	row := r.db.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	return scanSession(row)
}

// получает незавершенную сессию по коду присоединения
func (r *SessionRepository) GetByJoinCode(ctx context.Context, code string) (*domain.Session, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE join_code = $1 AND status IN ('active', 'paused')
	`, code)
	return scanSession(row)
}

// список сессий с фильтрами
func (r *SessionRepository) List(ctx context.Context, status domain.SessionStatus, boardID uuid.UUID, limit, offset int) ([]*domain.Session, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '00000000-0000-0000-0000-000000000000'::uuid OR board_id = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, string(status), boardID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// GetForUpdateTx читает сессию c блокировкой строки внутри транзакции мутации
func (r *SessionRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Session, error) {
	row := tx.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1 FOR UPDATE`, id)
	return scanSession(row)
}

// UpdateStateTx записывает состояние и инкрементирует версию атомарно.
// Версия растет только здесь
func (r *SessionRepository) UpdateStateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, state domain.SessionState) (int64, error) {
	var version int64
	err := tx.QueryRow(ctx, `
		UPDATE sessions
		SET state = $2, version = version + 1
		WHERE id = $1
		RETURNING version
	`, id, state).Scan(&version)
	return version, err
}

// CompleteTx завершает сессию с победителем (или ничьей) внутри транзакции
func (r *SessionRepository) CompleteTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, winnerPlayerID *uuid.UUID, winnerTeam, reason string) error {
	_, err := tx.Exec(ctx, `
		UPDATE sessions
		SET status = 'completed', winner_player_id = $2, winner_team = $3, win_reason = $4, ended_at = NOW()
		WHERE id = $1
	`, id, winnerPlayerID, winnerTeam, reason)
	return err
}

// SetStatus переводит сессию в новый статус, только если она еще в ожидаемом.
// Возвращает false, если сессия уже ушла из статуса from
func (r *SessionRepository) SetStatus(ctx context.Context, id uuid.UUID, from, to domain.SessionStatus) (bool, error) {
	var endedAt *time.Time
	if to.IsTerminal() {
		now := time.Now()
		endedAt = &now
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE sessions
		SET status = $3, ended_at = COALESCE($4, ended_at)
		WHERE id = $1 AND status = $2
	`, id, from, to, endedAt)
	if err != nil {
		return false, MapError(err)
	}
	return tag.RowsAffected() == 1, nil
}

// число активных сессий (статистика для админ бота)
func (r *SessionRepository) ActiveCount(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sessions WHERE status = 'active'`).Scan(&n)
	return n, err
}

// последние сессии (обзор для админ бота)
func (r *SessionRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Session, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	var winnerTeam, winReason *string

	if err := row.Scan(
		&s.ID, &s.BoardID, &s.HostID, &s.JoinCode, &s.Status, &s.Version, &s.State, &s.Settings,
		&s.WinnerPlayerID, &winnerTeam, &winReason, &s.StartedAt, &s.EndedAt, &s.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if winnerTeam != nil {
		s.WinnerTeam = *winnerTeam
	}
	if winReason != nil {
		s.WinReason = *winReason
	}

	return &s, nil
}
