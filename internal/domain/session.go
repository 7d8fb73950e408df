package domain

import (
	"time"

	"github.com/google/uuid"
)

// Статус сессии
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionPaused    SessionStatus = "paused"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// IsTerminal сообщает, что сессия больше не изменяется
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}

// CanTransitionTo проверяет допустимость смены статуса
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	switch s {
	case SessionActive:
		return next == SessionPaused || next == SessionCompleted || next == SessionCancelled
	case SessionPaused:
		return next == SessionActive || next == SessionCompleted || next == SessionCancelled
	default:
		return false
	}
}

// Живая партия по доске. Версия монотонно растет при каждой принятой мутации
type Session struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	BoardID        uuid.UUID     `db:"board_id" json:"board_id"`
	HostID         int64         `db:"host_id" json:"host_id"`
	JoinCode       string        `db:"join_code" json:"join_code"`
	Status         SessionStatus `db:"status" json:"status"`
	Version        int64         `db:"version" json:"version"`
	State          SessionState  `db:"state" json:"state"`
	Settings       BoardSettings `db:"settings" json:"settings"`
	WinnerPlayerID *uuid.UUID    `db:"winner_player_id" json:"winner_player_id,omitempty"`
	WinnerTeam     string        `db:"winner_team" json:"winner_team,omitempty"`
	WinReason      string        `db:"win_reason" json:"win_reason,omitempty"`
	StartedAt      time.Time     `db:"started_at" json:"started_at"`
	EndedAt        *time.Time    `db:"ended_at" json:"ended_at,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}

// Текущее состояние отметок по клеткам (хранится в jsonb)
type SessionState struct {
	Size  int         `json:"size"`
	Cells []CellState `json:"cells"`
}

// Состояние одной клетки: набор цветов, которыми она отмечена
type CellState struct {
	Colors []string `json:"colors,omitempty"`
}

// NewSessionState создает пустое состояние для доски заданного размера
func NewSessionState(size int) SessionState {
	return SessionState{
		Size:  size,
		Cells: make([]CellState, size*size),
	}
}

// HasColor проверяет, отмечена ли клетка данным цветом
func (c CellState) HasColor(color string) bool {
	for _, col := range c.Colors {
		if col == color {
			return true
		}
	}
	return false
}

// Игрок в сессии
type SessionPlayer struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	SessionID   uuid.UUID  `db:"session_id" json:"session_id"`
	UserID      int64      `db:"user_id" json:"user_id"`
	DisplayName string     `db:"display_name" json:"display_name"`
	Color       string     `db:"color" json:"color"`
	Team        string     `db:"team" json:"team,omitempty"`
	IsHost      bool       `db:"is_host" json:"is_host"`
	JoinedAt    time.Time  `db:"joined_at" json:"joined_at"`
	LeftAt      *time.Time `db:"left_at" json:"left_at,omitempty"`
}
