package domain

import (
	"time"

	"github.com/google/uuid"
)

// Статус события сообщества
type EventStatus string

const (
	EventUpcoming EventStatus = "upcoming"
	EventOngoing  EventStatus = "ongoing"
	EventFinished EventStatus = "finished"
)

// Событие сообщества (турнир, совместная игра и т.п.)
type Event struct {
	ID               uuid.UUID   `db:"id" json:"id"`
	CreatorID        int64       `db:"creator_id" json:"creator_id"`
	Title            string      `db:"title" json:"title"`
	Description      string      `db:"description" json:"description"`
	Game             string      `db:"game" json:"game,omitempty"`
	Status           EventStatus `db:"status" json:"status"`
	MaxParticipants  int         `db:"max_participants" json:"max_participants,omitempty"`
	ParticipantCount int         `db:"participant_count" json:"participant_count"`
	StartsAt         time.Time   `db:"starts_at" json:"starts_at"`
	EndsAt           *time.Time  `db:"ends_at" json:"ends_at,omitempty"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"`
}
