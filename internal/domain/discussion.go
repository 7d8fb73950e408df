package domain

import (
	"time"

	"github.com/google/uuid"
)

// Обсуждение на форуме сообщества
type Discussion struct {
	ID           uuid.UUID `db:"id" json:"id"`
	AuthorID     int64     `db:"author_id" json:"author_id"`
	Title        string    `db:"title" json:"title"`
	Body         string    `db:"body" json:"body"`
	Game         string    `db:"game" json:"game,omitempty"`
	Tags         []string  `db:"tags" json:"tags,omitempty"`
	Upvotes      int       `db:"upvotes" json:"upvotes"`
	CommentCount int       `db:"comment_count" json:"comment_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Комментарий к обсуждению
type Comment struct {
	ID           uuid.UUID `db:"id" json:"id"`
	DiscussionID uuid.UUID `db:"discussion_id" json:"discussion_id"`
	AuthorID     int64     `db:"author_id" json:"author_id"`
	Body         string    `db:"body" json:"body"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
