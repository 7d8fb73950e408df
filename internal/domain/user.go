package domain

import "time"

type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	Banned       bool      `db:"banned" json:"banned"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Роль пользователя на платформе
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// Цвета отметок, которые может выбрать игрок
var PlayerColors = []string{
	"red", "blue", "green", "yellow", "purple", "orange", "pink", "teal",
}

// IsValidPlayerColor проверяет, что цвет из разрешенной палитры
func IsValidPlayerColor(color string) bool {
	for _, c := range PlayerColors {
		if c == color {
			return true
		}
	}
	return false
}
