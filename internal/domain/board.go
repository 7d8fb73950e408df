package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	MinBoardSize = 3
	MaxBoardSize = 6
)

// Доска бинго: квадратная сетка клеток со свободным текстом
type Board struct {
	ID        uuid.UUID     `db:"id" json:"id"`
	OwnerID   int64         `db:"owner_id" json:"owner_id"`
	Title     string        `db:"title" json:"title"`
	Game      string        `db:"game" json:"game,omitempty"` // к какой игре относится доска
	Size      int           `db:"size" json:"size"`
	Cells     []BoardCell   `db:"cells" json:"cells"`
	Settings  BoardSettings `db:"settings" json:"settings"`
	Public    bool          `db:"public" json:"public"`
	Votes     int           `db:"votes" json:"votes"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// Клетка доски (шаблон, без состояния отметок)
type BoardCell struct {
	Text string `json:"text"`
}

// Настройки доски, применяются к каждой сессии по ней
type BoardSettings struct {
	TeamMode         bool          `json:"team_mode"`
	Lockout          bool          `json:"lockout"` // занятую клетку нельзя перекрасить
	SoundEnabled     bool          `json:"sound_enabled"`
	WinConditions    WinConditions `json:"win_conditions"`
	TimeLimitSeconds int           `json:"time_limit_seconds,omitempty"`
}

// Какие условия победы активны
type WinConditions struct {
	Line     bool `json:"line"`     // ряд, колонка или диагональ
	Majority bool `json:"majority"` // большинство клеток по истечении времени
}

var (
	ErrBadBoardSize   = errors.New("размер доски должен быть от 3 до 6")
	ErrBadCellCount   = errors.New("количество клеток не совпадает с размером доски")
	ErrEmptyTitle     = errors.New("название доски не может быть пустым")
	ErrNoWinCondition = errors.New("должно быть включено хотя бы одно условие победы")
	ErrBadTimeLimit   = errors.New("лимит времени не может быть отрицательным")
)

// Validate проверяет настройки: без условия победы партия не может закончиться
func (s BoardSettings) Validate() error {
	if !s.WinConditions.Line && !s.WinConditions.Majority {
		return ErrNoWinCondition
	}
	if s.TimeLimitSeconds < 0 {
		return ErrBadTimeLimit
	}
	return nil
}

// Validate проверяет инварианты доски перед сохранением
func (b *Board) Validate() error {
	if b.Title == "" {
		return ErrEmptyTitle
	}
	if b.Size < MinBoardSize || b.Size > MaxBoardSize {
		return ErrBadBoardSize
	}
	if len(b.Cells) != b.Size*b.Size {
		return ErrBadCellCount
	}
	return b.Settings.Validate()
}
