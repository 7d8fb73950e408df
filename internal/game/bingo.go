package game

import (
	"errors"

	"arcadia_backend/internal/domain"
)

var (
	ErrCellOutOfRange = errors.New("клетка вне диапазона доски")
	ErrCellLocked     = errors.New("клетка уже занята другим цветом")
)

// участник партии: цвет игрока и (опционально) его команда
type Contender struct {
	Color string
	Team  string
}

// ключ владельца: в командном режиме отметки всей команды считаются вместе
func (c Contender) ownerKey(teamMode bool) string {
	if teamMode && c.Team != "" {
		return "team:" + c.Team
	}
	return "color:" + c.Color
}

// ApplyMark отмечает клетку цветом. Возвращает false, если отметка уже стояла.
// В режиме lockout клетка, занятая другим цветом, не перекрашивается
func ApplyMark(st *domain.SessionState, cell int, color string, lockout bool) (bool, error) {
	if cell < 0 || cell >= len(st.Cells) {
		return false, ErrCellOutOfRange
	}

	c := &st.Cells[cell]
	if c.HasColor(color) {
		return false, nil
	}
	if lockout && len(c.Colors) > 0 {
		return false, ErrCellLocked
	}

	c.Colors = append(c.Colors, color)
	return true, nil
}

// RemoveMark снимает отметку цвета с клетки. Возвращает false, если отметки не было
func RemoveMark(st *domain.SessionState, cell int, color string) (bool, error) {
	if cell < 0 || cell >= len(st.Cells) {
		return false, ErrCellOutOfRange
	}

	c := &st.Cells[cell]
	for i, col := range c.Colors {
		if col == color {
			c.Colors = append(c.Colors[:i], c.Colors[i+1:]...)
			if len(c.Colors) == 0 {
				c.Colors = nil
			}
			return true, nil
		}
	}
	return false, nil
}

// ClaimedCount возвращает число клеток, на которых есть хоть одна отметка
func ClaimedCount(st domain.SessionState) int {
	n := 0
	for _, c := range st.Cells {
		if len(c.Colors) > 0 {
			n++
		}
	}
	return n
}
