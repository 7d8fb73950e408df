package game

import (
	"fmt"

	"arcadia_backend/internal/domain"
)

// Результат проверки условия победы
type WinResult struct {
	Color  string // цвет победителя (пустой при командной победе)
	Team   string // команда победителя (только в командном режиме)
	Reason string // "row-N", "col-N", "diagonal", "anti-diagonal", "majority"
}

// LineWinner сканирует ряды, колонки и обе диагонали. Линия выиграна,
// если каждая ее клетка отмечена цветом одного владельца (игрока или команды).
// Возвращает nil, если выигранной линии нет
func LineWinner(st domain.SessionState, contenders []Contender, teamMode bool) *WinResult {
	size := st.Size
	if size <= 0 || len(st.Cells) != size*size {
		return nil
	}

	owners := ownersByColor(contenders, teamMode)

	// ряды
	for row := 0; row < size; row++ {
		line := make([]int, size)
		for col := 0; col < size; col++ {
			line[col] = row*size + col
		}
		if key := lineOwner(st, line, owners); key != "" {
			return winResult(key, contenders, teamMode, fmt.Sprintf("row-%d", row))
		}
	}

	// колонки
	for col := 0; col < size; col++ {
		line := make([]int, size)
		for row := 0; row < size; row++ {
			line[row] = row*size + col
		}
		if key := lineOwner(st, line, owners); key != "" {
			return winResult(key, contenders, teamMode, fmt.Sprintf("col-%d", col))
		}
	}

	// главная диагональ
	diag := make([]int, size)
	for i := 0; i < size; i++ {
		diag[i] = i*size + i
	}
	if key := lineOwner(st, diag, owners); key != "" {
		return winResult(key, contenders, teamMode, "diagonal")
	}

	// побочная диагональ
	anti := make([]int, size)
	for i := 0; i < size; i++ {
		anti[i] = i*size + (size - 1 - i)
	}
	if key := lineOwner(st, anti, owners); key != "" {
		return winResult(key, contenders, teamMode, "anti-diagonal")
	}

	return nil
}

// MajorityWinner считает отмеченные клетки на владельца и выбирает максимум.
// Равенство максимумов (или пустая доска) - ничья
func MajorityWinner(st domain.SessionState, contenders []Contender, teamMode bool) (*WinResult, bool) {
	owners := ownersByColor(contenders, teamMode)

	counts := make(map[string]int)
	for _, cell := range st.Cells {
		// клетка засчитывается каждому владельцу, чей цвет на ней стоит
		seen := make(map[string]bool)
		for _, color := range cell.Colors {
			key, ok := owners[color]
			if !ok || seen[key] {
				continue
			}
			seen[key] = true
			counts[key]++
		}
	}

	best := ""
	bestCount := 0
	tied := false
	for key, n := range counts {
		switch {
		case n > bestCount:
			best, bestCount, tied = key, n, false
		case n == bestCount:
			tied = true
		}
	}

	if bestCount == 0 || tied {
		return nil, true
	}
	return winResult(best, contenders, teamMode, "majority"), false
}

// ownersByColor строит отображение цвет → ключ владельца
func ownersByColor(contenders []Contender, teamMode bool) map[string]string {
	owners := make(map[string]string, len(contenders))
	for _, c := range contenders {
		owners[c.Color] = c.ownerKey(teamMode)
	}
	return owners
}

// lineOwner возвращает ключ владельца, которому принадлежит вся линия, иначе ""
func lineOwner(st domain.SessionState, line []int, owners map[string]string) string {
	var candidates map[string]bool

	for _, idx := range line {
		cell := st.Cells[idx]
		if len(cell.Colors) == 0 {
			return ""
		}

		cellOwners := make(map[string]bool)
		for _, color := range cell.Colors {
			if key, ok := owners[color]; ok {
				cellOwners[key] = true
			}
		}
		if len(cellOwners) == 0 {
			return ""
		}

		if candidates == nil {
			candidates = cellOwners
			continue
		}
		// пересекаем множества владельцев по клеткам линии
		for key := range candidates {
			if !cellOwners[key] {
				delete(candidates, key)
			}
		}
		if len(candidates) == 0 {
			return ""
		}
	}

	for key := range candidates {
		return key
	}
	return ""
}

func winResult(ownerKey string, contenders []Contender, teamMode bool, reason string) *WinResult {
	for _, c := range contenders {
		if c.ownerKey(teamMode) == ownerKey {
			res := &WinResult{Reason: reason}
			if teamMode && c.Team != "" {
				res.Team = c.Team
			} else {
				res.Color = c.Color
			}
			return res
		}
	}
	return nil
}
