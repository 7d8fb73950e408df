package game

import (
	"testing"

	"arcadia_backend/internal/domain"
)

// помечает набор клеток одним цветом
func markCells(t *testing.T, st *domain.SessionState, color string, cells ...int) {
	t.Helper()
	for _, cell := range cells {
		if _, err := ApplyMark(st, cell, color, false); err != nil {
			t.Fatalf("не удалось отметить клетку %d: %v", cell, err)
		}
	}
}

func soloContenders(colors ...string) []Contender {
	out := make([]Contender, 0, len(colors))
	for _, c := range colors {
		out = append(out, Contender{Color: c})
	}
	return out
}

func TestApplyMark_Basic(t *testing.T) {
	st := domain.NewSessionState(3)

	changed, err := ApplyMark(&st, 4, "red", false)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if !changed {
		t.Fatalf("ожидалась новая отметка")
	}

	// повторная отметка тем же цветом ничего не меняет
	changed, err = ApplyMark(&st, 4, "red", false)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if changed {
		t.Fatalf("повторная отметка не должна менять состояние")
	}

	// без lockout второй цвет добавляется к той же клетке
	changed, err = ApplyMark(&st, 4, "blue", false)
	if err != nil || !changed {
		t.Fatalf("второй цвет должен добавиться: changed=%v err=%v", changed, err)
	}
	if len(st.Cells[4].Colors) != 2 {
		t.Fatalf("ожидалось 2 цвета на клетке, получили %v", st.Cells[4].Colors)
	}
}

func TestApplyMark_Lockout(t *testing.T) {
	st := domain.NewSessionState(3)
	markCells(t, &st, "red", 0)

	if _, err := ApplyMark(&st, 0, "blue", true); err != ErrCellLocked {
		t.Fatalf("ожидалась ошибка lockout, получили %v", err)
	}

	// свой цвет поверх своего - не ошибка, просто без изменений
	changed, err := ApplyMark(&st, 0, "red", true)
	if err != nil || changed {
		t.Fatalf("повторная отметка своим цветом: changed=%v err=%v", changed, err)
	}
}

func TestApplyMark_OutOfRange(t *testing.T) {
	st := domain.NewSessionState(3)
	if _, err := ApplyMark(&st, 9, "red", false); err != ErrCellOutOfRange {
		t.Fatalf("ожидалась ошибка диапазона, получили %v", err)
	}
	if _, err := ApplyMark(&st, -1, "red", false); err != ErrCellOutOfRange {
		t.Fatalf("ожидалась ошибка диапазона, получили %v", err)
	}
}

func TestRemoveMark(t *testing.T) {
	st := domain.NewSessionState(3)
	markCells(t, &st, "red", 2)

	changed, err := RemoveMark(&st, 2, "red")
	if err != nil || !changed {
		t.Fatalf("снятие отметки: changed=%v err=%v", changed, err)
	}
	if len(st.Cells[2].Colors) != 0 {
		t.Fatalf("клетка должна быть пустой, получили %v", st.Cells[2].Colors)
	}

	// снятие несуществующей отметки
	changed, err = RemoveMark(&st, 2, "red")
	if err != nil || changed {
		t.Fatalf("повторное снятие: changed=%v err=%v", changed, err)
	}
}

func TestLineWinner_Row(t *testing.T) {
	for size := 3; size <= 6; size++ {
		st := domain.NewSessionState(size)
		row := make([]int, size)
		for col := 0; col < size; col++ {
			row[col] = 1*size + col
		}
		markCells(t, &st, "red", row...)

		res := LineWinner(st, soloContenders("red", "blue"), false)
		if res == nil {
			t.Fatalf("размер %d: ожидалась победа по ряду", size)
		}
		if res.Color != "red" || res.Reason != "row-1" {
			t.Fatalf("размер %d: неверный результат %+v", size, res)
		}
	}
}

func TestLineWinner_Column(t *testing.T) {
	st := domain.NewSessionState(4)
	markCells(t, &st, "blue", 2, 6, 10, 14)

	res := LineWinner(st, soloContenders("red", "blue"), false)
	if res == nil || res.Color != "blue" || res.Reason != "col-2" {
		t.Fatalf("неверный результат %+v", res)
	}
}

func TestLineWinner_Diagonals(t *testing.T) {
	st := domain.NewSessionState(3)
	markCells(t, &st, "green", 0, 4, 8)
	res := LineWinner(st, soloContenders("green"), false)
	if res == nil || res.Reason != "diagonal" {
		t.Fatalf("главная диагональ: %+v", res)
	}

	st2 := domain.NewSessionState(3)
	markCells(t, &st2, "green", 2, 4, 6)
	res = LineWinner(st2, soloContenders("green"), false)
	if res == nil || res.Reason != "anti-diagonal" {
		t.Fatalf("побочная диагональ: %+v", res)
	}
}

func TestLineWinner_MixedLineNoWin(t *testing.T) {
	st := domain.NewSessionState(3)
	markCells(t, &st, "red", 0, 1)
	markCells(t, &st, "blue", 2)

	if res := LineWinner(st, soloContenders("red", "blue"), false); res != nil {
		t.Fatalf("смешанный ряд не должен давать победу: %+v", res)
	}
}

func TestLineWinner_TeamMode(t *testing.T) {
	st := domain.NewSessionState(3)
	// два игрока одной команды закрывают ряд вместе
	markCells(t, &st, "red", 0, 1)
	markCells(t, &st, "blue", 2)

	contenders := []Contender{
		{Color: "red", Team: "alpha"},
		{Color: "blue", Team: "alpha"},
		{Color: "green", Team: "beta"},
	}

	res := LineWinner(st, contenders, true)
	if res == nil || res.Team != "alpha" || res.Reason != "row-0" {
		t.Fatalf("командная победа: %+v", res)
	}
	if res.Color != "" {
		t.Fatalf("при командной победе цвет не указывается: %+v", res)
	}

	// без командного режима те же отметки победы не дают
	if res := LineWinner(st, contenders, false); res != nil {
		t.Fatalf("без команд победы быть не должно: %+v", res)
	}
}

func TestLineWinner_UnknownColorIgnored(t *testing.T) {
	st := domain.NewSessionState(3)
	markCells(t, &st, "red", 0, 1)
	markCells(t, &st, "ghost", 2) // цвет покинувшего игрока

	if res := LineWinner(st, soloContenders("red"), false); res != nil {
		t.Fatalf("чужой цвет не должен достраивать линию: %+v", res)
	}
}

func TestMajorityWinner(t *testing.T) {
	st := domain.NewSessionState(3)
	markCells(t, &st, "red", 0, 1, 2, 3)
	markCells(t, &st, "blue", 4, 5)

	res, draw := MajorityWinner(st, soloContenders("red", "blue"), false)
	if draw {
		t.Fatalf("ничья не ожидалась")
	}
	if res == nil || res.Color != "red" || res.Reason != "majority" {
		t.Fatalf("неверный результат %+v", res)
	}
}

func TestMajorityWinner_Tie(t *testing.T) {
	st := domain.NewSessionState(3)
	markCells(t, &st, "red", 0, 1)
	markCells(t, &st, "blue", 2, 3)

	res, draw := MajorityWinner(st, soloContenders("red", "blue"), false)
	if !draw || res != nil {
		t.Fatalf("ожидалась ничья, получили res=%+v draw=%v", res, draw)
	}
}

func TestMajorityWinner_EmptyBoard(t *testing.T) {
	st := domain.NewSessionState(4)
	res, draw := MajorityWinner(st, soloContenders("red", "blue"), false)
	if !draw || res != nil {
		t.Fatalf("пустая доска - ничья, получили res=%+v draw=%v", res, draw)
	}
}

func TestMajorityWinner_Teams(t *testing.T) {
	st := domain.NewSessionState(3)
	markCells(t, &st, "red", 0)
	markCells(t, &st, "blue", 1)
	markCells(t, &st, "green", 2, 3, 4)

	contenders := []Contender{
		{Color: "red", Team: "alpha"},
		{Color: "blue", Team: "alpha"},
		{Color: "green", Team: "beta"},
	}

	// alpha 2 клетки, beta 3
	res, draw := MajorityWinner(st, contenders, true)
	if draw || res == nil || res.Team != "beta" {
		t.Fatalf("ожидалась победа beta: res=%+v draw=%v", res, draw)
	}
}

func TestClaimedCount(t *testing.T) {
	st := domain.NewSessionState(3)
	markCells(t, &st, "red", 0, 1)
	markCells(t, &st, "blue", 1) // та же клетка вторым цветом

	if n := ClaimedCount(st); n != 2 {
		t.Fatalf("ожидалось 2 занятых клетки, получили %d", n)
	}
}
