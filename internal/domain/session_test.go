package domain

import "testing"

func TestSessionStatus_Transitions(t *testing.T) {
	allowed := []struct{ from, to SessionStatus }{
		{SessionActive, SessionPaused},
		{SessionActive, SessionCompleted},
		{SessionActive, SessionCancelled},
		{SessionPaused, SessionActive},
		{SessionPaused, SessionCompleted},
		{SessionPaused, SessionCancelled},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Fatalf("переход %s -> %s должен быть разрешен", tc.from, tc.to)
		}
	}

	forbidden := []struct{ from, to SessionStatus }{
		{SessionCompleted, SessionActive},
		{SessionCancelled, SessionActive},
		{SessionCompleted, SessionPaused},
		{SessionCancelled, SessionCompleted},
	}
	for _, tc := range forbidden {
		if tc.from.CanTransitionTo(tc.to) {
			t.Fatalf("переход %s -> %s должен быть запрещен", tc.from, tc.to)
		}
	}
}

func TestSessionStatus_IsTerminal(t *testing.T) {
	if SessionActive.IsTerminal() || SessionPaused.IsTerminal() {
		t.Fatalf("active и paused не терминальные")
	}
	if !SessionCompleted.IsTerminal() || !SessionCancelled.IsTerminal() {
		t.Fatalf("completed и cancelled терминальные")
	}
}

func TestBoard_Validate(t *testing.T) {
	valid := func() *Board {
		cells := make([]BoardCell, 9)
		return &Board{
			Title: "Тестовая доска",
			Size:  3,
			Cells: cells,
			Settings: BoardSettings{
				WinConditions: WinConditions{Line: true},
			},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("валидная доска: %v", err)
	}

	b := valid()
	b.Title = ""
	if err := b.Validate(); err != ErrEmptyTitle {
		t.Fatalf("пустое название: %v", err)
	}

	b = valid()
	b.Size = 7
	if err := b.Validate(); err != ErrBadBoardSize {
		t.Fatalf("размер 7: %v", err)
	}

	b = valid()
	b.Size = 2
	if err := b.Validate(); err != ErrBadBoardSize {
		t.Fatalf("размер 2: %v", err)
	}

	b = valid()
	b.Cells = b.Cells[:8]
	if err := b.Validate(); err != ErrBadCellCount {
		t.Fatalf("неполные клетки: %v", err)
	}

	b = valid()
	b.Settings.WinConditions = WinConditions{}
	if err := b.Validate(); err != ErrNoWinCondition {
		t.Fatalf("без условий победы: %v", err)
	}
}

func TestBoardSettings_Validate(t *testing.T) {
	ok := BoardSettings{WinConditions: WinConditions{Line: true}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("настройки с линейной победой: %v", err)
	}

	// переопределение настроек сессии не может отключить все условия победы
	none := BoardSettings{}
	if err := none.Validate(); err != ErrNoWinCondition {
		t.Fatalf("без условий победы ожидалась ошибка, получили %v", err)
	}

	neg := BoardSettings{
		WinConditions:    WinConditions{Majority: true},
		TimeLimitSeconds: -5,
	}
	if err := neg.Validate(); err != ErrBadTimeLimit {
		t.Fatalf("отрицательный лимит времени должен отклоняться, получили %v", err)
	}
}

func TestIsValidPlayerColor(t *testing.T) {
	if !IsValidPlayerColor("red") {
		t.Fatalf("red из палитры")
	}
	if IsValidPlayerColor("magenta") {
		t.Fatalf("magenta вне палитры")
	}
	if IsValidPlayerColor("") {
		t.Fatalf("пустой цвет недопустим")
	}
}
