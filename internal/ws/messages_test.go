package ws

import (
	"encoding/json"
	"testing"

	"arcadia_backend/internal/domain"

	"github.com/google/uuid"
)

func TestSnapshotMessage(t *testing.T) {
	winner := uuid.New()
	session := &domain.Session{
		ID:             uuid.New(),
		Status:         domain.SessionCompleted,
		Version:        17,
		State:          domain.NewSessionState(3),
		WinnerPlayerID: &winner,
		WinReason:      "row-0",
	}
	players := []*domain.SessionPlayer{{ID: uuid.New(), Color: "red"}}

	msg := snapshotMessage(session, players)

	if msg.Type != msgSnapshot {
		t.Fatalf("ожидался тип %q, получили %q", msgSnapshot, msg.Type)
	}
	if msg.Version != 17 {
		t.Fatalf("версия снапшота %d, ожидалась 17", msg.Version)
	}
	if msg.Status != string(domain.SessionCompleted) {
		t.Fatalf("статус %q не попал в снапшот", session.Status)
	}
	if msg.WinnerPlayerID != winner.String() {
		t.Fatalf("победитель не попал в снапшот")
	}
	if msg.State == nil || len(msg.State.Cells) != 9 {
		t.Fatalf("состояние доски не попало в снапшот")
	}
	if len(msg.Players) != 1 {
		t.Fatalf("игроки не попали в снапшот")
	}
}

func TestMarkedMessage(t *testing.T) {
	msg := MarkedMessage(4, "blue", 9, false)
	if msg.Type != msgMarked || msg.Cell == nil || *msg.Cell != 4 {
		t.Fatalf("неверное событие отметки: %+v", msg)
	}

	msg = MarkedMessage(4, "blue", 9, true)
	if msg.Type != msgUnmarked {
		t.Fatalf("ожидался тип %q, получили %q", msgUnmarked, msg.Type)
	}
}

func TestEncode_CellZero(t *testing.T) {
	cell := 0
	data := encode(Message{Type: msgMarked, Cell: &cell, Color: "red"})

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("не удалось разобрать json: %v", err)
	}
	// нулевая клетка не должна теряться из-за omitempty
	if _, ok := decoded["cell"]; !ok {
		t.Fatalf("клетка 0 пропала из сообщения: %s", data)
	}
}
