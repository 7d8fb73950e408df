package ws

import (
	"encoding/json"

	"arcadia_backend/internal/domain"
)

// Сообщение сервера клиентам сессии
type Message struct {
	Type    string `json:"type"`
	Cell    *int   `json:"cell,omitempty"`
	Color   string `json:"color,omitempty"`
	Version int64  `json:"version,omitempty"`
	Status  string `json:"status,omitempty"`

	State   *domain.SessionState    `json:"state,omitempty"`
	Players []*domain.SessionPlayer `json:"players,omitempty"`
	Player  *domain.SessionPlayer   `json:"player,omitempty"`

	WinnerPlayerID string `json:"winner_player_id,omitempty"`
	WinnerTeam     string `json:"winner_team,omitempty"`
	WinReason      string `json:"win_reason,omitempty"`

	Error string `json:"error,omitempty"`
}

const (
	msgSnapshot     = "snapshot"
	msgMarked       = "marked"
	msgUnmarked     = "unmarked"
	msgStatus       = "status"
	msgWinner       = "winner"
	msgPlayerJoined = "player_joined"
	msgPlayerLeft   = "player_left"
	msgError        = "error"
)

// Сообщение клиента серверу
type ClientMessage struct {
	Type    string `json:"type"` // mark, unmark, ping
	Cell    int    `json:"cell"`
	Version int64  `json:"version"`
}

func encode(msg Message) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		return []byte(`{"type":"error","error":"encode failed"}`)
	}
	return data
}

// MarkedMessage собирает событие отметки для рассылки (REST fallback)
func MarkedMessage(cell int, color string, version int64, unmark bool) Message {
	kind := msgMarked
	if unmark {
		kind = msgUnmarked
	}
	return Message{Type: kind, Cell: &cell, Color: color, Version: version}
}

// WinnerMessage собирает событие победы для рассылки (REST fallback)
func WinnerMessage(winnerPlayerID, winnerTeam, reason string, version int64) Message {
	return Message{
		Type:           msgWinner,
		Status:         string(domain.SessionCompleted),
		WinnerPlayerID: winnerPlayerID,
		WinnerTeam:     winnerTeam,
		WinReason:      reason,
		Version:        version,
	}
}

// snapshotMessage собирает полный снапшот сессии для клиента
func snapshotMessage(session *domain.Session, players []*domain.SessionPlayer) Message {
	state := session.State
	msg := Message{
		Type:    msgSnapshot,
		Version: session.Version,
		Status:  string(session.Status),
		State:   &state,
		Players: players,
	}
	if session.WinnerPlayerID != nil {
		msg.WinnerPlayerID = session.WinnerPlayerID.String()
	}
	msg.WinnerTeam = session.WinnerTeam
	msg.WinReason = session.WinReason
	return msg
}
