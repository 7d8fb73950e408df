package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"arcadia_backend/internal/domain"
	"arcadia_backend/internal/game"
	"arcadia_backend/internal/realtime"
	"arcadia_backend/internal/service"

	"github.com/google/uuid"
)

type inbound struct {
	client *Client
	raw    []byte
}

// Комната живой сессии: все мутации состояния проходят через ее цикл,
// рассылка идет локальным клиентам и через redis остальным инстансам
type Room struct {
	ID        string
	SessionID uuid.UUID

	svc    *service.SessionService
	bridge *realtime.Bridge
	hub    *Hub

	mu      sync.RWMutex
	Clients map[uuid.UUID]*Client

	Register   chan *Client
	Unregister chan *Client
	Inbound    chan inbound
	System     chan Message // события от REST обработчиков этого инстанса

	done     chan struct{}
	doneOnce sync.Once

	inactivity    time.Duration
	paused        bool
	finished      bool
	emptySince    time.Time // когда комната осталась без клиентов (под mu)
	bridgeCh      <-chan []byte
	bridgeCancel  func()
	timeLimitFrom time.Time
	timeLimitDur  time.Duration
}

func newRoom(session *domain.Session, svc *service.SessionService, bridge *realtime.Bridge, hub *Hub, inactivity time.Duration) *Room {
	r := &Room{
		ID:         session.ID.String(),
		SessionID:  session.ID,
		svc:        svc,
		bridge:     bridge,
		hub:        hub,
		Clients:    make(map[uuid.UUID]*Client),
		Register:   make(chan *Client, 8),
		Unregister: make(chan *Client, 8),
		Inbound:    make(chan inbound, 64),
		System:     make(chan Message, 16),
		done:       make(chan struct{}),
		inactivity: inactivity,
		paused:     session.Status == domain.SessionPaused,
		finished:   session.Status.IsTerminal(),
	}

	if session.Settings.TimeLimitSeconds > 0 {
		r.timeLimitFrom = session.StartedAt
		r.timeLimitDur = time.Duration(session.Settings.TimeLimitSeconds) * time.Second
	}

	return r
}

func (r *Room) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r.bridgeCh, r.bridgeCancel = r.bridge.Subscribe(ctx, r.ID)
	defer r.bridgeCancel()

	inactivityTimer := time.NewTimer(r.inactivity)
	defer inactivityTimer.Stop()
	if r.paused || r.finished {
		inactivityTimer.Stop()
	}

	// лимит времени отсчитывается от старта сессии, не от создания комнаты
	var timeLimitCh <-chan time.Time
	if r.timeLimitDur > 0 && !r.finished {
		remaining := time.Until(r.timeLimitFrom.Add(r.timeLimitDur))
		if remaining < time.Second {
			remaining = time.Second
		}
		timeLimitTimer := time.NewTimer(remaining)
		defer timeLimitTimer.Stop()
		timeLimitCh = timeLimitTimer.C
	}

	for {
		select {
		case <-r.done:
			r.cleanup()
			return

		case c := <-r.Register:
			r.handleRegister(ctx, c)

		case c := <-r.Unregister:
			r.handleUnregister(ctx, c)

		case in := <-r.Inbound:
			r.handleClientMessage(ctx, in, inactivityTimer)

		case msg := <-r.System:
			// статус сменили через REST на этом инстансе
			r.applyStatus(msg, inactivityTimer)
			r.broadcastLocal(encode(msg))
			r.publish(ctx, msg)

		case payload, ok := <-r.bridgeCh:
			if !ok {
				r.bridgeCh = nil
				continue
			}
			var msg Message
			if err := json.Unmarshal(payload, &msg); err != nil {
				continue
			}
			r.applyStatus(msg, inactivityTimer)
			r.broadcastLocal(payload)

		case <-inactivityTimer.C:
			r.handleInactivity(ctx)

		case <-timeLimitCh:
			timeLimitCh = nil
			r.handleTimeLimit(ctx)
		}
	}
}

// Close останавливает цикл комнаты
func (r *Room) Close() {
	r.doneOnce.Do(func() { close(r.done) })
}

func (r *Room) handleRegister(ctx context.Context, c *Client) {
	r.mu.Lock()
	r.Clients[c.PlayerID] = c
	r.emptySince = time.Time{}
	r.mu.Unlock()

	wsConnections.Inc()
	r.bridge.SetPresence(ctx, r.ID, c.PlayerID.String(), 2*pongWait)

	// подключившийся сразу получает полный снапшот
	session, players, err := r.svc.Snapshot(ctx, r.SessionID)
	if err != nil {
		log.Printf("Room.handleRegister: сессия=%s снапшот не собрался: %v", r.ID, err)
		r.sendTo(c, Message{Type: msgError, Error: "snapshot failed"})
		return
	}
	r.sendTo(c, snapshotMessage(session, players))

	for _, p := range players {
		if p.ID == c.PlayerID {
			joined := Message{Type: msgPlayerJoined, Player: p}
			r.broadcastLocalExcept(encode(joined), c.PlayerID)
			r.publish(ctx, joined)
			break
		}
	}
}

func (r *Room) handleUnregister(ctx context.Context, c *Client) {
	r.mu.Lock()
	if r.Clients[c.PlayerID] != c {
		r.mu.Unlock()
		return
	}
	delete(r.Clients, c.PlayerID)
	empty := len(r.Clients) == 0
	if empty {
		r.emptySince = time.Now()
	}
	r.mu.Unlock()

	wsConnections.Dec()
	r.bridge.ClearPresence(ctx, r.ID, c.PlayerID.String())

	left := Message{Type: msgPlayerLeft, Player: &domain.SessionPlayer{ID: c.PlayerID, SessionID: r.SessionID}}
	r.broadcastLocal(encode(left))
	r.publish(ctx, left)
}

func (r *Room) handleClientMessage(ctx context.Context, in inbound, inactivityTimer *time.Timer) {
	var msg ClientMessage
	if err := json.Unmarshal(in.raw, &msg); err != nil {
		r.sendTo(in.client, Message{Type: msgError, Error: "bad message"})
		return
	}

	switch msg.Type {
	case "ping":
		return
	case "mark", "unmark":
	default:
		r.sendTo(in.client, Message{Type: msgError, Error: "unknown message type"})
		return
	}

	if r.finished {
		r.sendTo(in.client, Message{Type: msgError, Error: "session finished"})
		return
	}

	var res *service.MarkResult
	var err error
	if msg.Type == "mark" {
		res, err = r.svc.Mark(ctx, r.SessionID, in.client.PlayerID, msg.Cell, msg.Version)
	} else {
		res, err = r.svc.Unmark(ctx, r.SessionID, in.client.PlayerID, msg.Cell, msg.Version)
	}
	if err != nil {
		r.sendMutationError(ctx, in.client, err)
		return
	}

	if !res.Changed {
		// ничего не поменялось (повторная отметка) - только снапшот отправителю
		if res.Stale {
			r.sendSnapshot(ctx, in.client)
		}
		return
	}

	marksTotal.Inc()
	if !r.paused {
		resetTimer(inactivityTimer, r.inactivity)
	}

	cell := msg.Cell
	kind := msgMarked
	if msg.Type == "unmark" {
		kind = msgUnmarked
	}
	update := Message{
		Type:    kind,
		Cell:    &cell,
		Color:   res.Player.Color,
		Version: res.Session.Version,
	}
	r.broadcastLocal(encode(update))
	r.publish(ctx, update)

	// устаревший клиент получает полный снапшот вдогонку
	if res.Stale {
		r.sendSnapshot(ctx, in.client)
	}

	if res.Win != nil {
		r.finished = true
		winner := Message{
			Type:       msgWinner,
			Status:     string(domain.SessionCompleted),
			WinnerTeam: res.Win.Team,
			WinReason:  res.Win.Reason,
			Version:    res.Session.Version,
		}
		if res.WinnerPlayerID != nil {
			winner.WinnerPlayerID = res.WinnerPlayerID.String()
		}
		r.broadcastLocal(encode(winner))
		r.publish(ctx, winner)
	}
}

func (r *Room) sendMutationError(ctx context.Context, c *Client, err error) {
	switch {
	case errors.Is(err, service.ErrSessionPaused):
		r.sendTo(c, Message{Type: msgError, Error: "session paused"})
	case errors.Is(err, service.ErrSessionNotActive):
		r.finished = true
		r.sendTo(c, Message{Type: msgError, Error: "session finished"})
	case errors.Is(err, game.ErrCellLocked):
		// lockout: клетка занята, клиенту нужен актуальный снапшот
		r.sendTo(c, Message{Type: msgError, Error: "cell locked"})
		r.sendSnapshot(ctx, c)
	case errors.Is(err, game.ErrCellOutOfRange):
		r.sendTo(c, Message{Type: msgError, Error: "cell out of range"})
	case errors.Is(err, service.ErrNotPlayer):
		r.sendTo(c, Message{Type: msgError, Error: "not a session player"})
	default:
		log.Printf("Room.handleClientMessage: сессия=%s ошибка мутации: %v", r.ID, err)
		r.sendTo(c, Message{Type: msgError, Error: "internal error"})
	}
}

func (r *Room) handleInactivity(ctx context.Context) {
	if r.paused || r.finished {
		return
	}

	ok, err := r.svc.PauseForInactivity(ctx, r.SessionID)
	if err != nil {
		log.Printf("Room.handleInactivity: сессия=%s пауза не удалась: %v", r.ID, err)
		return
	}
	if !ok {
		return
	}

	r.paused = true
	log.Printf("Room.handleInactivity: сессия=%s поставлена на паузу по простою", r.ID)

	msg := Message{Type: msgStatus, Status: string(domain.SessionPaused)}
	r.broadcastLocal(encode(msg))
	r.publish(ctx, msg)
}

func (r *Room) handleTimeLimit(ctx context.Context) {
	if r.finished {
		return
	}

	res, err := r.svc.ExpireTimeLimit(ctx, r.SessionID)
	if err != nil {
		if !errors.Is(err, service.ErrSessionNotActive) {
			log.Printf("Room.handleTimeLimit: сессия=%s: %v", r.ID, err)
		}
		r.finished = true
		return
	}

	r.finished = true
	msg := Message{
		Type:      msgWinner,
		Status:    string(domain.SessionCompleted),
		WinReason: res.Session.WinReason,
	}
	if res.WinnerPlayerID != nil {
		msg.WinnerPlayerID = res.WinnerPlayerID.String()
	}
	msg.WinnerTeam = res.Session.WinnerTeam
	r.broadcastLocal(encode(msg))
	r.publish(ctx, msg)
}

// applyStatus синхронизирует локальные флаги комнаты с событием статуса
func (r *Room) applyStatus(msg Message, inactivityTimer *time.Timer) {
	switch msg.Type {
	case msgStatus:
		switch domain.SessionStatus(msg.Status) {
		case domain.SessionPaused:
			r.paused = true
			inactivityTimer.Stop()
		case domain.SessionActive:
			r.paused = false
			resetTimer(inactivityTimer, r.inactivity)
		case domain.SessionCompleted, domain.SessionCancelled:
			r.finished = true
			inactivityTimer.Stop()
		}
	case msgMarked, msgUnmarked:
		// мутации, принятые через REST или на другом инстансе,
		// тоже считаются активностью
		if !r.paused && !r.finished {
			resetTimer(inactivityTimer, r.inactivity)
		}
	case msgWinner:
		r.finished = true
		inactivityTimer.Stop()
	}
}

func (r *Room) sendSnapshot(ctx context.Context, c *Client) {
	session, players, err := r.svc.Snapshot(ctx, r.SessionID)
	if err != nil {
		return
	}
	r.sendTo(c, snapshotMessage(session, players))
}

func (r *Room) sendTo(c *Client, msg Message) {
	select {
	case c.Send <- encode(msg):
	default:
		// клиент не вычитывает - отсоединяем
		_ = c.Conn.Close()
	}
}

func (r *Room) broadcastLocal(data []byte) {
	r.broadcastLocalExcept(data, uuid.Nil)
}

func (r *Room) broadcastLocalExcept(data []byte, skip uuid.UUID) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, c := range r.Clients {
		if id == skip {
			continue
		}
		select {
		case c.Send <- data:
		default:
			_ = c.Conn.Close()
		}
	}
}

func (r *Room) publish(ctx context.Context, msg Message) {
	r.bridge.Publish(ctx, r.ID, encode(msg))
}

// idle сообщает, сколько комната стоит без клиентов (ноль - клиенты есть)
func (r *Room) idle() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.Clients) > 0 || r.emptySince.IsZero() {
		return 0
	}
	return time.Since(r.emptySince)
}

func (r *Room) cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.Clients {
		close(c.Send)
		delete(r.Clients, id)
		wsConnections.Dec()
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
