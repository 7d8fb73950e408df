package ws

import (
	"context"
	"log"
	"sync"
	"time"

	"arcadia_backend/internal/domain"
	"arcadia_backend/internal/realtime"
	"arcadia_backend/internal/service"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	wsConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arcadia_ws_connections",
		Help: "Открытые WebSocket соединения",
	})
	activeRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arcadia_ws_rooms",
		Help: "Живые комнаты сессий на этом инстансе",
	})
	marksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arcadia_marks_total",
		Help: "Принятые мутации клеток",
	})
)

// Hub держит комнаты живых сессий этого инстанса
type Hub struct {
	mu    sync.RWMutex
	Rooms map[string]*Room

	svc    *service.SessionService
	bridge *realtime.Bridge

	inactivity time.Duration
	grace      time.Duration // сколько держим пустую комнату до закрытия
}

func NewHub(svc *service.SessionService, bridge *realtime.Bridge, inactivity, grace time.Duration) *Hub {
	return &Hub{
		Rooms:      make(map[string]*Room),
		svc:        svc,
		bridge:     bridge,
		inactivity: inactivity,
		grace:      grace,
	}
}

// GetOrCreateRoom возвращает комнату сессии, создавая и запуская ее при
// первом подключении
func (h *Hub) GetOrCreateRoom(session *domain.Session) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := session.ID.String()
	if room, ok := h.Rooms[id]; ok {
		return room
	}

	room := newRoom(session, h.svc, h.bridge, h, h.inactivity)
	h.Rooms[id] = room
	activeRooms.Inc()
	go room.Run()

	log.Printf("Hub.GetOrCreateRoom: создана комната=%s", id)
	return room
}

// NotifyStatus доводит смену статуса через REST до клиентов комнаты
func (h *Hub) NotifyStatus(ctx context.Context, sessionID uuid.UUID, status domain.SessionStatus) {
	h.Notify(ctx, sessionID, Message{Type: msgStatus, Status: string(status)})
}

// Notify доставляет событие клиентам комнаты. Работает и без локальной
// комнаты - остальные инстансы получат его через redis
func (h *Hub) Notify(ctx context.Context, sessionID uuid.UUID, msg Message) {
	// мутации через REST учитываются наравне с WebSocket
	if msg.Type == msgMarked || msg.Type == msgUnmarked {
		marksTotal.Inc()
	}

	h.mu.RLock()
	room := h.Rooms[sessionID.String()]
	h.mu.RUnlock()

	if room != nil {
		select {
		case room.System <- msg:
		default:
			log.Printf("Hub.Notify: комната=%s системная очередь заполнена", sessionID)
		}
		return
	}

	h.bridge.Publish(ctx, sessionID.String(), encode(msg))
}

// StartCleanup периодически закрывает пустые и завершенные комнаты
func (h *Hub) StartCleanup() {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			h.sweep()
		}
	}()
}

func (h *Hub) sweep() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, room := range h.Rooms {
		if idle := room.idle(); idle > h.grace {
			log.Printf("Hub.sweep: закрываем пустую комнату=%s (простаивала %s)", id, idle)
			room.Close()
			delete(h.Rooms, id)
			activeRooms.Dec()
		}
	}
}

// Shutdown закрывает все комнаты при остановке сервера
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, room := range h.Rooms {
		room.Close()
		delete(h.Rooms, id)
		activeRooms.Dec()
	}
}
