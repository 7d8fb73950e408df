package realtime

import (
	"context"
	"encoding/json"
	"time"

	"arcadia_backend/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Сообщение, прокидываемое между инстансами через redis pub/sub.
// Origin нужен, чтобы инстанс не обрабатывал собственные публикации
type Envelope struct {
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

// Bridge раздает события сессий между инстансами. Без redis работает
// вхолостую - один инстанс обходится локальной рассылкой
type Bridge struct {
	rdb      *redis.Client
	instance string
}

func NewBridge(addr, password string, db int) *Bridge {
	b := &Bridge{instance: uuid.NewString()}
	if addr == "" {
		logger.Warn("redis не настроен, события сессий раздаются только локально")
		return b
	}

	b.rdb = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := b.rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis недоступен, события сессий раздаются только локально", "error", err)
		b.rdb = nil
	}

	return b
}

func (b *Bridge) Enabled() bool {
	return b != nil && b.rdb != nil
}

func channelFor(sessionID string) string {
	return "session:" + sessionID
}

// Publish отправляет событие сессии остальным инстансам
func (b *Bridge) Publish(ctx context.Context, sessionID string, payload []byte) {
	if !b.Enabled() {
		return
	}

	env, err := json.Marshal(Envelope{Origin: b.instance, Payload: payload})
	if err != nil {
		return
	}
	if err := b.rdb.Publish(ctx, channelFor(sessionID), env).Err(); err != nil {
		logger.Warn("не удалось опубликовать событие сессии", "session", sessionID, "error", err)
	}
}

// Subscribe подписывается на события сессии с других инстансов.
// Возвращает канал полезных нагрузок и функцию отписки
func (b *Bridge) Subscribe(ctx context.Context, sessionID string) (<-chan []byte, func()) {
	out := make(chan []byte, 64)
	if !b.Enabled() {
		close(out)
		return out, func() {}
	}

	sub := b.rdb.Subscribe(ctx, channelFor(sessionID))

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				continue
			}
			if env.Origin == b.instance {
				continue
			}
			select {
			case out <- env.Payload:
			default:
				// медленный потребитель, событие теряется - клиент
				// восстановится по следующему снапшоту
			}
		}
	}()

	return out, func() { _ = sub.Close() }
}

// SetPresence отмечает игрока онлайн в сессии с TTL
func (b *Bridge) SetPresence(ctx context.Context, sessionID, playerID string, ttl time.Duration) {
	if !b.Enabled() {
		return
	}
	key := "presence:" + sessionID + ":" + playerID
	if err := b.rdb.Set(ctx, key, 1, ttl).Err(); err != nil {
		logger.Debug("не удалось обновить presence", "session", sessionID, "error", err)
	}
}

// ClearPresence убирает игрока из онлайна сессии
func (b *Bridge) ClearPresence(ctx context.Context, sessionID, playerID string) {
	if !b.Enabled() {
		return
	}
	b.rdb.Del(ctx, "presence:"+sessionID+":"+playerID)
}

// PresenceCount возвращает число игроков сессии онлайн (по всем инстансам)
func (b *Bridge) PresenceCount(ctx context.Context, sessionID string) int {
	if !b.Enabled() {
		return 0
	}
	keys, err := b.rdb.Keys(ctx, "presence:"+sessionID+":*").Result()
	if err != nil {
		return 0
	}
	return len(keys)
}
