package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"arcadia_backend/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

var limiterClient *redis.Client

// локальный fallback на случай отсутствия redis
var (
	localMu      sync.Mutex
	localWindows = make(map[string]*localWindow)
)

type localWindow struct {
	count   int
	resetAt time.Time
}

// InitRedisRateLimiter настраивает redis для лимитера. С пустым адресом
// лимитер работает на локальной памяти этого инстанса
func InitRedisRateLimiter(addr, password string, db int) {
	if addr == "" {
		logger.Warn("rate limiter работает без redis (локальные окна)")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis для rate limiter недоступен, используем локальные окна", "error", err)
		return
	}

	limiterClient = client
}

// RateLimit ограничивает число запросов с одного ip в фиксированном окне
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", c.ClientIP(), c.FullPath())

		count, err := incrWindow(c.Request.Context(), key, window)
		if err != nil {
			// лимитер не должен ронять запросы при сбое redis
			logger.Debug("rate limiter пропускает запрос из-за ошибки", "error", err)
			c.Next()
			return
		}

		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}

		c.Next()
	}
}

func incrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	if limiterClient != nil {
		count, err := limiterClient.Incr(ctx, key).Result()
		if err != nil {
			return 0, err
		}
		if count == 1 {
			limiterClient.Expire(ctx, key, window)
		}
		return count, nil
	}

	localMu.Lock()
	defer localMu.Unlock()

	now := time.Now()
	w, ok := localWindows[key]
	if !ok || now.After(w.resetAt) {
		localWindows[key] = &localWindow{count: 1, resetAt: now.Add(window)}
		return 1, nil
	}
	w.count++
	return int64(w.count), nil
}
