package middleware

import (
	"context"
	"testing"
	"time"
)

func TestIncrWindow_Local(t *testing.T) {
	ctx := context.Background()
	key := "ratelimit:test:/api/x"

	for i := int64(1); i <= 3; i++ {
		count, err := incrWindow(ctx, key, time.Minute)
		if err != nil {
			t.Fatalf("неожиданная ошибка: %v", err)
		}
		if count != i {
			t.Fatalf("ожидался счетчик %d, получили %d", i, count)
		}
	}
}

func TestIncrWindow_LocalReset(t *testing.T) {
	ctx := context.Background()
	key := "ratelimit:test:/api/reset"

	if _, err := incrWindow(ctx, key, time.Millisecond); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	count, err := incrWindow(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if count != 1 {
		t.Fatalf("после истечения окна счетчик должен сброситься, получили %d", count)
	}
}
