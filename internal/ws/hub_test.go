package ws

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNotify_CountsMarkMutations(t *testing.T) {
	h := NewHub(nil, nil, time.Minute, time.Minute)
	ctx := context.Background()

	before := testutil.ToFloat64(marksTotal)

	h.Notify(ctx, uuid.New(), MarkedMessage(3, "red", 5, false))
	h.Notify(ctx, uuid.New(), MarkedMessage(3, "red", 6, true))
	// события статуса не являются мутациями
	h.Notify(ctx, uuid.New(), Message{Type: msgStatus, Status: "paused"})

	got := testutil.ToFloat64(marksTotal) - before
	if got != 2 {
		t.Fatalf("ожидался рост счетчика отметок на 2, получили %v", got)
	}
}
