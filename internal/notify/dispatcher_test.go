package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dentia/clinic-api/internal/models"
)

type recordingSender struct {
	mu         sync.Mutex
	deliveries []Delivery
	done       chan struct{}
	want       int
}

func (r *recordingSender) Send(_ context.Context, d Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, d)
	if len(r.deliveries) == r.want {
		close(r.done)
	}
	return nil
}

func TestDispatcherPreservesPerUserOrder(t *testing.T) {
	const n = 20
	sender := &recordingSender{done: make(chan struct{}), want: n}
	d := NewDispatcher(4, sender, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	userID := uuid.New()
	for i := 0; i < n; i++ {
		d.Enqueue(Delivery{
			UserID:  userID,
			Payload: models.PushPayload{Title: "appointment", Body: string(rune('a' + i))},
		})
	}

	select {
	case <-sender.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for deliveries")
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	for i, got := range sender.deliveries {
		if got.Payload.Body != string(rune('a'+i)) {
			t.Fatalf("delivery %d out of order: got %q", i, got.Payload.Body)
		}
	}
}

func TestDispatcherShardsConsistently(t *testing.T) {
	d := NewDispatcher(8, nil, zerolog.Nop())
	userID := uuid.New()
	first := d.shardIndex(userID)
	for i := 0; i < 10; i++ {
		if got := d.shardIndex(userID); got != first {
			t.Fatalf("shard index changed: %d vs %d", got, first)
		}
	}
}
