// Package notify delivers push notifications asynchronously. Deliveries are
// sharded across a fixed set of workers by user id so that one user's
// notifications are always sent in order.
package notify

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dentia/clinic-api/internal/metrics"
	"github.com/dentia/clinic-api/internal/models"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Delivery is one notification bound for one user's subscriptions.
type Delivery struct {
	ClinicID         uuid.UUID
	UserID           uuid.UUID
	NotificationType string
	Payload          models.PushPayload
}

// Sender pushes a delivery to every active subscription of the user.
type Sender interface {
	Send(ctx context.Context, d Delivery) error
}

// Dispatcher routes deliveries to a fixed set of workers using consistent
// hashing on the user id, guaranteeing per-user delivery ordering.
type Dispatcher struct {
	workers []chan Delivery
	sender  Sender
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender Sender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan Delivery, numWorkers),
		sender:  sender,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan Delivery, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a delivery to the worker responsible for its user.
// Non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(delivery Delivery) {
	idx := d.shardIndex(delivery.UserID)
	d.workers[idx] <- delivery
	metrics.NotifyQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID uuid.UUID) int {
	h := fnv.New32a()
	_, _ = h.Write(userID[:])
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-ch:
			if !ok {
				return
			}
			if err := d.sender.Send(ctx, delivery); err != nil {
				metrics.NotificationsTotal.WithLabelValues("failed").Inc()
				d.log.Error().Err(err).
					Str("user_id", delivery.UserID.String()).
					Int("worker_id", id).
					Msg("notification delivery failed")
				continue
			}
			metrics.NotificationsTotal.WithLabelValues("sent").Inc()
			metrics.NotifyQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
		}
	}
}
