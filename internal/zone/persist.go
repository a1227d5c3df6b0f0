package zone

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/flood-zone-service/internal/domain"
	"github.com/couchcryptid/flood-zone-service/internal/observability"
)

// Persister stores committed zones outside the process.
type Persister interface {
	Save(ctx context.Context, zone domain.FloodZone) error
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func(ctx context.Context, zone domain.FloodZone) error

func (f PersisterFunc) Save(ctx context.Context, zone domain.FloodZone) error {
	return f(ctx, zone)
}

const backendQueueSize = 256

// backend writes one persister's zones in commit order on its own goroutine.
// Failures are logged and counted; the in-memory store is never rolled back.
type backend struct {
	name      string
	persister Persister
	timeout   time.Duration
	queue     chan domain.FloodZone
	pending   *sync.WaitGroup
	done      chan struct{}
	logger    *slog.Logger
	metrics   *observability.Metrics
}

func newBackend(name string, p Persister, timeout time.Duration, pending *sync.WaitGroup, logger *slog.Logger, metrics *observability.Metrics) *backend {
	b := &backend{
		name:      name,
		persister: p,
		timeout:   timeout,
		queue:     make(chan domain.FloodZone, backendQueueSize),
		pending:   pending,
		done:      make(chan struct{}),
		logger:    logger,
		metrics:   metrics,
	}
	go b.run()
	return b
}

// enqueue never blocks. When the queue is full the write is dropped and
// counted as a failure; the next commit of the same zone carries its state.
func (b *backend) enqueue(z domain.FloodZone) {
	b.pending.Add(1)
	select {
	case b.queue <- z:
	default:
		b.pending.Done()
		b.logger.Warn("zone persistence queue full, dropping write",
			"backend", b.name,
			"zone_id", z.ID,
		)
		b.metrics.PersistFailures.WithLabelValues(b.name).Inc()
	}
}

func (b *backend) run() {
	defer close(b.done)
	for z := range b.queue {
		b.save(z)
		b.pending.Done()
	}
}

func (b *backend) save(z domain.FloodZone) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	if err := b.persister.Save(ctx, z); err != nil {
		b.logger.Error("zone persistence failed",
			"backend", b.name,
			"zone_id", z.ID,
			"error", err,
		)
		b.metrics.PersistFailures.WithLabelValues(b.name).Inc()
		return
	}
	b.metrics.PersistWrites.WithLabelValues(b.name).Inc()
}

func (b *backend) close() {
	close(b.queue)
	<-b.done
}
