// Package alert turns zone commits into one-shot user notifications, at most
// one pending notification per state.
package alert

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/flood-zone-service/internal/domain"
	"github.com/couchcryptid/flood-zone-service/internal/observability"
	"github.com/couchcryptid/flood-zone-service/internal/zone"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Notification is a pending user-facing alert for one state.
type Notification struct {
	ID        string    `json:"id"`
	ZoneID    string    `json:"zone_id"`
	State     string    `json:"state"`
	ZoneName  string    `json:"zone_name"`
	Severity  int       `json:"severity"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier delivers an emitted notification somewhere outside the process.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// Dispatcher keeps the session's suppression set and pending notifications.
// It is safe for concurrent use.
type Dispatcher struct {
	mu        sync.Mutex
	byState   map[string]string // state -> pending notification id
	active    []Notification
	notifiers []Notifier
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithNotifier adds a delivery target. Targets are called in order.
func WithNotifier(n Notifier) Option {
	return func(d *Dispatcher) { d.notifiers = append(d.notifiers, n) }
}

// WithClock sets the clock used to stamp notifications.
func WithClock(c clockwork.Clock) Option {
	return func(d *Dispatcher) { d.clock = c }
}

// NewDispatcher creates a Dispatcher with an empty suppression set.
func NewDispatcher(logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		byState: make(map[string]string),
		clock:   clockwork.NewRealClock(),
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle evaluates one store event. A state that already has a pending
// notification is suppressed; otherwise a notification is recorded and
// delivered. Replaced events carry no zone and are ignored. It returns the
// emitted notification, if any.
func (d *Dispatcher) Handle(ctx context.Context, e zone.Event) (Notification, bool) {
	if e.Kind != zone.Upserted {
		return Notification{}, false
	}

	z := e.Zone
	d.mu.Lock()
	if _, ok := d.byState[z.State]; ok {
		d.mu.Unlock()
		d.metrics.AlertsSuppressed.Inc()
		d.logger.Debug("alert suppressed", "state", z.State, "zone_id", e.ZoneID)
		return Notification{}, false
	}

	n := Notification{
		ID:        uuid.NewString(),
		ZoneID:    e.ZoneID,
		State:     z.State,
		ZoneName:  z.Name,
		Severity:  z.Severity,
		Color:     domain.SeverityColor(z.Severity),
		CreatedAt: d.clock.Now().UTC(),
	}
	d.byState[z.State] = n.ID
	d.active = append(d.active, n)
	d.metrics.AlertsActive.Set(float64(len(d.active)))
	d.mu.Unlock()

	d.metrics.AlertsEmitted.Inc()
	d.logger.Info("alert emitted",
		"alert_id", n.ID,
		"state", n.State,
		"zone_id", n.ZoneID,
		"severity", n.Severity,
	)

	for _, target := range d.notifiers {
		if err := target.Notify(ctx, n); err != nil {
			d.logger.Warn("alert delivery failed", "alert_id", n.ID, "error", err)
		}
	}
	return n, true
}

// Observe adapts Handle to a zone.Store observer.
func (d *Dispatcher) Observe(ctx context.Context) func(zone.Event) {
	return func(e zone.Event) { d.Handle(ctx, e) }
}

// Active returns the pending notifications, oldest first.
func (d *Dispatcher) Active() []Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Notification(nil), d.active...)
}

// Dismiss removes the notification with the given id and lets its state
// notify again. It reports whether the id was pending.
func (d *Dispatcher) Dismiss(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, n := range d.active {
		if n.ID != id {
			continue
		}
		d.active = append(d.active[:i:i], d.active[i+1:]...)
		if d.byState[n.State] == id {
			delete(d.byState, n.State)
		}
		d.metrics.AlertsActive.Set(float64(len(d.active)))
		return true
	}
	return false
}

// ClearAll dismisses every pending notification.
func (d *Dispatcher) ClearAll() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(d.active)
	d.active = nil
	d.byState = make(map[string]string)
	d.metrics.AlertsActive.Set(0)
	return n
}
