// Package refresh polls the live-weather classifier and folds its readings
// into the zone store.
package refresh

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/flood-zone-service/internal/classifier"
	"github.com/couchcryptid/flood-zone-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

const (
	defaultBatchSize = 4
	defaultPause     = time.Second
)

// Merger resolves live candidates against the zone store.
type Merger interface {
	AddOrMerge(candidate domain.FloodZone) (id string, merged bool)
}

// Refresher rates every state in small concurrent batches.
type Refresher struct {
	source    classifier.Source
	merger    Merger
	logger    *slog.Logger
	clock     clockwork.Clock
	states    []string
	batchSize int
	pause     time.Duration
}

// Option configures a Refresher.
type Option func(*Refresher)

// WithClock sets the clock used for pauses and the refresh ticker.
func WithClock(c clockwork.Clock) Option {
	return func(r *Refresher) { r.clock = c }
}

// WithBatch sets how many states are fetched concurrently and the pause
// between batches.
func WithBatch(size int, pause time.Duration) Option {
	return func(r *Refresher) {
		if size > 0 {
			r.batchSize = size
		}
		r.pause = pause
	}
}

// WithStates limits the refresh to the named states.
func WithStates(states ...string) Option {
	return func(r *Refresher) { r.states = states }
}

// New creates a Refresher covering all states.
func New(src classifier.Source, merger Merger, logger *slog.Logger, opts ...Option) *Refresher {
	states := make([]string, 0, len(domain.States))
	for _, s := range domain.States {
		states = append(states, s.Name)
	}
	r := &Refresher{
		source:    src,
		merger:    merger,
		logger:    logger,
		clock:     clockwork.NewRealClock(),
		states:    states,
		batchSize: defaultBatchSize,
		pause:     defaultPause,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run refreshes all states immediately and then on every interval tick until
// ctx is cancelled.
func (r *Refresher) Run(ctx context.Context, interval time.Duration) error {
	ticker := r.clock.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Info("refresher started", "interval", interval.String(), "states", len(r.states))
	for {
		if _, err := r.RefreshStates(ctx); err != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			r.logger.Info("refresher stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// RefreshStates fetches the statewide reading for every state and merges the
// results in state order. It returns the number of zones merged and the
// context error once ctx is done. A batch in flight when ctx is cancelled
// is discarded.
func (r *Refresher) RefreshStates(ctx context.Context) (int, error) {
	merged := 0
	for start := 0; start < len(r.states); start += r.batchSize {
		if start > 0 && !r.sleep(ctx) {
			return merged, ctx.Err()
		}
		end := min(start+r.batchSize, len(r.states))
		batch := r.states[start:end]

		readings := make([]domain.StateWeather, len(batch))
		errs := make([]error, len(batch))
		var wg sync.WaitGroup
		for i, state := range batch {
			wg.Add(1)
			go func() {
				defer wg.Done()
				readings[i], errs[i] = r.source.FetchState(ctx, state)
			}()
		}
		wg.Wait()
		if err := ctx.Err(); err != nil {
			return merged, err
		}

		for i, w := range readings {
			if errs[i] != nil {
				r.logger.Warn("state refresh failed", "state", batch[i], "error", errs[i])
				continue
			}
			id, _ := r.merger.AddOrMerge(domain.StateWeatherZone(w))
			r.logger.Debug("state refreshed", "state", batch[i], "zone_id", id, "severity", w.Severity)
			merged++
		}
	}
	return merged, nil
}

// RefreshTowns fetches town readings for one state and merges each town.
func (r *Refresher) RefreshTowns(ctx context.Context, state string) ([]string, error) {
	w, err := r.source.FetchTowns(ctx, state)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if w.State == "" {
		w.State = state
	}

	ids := make([]string, 0, len(w.Towns))
	for _, z := range domain.TownWeatherZones(w) {
		id, _ := r.merger.AddOrMerge(z)
		ids = append(ids, id)
	}
	r.logger.Info("towns refreshed", "state", state, "towns", len(ids))
	return ids, nil
}

func (r *Refresher) sleep(ctx context.Context) bool {
	if r.pause <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-r.clock.After(r.pause):
		return true
	}
}
