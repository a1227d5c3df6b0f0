// Package zone holds the process-wide flood zone collection.
package zone

import (
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/flood-zone-service/internal/domain"
	"github.com/couchcryptid/flood-zone-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

const defaultPersistTimeout = 5 * time.Second

// Store is the in-memory authority for flood zones. It seeds itself lazily on
// first use, keeps insertion order, persists every commit asynchronously and
// notifies observers synchronously after each commit.
//
// All mutations go through Upsert, Update, AddOrMerge or Replace. Each one
// resolves and commits under a single lock, so concurrent merges never see a
// half-applied state.
type Store struct {
	mu     sync.RWMutex
	seeded sync.Once
	seed   func() []domain.FloodZone
	zones  map[string]domain.FloodZone
	order  []string
	closed bool

	obsMu     sync.Mutex
	observers []observer
	nextObsID int

	persistTimeout time.Duration
	backendSpecs   []backendSpec
	backends       []*backend
	pending        sync.WaitGroup

	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

type backendSpec struct {
	name      string
	persister Persister
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPersister adds a persistence backend. Each backend receives every
// commit in order.
func WithPersister(name string, p Persister) StoreOption {
	return func(s *Store) { s.backendSpecs = append(s.backendSpecs, backendSpec{name: name, persister: p}) }
}

// WithPersistTimeout bounds each backend write.
func WithPersistTimeout(d time.Duration) StoreOption {
	return func(s *Store) { s.persistTimeout = d }
}

// WithSeed replaces the seed list used on first access.
func WithSeed(seed func() []domain.FloodZone) StoreOption {
	return func(s *Store) { s.seed = seed }
}

// WithClock sets the clock used to stamp merges.
func WithClock(c clockwork.Clock) StoreOption {
	return func(s *Store) { s.clock = c }
}

// NewStore creates an empty store. It is seeded from domain.SeedZones on
// first access unless WithSeed says otherwise.
func NewStore(logger *slog.Logger, metrics *observability.Metrics, opts ...StoreOption) *Store {
	s := &Store{
		seed:           domain.SeedZones,
		zones:          make(map[string]domain.FloodZone),
		persistTimeout: defaultPersistTimeout,
		clock:          clockwork.NewRealClock(),
		logger:         logger,
		metrics:        metrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, spec := range s.backendSpecs {
		s.backends = append(s.backends, newBackend(spec.name, spec.persister, s.persistTimeout, &s.pending, logger, metrics))
	}
	return s
}

func (s *Store) ensureSeeded() {
	s.seeded.Do(func() {
		if s.seed == nil {
			return
		}
		zones := s.seed()
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, z := range zones {
			z.Normalize()
			if _, ok := s.zones[z.ID]; !ok {
				s.order = append(s.order, z.ID)
			}
			s.zones[z.ID] = z
		}
		s.metrics.ZonesTracked.Set(float64(len(s.zones)))
		s.logger.Debug("zone store seeded", "zones", len(zones))
	})
}

// All returns a copy of every zone keyed by id.
func (s *Store) All() map[string]domain.FloodZone {
	s.ensureSeeded()
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.FloodZone, len(s.zones))
	for id, z := range s.zones {
		out[id] = z.Clone()
	}
	return out
}

// Snapshot returns a copy of every zone in insertion order.
func (s *Store) Snapshot() []domain.FloodZone {
	s.ensureSeeded()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() []domain.FloodZone {
	out := make([]domain.FloodZone, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.zones[id].Clone())
	}
	return out
}

// Get returns the zone with the given id.
func (s *Store) Get(id string) (domain.FloodZone, bool) {
	s.ensureSeeded()
	s.mu.RLock()
	defer s.mu.RUnlock()

	z, ok := s.zones[id]
	if !ok {
		return domain.FloodZone{}, false
	}
	return z.Clone(), true
}

// Upsert inserts zone or replaces the record with the same id in place.
func (s *Store) Upsert(zone domain.FloodZone) {
	s.ensureSeeded()
	zone = zone.Clone()
	zone.Normalize()

	s.mu.Lock()
	outcome := Updated
	if _, ok := s.zones[zone.ID]; !ok {
		outcome = Created
	}
	s.commitLocked(zone)
	s.mu.Unlock()

	s.notify(Event{Kind: Upserted, Outcome: outcome, ZoneID: zone.ID, Zone: zone.Clone()})
}

// Update applies fn to the zone with the given id and commits the result.
// It does nothing and returns false when the id is unknown. The id cannot be
// changed by fn.
func (s *Store) Update(id string, fn func(*domain.FloodZone)) bool {
	s.ensureSeeded()

	s.mu.Lock()
	existing, ok := s.zones[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	z := existing.Clone()
	fn(&z)
	z.ID = id
	z.Normalize()
	s.commitLocked(z)
	s.mu.Unlock()

	s.notify(Event{Kind: Upserted, Outcome: Updated, ZoneID: id, Zone: z.Clone()})
	return true
}

// AddOrMerge resolves candidate against the store. A candidate matching an
// existing zone by id, or by state and normalised name, is folded into it
// with domain.MergeZone and keeps the existing id. Otherwise it is inserted
// as a new zone. When several zones match, the first inserted wins.
func (s *Store) AddOrMerge(candidate domain.FloodZone) (id string, merged bool) {
	s.ensureSeeded()

	s.mu.Lock()
	var result domain.FloodZone
	if idx := domain.FindMatch(s.snapshotLocked(), candidate); idx >= 0 {
		existing := s.zones[s.order[idx]]
		result = domain.MergeZone(existing, candidate, s.clock.Now())
		merged = true
	} else {
		result = candidate.Clone()
		result.Normalize()
	}
	s.commitLocked(result)
	s.mu.Unlock()

	outcome := Created
	if merged {
		outcome = Merged
	}
	s.logger.Debug("zone committed",
		"zone_id", result.ID,
		"state", result.State,
		"severity", result.Severity,
		"outcome", string(outcome),
	)
	s.notify(Event{Kind: Upserted, Outcome: outcome, ZoneID: result.ID, Zone: result.Clone()})
	return result.ID, merged
}

// Replace swaps the collection for the seed list overlaid with zones. It is
// used when the persistence layer reports a newer state and is not written
// back. Seed zones are never persisted, so they are laid down first to keep
// every known locality present. A replacement record wins over the seed with
// the same id and keeps the seed's position; new ids follow in the given
// order, and a later duplicate replaces the earlier record.
func (s *Store) Replace(zones []domain.FloodZone) {
	// A replacement counts as initialisation; the seed list must not be
	// applied on top of it afterwards.
	s.seeded.Do(func() {})

	var base []domain.FloodZone
	if s.seed != nil {
		base = s.seed()
	}

	next := make(map[string]domain.FloodZone, len(base)+len(zones))
	order := make([]string, 0, len(base)+len(zones))
	put := func(z domain.FloodZone) {
		z = z.Clone()
		z.Normalize()
		if _, ok := next[z.ID]; !ok {
			order = append(order, z.ID)
		}
		next[z.ID] = z
	}
	for _, z := range base {
		put(z)
	}
	for _, z := range zones {
		put(z)
	}

	s.mu.Lock()
	s.zones = next
	s.order = order
	s.metrics.ZonesTracked.Set(float64(len(next)))
	s.mu.Unlock()

	s.metrics.StoreReplacements.Inc()
	s.logger.Info("zone store replaced", "zones", len(order))
	s.notify(Event{Kind: Replaced})
}

// Subscribe registers fn to run after every commit. Observers run
// synchronously on the committing goroutine, in subscription order, after
// the store lock is released.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()

	s.nextObsID++
	id := s.nextObsID
	s.observers = append(s.observers, observer{id: id, fn: fn})

	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// Wait blocks until every queued persistence write has finished.
func (s *Store) Wait() {
	s.pending.Wait()
}

// Close drains pending writes and stops the persistence workers. Commits
// after Close are kept in memory only.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	for _, b := range s.backends {
		b.close()
	}
}

// commitLocked stores z and queues it for persistence. Queueing under the
// lock keeps each backend's writes in commit order.
func (s *Store) commitLocked(z domain.FloodZone) {
	if _, ok := s.zones[z.ID]; !ok {
		s.order = append(s.order, z.ID)
	}
	s.zones[z.ID] = z
	s.metrics.ZonesTracked.Set(float64(len(s.zones)))

	if s.closed {
		return
	}
	for _, b := range s.backends {
		b.enqueue(z.Clone())
	}
}

func (s *Store) notify(e Event) {
	if e.Kind == Upserted {
		s.metrics.ZoneUpserts.WithLabelValues(string(e.Outcome)).Inc()
	}

	s.obsMu.Lock()
	observers := make([]observer, len(s.observers))
	copy(observers, s.observers)
	s.obsMu.Unlock()

	for _, o := range observers {
		o.fn(e)
	}
}
