package alert

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/flood-zone-service/internal/domain"
	"github.com/couchcryptid/flood-zone-service/internal/observability"
	"github.com/couchcryptid/flood-zone-service/internal/zone"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 12, 1, 6, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func newTestDispatcher(opts ...Option) (*Dispatcher, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]Option{WithClock(clockwork.NewFakeClockAt(testNow))}, opts...)
	return NewDispatcher(logger, metrics, opts...), metrics
}

func upserted(id, state string, severity int) zone.Event {
	return zone.Event{
		Kind:    zone.Upserted,
		Outcome: zone.Created,
		ZoneID:  id,
		Zone: domain.FloodZone{
			ID:       id,
			Name:     "Zone " + id,
			State:    state,
			Severity: severity,
			Color:    domain.SeverityColor(severity),
		},
	}
}

func TestDispatcher_SuppressesSameState(t *testing.T) {
	rec := &recordingNotifier{}
	d, metrics := newTestDispatcher(WithNotifier(rec))
	ctx := context.Background()

	n, ok := d.Handle(ctx, upserted("a", "Selangor", 6))
	require.True(t, ok)
	_, ok = d.Handle(ctx, upserted("b", "Selangor", 9))
	assert.False(t, ok)

	assert.Len(t, d.Active(), 1)
	assert.Len(t, rec.sent, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AlertsEmitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AlertsSuppressed))

	require.True(t, d.Dismiss(n.ID))
	assert.Empty(t, d.Active())

	third, ok := d.Handle(ctx, upserted("c", "Selangor", 4))
	require.True(t, ok)
	assert.NotEqual(t, n.ID, third.ID)
	assert.Len(t, rec.sent, 2)
}

func TestDispatcher_NotificationFields(t *testing.T) {
	d, _ := newTestDispatcher()

	n, ok := d.Handle(context.Background(), upserted("live_johor", "Johor", 8))
	require.True(t, ok)

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "live_johor", n.ZoneID)
	assert.Equal(t, "Johor", n.State)
	assert.Equal(t, "Zone live_johor", n.ZoneName)
	assert.Equal(t, 8, n.Severity)
	assert.Equal(t, domain.ColorRed, n.Color)
	assert.Equal(t, testNow, n.CreatedAt)
}

func TestDispatcher_StatesAreIndependent(t *testing.T) {
	d, metrics := newTestDispatcher()
	ctx := context.Background()

	for _, state := range []string{"Selangor", "Johor", "Sabah"} {
		_, ok := d.Handle(ctx, upserted("z", state, 1))
		assert.True(t, ok, state)
	}

	active := d.Active()
	require.Len(t, active, 3)
	assert.Equal(t, "Selangor", active[0].State)
	assert.Equal(t, "Sabah", active[2].State)
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.AlertsActive))
}

func TestDispatcher_IgnoresReplaced(t *testing.T) {
	d, metrics := newTestDispatcher()

	_, ok := d.Handle(context.Background(), zone.Event{Kind: zone.Replaced})

	assert.False(t, ok)
	assert.Empty(t, d.Active())
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.AlertsSuppressed))
}

func TestDispatcher_DismissUnknown(t *testing.T) {
	d, _ := newTestDispatcher()
	d.Handle(context.Background(), upserted("a", "Perak", 5))

	assert.False(t, d.Dismiss("missing"))
	assert.Len(t, d.Active(), 1)
}

func TestDispatcher_ClearAll(t *testing.T) {
	d, metrics := newTestDispatcher()
	ctx := context.Background()
	d.Handle(ctx, upserted("a", "Perak", 5))
	d.Handle(ctx, upserted("b", "Kedah", 5))

	assert.Equal(t, 2, d.ClearAll())
	assert.Empty(t, d.Active())
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.AlertsActive))

	_, ok := d.Handle(ctx, upserted("c", "Perak", 2))
	assert.True(t, ok)
}

func TestDispatcher_DeliveryFailureKeepsNotification(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("broker unavailable")}
	second := &recordingNotifier{}
	d, _ := newTestDispatcher(WithNotifier(failing), WithNotifier(second))

	n, ok := d.Handle(context.Background(), upserted("a", "Pahang", 9))

	require.True(t, ok)
	assert.Equal(t, []Notification{n}, d.Active())
	assert.Len(t, second.sent, 1)
}

func TestDispatcher_NeutralStartupReadingAlertsOncePerState(t *testing.T) {
	d, _ := newTestDispatcher()
	ctx := context.Background()

	neutral := func(state string) zone.Event {
		z := domain.StateWeatherZone(domain.StateWeather{State: state, Severity: 1, WeatherCondition: "Stable"})
		return zone.Event{Kind: zone.Upserted, Outcome: zone.Created, ZoneID: z.ID, Zone: z}
	}

	for _, state := range []string{"Johor", "Pahang", "Johor"} {
		d.Handle(ctx, neutral(state))
	}

	active := d.Active()
	require.Len(t, active, 2)
	for _, n := range active {
		assert.Equal(t, 1, n.Severity)
	}
}

func TestDispatcher_ObservesStore(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(testNow))
	t.Cleanup(func() { domain.SetClock(nil) })

	d, _ := newTestDispatcher()
	metrics := observability.NewMetricsForTesting()
	store := zone.NewStore(slog.New(slog.NewTextHandler(io.Discard, nil)), metrics,
		zone.WithSeed(func() []domain.FloodZone { return nil }))
	defer store.Close()
	store.Subscribe(d.Observe(context.Background()))

	store.AddOrMerge(domain.StateWeatherZone(domain.StateWeather{State: "Kelantan", Severity: 7, IsRaining: true}))
	store.AddOrMerge(domain.StateWeatherZone(domain.StateWeather{State: "Kelantan", Severity: 8, IsRaining: true}))
	store.Replace(nil)

	active := d.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "live_kelantan", active[0].ZoneID)
	assert.Equal(t, 7, active[0].Severity)
}

func TestDispatcher_ConcurrentSameState(t *testing.T) {
	d, metrics := newTestDispatcher()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Handle(context.Background(), upserted("a", "Melaka", 5))
		}()
	}
	wg.Wait()

	assert.Len(t, d.Active(), 1)
	assert.Equal(t, 19.0, testutil.ToFloat64(metrics.AlertsSuppressed))
}
