package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/flood-zone-service/internal/adapter/http"
	"github.com/couchcryptid/flood-zone-service/internal/adapter/postgres"
	"github.com/couchcryptid/flood-zone-service/internal/alert"
	"github.com/couchcryptid/flood-zone-service/internal/domain"
	"github.com/couchcryptid/flood-zone-service/internal/observability"
	"github.com/couchcryptid/flood-zone-service/internal/pipeline"
	"github.com/couchcryptid/flood-zone-service/internal/zone"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.December, 1, 6, 0, 0, 0, time.UTC)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type stubHistory struct {
	entries []postgres.HistoryEntry
	err     error
	limit   int
}

func (h *stubHistory) History(_ context.Context, _ string, limit int) ([]postgres.HistoryEntry, error) {
	h.limit = limit
	return h.entries, h.err
}

type stubRefresher struct {
	state string
	err   error
}

func (r *stubRefresher) RefreshTowns(_ context.Context, state string) ([]string, error) {
	r.state = state
	return []string{"kb"}, r.err
}

type fixture struct {
	srv        *httpadapter.Server
	store      *zone.Store
	dispatcher *alert.Dispatcher
	history    *stubHistory
	refresher  *stubRefresher
}

func newFixture(t *testing.T, readyErr error) *fixture {
	t.Helper()

	fc := clockwork.NewFakeClockAt(testNow)
	domain.SetClock(fc)
	t.Cleanup(func() { domain.SetClock(nil) })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()

	store := zone.NewStore(logger, metrics, zone.WithClock(fc))
	t.Cleanup(store.Close)
	dispatcher := alert.NewDispatcher(logger, metrics, alert.WithClock(fc))
	store.Subscribe(dispatcher.Observe(context.Background()))

	p := pipeline.New(nil, pipeline.NewTransformer(nil, logger), store, nil, logger, metrics, 10)

	f := &fixture{
		store:      store,
		dispatcher: dispatcher,
		history:    &stubHistory{},
		refresher:  &stubRefresher{},
	}
	f.srv = httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, httpadapter.API{
		Zones:     store,
		Alerts:    dispatcher,
		Ingester:  p,
		History:   f.history,
		Refresher: f.refresher,
	}, logger)
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func stateSignal(state string, severity int) string {
	return fmt.Sprintf(`{"kind":"state_weather","state_weather":{"state":%q,"weather_condition":"Thunderstorm","is_raining":true,"severity":%d}}`, state, severity)
}

func TestHealthzReturns200(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/healthz", "").Code)
}

func TestReadyz(t *testing.T) {
	assert.Equal(t, http.StatusOK, newFixture(t, nil).do(http.MethodGet, "/readyz", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable,
		newFixture(t, errors.New("not ready yet")).do(http.MethodGet, "/readyz", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := newFixture(t, nil).do(http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestListZones_SeededInOrder(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/zones", "")
	require.Equal(t, http.StatusOK, rec.Code)

	zones := decode[[]domain.FloodZone](t, rec)
	require.Len(t, zones, len(domain.SeedZones()))
	assert.Equal(t, "kl", zones[0].ID)
}

func TestListZones_HidesExpiredUnlessAll(t *testing.T) {
	f := newFixture(t, nil)
	f.store.Upsert(domain.FloodZone{
		ID: "user_reported_old", Name: "Bangi", State: "Selangor", Severity: 5,
		EstimatedEndTime: testNow.Add(-time.Hour).Format(time.RFC3339),
		Provenance:       domain.ProvenanceUser,
	})

	visible := decode[[]domain.FloodZone](t, f.do(http.MethodGet, "/zones", ""))
	all := decode[[]domain.FloodZone](t, f.do(http.MethodGet, "/zones?all=true", ""))

	assert.Len(t, all, len(visible)+1)
	assert.Equal(t, "user_reported_old", all[len(all)-1].ID)
}

func TestGetZone(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/zones/kb", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Kota Bharu", decode[domain.FloodZone](t, rec).Name)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/zones/atlantis", "").Code)
}

func TestZoneHistory(t *testing.T) {
	f := newFixture(t, nil)
	f.history.entries = []postgres.HistoryEntry{{ZoneID: "kb", Severity: 8}, {ZoneID: "kb", Severity: 3}}

	rec := f.do(http.MethodGet, "/zones/kb/history?limit=500", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]postgres.HistoryEntry](t, rec), 2)
	assert.Equal(t, 200, f.history.limit)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/zones/kb/history?limit=-1", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/zones/nope/history", "").Code)

	f.history.err = errors.New("connection refused")
	assert.Equal(t, http.StatusInternalServerError, f.do(http.MethodGet, "/zones/kb/history", "").Code)
}

func TestIngest_CreatesZoneAndAlert(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/signals", stateSignal("Kelantan", 8))
	require.Equal(t, http.StatusAccepted, rec.Code)

	zones := decode[[]domain.FloodZone](t, rec)
	require.Len(t, zones, 1)
	assert.Equal(t, "live_kelantan", zones[0].ID)
	assert.Equal(t, domain.ColorRed, zones[0].Color)

	alerts := decode[[]alert.Notification](t, f.do(http.MethodGet, "/alerts", ""))
	require.Len(t, alerts, 1)
	assert.Equal(t, "Kelantan", alerts[0].State)
}

func TestIngest_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `{"kind":`, http.StatusBadRequest},
		{"unknown kind", `{"kind":"satellite_pass"}`, http.StatusBadRequest},
		{"rejected photo", `{"kind":"vision_report","vision_report":{"assessment":{"is_relevant":false,"rejection_reason":"selfie"}}}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			rec := f.do(http.MethodPost, "/signals", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
		})
	}
}

func TestStates_Summary(t *testing.T) {
	f := newFixture(t, nil)
	require.Equal(t, http.StatusAccepted, f.do(http.MethodPost, "/signals", stateSignal("Johor", 6)).Code)

	summaries := decode[[]domain.StateSummary](t, f.do(http.MethodGet, "/states", ""))
	var johor domain.StateSummary
	for _, s := range summaries {
		if s.State == "Johor" {
			johor = s
		}
	}
	assert.Equal(t, 6, johor.LiveSeverity)
	assert.True(t, johor.IsRaining)
}

func TestRefreshTowns(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/states/kelantan/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Kelantan", f.refresher.state)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/states/narnia/refresh", "").Code)

	f.refresher.err = errors.New("timeout")
	assert.Equal(t, http.StatusBadGateway, f.do(http.MethodPost, "/states/Johor/refresh", "").Code)
}

func TestAlerts_DismissAndClear(t *testing.T) {
	f := newFixture(t, nil)
	f.do(http.MethodPost, "/signals", stateSignal("Kelantan", 8))
	f.do(http.MethodPost, "/signals", stateSignal("Pahang", 7))

	alerts := decode[[]alert.Notification](t, f.do(http.MethodGet, "/alerts", ""))
	require.Len(t, alerts, 2)

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/alerts/"+alerts[0].ID, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/alerts/"+alerts[0].ID, "").Code)

	rec := f.do(http.MethodDelete, "/alerts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[map[string]int](t, rec)["cleared"])
	assert.Empty(t, f.dispatcher.Active())
}

func TestOptionalRoutesNotMounted(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := zone.NewStore(logger, observability.NewMetricsForTesting())
	t.Cleanup(store.Close)

	srv := httpadapter.NewServer(":0", &mockReadiness{}, httpadapter.API{
		Zones:  store,
		Alerts: alert.NewDispatcher(logger, observability.NewMetricsForTesting()),
	}, logger)

	for _, target := range []string{"/zones/kb/history", "/ws"} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
	}
}
