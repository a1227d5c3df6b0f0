package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/flood-zone-service/internal/adapter/postgres"
	"github.com/couchcryptid/flood-zone-service/internal/alert"
	"github.com/couchcryptid/flood-zone-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ZoneReader exposes the committed zones.
type ZoneReader interface {
	Snapshot() []domain.FloodZone
	Get(id string) (domain.FloodZone, bool)
}

// AlertBoard exposes the pending notifications.
type AlertBoard interface {
	Active() []alert.Notification
	Dismiss(id string) bool
	ClearAll() int
}

// Ingester runs one signal through transform and merge.
type Ingester interface {
	Ingest(ctx context.Context, raw domain.RawEvent) ([]domain.FloodZone, error)
}

// HistoryReader lists archived commits of a zone.
type HistoryReader interface {
	History(ctx context.Context, zoneID string, limit int) ([]postgres.HistoryEntry, error)
}

// TownRefresher refreshes the town readings of one state.
type TownRefresher interface {
	RefreshTowns(ctx context.Context, state string) ([]string, error)
}

// API groups the collaborators behind the routes. History, Refresher and
// Feed are optional and their routes are only mounted when set.
type API struct {
	Zones     ZoneReader
	Alerts    AlertBoard
	Ingester  Ingester
	History   HistoryReader
	Refresher TownRefresher
	Feed      http.Handler
}

// Server exposes the zone API alongside health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	api        API
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the zone API and the /healthz,
// /readyz, and /metrics routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, api API, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		api:    api,
		logger: logger,
	}

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(ready))
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/zones", s.handleListZones)
	r.Get("/zones/{id}", s.handleGetZone)
	if api.History != nil {
		r.Get("/zones/{id}/history", s.handleZoneHistory)
	}
	r.Get("/states", s.handleStates)
	if api.Refresher != nil {
		r.Post("/states/{state}/refresh", s.handleRefreshTowns)
	}
	r.Post("/signals", s.handleIngest)

	r.Get("/alerts", s.handleListAlerts)
	r.Delete("/alerts", s.handleClearAlerts)
	r.Delete("/alerts/{id}", s.handleDismissAlert)

	if api.Feed != nil {
		r.Get("/ws", api.Feed.ServeHTTP)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
