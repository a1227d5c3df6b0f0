package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/couchcryptid/flood-zone-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

const (
	maxSignalBytes      = 1 << 20
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// handleListZones returns zones in insertion order. Expired zones are hidden
// unless ?all=true.
func (s *Server) handleListZones(w http.ResponseWriter, r *http.Request) {
	zones := s.api.Zones.Snapshot()
	if r.URL.Query().Get("all") != "true" {
		zones = domain.VisibleSnapshot(zones, domain.Now())
	}
	writeJSON(w, http.StatusOK, zones)
}

func (s *Server) handleGetZone(w http.ResponseWriter, r *http.Request) {
	z, ok := s.api.Zones.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "zone not found")
		return
	}
	writeJSON(w, http.StatusOK, z)
}

func (s *Server) handleZoneHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.api.Zones.Get(id); !ok {
		writeError(w, http.StatusNotFound, "zone not found")
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := s.api.History.History(r.Context(), id, limit)
	if err != nil {
		s.logger.Error("zone history failed", "zone_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleStates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.SummarizeStates(s.api.Zones.Snapshot()))
}

func (s *Server) handleRefreshTowns(w http.ResponseWriter, r *http.Request) {
	info, ok := domain.LookupState(chi.URLParam(r, "state"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown state")
		return
	}

	ids, err := s.api.Refresher.RefreshTowns(r.Context(), info.Name)
	if err != nil {
		s.logger.Warn("town refresh failed", "state", info.Name, "error", err)
		writeError(w, http.StatusBadGateway, "classifier unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": info.Name, "zone_ids": ids})
}

// handleIngest accepts one signal in the same JSON shape as the source topic.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSignalBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "signal too large")
		return
	}

	zones, err := s.api.Ingester.Ingest(r.Context(), domain.RawEvent{
		Value:     body,
		Topic:     "http",
		Timestamp: domain.Now(),
	})
	switch {
	case errors.Is(err, domain.ErrIrrelevantReport):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, zones)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.api.Alerts.Active())
}

func (s *Server) handleDismissAlert(w http.ResponseWriter, r *http.Request) {
	if !s.api.Alerts.Dismiss(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "alert not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearAlerts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"cleared": s.api.Alerts.ClearAll()})
}
