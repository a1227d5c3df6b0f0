// Package postgres keeps an append-only history of committed zones.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/couchcryptid/flood-zone-service/internal/domain"
	"github.com/lib/pq"
)

const schema = `CREATE TABLE IF NOT EXISTS flood_zone_history (
	id             BIGSERIAL PRIMARY KEY,
	zone_id        TEXT NOT NULL,
	state          TEXT NOT NULL,
	name           TEXT NOT NULL,
	severity       INT NOT NULL,
	color          TEXT NOT NULL,
	provenance     TEXT NOT NULL,
	is_raining     BOOLEAN NOT NULL DEFAULT FALSE,
	sources        TEXT[] NOT NULL DEFAULT '{}',
	notified_depts TEXT[] NOT NULL DEFAULT '{}',
	recorded_at    TIMESTAMPTZ NOT NULL,
	record         JSONB NOT NULL
)`

const indexes = `CREATE INDEX IF NOT EXISTS idx_flood_zone_history_zone
	ON flood_zone_history(zone_id, recorded_at DESC)`

const insertHistory = `INSERT INTO flood_zone_history
	(zone_id, state, name, severity, color, provenance, is_raining, sources, notified_depts, recorded_at, record)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const selectHistory = `SELECT zone_id, state, severity, color, provenance, is_raining, sources, recorded_at
	FROM flood_zone_history
	WHERE zone_id = $1
	ORDER BY recorded_at DESC, id DESC
	LIMIT $2`

// HistoryEntry is one archived commit of a zone.
type HistoryEntry struct {
	ZoneID     string            `json:"zone_id"`
	State      string            `json:"state"`
	Severity   int               `json:"severity"`
	Color      string            `json:"color"`
	Provenance domain.Provenance `json:"provenance"`
	IsRaining  bool              `json:"is_raining"`
	Sources    []string          `json:"sources"`
	RecordedAt time.Time         `json:"recorded_at"`
}

// Archive implements zone.Persister by appending every commit to
// flood_zone_history.
type Archive struct {
	db *sql.DB
}

// Open opens a connection pool for dsn.
func Open(dsn string) (*Archive, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Archive{db: db}, nil
}

// EnsureSchema creates the history table and its index when missing.
func (a *Archive) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{schema, indexes} {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (a *Archive) Save(ctx context.Context, z domain.FloodZone) error {
	args, err := insertArgs(z)
	if err != nil {
		return err
	}
	if _, err := a.db.ExecContext(ctx, insertHistory, args...); err != nil {
		return fmt.Errorf("archive zone %s: %w", z.ID, err)
	}
	return nil
}

// History returns up to limit archived commits of a zone, newest first.
func (a *Archive) History(ctx context.Context, zoneID string, limit int) ([]HistoryEntry, error) {
	rows, err := a.db.QueryContext(ctx, selectHistory, zoneID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var (
			e          HistoryEntry
			provenance string
		)
		if err := rows.Scan(&e.ZoneID, &e.State, &e.Severity, &e.Color, &provenance, &e.IsRaining, pq.Array(&e.Sources), &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.Provenance = domain.Provenance(provenance)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Ping reports whether the database is reachable.
func (a *Archive) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// insertArgs flattens a zone into the insertHistory parameters.
func insertArgs(z domain.FloodZone) ([]any, error) {
	record, err := json.Marshal(z)
	if err != nil {
		return nil, fmt.Errorf("marshal zone: %w", err)
	}
	recordedAt := z.LastUpdated
	if recordedAt.IsZero() {
		recordedAt = domain.Now()
	}
	sources := z.Sources
	if sources == nil {
		sources = []string{}
	}
	depts := z.NotifiedDepts
	if depts == nil {
		depts = []string{}
	}
	return []any{
		z.ID,
		z.State,
		z.Name,
		z.Severity,
		z.Color,
		string(z.Provenance),
		z.IsRaining,
		pq.Array(sources),
		pq.Array(depts),
		recordedAt.UTC(),
		record,
	}, nil
}
