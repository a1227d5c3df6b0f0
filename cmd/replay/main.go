// Command replay feeds a JSON array of flood signals through the same
// transform and merge path as the service, under a fixed clock, and prints
// the resulting per-state summary. It can also write the committed zones as
// a fixture.
//
// Usage:
//
//	go run ./cmd/replay \
//	  -in data/mock/flood_signals_251201.json \
//	  -at 2025-12-01T06:00:00Z \
//	  -zones-out /tmp/zones.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/flood-zone-service/internal/domain"
	"github.com/couchcryptid/flood-zone-service/internal/observability"
	"github.com/couchcryptid/flood-zone-service/internal/pipeline"
	"github.com/couchcryptid/flood-zone-service/internal/zone"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	in := fs.String("in", "", "JSON file holding an array of signals")
	at := fs.String("at", "2025-12-01T06:00:00Z", "RFC3339 time the replay runs at")
	zonesOut := fs.String("zones-out", "", "optional output path for the committed zones")
	verbose := fs.Bool("v", false, "log every merge")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		fs.Usage()
		return fmt.Errorf("missing required flag: -in")
	}

	now, err := time.Parse(time.RFC3339, *at)
	if err != nil {
		return fmt.Errorf("parse -at: %w", err)
	}
	clock := clockwork.NewFakeClockAt(now)
	domain.SetClock(clock)
	defer domain.SetClock(nil)

	signals, err := readSignals(*in)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	metrics := observability.NewMetricsForTesting()

	store := zone.NewStore(logger, metrics, zone.WithClock(clock))
	defer store.Close()
	p := pipeline.New(nil, pipeline.NewTransformer(nil, logger), store, nil, logger, metrics, len(signals))

	var rejected int
	for i, s := range signals {
		raw := domain.RawEvent{Value: s, Topic: *in, Offset: int64(i), Timestamp: now}
		if _, err := p.Ingest(context.Background(), raw); err != nil {
			rejected++
			logger.Warn("signal rejected", "index", i, "error", err)
		}
	}

	zones := store.Snapshot()
	visible := domain.VisibleSnapshot(zones, now)
	fmt.Fprintf(stdout, "signals: %d  rejected: %d  zones: %d  visible: %d\n\n",
		len(signals), rejected, len(zones), len(visible))
	printSummaries(stdout, domain.SummarizeStates(zones))

	if *zonesOut != "" {
		if err := writeJSON(*zonesOut, visible); err != nil {
			return fmt.Errorf("writing zones: %w", err)
		}
		fmt.Fprintf(stdout, "\nwrote %d zones to %s\n", len(visible), *zonesOut)
	}
	return nil
}

func readSignals(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read signals: %w", err)
	}
	var signals []json.RawMessage
	if err := json.Unmarshal(data, &signals); err != nil {
		return nil, fmt.Errorf("decode signals: %w", err)
	}
	return signals, nil
}

func printSummaries(w io.Writer, rows []domain.StateSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATE\tSEVERITY\tCOLOR\tLIVE\tCOMMUNITY\tREPORTS\tMAX\tRAIN")
	for _, s := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%d\t%d\t%d\t%t\n",
			s.State, s.Severity, s.Color, s.LiveSeverity, s.CommunitySeverity, s.ReportCount, s.MaxSeverity, s.IsRaining)
	}
	tw.Flush()
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
