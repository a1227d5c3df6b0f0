package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/flood-zone-service/internal/domain"
)

// SignalTransformer implements Transformer using domain transform functions
// with optional geocoding of user reports.
type SignalTransformer struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewTransformer creates a SignalTransformer. Pass a nil geocoder to disable
// geocoding enrichment.
func NewTransformer(geocoder domain.Geocoder, logger *slog.Logger) *SignalTransformer {
	return &SignalTransformer{
		geocoder: geocoder,
		logger:   logger,
	}
}

func (t *SignalTransformer) Transform(ctx context.Context, raw domain.RawEvent) ([]domain.FloodZone, error) {
	signal, err := domain.ParseSignal(raw)
	if err != nil {
		return nil, err
	}

	if signal.Kind == domain.KindVisionReport {
		report := domain.EnrichReport(ctx, *signal.Report, t.geocoder, t.logger)
		signal.Report = &report
	}

	return domain.CandidateZones(signal)
}
