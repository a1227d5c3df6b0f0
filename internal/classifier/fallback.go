package classifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/flood-zone-service/internal/domain"
	"github.com/couchcryptid/flood-zone-service/internal/observability"
)

// Neutral reading used when the classifier cannot answer in time.
const (
	FallbackSeverity  = 1
	FallbackCondition = "Stable"
	FallbackAnalysis  = "Live analysis unavailable. Showing a neutral reading."
)

// Fallback bounds every call with a timeout. It only returns an error when
// the caller's context is done; the neutral reading covers the classifier's
// own failures and timeouts.
type Fallback struct {
	inner   Source
	timeout time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

// WithFallback wraps src so a slow or failing classifier yields the neutral
// reading for a state and no towns.
func WithFallback(src Source, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Fallback {
	return &Fallback{inner: src, timeout: timeout, metrics: metrics, logger: logger}
}

func (f *Fallback) FetchState(ctx context.Context, state string) (domain.StateWeather, error) {
	callCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	w, err := f.inner.FetchState(callCtx, state)
	if err != nil {
		if ctx.Err() != nil {
			return domain.StateWeather{}, ctx.Err()
		}
		f.metrics.ClassifierRequests.WithLabelValues("state", "fallback").Inc()
		f.logger.Warn("state classifier fell back", "state", state, "error", err)
		return NeutralState(state), nil
	}
	return w, nil
}

func (f *Fallback) FetchTowns(ctx context.Context, state string) (domain.TownWeather, error) {
	callCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	w, err := f.inner.FetchTowns(callCtx, state)
	if err != nil {
		if ctx.Err() != nil {
			return domain.TownWeather{}, ctx.Err()
		}
		f.metrics.ClassifierRequests.WithLabelValues("towns", "fallback").Inc()
		f.logger.Warn("town classifier fell back", "state", state, "error", err)
		return domain.TownWeather{State: state}, nil
	}
	return w, nil
}

// NeutralState is the reading reported for a state the classifier could not
// rate.
func NeutralState(state string) domain.StateWeather {
	return domain.StateWeather{
		State:            state,
		WeatherCondition: FallbackCondition,
		Severity:         FallbackSeverity,
		AIAnalysisText:   FallbackAnalysis,
	}
}
