// Package classifier calls the live-weather classifier that rates flood risk
// for a state and for the towns inside it.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/flood-zone-service/internal/domain"
	"github.com/couchcryptid/flood-zone-service/internal/observability"
)

// Source produces live-weather readings.
type Source interface {
	FetchState(ctx context.Context, state string) (domain.StateWeather, error)
	FetchTowns(ctx context.Context, state string) (domain.TownWeather, error)
}

// Client implements Source against the classifier's JSON endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a classifier client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

type stateRequest struct {
	State string `json:"state"`
}

// FetchState asks the classifier for the statewide reading.
func (c *Client) FetchState(ctx context.Context, state string) (domain.StateWeather, error) {
	var w domain.StateWeather
	if err := c.post(ctx, "/v1/state", "state", stateRequest{State: state}, &w); err != nil {
		return domain.StateWeather{}, err
	}
	if w.State == "" {
		w.State = state
	}
	return w, nil
}

// FetchTowns asks the classifier for per-town readings inside a state.
func (c *Client) FetchTowns(ctx context.Context, state string) (domain.TownWeather, error) {
	var w domain.TownWeather
	if err := c.post(ctx, "/v1/towns", "towns", stateRequest{State: state}, &w); err != nil {
		return domain.TownWeather{}, err
	}
	if w.State == "" {
		w.State = state
	}
	return w, nil
}

func (c *Client) post(ctx context.Context, path, method string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ClassifierRequests.WithLabelValues(method, "error").Inc()
		return fmt.Errorf("%s classifier request: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.ClassifierRequests.WithLabelValues(method, "error").Inc()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("classifier API error: status %d: %s", resp.StatusCode, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.ClassifierRequests.WithLabelValues(method, "error").Inc()
		return fmt.Errorf("decode response: %w", err)
	}

	c.metrics.ClassifierRequests.WithLabelValues(method, "success").Inc()
	return nil
}
