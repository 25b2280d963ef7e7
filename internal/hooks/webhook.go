// Package hooks provides the production side effects of order placement.
package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/abgdnv/storefront/internal/domain"
	"github.com/abgdnv/storefront/pkg/config"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// StatusError is returned when the webhook answers with a non-2xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook responded with status %d", e.StatusCode)
}

// WebhookSyncer POSTs placed orders as JSON to the store's integration URL.
// Each order is attempted once. A circuit breaker stops calling a failing endpoint.
type WebhookSyncer struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *slog.Logger
}

// NewWebhookSyncer creates a syncer whose requests are bounded by timeout.
func NewWebhookSyncer(cfg config.CircuitBreakerConfig, timeout time.Duration, logger *slog.Logger) *WebhookSyncer {
	return &WebhookSyncer{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: NewCircuitBreaker("order-sync-webhook", cfg),
		logger:  logger.With("component", "webhook-syncer"),
	}
}

// NewCircuitBreaker trips on too many consecutive failures or on a high error rate.
// Transport errors and 5xx responses count as failures; 4xx responses do not.
func NewCircuitBreaker(name string, cfg config.CircuitBreakerConfig) *gobreaker.CircuitBreaker[struct{}] {
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > cfg.ConsecutiveFailures ||
				(counts.TotalSuccesses+counts.TotalFailures > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(counts.TotalSuccesses+counts.TotalFailures)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return statusErr.StatusCode < http.StatusInternalServerError
			}
			return false
		},
	}
	return gobreaker.NewCircuitBreaker[struct{}](st)
}

// SyncOrder sends the full order snapshot to url.
func (w *WebhookSyncer) SyncOrder(ctx context.Context, url string, order domain.Order) error {
	body, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encoding order %s: %w", order.ID, err)
	}
	_, err = w.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, w.post(ctx, url, body)
	})
	if err != nil {
		return fmt.Errorf("syncing order %s: %w", order.ID, err)
	}
	w.logger.InfoContext(ctx, "Order synced", "order_id", order.ID)
	return nil
}

func (w *WebhookSyncer) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}
