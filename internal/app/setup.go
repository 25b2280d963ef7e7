// Package app wires the storefront host process.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/internal/engine"
	"github.com/abgdnv/storefront/internal/hooks"
	"github.com/abgdnv/storefront/internal/transport/rest"
	"github.com/abgdnv/storefront/pkg/kafka"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/nats"
	"github.com/abgdnv/storefront/pkg/server"
	"github.com/go-chi/chi/v5"
)

type Dependencies struct {
	Store  engine.StoreService
	Logger *slog.Logger
	// Metrics serves the Prometheus registry at MetricsPath; nil disables the route.
	Metrics     http.Handler
	MetricsPath string
}

// SetupHttpHandler builds the router with middleware and all routes.
// Used by tests to exercise the full HTTP stack.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	rest.NewHandler(deps.Store, deps.Logger).RegisterRoutes(mux)
	if deps.Metrics != nil {
		mux.Handle(deps.MetricsPath, deps.Metrics)
	}
}

// SetupHttpServer creates and configures the public HTTP server.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	return server.NewHTTPServer(cfg.HTTPServer, "storefront-http", mux)
}

// NewPublisher connects to the analytics broker selected in cfg.
// The returned close function releases the broker connection.
func NewPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (messaging.Publisher, func(), error) {
	switch cfg.Analytics.Broker {
	case config.BrokerNats:
		nc, err := nats.NewClient(cfg.Nats.Url, cfg.Nats.Timeout)
		if err != nil {
			return nil, nil, err
		}
		js, err := nats.NewJetStreamContext(nc)
		if err != nil {
			return nil, nil, err
		}
		streamCtx, cancel := context.WithTimeout(ctx, cfg.Nats.Timeout)
		defer cancel()
		if err := nats.EnsureStream(streamCtx, js, cfg.Analytics.Stream, cfg.Nats.DuplicateWindow, messaging.PurchaseTrackedSubject); err != nil {
			nc.Close()
			return nil, nil, err
		}
		logger.Info("Publishing analytics events to NATS", "url", cfg.Nats.Url, "stream", cfg.Analytics.Stream)
		return nats.NewNatsPublisher(js), func() {
			if err := nc.Drain(); err != nil {
				logger.Error("Failed to drain NATS connection", "error", err)
			}
		}, nil
	case config.BrokerKafka:
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Publishing analytics events to Kafka", "brokers", cfg.Kafka.Brokers)
		return producer, func() {
			if err := producer.Close(); err != nil {
				logger.Error("Failed to close Kafka producer", "error", err)
			}
		}, nil
	case config.BrokerLog:
		return messaging.NewLogPublisher(logger), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown analytics broker %q", cfg.Analytics.Broker)
	}
}

// NewSink builds the production order placement side effects.
func NewSink(cfg *config.Config, publisher messaging.Publisher, logger *slog.Logger) *hooks.Sink {
	return hooks.NewSink(
		hooks.NewWebhookSyncer(cfg.Webhook.CircuitBreaker, cfg.Webhook.Timeout, logger),
		hooks.NewPurchaseTracker(publisher, logger),
	)
}
