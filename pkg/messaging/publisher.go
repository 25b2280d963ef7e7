// Package messaging defines the broker-agnostic event publishing contract.
package messaging

import (
	"context"
	"log/slog"
)

// PurchaseTrackedSubject carries analytics purchase events for the configured tracking pixels.
const PurchaseTrackedSubject = "storefront.analytics.purchase"

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

// Keyed is implemented by events that carry a partitioning key.
type Keyed interface {
	Key() string
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// LogPublisher writes events to a logger instead of a broker.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("component", "log-publisher")}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	data, err := event.Payload()
	if err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "Event published", slog.String("subject", event.Subject()), slog.String("payload", string(data)))
	return nil
}
