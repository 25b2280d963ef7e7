package hooks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/abgdnv/storefront/internal/domain"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/messaging/events"
)

// PurchaseTracker publishes a PurchaseTrackedEvent for every order when at least one pixel is configured.
type PurchaseTracker struct {
	publisher messaging.Publisher
	logger    *slog.Logger
}

func NewPurchaseTracker(publisher messaging.Publisher, logger *slog.Logger) *PurchaseTracker {
	return &PurchaseTracker{
		publisher: publisher,
		logger:    logger.With("component", "purchase-tracker"),
	}
}

func (t *PurchaseTracker) TrackPurchase(ctx context.Context, pixels domain.Pixels, order domain.Order) error {
	if !pixels.Any() {
		t.logger.DebugContext(ctx, "No tracking pixel configured, skipping", "order_id", order.ID)
		return nil
	}

	itemCount := 0
	for _, l := range order.Items {
		itemCount += l.Quantity
	}
	event := events.PurchaseTrackedEvent{
		OrderID:   order.ID,
		Total:     json.Number(order.Total.String()),
		ItemCount: itemCount,
		Pixels: events.Pixels{
			Facebook: pixels.Facebook,
			Google:   pixels.Google,
			TikTok:   pixels.TikTok,
		},
		PlacedAt: order.Date,
	}
	if err := t.publisher.Publish(ctx, event); err != nil {
		return fmt.Errorf("publishing purchase of order %s: %w", order.ID, err)
	}
	return nil
}
