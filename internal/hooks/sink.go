package hooks

import (
	"context"

	"github.com/abgdnv/storefront/internal/domain"
	"github.com/abgdnv/storefront/internal/engine"
)

// OrderSyncer delivers an order to an integration endpoint.
type OrderSyncer interface {
	SyncOrder(ctx context.Context, url string, order domain.Order) error
}

// PurchaseReporter reports a purchase to analytics.
type PurchaseReporter interface {
	TrackPurchase(ctx context.Context, pixels domain.Pixels, order domain.Order) error
}

// Sink combines an OrderSyncer and a PurchaseReporter into an engine.NotificationSink.
// A nil half is a no-op.
type Sink struct {
	syncer  OrderSyncer
	tracker PurchaseReporter
}

var _ engine.NotificationSink = (*Sink)(nil)

func NewSink(syncer OrderSyncer, tracker PurchaseReporter) *Sink {
	return &Sink{syncer: syncer, tracker: tracker}
}

func (s *Sink) SyncOrder(ctx context.Context, url string, order domain.Order) error {
	if s.syncer == nil {
		return nil
	}
	return s.syncer.SyncOrder(ctx, url, order)
}

func (s *Sink) TrackPurchase(ctx context.Context, pixels domain.Pixels, order domain.Order) error {
	if s.tracker == nil {
		return nil
	}
	return s.tracker.TrackPurchase(ctx, pixels, order)
}
