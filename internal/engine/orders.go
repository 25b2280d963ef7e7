package engine

import (
	"context"
	"fmt"

	"github.com/abgdnv/storefront/internal/domain"
	storeerrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	hookSyncOrder     = "sync_order"
	hookTrackPurchase = "track_purchase"
)

// PlaceOrder turns the cart into a pending order at the head of the ledger and empties the cart.
// With an empty cart it returns (nil, nil) and changes nothing.
// A blank customer field yields ErrInvalidCustomer and leaves the cart in place.
// If the ledger cannot be persisted the cart and the ledger are left untouched.
// The sync and analytics hooks are dispatched after the order is committed and are never awaited.
func (e *Engine) PlaceOrder(ctx context.Context, customer domain.Customer) (*domain.Order, error) {
	e.mu.Lock()
	if len(e.cart) == 0 {
		e.mu.Unlock()
		e.logger.DebugContext(ctx, "Order placement ignored, cart is empty")
		return nil, nil
	}
	if !customer.Valid() {
		e.mu.Unlock()
		return nil, storeerrors.ErrInvalidCustomer
	}

	id, err := e.newID()
	if err != nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("generating order id: %w", err)
	}
	items := append([]domain.CartLine(nil), e.cart...)
	order := domain.Order{
		ID:           id,
		CustomerName: customer.Name,
		City:         customer.City,
		Phone:        customer.Phone,
		Items:        items,
		Total:        domain.LinesTotal(items),
		Date:         e.now().UTC(),
		Status:       domain.StatusPending,
	}

	next := e.orders.Prepend(order)
	if err := e.persist(ctx, store.KeyOrders, next); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.orders = next
	e.cart = nil
	settings := e.settings
	e.mu.Unlock()

	e.ordersCounter.Add(ctx, 1)
	e.logger.InfoContext(ctx, "Order placed", "order_id", order.ID, "total", order.Total, "items", len(order.Items))

	if url := settings.Integrations.GoogleSheetsURL; url != "" {
		e.dispatch(ctx, hookSyncOrder, order, func(hctx context.Context, o domain.Order) error {
			return e.sink.SyncOrder(hctx, url, o)
		})
	}
	pixels := settings.Pixels
	e.dispatch(ctx, hookTrackPurchase, order, func(hctx context.Context, o domain.Order) error {
		return e.sink.TrackPurchase(hctx, pixels, o)
	})

	placed := order.Clone()
	return &placed, nil
}

// dispatch runs a hook on its own goroutine with a private copy of the order.
// The hook outlives the caller's cancellation but is bounded by the hook timeout.
func (e *Engine) dispatch(ctx context.Context, name string, order domain.Order, hook func(context.Context, domain.Order) error) {
	hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.hookTimeout)
	order = order.Clone()

	e.hooks.Add(1)
	go func() {
		defer e.hooks.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				e.hookFailed(hookCtx, name, order.ID, fmt.Errorf("panic: %v", r))
			}
		}()
		if err := hook(hookCtx, order); err != nil {
			e.hookFailed(hookCtx, name, order.ID, err)
		}
	}()
}

func (e *Engine) hookFailed(ctx context.Context, name, orderID string, err error) {
	e.hookFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("hook", name)))
	e.logger.ErrorContext(ctx, "Order hook failed", "hook", name, "order_id", orderID, "error", err)
}

// Orders returns a copy of the ledger, most recent first.
func (e *Engine) Orders() domain.Ledger {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.orders.Clone()
}

// GetOrder returns ErrOrderNotFound when no order has the id.
func (e *Engine) GetOrder(id string) (domain.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.orders.Find(id)
	if !ok {
		return domain.Order{}, storeerrors.ErrOrderNotFound
	}
	return o.Clone(), nil
}
