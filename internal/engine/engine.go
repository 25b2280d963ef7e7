// Package engine implements the Store Engine: the single authoritative owner of the catalog,
// the cart, the order ledger and the settings record.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/abgdnv/storefront/internal/domain"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// NotificationSink receives the side effects of order placement.
// Both methods run outside the engine lock and their errors are only logged.
type NotificationSink interface {
	// SyncOrder delivers the full order snapshot to the configured integration URL.
	SyncOrder(ctx context.Context, url string, order domain.Order) error

	// TrackPurchase reports the order to the configured tracking pixels.
	TrackPurchase(ctx context.Context, pixels domain.Pixels, order domain.Order) error
}

// StoreService is the operation set the presentation layers consume.
type StoreService interface {
	AddProduct(ctx context.Context, p domain.Product) error
	DeleteProduct(ctx context.Context, id string) error
	ListProducts() []domain.Product
	GetProduct(id string) (domain.Product, error)
	ProductsByCategory(c domain.Category) []domain.Product

	AddToCart(p domain.Product)
	AddToCartByID(id string) error
	UpdateCartQuantity(id string, delta int)
	RemoveFromCart(id string)
	ClearCart()
	Cart() []domain.CartLine
	CartTotal() decimal.Decimal
	CartCount() int

	PlaceOrder(ctx context.Context, customer domain.Customer) (*domain.Order, error)
	Orders() domain.Ledger
	GetOrder(id string) (domain.Order, error)

	Settings() domain.Settings
	UpdateSettings(ctx context.Context, s domain.Settings) error

	Dashboard() Dashboard
}

const defaultHookTimeout = 10 * time.Second

// Engine implements StoreService. All operations are serialized by a single mutex;
// every durable mutation is written through to the RecordStore before it becomes visible.
type Engine struct {
	mu       sync.Mutex
	products []domain.Product
	cart     []domain.CartLine
	orders   domain.Ledger
	settings domain.Settings

	records        store.RecordStore
	sink           NotificationSink
	logger         *slog.Logger
	now            func() time.Time
	newID          func() (string, error)
	hookTimeout    time.Duration
	recoverCorrupt bool

	hooks         sync.WaitGroup
	ordersCounter metric.Int64Counter
	hookFailures  metric.Int64Counter
}

var _ StoreService = (*Engine)(nil)

// Option customizes an Engine.
type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock replaces time.Now as the source of order timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDGenerator replaces the UUIDv7 order id generator.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(e *Engine) {
		e.newID = newID
	}
}

// WithHookTimeout bounds each side-effect hook call.
func WithHookTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.hookTimeout = d
		}
	}
}

// WithRecoverCorrupt makes New replace undecodable records with defaults instead of failing.
func WithRecoverCorrupt(recoverCorrupt bool) Option {
	return func(e *Engine) {
		e.recoverCorrupt = recoverCorrupt
	}
}

// New loads the durable records and returns a ready Engine.
// A key that was never written is seeded with its default. A key that cannot be decoded
// fails with a *errors.CorruptStateError unless WithRecoverCorrupt is set.
func New(ctx context.Context, records store.RecordStore, sink NotificationSink, opts ...Option) (*Engine, error) {
	e := &Engine{
		records:     records,
		sink:        sink,
		logger:      slog.Default(),
		now:         time.Now,
		newID:       newOrderID,
		hookTimeout: defaultHookTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sink == nil {
		e.sink = nopSink{}
	}
	e.logger = e.logger.With("component", "engine")

	meter := otel.Meter("storefront")
	var err error
	e.ordersCounter, err = meter.Int64Counter("orders_placed", metric.WithDescription("Total number of placed orders"))
	if err != nil {
		return nil, fmt.Errorf("failed to create orders_placed counter: %w", err)
	}
	e.hookFailures, err = meter.Int64Counter("hook_failures", metric.WithDescription("Total number of failed order placement hooks"))
	if err != nil {
		return nil, fmt.Errorf("failed to create hook_failures counter: %w", err)
	}

	if err := e.load(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// Close waits for in-flight hooks until ctx is done. It does not close the RecordStore.
func (e *Engine) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.hooks.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for order hooks: %w", ctx.Err())
	}
}

func newOrderID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

type nopSink struct{}

func (nopSink) SyncOrder(context.Context, string, domain.Order) error { return nil }

func (nopSink) TrackPurchase(context.Context, domain.Pixels, domain.Order) error { return nil }
