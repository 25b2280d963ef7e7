package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/abgdnv/storefront/internal/domain"
	storeerrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 10, 30, 0, 123456789, time.UTC)

type syncCall struct {
	url   string
	order domain.Order
}

type trackCall struct {
	pixels domain.Pixels
	order  domain.Order
}

// recordingSink records hook invocations and optionally fails them.
type recordingSink struct {
	mu       sync.Mutex
	syncs    []syncCall
	tracks   []trackCall
	syncErr  error
	trackErr error
}

func (s *recordingSink) SyncOrder(_ context.Context, url string, order domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncs = append(s.syncs, syncCall{url: url, order: order})
	return s.syncErr
}

func (s *recordingSink) TrackPurchase(_ context.Context, pixels domain.Pixels, order domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks = append(s.tracks, trackCall{pixels: pixels, order: order})
	return s.trackErr
}

func (s *recordingSink) calls() ([]syncCall, []trackCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]syncCall(nil), s.syncs...), append([]trackCall(nil), s.tracks...)
}

// faultyStore wraps a RecordStore and fails reads or writes on demand.
type faultyStore struct {
	store.RecordStore
	mu      sync.Mutex
	failPut bool
	failGet bool
}

func (s *faultyStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	fail := s.failGet
	s.mu.Unlock()
	if fail {
		return nil, fmt.Errorf("%w %s: disk on fire", storeerrors.ErrReadRecord, key)
	}
	return s.RecordStore.Get(ctx, key)
}

func (s *faultyStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	fail := s.failPut
	s.mu.Unlock()
	if fail {
		return fmt.Errorf("%w %s: disk full", storeerrors.ErrPersistRecord, key)
	}
	return s.RecordStore.Put(ctx, key, value)
}

func sequentialIDs() func() (string, error) {
	var mu sync.Mutex
	n := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("order-%d", n), nil
	}
}

func newTestEngine(t *testing.T, records store.RecordStore, sink NotificationSink, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{
		WithLogger(logger.Discard()),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(sequentialIDs()),
	}, opts...)
	e, err := New(context.Background(), records, sink, opts...)
	require.NoError(t, err)
	return e
}

// waitHooks drains the in-flight hooks.
func waitHooks(t *testing.T, e *Engine) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Close(ctx))
}

var productP = domain.Product{ID: "p1", Name: "Phone", Price: decimal.NewFromInt(100), Category: domain.CategoryElectronics, Image: "img", Description: "d"}

func Test_New_SeedsDefaultsWhenNothingPersisted(t *testing.T) {
	// given
	records := store.NewInMemoryStore()

	// when
	e := newTestEngine(t, records, nil)

	// then
	assert.Equal(t, domain.StarterCatalog(), e.ListProducts())
	assert.Empty(t, e.Orders())
	assert.Equal(t, domain.DefaultSettings(), e.Settings())
	assert.Empty(t, e.Cart())

	_, err := records.Get(context.Background(), store.KeyProducts)
	assert.ErrorIs(t, err, storeerrors.ErrRecordNotFound, "defaults are not written until the first mutation")
}

func Test_New_CorruptRecord(t *testing.T) {
	for _, key := range []string{store.KeyProducts, store.KeyOrders, store.KeySettings} {
		t.Run(key, func(t *testing.T) {
			// given
			records := store.NewInMemoryStore()
			require.NoError(t, records.Put(context.Background(), key, []byte("{not json")))

			// when
			_, err := New(context.Background(), records, nil, WithLogger(logger.Discard()))

			// then
			require.Error(t, err)
			assert.ErrorIs(t, err, storeerrors.ErrCorruptPersistedState)
			var corrupt *storeerrors.CorruptStateError
			require.True(t, errors.As(err, &corrupt))
			assert.Equal(t, key, corrupt.Key)
		})
	}
}

func Test_New_CorruptRecordRecovered(t *testing.T) {
	// given
	ctx := context.Background()
	records := store.NewInMemoryStore()
	require.NoError(t, records.Put(ctx, store.KeyProducts, []byte(`"a string, not a list"`)))
	require.NoError(t, records.Put(ctx, store.KeySettings, []byte(`{"storeName":"Kept"}`)))

	// when
	e := newTestEngine(t, records, nil, WithRecoverCorrupt(true))

	// then
	assert.Equal(t, domain.StarterCatalog(), e.ListProducts())
	assert.Equal(t, "Kept", e.Settings().StoreName, "only the corrupt key falls back")
}

func Test_New_ReadErrorIsReturned(t *testing.T) {
	// given
	records := &faultyStore{RecordStore: store.NewInMemoryStore(), failGet: true}

	// when
	_, err := New(context.Background(), records, nil, WithLogger(logger.Discard()), WithRecoverCorrupt(true))

	// then
	assert.ErrorIs(t, err, storeerrors.ErrReadRecord)
	assert.NotErrorIs(t, err, storeerrors.ErrCorruptPersistedState)
}

func Test_RoundTrip_ThroughRecordStore(t *testing.T) {
	// given
	ctx := context.Background()
	records := store.NewInMemoryStore()
	e := newTestEngine(t, records, &recordingSink{})
	require.NoError(t, e.AddProduct(ctx, productP))
	require.NoError(t, e.DeleteProduct(ctx, "2"))
	require.NoError(t, e.AddToCartByID("p1"))
	require.NoError(t, e.AddToCartByID("3"))
	e.UpdateCartQuantity("3", 2)
	_, err := e.PlaceOrder(ctx, domain.Customer{Name: "Ali", City: "Rabat", Phone: "0600000000"})
	require.NoError(t, err)
	settings := domain.Settings{
		StoreName:     "Round Trip",
		Pixels:        domain.Pixels{Facebook: "fb", Google: "G-1", TikTok: "tt"},
		Integrations:  domain.Integrations{GoogleSheetsURL: "https://example.com/hook"},
		Domain:        domain.DomainInfo{CustomDomain: "shop.example.com", Nameservers: "ns1, ns2"},
		CustomScripts: "<script>x()</script>",
	}
	require.NoError(t, e.UpdateSettings(ctx, settings))
	waitHooks(t, e)

	// when
	reloaded := newTestEngine(t, records, nil)

	// then
	assert.Equal(t, e.ListProducts(), reloaded.ListProducts())
	assert.Equal(t, e.Orders(), reloaded.Orders())
	assert.Equal(t, settings, reloaded.Settings())
	assert.Empty(t, reloaded.Cart(), "the cart is not durable")
}

func Test_AddProduct(t *testing.T) {
	testCases := []struct {
		name      string
		product   domain.Product
		expectErr bool
	}{
		{name: "valid", product: productP},
		{name: "zero price", product: domain.Product{ID: "free", Name: "Free", Category: domain.CategoryHome}},
		{name: "empty id", product: domain.Product{Name: "x", Price: decimal.NewFromInt(1), Category: domain.CategoryHome}, expectErr: true},
		{name: "duplicate id", product: domain.Product{ID: "1", Name: "x", Price: decimal.NewFromInt(1), Category: domain.CategoryHome}, expectErr: true},
		{name: "unknown category", product: domain.Product{ID: "x", Name: "x", Price: decimal.NewFromInt(1), Category: "toys"}, expectErr: true},
		{name: "all is not storable", product: domain.Product{ID: "x", Name: "x", Price: decimal.NewFromInt(1), Category: domain.CategoryAll}, expectErr: true},
		{name: "negative price", product: domain.Product{ID: "x", Name: "x", Price: decimal.NewFromInt(-1), Category: domain.CategoryCars}, expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			e := newTestEngine(t, store.NewInMemoryStore(), nil)
			before := e.ListProducts()

			// when
			err := e.AddProduct(context.Background(), tc.product)

			// then
			if tc.expectErr {
				assert.ErrorIs(t, err, storeerrors.ErrInvalidProduct)
				assert.Equal(t, before, e.ListProducts())
				return
			}
			require.NoError(t, err)
			products := e.ListProducts()
			require.Len(t, products, len(before)+1)
			assert.Equal(t, tc.product, products[len(products)-1])
		})
	}
}

func Test_AddProduct_PersistFailureKeepsCatalog(t *testing.T) {
	// given
	records := &faultyStore{RecordStore: store.NewInMemoryStore()}
	e := newTestEngine(t, records, nil)
	before := e.ListProducts()
	records.failPut = true

	// when
	err := e.AddProduct(context.Background(), productP)

	// then
	assert.ErrorIs(t, err, storeerrors.ErrPersistRecord)
	assert.Equal(t, before, e.ListProducts())
}

func Test_DeleteProduct(t *testing.T) {
	t.Run("unknown id is a no-op", func(t *testing.T) {
		// given
		e := newTestEngine(t, store.NewInMemoryStore(), nil)
		before := e.ListProducts()

		// when
		err := e.DeleteProduct(context.Background(), "99")

		// then
		require.NoError(t, err)
		assert.Equal(t, before, e.ListProducts())
	})

	t.Run("existing id is removed but cart keeps its copy", func(t *testing.T) {
		// given
		e := newTestEngine(t, store.NewInMemoryStore(), nil)
		require.NoError(t, e.AddToCartByID("1"))

		// when
		err := e.DeleteProduct(context.Background(), "1")

		// then
		require.NoError(t, err)
		_, errGet := e.GetProduct("1")
		assert.ErrorIs(t, errGet, storeerrors.ErrProductNotFound)
		assert.Len(t, e.ListProducts(), 5)
		cart := e.Cart()
		require.Len(t, cart, 1)
		assert.Equal(t, "1", cart[0].ID)
	})
}

func Test_ProductsByCategory(t *testing.T) {
	e := newTestEngine(t, store.NewInMemoryStore(), nil)

	testCases := []struct {
		category domain.Category
		expected []string
	}{
		{category: domain.CategoryAll, expected: []string{"1", "2", "3", "4", "5", "6"}},
		{category: domain.CategoryElectronics, expected: []string{"1", "4"}},
		{category: domain.CategoryHome, expected: []string{"2", "5"}},
		{category: domain.CategoryCars, expected: []string{"3", "6"}},
		{category: "toys", expected: []string{}},
	}
	for _, tc := range testCases {
		t.Run(string(tc.category), func(t *testing.T) {
			ids := []string{}
			for _, p := range e.ProductsByCategory(tc.category) {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tc.expected, ids)
		})
	}
}

func Test_AddToCart_AggregatesByProduct(t *testing.T) {
	for _, n := range []int{1, 2, 5, 17} {
		t.Run(fmt.Sprintf("%d calls", n), func(t *testing.T) {
			// given
			e := newTestEngine(t, store.NewInMemoryStore(), nil)

			// when
			for range n {
				e.AddToCart(productP)
			}

			// then
			cart := e.Cart()
			require.Len(t, cart, 1)
			assert.Equal(t, productP.ID, cart[0].ID)
			assert.Equal(t, n, cart[0].Quantity)
			assert.Equal(t, n, e.CartCount())
			assert.True(t, productP.Price.Mul(decimal.NewFromInt(int64(n))).Equal(e.CartTotal()))
		})
	}
}

func Test_AddToCart_SnapshotsProduct(t *testing.T) {
	// given
	e := newTestEngine(t, store.NewInMemoryStore(), nil)
	p := productP
	e.AddToCart(p)

	// when
	p.Price = decimal.NewFromInt(999)
	e.AddToCart(p)

	// then
	cart := e.Cart()
	require.Len(t, cart, 1)
	assert.Equal(t, "100", cart[0].Price.String(), "the first added version is kept")
	assert.Equal(t, 2, cart[0].Quantity)
}

func Test_AddToCartByID_Unknown(t *testing.T) {
	e := newTestEngine(t, store.NewInMemoryStore(), nil)

	err := e.AddToCartByID("nope")

	assert.ErrorIs(t, err, storeerrors.ErrProductNotFound)
	assert.Empty(t, e.Cart())
}

func Test_UpdateCartQuantity(t *testing.T) {
	testCases := []struct {
		name     string
		start    int
		delta    int
		expected int
	}{
		{name: "increment", start: 1, delta: 1, expected: 2},
		{name: "decrement", start: 3, delta: -1, expected: 2},
		{name: "clamped at one", start: 1, delta: -1, expected: 1},
		{name: "large negative", start: 4, delta: -100, expected: 1},
		{name: "zero delta", start: 2, delta: 0, expected: 2},
		{name: "huge delta saturates", start: 2, delta: math.MaxInt, expected: math.MaxInt},
		{name: "most negative delta", start: 2, delta: math.MinInt, expected: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			e := newTestEngine(t, store.NewInMemoryStore(), nil)
			for range tc.start {
				e.AddToCart(productP)
			}

			// when
			e.UpdateCartQuantity(productP.ID, tc.delta)

			// then
			assert.Equal(t, tc.expected, e.Cart()[0].Quantity)
		})
	}
}

func Test_UpdateCartQuantity_NeverBelowOne(t *testing.T) {
	e := newTestEngine(t, store.NewInMemoryStore(), nil)
	e.AddToCart(productP)
	for delta := 0; delta >= -50; delta -= 7 {
		e.UpdateCartQuantity(productP.ID, delta)
		assert.GreaterOrEqual(t, e.Cart()[0].Quantity, 1)
	}
}

func Test_UpdateCartQuantity_UnknownIDIsNoop(t *testing.T) {
	e := newTestEngine(t, store.NewInMemoryStore(), nil)
	e.AddToCart(productP)

	e.UpdateCartQuantity("other", 5)

	assert.Equal(t, []domain.CartLine{{Product: productP, Quantity: 1}}, e.Cart())
}

func Test_RemoveFromCart_And_ClearCart(t *testing.T) {
	// given
	e := newTestEngine(t, store.NewInMemoryStore(), nil)
	require.NoError(t, e.AddToCartByID("1"))
	require.NoError(t, e.AddToCartByID("2"))

	// when
	e.RemoveFromCart("1")
	e.RemoveFromCart("1")

	// then
	cart := e.Cart()
	require.Len(t, cart, 1)
	assert.Equal(t, "2", cart[0].ID)

	e.ClearCart()
	assert.Empty(t, e.Cart())
	assert.True(t, e.CartTotal().IsZero())
}

func Test_PlaceOrder_Scenario(t *testing.T) {
	// given
	ctx := context.Background()
	sink := &recordingSink{}
	e := newTestEngine(t, store.NewInMemoryStore(), sink)
	require.NoError(t, e.AddProduct(ctx, domain.Product{ID: "1x", Name: "P", Price: decimal.NewFromInt(100), Category: domain.CategoryHome}))
	p, err := e.GetProduct("1x")
	require.NoError(t, err)
	e.AddToCart(p)
	e.AddToCart(p)

	// when
	order, err := e.PlaceOrder(ctx, domain.Customer{Name: "Ali", City: "Rabat", Phone: "0600000000"})

	// then
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Empty(t, e.Cart())

	orders := e.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, *order, orders[0])
	assert.Equal(t, "order-1", orders[0].ID)
	assert.Equal(t, "200", orders[0].Total.String())
	assert.Equal(t, []domain.CartLine{{Product: p, Quantity: 2}}, orders[0].Items)
	assert.Equal(t, domain.StatusPending, orders[0].Status)
	assert.Equal(t, fixedNow, orders[0].Date)
	assert.Equal(t, domain.Customer{Name: "Ali", City: "Rabat", Phone: "0600000000"}, orders[0].Customer())

	waitHooks(t, e)
	syncs, tracks := sink.calls()
	assert.Empty(t, syncs, "no integration URL configured")
	require.Len(t, tracks, 1)
	assert.Equal(t, order.ID, tracks[0].order.ID)
	assert.Equal(t, domain.Pixels{}, tracks[0].pixels)
}

func Test_PlaceOrder_MostRecentFirst(t *testing.T) {
	// given
	ctx := context.Background()
	e := newTestEngine(t, store.NewInMemoryStore(), nil)

	// when
	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, e.AddToCartByID(id))
		_, err := e.PlaceOrder(ctx, domain.Customer{Name: "n", City: "c", Phone: "p"})
		require.NoError(t, err)
	}

	// then
	orders := e.Orders()
	require.Len(t, orders, 3)
	assert.Equal(t, "order-3", orders[0].ID)
	assert.Equal(t, "order-2", orders[1].ID)
	assert.Equal(t, "order-1", orders[2].ID)

	got, err := e.GetOrder("order-2")
	require.NoError(t, err)
	assert.Equal(t, "2", got.Items[0].ID)
	_, err = e.GetOrder("missing")
	assert.ErrorIs(t, err, storeerrors.ErrOrderNotFound)
}

func Test_PlaceOrder_EmptyCartIsNoop(t *testing.T) {
	// given
	ctx := context.Background()
	sink := &recordingSink{}
	records := store.NewInMemoryStore()
	e := newTestEngine(t, records, sink)

	// when
	order, err := e.PlaceOrder(ctx, domain.Customer{Name: "Ali", City: "Rabat", Phone: "0600000000"})

	// then
	require.NoError(t, err)
	assert.Nil(t, order)
	assert.Empty(t, e.Orders())
	assert.Empty(t, e.Cart())
	waitHooks(t, e)
	syncs, tracks := sink.calls()
	assert.Empty(t, syncs)
	assert.Empty(t, tracks)
	_, errGet := records.Get(ctx, store.KeyOrders)
	assert.ErrorIs(t, errGet, storeerrors.ErrRecordNotFound)
}

func Test_PlaceOrder_BlankCustomerIsRejected(t *testing.T) {
	// given
	ctx := context.Background()
	sink := &recordingSink{}
	records := store.NewInMemoryStore()
	e := newTestEngine(t, records, sink)
	require.NoError(t, e.AddToCartByID("1"))
	cartBefore := e.Cart()

	// when
	order, err := e.PlaceOrder(ctx, domain.Customer{Name: "  ", City: " ", Phone: "\t"})

	// then
	assert.ErrorIs(t, err, storeerrors.ErrInvalidCustomer)
	assert.Nil(t, order)
	assert.Empty(t, e.Orders())
	assert.Equal(t, cartBefore, e.Cart())
	waitHooks(t, e)
	_, tracks := sink.calls()
	assert.Empty(t, tracks)
	_, errGet := records.Get(ctx, store.KeyOrders)
	assert.ErrorIs(t, errGet, storeerrors.ErrRecordNotFound)
}

func Test_PlaceOrder_FractionalPrices(t *testing.T) {
	// given
	ctx := context.Background()
	records := store.NewInMemoryStore()
	e := newTestEngine(t, records, nil)
	cable := domain.Product{ID: "cable", Name: "Cable", Price: decimal.RequireFromString("49.9"), Category: domain.CategoryElectronics}
	fuse := domain.Product{ID: "fuse", Name: "Fuse", Price: decimal.RequireFromString("0.1"), Category: domain.CategoryCars}
	require.NoError(t, e.AddProduct(ctx, cable))
	require.NoError(t, e.AddProduct(ctx, fuse))
	e.AddToCart(cable)
	for range 3 {
		e.AddToCart(fuse)
	}

	// when
	order, err := e.PlaceOrder(ctx, domain.Customer{Name: "a", City: "b", Phone: "c"})

	// then
	require.NoError(t, err)
	assert.Equal(t, "50.2", order.Total.String())
	raw, err := records.Get(ctx, store.KeyOrders)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"total":50.2`)
	reloaded := newTestEngine(t, records, nil)
	assert.Equal(t, "50.2", reloaded.Orders()[0].Total.String())
	assert.Equal(t, "50.2", reloaded.Dashboard().Revenue.String())
}

func Test_New_LoadsLegacySnapshotWithFractionalPrices(t *testing.T) {
	// given
	ctx := context.Background()
	records := store.NewInMemoryStore()
	products := `[{"id":"1700000000000","name":"Cable","price":49.9,"category":"electronics","image":"https://picsum.photos/400/300","description":"USB-C"}]`
	orders := `[{"id":"1700000000001","customerName":"Ali","city":"Rabat","phone":"0600000000",` +
		`"items":[{"id":"1700000000000","name":"Cable","price":49.9,"category":"electronics","image":"https://picsum.photos/400/300","description":"USB-C","quantity":2}],` +
		`"total":99.8,"date":"2024-11-14T22:13:20.000Z","status":"pending"}]`
	require.NoError(t, records.Put(ctx, store.KeyProducts, []byte(products)))
	require.NoError(t, records.Put(ctx, store.KeyOrders, []byte(orders)))

	// when
	e, err := New(ctx, records, nil, WithLogger(logger.Discard()))

	// then
	require.NoError(t, err)
	catalog := e.ListProducts()
	require.Len(t, catalog, 1)
	assert.Equal(t, "49.9", catalog[0].Price.String())
	ledger := e.Orders()
	require.Len(t, ledger, 1)
	assert.Equal(t, "99.8", ledger[0].Total.String())
	assert.True(t, ledger[0].Total.Equal(domain.LinesTotal(ledger[0].Items)))
	assert.Equal(t, "99.8", e.Dashboard().Revenue.String())

	require.NoError(t, e.AddToCartByID("1700000000000"))
	e.UpdateCartQuantity("1700000000000", 2)
	assert.Equal(t, "149.7", e.CartTotal().String())
}

func Test_PlaceOrder_InvokesHooksWithSettings(t *testing.T) {
	// given
	ctx := context.Background()
	sink := &recordingSink{}
	e := newTestEngine(t, store.NewInMemoryStore(), sink)
	settings := domain.DefaultSettings()
	settings.Integrations.GoogleSheetsURL = "https://script.example.com/exec"
	settings.Pixels = domain.Pixels{Facebook: "123", TikTok: "abc"}
	require.NoError(t, e.UpdateSettings(ctx, settings))
	require.NoError(t, e.AddToCartByID("4"))

	// when
	order, err := e.PlaceOrder(ctx, domain.Customer{Name: "Sara", City: "Fes", Phone: "0611111111"})

	// then
	require.NoError(t, err)
	waitHooks(t, e)
	syncs, tracks := sink.calls()
	require.Len(t, syncs, 1)
	assert.Equal(t, "https://script.example.com/exec", syncs[0].url)
	assert.Equal(t, *order, syncs[0].order)
	require.Len(t, tracks, 1)
	assert.Equal(t, settings.Pixels, tracks[0].pixels)
}

func Test_PlaceOrder_HookFailureDoesNotAffectOrder(t *testing.T) {
	// given
	ctx := context.Background()
	sink := &recordingSink{syncErr: errors.New("webhook down"), trackErr: errors.New("broker down")}
	e := newTestEngine(t, store.NewInMemoryStore(), sink)
	settings := domain.DefaultSettings()
	settings.Integrations.GoogleSheetsURL = "https://script.example.com/exec"
	require.NoError(t, e.UpdateSettings(ctx, settings))
	require.NoError(t, e.AddToCartByID("1"))

	// when
	order, err := e.PlaceOrder(ctx, domain.Customer{Name: "a", City: "b", Phone: "c"})

	// then
	require.NoError(t, err)
	require.NotNil(t, order)
	waitHooks(t, e)
	assert.Len(t, e.Orders(), 1)
	assert.Empty(t, e.Cart())
}

type panickingSink struct{}

func (panickingSink) SyncOrder(context.Context, string, domain.Order) error { panic("boom") }

func (panickingSink) TrackPurchase(context.Context, domain.Pixels, domain.Order) error {
	panic("boom")
}

func Test_PlaceOrder_HookPanicIsContained(t *testing.T) {
	// given
	e := newTestEngine(t, store.NewInMemoryStore(), panickingSink{})
	require.NoError(t, e.AddToCartByID("1"))

	// when
	order, err := e.PlaceOrder(context.Background(), domain.Customer{Name: "a", City: "b", Phone: "c"})

	// then
	require.NoError(t, err)
	require.NotNil(t, order)
	waitHooks(t, e)
	assert.Len(t, e.Orders(), 1)
}

func Test_PlaceOrder_HookOutlivesCallerContext(t *testing.T) {
	// given
	sink := &recordingSink{}
	e := newTestEngine(t, store.NewInMemoryStore(), sink)
	require.NoError(t, e.AddToCartByID("1"))
	ctx, cancel := context.WithCancel(context.Background())

	// when
	_, err := e.PlaceOrder(ctx, domain.Customer{Name: "a", City: "b", Phone: "c"})
	cancel()

	// then
	require.NoError(t, err)
	waitHooks(t, e)
	_, tracks := sink.calls()
	assert.Len(t, tracks, 1)
}

func Test_PlaceOrder_PersistFailureKeepsState(t *testing.T) {
	// given
	records := &faultyStore{RecordStore: store.NewInMemoryStore()}
	sink := &recordingSink{}
	e := newTestEngine(t, records, sink)
	require.NoError(t, e.AddToCartByID("1"))
	require.NoError(t, e.AddToCartByID("1"))
	cartBefore := e.Cart()
	records.failPut = true

	// when
	order, err := e.PlaceOrder(context.Background(), domain.Customer{Name: "a", City: "b", Phone: "c"})

	// then
	assert.ErrorIs(t, err, storeerrors.ErrPersistRecord)
	assert.Nil(t, order)
	assert.Equal(t, cartBefore, e.Cart())
	assert.Empty(t, e.Orders())
	waitHooks(t, e)
	_, tracks := sink.calls()
	assert.Empty(t, tracks)
}

func Test_PlaceOrder_OrderIsIsolatedFromLaterChanges(t *testing.T) {
	// given
	ctx := context.Background()
	e := newTestEngine(t, store.NewInMemoryStore(), nil)
	require.NoError(t, e.AddToCartByID("1"))
	order, err := e.PlaceOrder(ctx, domain.Customer{Name: "a", City: "b", Phone: "c"})
	require.NoError(t, err)

	// when
	order.Items[0].Quantity = 42
	require.NoError(t, e.DeleteProduct(ctx, "1"))

	// then
	stored := e.Orders()[0]
	assert.Equal(t, 1, stored.Items[0].Quantity)
	assert.Equal(t, "1", stored.Items[0].ID)
}

func Test_UpdateSettings_FullReplacement(t *testing.T) {
	// given
	ctx := context.Background()
	e := newTestEngine(t, store.NewInMemoryStore(), nil)
	first := domain.Settings{StoreName: "A", Pixels: domain.Pixels{Google: "G"}, CustomScripts: "s"}
	require.NoError(t, e.UpdateSettings(ctx, first))

	// when
	second := domain.Settings{StoreName: "B"}
	err := e.UpdateSettings(ctx, second)

	// then
	require.NoError(t, err)
	assert.Equal(t, second, e.Settings(), "fields absent from the update are cleared")
}

func Test_UpdateSettings_PersistFailureKeepsSettings(t *testing.T) {
	records := &faultyStore{RecordStore: store.NewInMemoryStore()}
	e := newTestEngine(t, records, nil)
	records.failPut = true

	err := e.UpdateSettings(context.Background(), domain.Settings{StoreName: "B"})

	assert.ErrorIs(t, err, storeerrors.ErrPersistRecord)
	assert.Equal(t, domain.DefaultSettings(), e.Settings())
}

func Test_Dashboard(t *testing.T) {
	// given
	ctx := context.Background()
	e := newTestEngine(t, store.NewInMemoryStore(), nil)
	require.NoError(t, e.AddToCartByID("1")) // 3500
	_, err := e.PlaceOrder(ctx, domain.Customer{Name: "a", City: "b", Phone: "c"})
	require.NoError(t, err)
	require.NoError(t, e.AddToCartByID("6")) // 250
	e.UpdateCartQuantity("6", 1)
	_, err = e.PlaceOrder(ctx, domain.Customer{Name: "a", City: "b", Phone: "c"})
	require.NoError(t, err)

	// when
	d := e.Dashboard()

	// then
	assert.Equal(t, "4000", d.Revenue.String())
	assert.Equal(t, 2, d.OrderCount)
	assert.Equal(t, 2, d.PendingOrders)
	assert.Equal(t, 6, d.ProductCount)
}

func Test_Close_TimesOut(t *testing.T) {
	// given
	release := make(chan struct{})
	sink := &blockingSink{release: release}
	e := newTestEngine(t, store.NewInMemoryStore(), sink)
	require.NoError(t, e.AddToCartByID("1"))
	_, err := e.PlaceOrder(context.Background(), domain.Customer{Name: "a", City: "b", Phone: "c"})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// when
	errClose := e.Close(ctx)

	// then
	assert.ErrorIs(t, errClose, context.DeadlineExceeded)
	close(release)
	waitHooks(t, e)
}

type blockingSink struct {
	release chan struct{}
}

func (s *blockingSink) SyncOrder(context.Context, string, domain.Order) error { return nil }

func (s *blockingSink) TrackPurchase(context.Context, domain.Pixels, domain.Order) error {
	<-s.release
	return nil
}

func Test_ConcurrentCartAndOrders(t *testing.T) {
	// given
	ctx := context.Background()
	e := newTestEngine(t, store.NewInMemoryStore(), nil)
	var wg sync.WaitGroup

	// when
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.AddToCart(productP)
		}()
	}
	wg.Wait()
	order, err := e.PlaceOrder(ctx, domain.Customer{Name: "a", City: "b", Phone: "c"})

	// then
	require.NoError(t, err)
	assert.Equal(t, "5000", order.Total.String())
	waitHooks(t, e)
}
