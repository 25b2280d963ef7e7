package engine

import (
	"math"
	"slices"

	"github.com/abgdnv/storefront/internal/domain"
	storeerrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/shopspring/decimal"
)

// The cart lives only in memory for the lifetime of the process.

// AddToCart increments the line for p.ID, or inserts a copy of p with quantity 1.
func (e *Engine) AddToCart(p domain.Product) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.addToCart(p)
}

// AddToCartByID adds the current catalog version of the product.
// Returns ErrProductNotFound when the id is not in the catalog.
func (e *Engine) AddToCartByID(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.productIndex(id)
	if i < 0 {
		return storeerrors.ErrProductNotFound
	}
	e.addToCart(e.products[i])
	return nil
}

func (e *Engine) addToCart(p domain.Product) {
	if i := e.cartIndex(p.ID); i >= 0 {
		e.cart[i].Quantity++
		return
	}
	e.cart = append(e.cart, domain.CartLine{Product: p, Quantity: 1})
}

// UpdateCartQuantity adds delta to the line's quantity, never going below 1.
// A sum past math.MaxInt saturates. Unknown ids are ignored.
func (e *Engine) UpdateCartQuantity(id string, delta int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.cartIndex(id)
	if i < 0 {
		return
	}
	q := e.cart[i].Quantity
	if delta > 0 && q > math.MaxInt-delta {
		e.cart[i].Quantity = math.MaxInt
		return
	}
	e.cart[i].Quantity = max(1, q+delta)
}

// RemoveFromCart deletes the line for id if present.
func (e *Engine) RemoveFromCart(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if i := e.cartIndex(id); i >= 0 {
		e.cart = slices.Delete(e.cart, i, i+1)
	}
}

func (e *Engine) ClearCart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cart = nil
}

// Cart returns a copy of the cart lines in insertion order.
func (e *Engine) Cart() []domain.CartLine {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.CartLine{}, e.cart...)
}

// CartTotal is the sum of price × quantity over the cart.
func (e *Engine) CartTotal() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return domain.LinesTotal(e.cart)
}

// CartCount is the number of items in the cart, counting quantities.
func (e *Engine) CartCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return domain.LinesCount(e.cart)
}

func (e *Engine) cartIndex(id string) int {
	return slices.IndexFunc(e.cart, func(l domain.CartLine) bool { return l.ID == id })
}
