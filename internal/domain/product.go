// Package domain holds the storefront records owned by the Store Engine.
package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts are persisted and served as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Category is the closed set of product categories.
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryHome        Category = "home"
	CategoryCars        Category = "cars"

	// CategoryAll is a filter value only; no product is ever stored with it.
	CategoryAll Category = "all"
)

// Categories lists the storable categories in display order.
var Categories = []Category{CategoryElectronics, CategoryHome, CategoryCars}

// Valid reports whether c may be stored on a Product.
func (c Category) Valid() bool {
	switch c {
	case CategoryElectronics, CategoryHome, CategoryCars:
		return true
	}
	return false
}

// ParseCategory accepts a storable category or "all".
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if c == CategoryAll || c.Valid() {
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// DefaultProductImage is used when a product is created without an image.
const DefaultProductImage = "https://picsum.photos/400/300"

// Product is a catalog entry. Price is an exact decimal amount and may carry a fractional part.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
}

// CartLine is a snapshot of a Product taken when it was put in the cart, plus a quantity >= 1.
type CartLine struct {
	Product
	Quantity int `json:"quantity"`
}

// Subtotal is price × quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
