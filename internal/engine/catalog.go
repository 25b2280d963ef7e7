package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/abgdnv/storefront/internal/domain"
	storeerrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store"
)

// AddProduct appends p to the catalog.
// Returns ErrInvalidProduct for an empty or duplicate id, an unknown category or a negative price.
func (e *Engine) AddProduct(ctx context.Context, p domain.Product) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case p.ID == "":
		return fmt.Errorf("%w: empty id", storeerrors.ErrInvalidProduct)
	case !p.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", storeerrors.ErrInvalidProduct, p.Category)
	case p.Price.IsNegative():
		return fmt.Errorf("%w: negative price", storeerrors.ErrInvalidProduct)
	case e.productIndex(p.ID) >= 0:
		return fmt.Errorf("%w: duplicate id %q", storeerrors.ErrInvalidProduct, p.ID)
	}

	next := append(slices.Clip(e.products), p)
	if err := e.persist(ctx, store.KeyProducts, next); err != nil {
		return err
	}
	e.products = next
	e.logger.InfoContext(ctx, "Product added", "product_id", p.ID)
	return nil
}

// DeleteProduct removes the product with the given id. Deleting an unknown id is a no-op.
// Cart lines and orders keep their own copies.
func (e *Engine) DeleteProduct(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.productIndex(id)
	if i < 0 {
		return nil
	}
	next := slices.Delete(slices.Clone(e.products), i, i+1)
	if err := e.persist(ctx, store.KeyProducts, next); err != nil {
		return err
	}
	e.products = next
	e.logger.InfoContext(ctx, "Product deleted", "product_id", id)
	return nil
}

// ListProducts returns a copy of the catalog.
func (e *Engine) ListProducts() []domain.Product {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.products)
}

// GetProduct returns ErrProductNotFound when no product has the id.
func (e *Engine) GetProduct(id string) (domain.Product, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.productIndex(id)
	if i < 0 {
		return domain.Product{}, storeerrors.ErrProductNotFound
	}
	return e.products[i], nil
}

// ProductsByCategory filters the catalog; CategoryAll returns every product.
func (e *Engine) ProductsByCategory(c domain.Category) []domain.Product {
	e.mu.Lock()
	defer e.mu.Unlock()

	if c == domain.CategoryAll {
		return slices.Clone(e.products)
	}
	out := make([]domain.Product, 0)
	for _, p := range e.products {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out
}

func (e *Engine) productIndex(id string) int {
	return slices.IndexFunc(e.products, func(p domain.Product) bool { return p.ID == id })
}
