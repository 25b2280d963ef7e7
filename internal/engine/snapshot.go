package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abgdnv/storefront/internal/domain"
	storeerrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store"
)

func (e *Engine) load(ctx context.Context) error {
	products, err := loadRecord(ctx, e, store.KeyProducts, domain.StarterCatalog)
	if err != nil {
		return err
	}
	orders, err := loadRecord(ctx, e, store.KeyOrders, func() domain.Ledger { return domain.Ledger{} })
	if err != nil {
		return err
	}
	settings, err := loadRecord(ctx, e, store.KeySettings, domain.DefaultSettings)
	if err != nil {
		return err
	}

	e.products = products
	e.orders = orders
	e.settings = settings
	e.logger.InfoContext(ctx, "Store state loaded",
		"products", len(products), "orders", len(orders), "store_name", settings.StoreName)
	return nil
}

// loadRecord decodes the value stored under key, or returns def() when the key was never written.
func loadRecord[T any](ctx context.Context, e *Engine, key string, def func() T) (T, error) {
	data, err := e.records.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storeerrors.ErrRecordNotFound) {
			e.logger.InfoContext(ctx, "No persisted record, using defaults", "key", key)
			return def(), nil
		}
		var zero T
		return zero, fmt.Errorf("loading %s: %w", key, err)
	}

	var decoded T
	if err := json.Unmarshal(data, &decoded); err != nil {
		if !e.recoverCorrupt {
			return decoded, &storeerrors.CorruptStateError{Key: key, Err: err}
		}
		e.logger.WarnContext(ctx, "Persisted record is corrupt, falling back to defaults", "key", key, "error", err)
		return def(), nil
	}
	return decoded, nil
}

// persist writes one record through to the store.
func (e *Engine) persist(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := e.records.Put(ctx, key, data); err != nil {
		e.logger.ErrorContext(ctx, "Failed to persist record", "key", key, "error", err)
		return err
	}
	return nil
}
