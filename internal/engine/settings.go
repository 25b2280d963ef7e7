package engine

import (
	"context"

	"github.com/abgdnv/storefront/internal/domain"
	"github.com/abgdnv/storefront/internal/store"
)

func (e *Engine) Settings() domain.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// UpdateSettings replaces the settings record as a whole. There is no partial merge.
func (e *Engine) UpdateSettings(ctx context.Context, s domain.Settings) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.persist(ctx, store.KeySettings, s); err != nil {
		return err
	}
	e.settings = s
	e.logger.InfoContext(ctx, "Settings updated", "store_name", s.StoreName)
	return nil
}
