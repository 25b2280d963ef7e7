package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abgdnv/storefront/pkg/bootstrap"
	"github.com/abgdnv/storefront/pkg/config"
)

// Open creates the RecordStore selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (RecordStore, error) {
	switch cfg.Driver {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, nothing will survive a restart")
		return NewInMemoryStore(), nil
	case config.StorageLevelDB:
		return OpenLevelDB(cfg.Path)
	case config.StorageSQLite:
		openCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
		return OpenSQLite(openCtx, cfg.Path)
	case config.StoragePostgres:
		if err := Migrate(cfg.URL); err != nil {
			return nil, err
		}
		pool, err := bootstrap.NewDbPool(ctx, cfg.URL, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		return NewPgStore(pool), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
