// Package store provides the durable key-value record store the Store Engine snapshots into.
package store

import (
	"context"
)

// Logical keys of the three durable records.
const (
	KeyProducts = "store_products"
	KeyOrders   = "store_orders"
	KeySettings = "store_settings"
)

// RecordStore is a key-value durability facility for serialized snapshots.
// It abstracts the underlying data store, allowing for different implementations (in-memory, LevelDB, SQLite, PostgreSQL).
type RecordStore interface {
	// Get returns the value stored under key.
	// Returns ErrRecordNotFound if the key was never written.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put durably replaces the value stored under key. It returns only after the write is committed.
	Put(ctx context.Context, key string, value []byte) error

	// Close releases the underlying resources.
	Close() error
}
