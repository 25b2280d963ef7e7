package store

import (
	"context"
	"sync"

	storeerrors "github.com/abgdnv/storefront/internal/errors"
)

var _ RecordStore = (*InMemory)(nil)

// InMemory implements RecordStore using a map. Nothing survives the process.
type InMemory struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemory {
	return &InMemory{records: make(map[string][]byte)}
}

func (s *InMemory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.records[key]
	if !ok {
		return nil, storeerrors.ErrRecordNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *InMemory) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = append([]byte(nil), value...)
	return nil
}

func (s *InMemory) Close() error {
	return nil
}
