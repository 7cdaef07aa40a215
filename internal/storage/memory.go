package storage

import (
	"context"
	"sync"

	"fintrack/internal/core"
)

// MemoryRepository keeps the encoded document in process memory. It encodes
// on every save so callers observe the same round trip as the SQLite store.
type MemoryRepository struct {
	mu   sync.Mutex
	data []byte
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Load(_ context.Context) (core.AppState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data == nil {
		return core.AppState{}, ErrNotFound
	}
	return decodeState(r.data)
}

func (r *MemoryRepository) Save(_ context.Context, state core.AppState) error {
	b, err := encodeState(state)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = b
	return nil
}

func (r *MemoryRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = nil
	return nil
}

func (r *MemoryRepository) Close() error { return nil }
