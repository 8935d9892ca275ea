package memory

import (
	"context"
	"sync"

	"github.com/fdg312/fitplanner/internal/storage"
)

// MemoryStorage is an in-memory storage.KVStore. Values are copied on the
// way in and out so callers cannot alias stored bytes.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func New() *MemoryStorage {
	return &MemoryStorage{
		data: make(map[string][]byte),
	}
}

func (m *MemoryStorage) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}

	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryStorage) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v

	return nil
}

func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *MemoryStorage) Close() error {
	// no-op for memory
	return nil
}
