package credentials

import (
	"context"
	"sync"

	"github.com/parishweb/portal-gateway/internal/gwerrors"
)

type MemoryBackend struct {
	lock   sync.RWMutex
	values map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: map[string]string{}}
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	val, found := m.values[key]
	if !found {
		return "", gwerrors.ErrTokenNotFound
	}
	return val, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryBackend) Remove(_ context.Context, keys ...string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}
