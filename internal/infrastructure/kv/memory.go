// Package kv holds the key-value stores sessions are read from: an
// in-process map for single instances and Redis for shared deployments.
package kv

import (
	"context"
	"sync"

	"github.com/garyjia/billed/internal/application/port"
)

// MemoryStore is a process-local port.KeyValueStore
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]string)}
}

// GetItem returns the stored value, or "" when the key is absent
func (s *MemoryStore) GetItem(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items[key], nil
}

// SetItem stores value under key
func (s *MemoryStore) SetItem(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

// scoped prefixes every key with a namespace
type scoped struct {
	store  port.KeyValueStore
	prefix string
}

// Namespace returns a view of store whose keys live under ns. The HTTP host
// gives every visitor its own namespace.
func Namespace(store port.KeyValueStore, ns string) port.KeyValueStore {
	return &scoped{store: store, prefix: ns + ":"}
}

func (s *scoped) GetItem(ctx context.Context, key string) (string, error) {
	return s.store.GetItem(ctx, s.prefix+key)
}

func (s *scoped) SetItem(ctx context.Context, key, value string) error {
	return s.store.SetItem(ctx, s.prefix+key, value)
}

var _ port.KeyValueStore = (*MemoryStore)(nil)
