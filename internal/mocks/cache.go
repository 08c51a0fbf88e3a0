package mocks

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// ErrMockCacheMiss is returned by MockCache.Get for absent keys.
var ErrMockCacheMiss = errors.New("cache: key not found")

// MockCache implements the analytics Cache interface for testing. Values
// round-trip through JSON the way the Redis-backed cache does. TTLs are
// recorded but never enforced.
type MockCache struct {
	// Function fields for customizable behavior
	GetFn func(ctx context.Context, key string, dest interface{}) error
	SetFn func(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	mu      sync.Mutex
	values  map[string][]byte
	ttls    map[string]time.Duration
	GetHits int
	SetHits int
}

// NewMockCache creates a new mock cache with initialized defaults.
func NewMockCache() *MockCache {
	return &MockCache{
		values: make(map[string][]byte),
		ttls:   make(map[string]time.Duration),
	}
}

// Get implements the cache Get operation.
func (m *MockCache) Get(ctx context.Context, key string, dest interface{}) error {
	if m.GetFn != nil {
		return m.GetFn(ctx, key, dest)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.values[key]
	if !ok {
		return ErrMockCacheMiss
	}
	m.GetHits++
	return json.Unmarshal(data, dest)
}

// Set implements the cache Set operation.
func (m *MockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.SetFn != nil {
		return m.SetFn(ctx, key, value, ttl)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = data
	m.ttls[key] = ttl
	m.SetHits++
	return nil
}

// Contains reports whether a key is present.
func (m *MockCache) Contains(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}
