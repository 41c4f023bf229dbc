// Package memkv is an in-process store.Backend. Values live only as long as
// the process, which makes it the default for tests and throwaway sessions.
package memkv

import (
	"context"
	"slices"
	"sync"

	"github.com/patrickmn/go-cache"
	"github.com/phrazzld/studyhall/internal/store"
)

// Backend keeps encoded collections in a go-cache instance without expiry.
type Backend struct {
	// go-cache locks per call; mu makes a batch visible all at once.
	mu    sync.RWMutex
	cache *cache.Cache
}

// New creates an empty backend.
func New() *Backend {
	return &Backend{cache: cache.New(cache.NoExpiration, 0)}
}

// Get implements store.Backend.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if x, found := b.cache.Get(key); found {
		return slices.Clone(x.([]byte)), nil
	}
	return nil, store.ErrKeyNotFound
}

// PutBatch implements store.Backend.
func (b *Backend) PutBatch(ctx context.Context, entries map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for key, value := range entries {
		b.cache.Set(key, slices.Clone(value), cache.NoExpiration)
	}
	return nil
}

// Keys returns the keys written so far, sorted.
func (b *Backend) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, b.cache.ItemCount())
	for key := range b.cache.Items() {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Close implements store.Backend. Closing drops every value.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache.Flush()
	return nil
}
