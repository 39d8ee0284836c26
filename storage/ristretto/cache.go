// Package ristretto provides an in-process storage.CacheRepository backed by
// a ristretto TTL cache. It is the default query cache when no persistent
// cache is configured.
package ristretto

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// CacheRepository implements storage.CacheRepository in memory.
type CacheRepository struct {
	cache *ristretto.Cache[uint64, *core.CacheEntry]
}

var _ storage.CacheRepository = (*CacheRepository)(nil)

// NewCacheRepository creates an in-process cache holding up to capacity
// entries. Zero or negative capacity defaults to 4096.
func NewCacheRepository(capacity int64) (*CacheRepository, error) {
	if capacity <= 0 {
		capacity = 4096
	}
	c, err := ristretto.NewCache(&ristretto.Config[uint64, *core.CacheEntry]{
		NumCounters: capacity * 10,
		MaxCost:     capacity,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &CacheRepository{cache: c}, nil
}

// GetEntry retrieves a cache entry by key. Expired entries read as missing.
func (r *CacheRepository) GetEntry(ctx context.Context, key core.ID) (*core.CacheEntry, bool, error) {
	entry, ok := r.cache.Get(uint64(key))
	if !ok || entry == nil {
		return nil, false, nil
	}
	if entry.Expired(time.Now().UTC()) {
		return nil, false, nil
	}
	return entry, true, nil
}

// PutEntry stores an entry with the given TTL, replacing any previous entry.
// The write is flushed before returning so an immediate probe sees it.
func (r *CacheRepository) PutEntry(ctx context.Context, entry *core.CacheEntry, ttl time.Duration) error {
	if entry == nil || ttl <= 0 {
		return storage.ErrInvalidQuery
	}
	r.cache.SetWithTTL(uint64(entry.Key), entry, 1, ttl)
	r.cache.Wait()
	return nil
}

// Close releases the underlying cache.
func (r *CacheRepository) Close() error {
	r.cache.Close()
	return nil
}
