package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// CacheRepository implements storage.CacheRepository on BadgerDB.
// Entries carry both a badger-level TTL and an ExpireAt timestamp; the
// read path checks ExpireAt so a stale entry is treated as missing even
// before badger reclaims it.
type CacheRepository struct {
	backend *Backend
}

var _ storage.CacheRepository = (*CacheRepository)(nil)

// NewCacheRepository creates a new CacheRepository.
func NewCacheRepository(backend *Backend) (*CacheRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &CacheRepository{backend: backend}, nil
}

// Close is a no-op; the backend owns the database handle.
func (r *CacheRepository) Close() error {
	return nil
}

// GetEntry retrieves a cache entry by key. Expired entries read as missing.
func (r *CacheRepository) GetEntry(ctx context.Context, key core.ID) (*core.CacheEntry, bool, error) {
	var entry *core.CacheEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCacheEntryKey(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			entry, err = storage.UnmarshalCacheEntry(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, false, err
	}
	if entry == nil || entry.Expired(time.Now().UTC()) {
		return nil, false, nil
	}
	return entry, true, nil
}

// PutEntry stores an entry with the given TTL, replacing any previous entry.
func (r *CacheRepository) PutEntry(ctx context.Context, entry *core.CacheEntry, ttl time.Duration) error {
	if entry == nil || ttl <= 0 {
		return storage.ErrInvalidQuery
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		e := badger.NewEntry(makeCacheEntryKey(entry.Key), storage.MarshalCacheEntry(entry)).WithTTL(ttl)
		if err := tx.SetEntry(e); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
