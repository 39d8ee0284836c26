package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// SnippetRepository implements storage.SnippetRepository for BadgerDB.
type SnippetRepository struct {
	backend *Backend
}

var _ storage.SnippetRepository = (*SnippetRepository)(nil)

// NewSnippetRepository creates a new SnippetRepository.
func NewSnippetRepository(backend *Backend) (*SnippetRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &SnippetRepository{backend: backend}, nil
}

// Close is a no-op; the backend owns the database handle.
func (r *SnippetRepository) Close() error {
	return nil
}

// AddSnippets adds one or more snippets to storage. IDs are content hashes,
// so adding the same workspace/text pair twice is an upsert that preserves
// usage counters.
func (r *SnippetRepository) AddSnippets(ctx context.Context, snippets ...*core.Snippet) ([]*core.Snippet, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, snippet := range snippets {
			if err := core.ValidateSnippet(snippet); err != nil {
				return err
			}

			snippet.Id = core.IDFromContent(snippet.WorkspaceId + "\x1f" + snippet.Text)
			now := time.Now().UTC()

			key := makeSnippetKey(snippet.Id)
			old, err := r.readSnippet(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				// Upsert: carry usage state and original insertion time so the
				// recency index stays put.
				snippet.UseCount = old.UseCount
				snippet.LastUsedAt = old.LastUsedAt
				snippet.FeedbackWeight = old.FeedbackWeight
				snippet.InsertedAt = old.InsertedAt
				snippet.UpdatedAt = now
			} else {
				snippet.InsertedAt = now
				snippet.UpdatedAt = now
			}

			if err := tx.Set(key, storage.MarshalSnippet(snippet)); err != nil {
				return err
			}

			if old == nil {
				recentKey := makeRecentKey(snippet.WorkspaceId, snippet.InsertedAt, snippet.Id)
				if err := tx.Set(recentKey, storage.MarshalID(snippet.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return snippets, nil
}

// GetSnippet retrieves a single snippet by ID.
func (r *SnippetRepository) GetSnippet(ctx context.Context, id core.ID) (*core.Snippet, error) {
	var snippet *core.Snippet
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		snippet, err = r.readSnippet(tx, makeSnippetKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if snippet == nil {
		return nil, storage.ErrNotFound
	}
	return snippet, nil
}

// GetRecentSnippets retrieves the N most recently inserted snippets for a
// workspace, newest first, by scanning the recency index.
func (r *SnippetRepository) GetRecentSnippets(ctx context.Context, workspaceId string, limit int) ([]*core.Snippet, error) {
	if workspaceId == "" {
		return nil, storage.ErrInvalidQuery
	}
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var snippets []*core.Snippet
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeRecentPrefix(workspaceId)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid() && len(snippets) < limit; iter.Next() {
			var id core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}

			snippet, err := r.readSnippet(tx, makeSnippetKey(id))
			if err != nil {
				return err
			}
			if snippet != nil {
				snippets = append(snippets, snippet)
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return snippets, nil
}

// TouchSnippets bumps use_count and last_used_at for the given snippets.
func (r *SnippetRepository) TouchSnippets(ctx context.Context, at time.Time, ids ...core.ID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeSnippetKey(id)
			snippet, err := r.readSnippet(tx, key)
			if err != nil {
				return err
			}
			if snippet == nil {
				continue
			}
			snippet.UseCount++
			snippet.LastUsedAt = at
			snippet.UpdatedAt = at
			if err := tx.Set(key, storage.MarshalSnippet(snippet)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// SetFeedbackWeight replaces the feedback weight of a snippet.
func (r *SnippetRepository) SetFeedbackWeight(ctx context.Context, id core.ID, weight float64) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSnippetKey(id)
		snippet, err := r.readSnippet(tx, key)
		if err != nil {
			return err
		}
		if snippet == nil {
			return storage.ErrNotFound
		}
		snippet.FeedbackWeight = weight
		snippet.UpdatedAt = time.Now().UTC()
		if err := tx.Set(key, storage.MarshalSnippet(snippet)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteSnippets removes snippets and their recency index entries.
func (r *SnippetRepository) DeleteSnippets(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeSnippetKey(id)
			snippet, err := r.readSnippet(tx, key)
			if err != nil {
				return err
			}
			if snippet == nil {
				return storage.ErrNotFound
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
			recentKey := makeRecentKey(snippet.WorkspaceId, snippet.InsertedAt, snippet.Id)
			if err := tx.Delete(recentKey); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// CountSnippets returns the number of snippets stored for a workspace.
func (r *SnippetRepository) CountSnippets(ctx context.Context, workspaceId string) (int, error) {
	if workspaceId == "" {
		return 0, storage.ErrInvalidQuery
	}
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeRecentPrefix(workspaceId)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// readSnippet reads a snippet by key, returning nil if it doesn't exist.
func (r *SnippetRepository) readSnippet(tx *badger.Txn, key []byte) (*core.Snippet, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var snippet *core.Snippet
	err = item.Value(func(val []byte) error {
		var err error
		snippet, err = storage.UnmarshalSnippet(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snippet, nil
}
