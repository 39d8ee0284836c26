package storage

import (
	"context"
	"time"

	"github.com/poiesic/recall/core"
)

// SnippetRepository provides operations for the snippet corpus.
// Implementations must be thread-safe and support concurrent access.
type SnippetRepository interface {
	// AddSnippets adds one or more snippets to storage.
	// IDs are derived from content (IDFromContent of workspace + text), so
	// re-adding identical content is an idempotent upsert.
	// Sets InsertedAt/UpdatedAt timestamps.
	// Returns the snippets with IDs and timestamps populated.
	AddSnippets(ctx context.Context, snippets ...*core.Snippet) ([]*core.Snippet, error)

	// GetSnippet retrieves a single snippet by ID.
	// Returns ErrNotFound if the snippet doesn't exist.
	GetSnippet(ctx context.Context, id core.ID) (*core.Snippet, error)

	// GetRecentSnippets retrieves the N most recently inserted snippets for a
	// workspace, newest first. This is the sole corpus source for retrieval.
	GetRecentSnippets(ctx context.Context, workspaceId string, limit int) ([]*core.Snippet, error)

	// TouchSnippets bumps use_count and last_used_at for the given snippets.
	// Missing IDs are skipped without error.
	TouchSnippets(ctx context.Context, at time.Time, ids ...core.ID) error

	// SetFeedbackWeight replaces the feedback weight of a snippet.
	// The weight update algorithm itself lives outside this module; this is
	// only the write surface it uses.
	// Returns ErrNotFound if the snippet doesn't exist.
	SetFeedbackWeight(ctx context.Context, id core.ID, weight float64) error

	// DeleteSnippets removes snippets by their IDs.
	// Returns ErrNotFound if any snippet doesn't exist.
	DeleteSnippets(ctx context.Context, ids ...core.ID) error

	// CountSnippets returns the number of snippets stored for a workspace.
	CountSnippets(ctx context.Context, workspaceId string) (int, error)

	// Close closes the repository and releases resources.
	Close() error
}

// CacheRepository stores ranked recall results keyed by deterministic query
// hash. Implementations must be safe for concurrent access; callers treat
// every failure as a cache miss.
type CacheRepository interface {
	// GetEntry retrieves a cache entry by key.
	// Returns found=false for missing or expired entries.
	GetEntry(ctx context.Context, key core.ID) (*core.CacheEntry, bool, error)

	// PutEntry stores an entry with the given TTL, replacing any previous
	// entry under the same key.
	PutEntry(ctx context.Context, entry *core.CacheEntry, ttl time.Duration) error

	// Close closes the repository and releases resources.
	Close() error
}
