package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepos(t *testing.T) (storage.SnippetRepository, storage.CacheRepository) {
	t.Helper()
	snippets, cache, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		cache.Close()
		snippets.Close()
		backend.Close()
	})
	return snippets, cache
}

func snippetFixture(workspace, text string) *core.Snippet {
	return &core.Snippet{
		WorkspaceId: workspace,
		Source:      core.SourceMemory,
		Text:        text,
	}
}

func TestAddSnippets(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := context.Background()

	t.Run("populates id and timestamps", func(t *testing.T) {
		added, err := repo.AddSnippets(ctx, snippetFixture("ws1", "first snippet"))
		require.NoError(t, err)
		require.Len(t, added, 1)
		assert.NotZero(t, added[0].Id)
		assert.False(t, added[0].InsertedAt.IsZero())
		assert.Equal(t, added[0].InsertedAt, added[0].UpdatedAt)
	})

	t.Run("same content is an idempotent upsert", func(t *testing.T) {
		first, err := repo.AddSnippets(ctx, snippetFixture("ws1", "same text"))
		require.NoError(t, err)
		require.NoError(t, repo.TouchSnippets(ctx, time.Now().UTC(), first[0].Id))

		second, err := repo.AddSnippets(ctx, snippetFixture("ws1", "same text"))
		require.NoError(t, err)
		assert.Equal(t, first[0].Id, second[0].Id)

		got, err := repo.GetSnippet(ctx, first[0].Id)
		require.NoError(t, err)
		assert.Equal(t, 1, got.UseCount, "upsert must preserve usage counters")
	})

	t.Run("rejects invalid snippet", func(t *testing.T) {
		_, err := repo.AddSnippets(ctx, &core.Snippet{WorkspaceId: "ws1", Source: core.SourceMemory})
		assert.ErrorIs(t, err, core.ErrEmptyText)
	})
}

func TestGetSnippet_NotFound(t *testing.T) {
	repo, _ := newTestRepos(t)
	_, err := repo.GetSnippet(context.Background(), core.ID(12345))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetRecentSnippets(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := context.Background()

	// Insert with distinct times so the recency ordering is observable.
	for i, text := range []string{"oldest entry", "middle entry", "newest entry"} {
		_, err := repo.AddSnippets(ctx, snippetFixture("ws1", text))
		require.NoError(t, err)
		_ = i
		time.Sleep(2 * time.Millisecond)
	}
	_, err := repo.AddSnippets(ctx, snippetFixture("other-ws", "foreign entry"))
	require.NoError(t, err)

	t.Run("newest first", func(t *testing.T) {
		got, err := repo.GetRecentSnippets(ctx, "ws1", 10)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "newest entry", got[0].Text)
		assert.Equal(t, "oldest entry", got[2].Text)
	})

	t.Run("respects limit", func(t *testing.T) {
		got, err := repo.GetRecentSnippets(ctx, "ws1", 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "newest entry", got[0].Text)
	})

	t.Run("workspaces are isolated", func(t *testing.T) {
		got, err := repo.GetRecentSnippets(ctx, "other-ws", 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "foreign entry", got[0].Text)
	})

	t.Run("rejects invalid parameters", func(t *testing.T) {
		_, err := repo.GetRecentSnippets(ctx, "", 10)
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
		_, err = repo.GetRecentSnippets(ctx, "ws1", 0)
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	})
}

func TestTouchSnippets(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := context.Background()

	added, err := repo.AddSnippets(ctx, snippetFixture("ws1", "touch me"))
	require.NoError(t, err)

	at := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.TouchSnippets(ctx, at, added[0].Id))
	require.NoError(t, repo.TouchSnippets(ctx, at.Add(time.Second), added[0].Id))

	got, err := repo.GetSnippet(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, 2, got.UseCount)
	assert.Equal(t, at.Add(time.Second), got.LastUsedAt)

	// Unknown IDs are skipped silently.
	assert.NoError(t, repo.TouchSnippets(ctx, at, core.ID(999)))
}

func TestSetFeedbackWeight(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := context.Background()

	added, err := repo.AddSnippets(ctx, snippetFixture("ws1", "weighted"))
	require.NoError(t, err)

	require.NoError(t, repo.SetFeedbackWeight(ctx, added[0].Id, 0.8))
	got, err := repo.GetSnippet(ctx, added[0].Id)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, got.FeedbackWeight, 1e-9)

	assert.ErrorIs(t, repo.SetFeedbackWeight(ctx, core.ID(999), 0.5), storage.ErrNotFound)
}

func TestDeleteSnippets(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := context.Background()

	added, err := repo.AddSnippets(ctx, snippetFixture("ws1", "doomed"))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteSnippets(ctx, added[0].Id))
	_, err = repo.GetSnippet(ctx, added[0].Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Recency index entry is gone too.
	got, err := repo.GetRecentSnippets(ctx, "ws1", 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.ErrorIs(t, repo.DeleteSnippets(ctx, added[0].Id), storage.ErrNotFound)
}

func TestCountSnippets(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := context.Background()

	count, err := repo.CountSnippets(ctx, "ws1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = repo.AddSnippets(ctx,
		snippetFixture("ws1", "one"),
		snippetFixture("ws1", "two"))
	require.NoError(t, err)

	count, err = repo.CountSnippets(ctx, "ws1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
