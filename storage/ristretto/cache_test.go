package ristretto

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/recall/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRepository(t *testing.T) {
	repo, err := NewCacheRepository(128)
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	entry := &core.CacheEntry{
		Key:         core.CacheKey("ws1", core.StrategyHybrid, "some query"),
		WorkspaceId: "ws1",
		Query:       "some query",
		Strategy:    core.StrategyHybrid,
		Items:       []core.RecallItem{{Id: 1, Source: core.SourceMemory, Text: "hit", Score: 0.5}},
		CreatedAt:   now,
		ExpireAt:    now.Add(time.Minute),
	}

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, repo.PutEntry(ctx, entry, time.Minute))
		got, found, err := repo.GetEntry(ctx, entry.Key)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, entry.Items, got.Items)
	})

	t.Run("miss", func(t *testing.T) {
		_, found, err := repo.GetEntry(ctx, core.ID(999))
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("expiry", func(t *testing.T) {
		short := *entry
		short.Key = core.CacheKey("ws1", core.StrategyHybrid, "short lived")
		short.ExpireAt = time.Now().UTC().Add(5 * time.Millisecond)
		require.NoError(t, repo.PutEntry(ctx, &short, 5*time.Millisecond))

		time.Sleep(20 * time.Millisecond)
		_, found, err := repo.GetEntry(ctx, short.Key)
		require.NoError(t, err)
		assert.False(t, found)
	})
}
