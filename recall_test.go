package recall

import (
	"context"
	"testing"

	"github.com/poiesic/recall/ai/mock"
	"github.com/poiesic/recall/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSystem(t *testing.T) *System {
	t.Helper()
	sys, err := NewSystem("", true, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	t.Cleanup(func() { sys.Close() })
	return sys
}

func TestSystemRecall(t *testing.T) {
	sys := newTestSystem(t)
	ctx := context.Background()

	_, err := sys.SnippetRepository().AddSnippets(ctx,
		&core.Snippet{WorkspaceId: "ws1", Source: core.SourceDoc, Text: "Run the firebase deploy command to ship."},
		&core.Snippet{WorkspaceId: "ws1", Source: core.SourceMemory, Text: "Random unrelated text"},
	)
	require.NoError(t, err)

	result, err := sys.Engine().Recall(ctx, `"firebase deploy" command`, core.DefaultRecallOpts("ws1"))
	require.NoError(t, err)
	require.NotEmpty(t, result.Items)
	assert.Contains(t, result.Items[0].Text, "firebase deploy")
	assert.Equal(t, core.StrategySparse, result.Diagnostics.Strategy)
}

func TestSystemCachesAcrossCalls(t *testing.T) {
	sys := newTestSystem(t)
	ctx := context.Background()

	_, err := sys.SnippetRepository().AddSnippets(ctx,
		&core.Snippet{WorkspaceId: "ws1", Source: core.SourceDoc, Text: "staging rollout checklist"},
	)
	require.NoError(t, err)

	opts := core.DefaultRecallOpts("ws1")
	first, err := sys.Engine().Recall(ctx, "staging rollout", opts)
	require.NoError(t, err)
	second, err := sys.Engine().Recall(ctx, "staging rollout", opts)
	require.NoError(t, err)

	assert.False(t, first.Diagnostics.CacheHit)
	assert.True(t, second.Diagnostics.CacheHit)
}

func TestSystemClose(t *testing.T) {
	provider := mock.NewMockProvider()
	sys, err := NewSystem("", true, WithProvider(provider))
	require.NoError(t, err)
	require.NoError(t, sys.Close())
	assert.True(t, provider.Closed())
}
