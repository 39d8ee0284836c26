package storage

import (
	"testing"
	"time"

	"github.com/poiesic/recall/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnippetSerialization(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	snippet := &core.Snippet{
		Id:             core.IDFromContent("ws1\x1fdeploy with firebase deploy --only hosting"),
		WorkspaceId:    "ws1",
		Source:         core.SourceDoc,
		Text:           "deploy with firebase deploy --only hosting",
		LastUsedAt:     now.Add(-time.Hour),
		UseCount:       3,
		FeedbackWeight: 1.25,
		Metadata:       map[string]string{"path": "docs/deploy.md"},
		InsertedAt:     now,
		UpdatedAt:      now,
	}

	data := MarshalSnippet(snippet)
	got, err := UnmarshalSnippet(data)
	require.NoError(t, err)
	assert.Equal(t, snippet, got)
}

func TestSnippetSerializationZeroTimes(t *testing.T) {
	snippet := &core.Snippet{
		Id:          7,
		WorkspaceId: "ws1",
		Source:      core.SourceMemory,
		Text:        "never used",
	}

	got, err := UnmarshalSnippet(MarshalSnippet(snippet))
	require.NoError(t, err)
	assert.True(t, got.LastUsedAt.IsZero())
}

func TestCacheEntrySerialization(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	entry := &core.CacheEntry{
		Key:         core.CacheKey("ws1", core.StrategySparse, "how to deploy"),
		WorkspaceId: "ws1",
		Query:       "how to deploy",
		Strategy:    core.StrategySparse,
		Items: []core.RecallItem{
			{Id: 1, Source: core.SourceDoc, Text: "a", Score: 0.9, Metadata: map[string]string{"k": "v"}},
			{Id: 2, Source: core.SourceMemory, Text: "b", Score: 0.4},
		},
		CreatedAt: now,
		ExpireAt:  now.Add(20 * time.Minute),
		HitCount:  2,
	}

	got, err := UnmarshalCacheEntry(MarshalCacheEntry(entry))
	require.NoError(t, err)
	assert.Equal(t, entry, got)
}

func TestUnmarshalRejectsTruncatedData(t *testing.T) {
	data := MarshalSnippet(&core.Snippet{Id: 1, WorkspaceId: "ws", Source: core.SourceMemory, Text: "x"})
	_, err := UnmarshalSnippet(data[:len(data)-2])
	assert.Error(t, err)
}
