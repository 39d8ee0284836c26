package rerank

import (
	"testing"
	"time"

	"github.com/poiesic/recall/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snippet(id core.ID, text string) *core.Snippet {
	return &core.Snippet{Id: id, WorkspaceId: "ws1", Source: core.SourceMemory, Text: text}
}

func TestBlendScores(t *testing.T) {
	now := time.Now().UTC()
	weights := DefaultWeights()

	t.Run("sorted descending by blended score", func(t *testing.T) {
		candidates := []core.CandidateItem{
			{Snippet: snippet(1, "low relevance"), RawScore: 0.1},
			{Snippet: snippet(2, "high relevance"), RawScore: 0.9},
			{Snippet: snippet(3, "mid relevance"), RawScore: 0.5},
		}
		scored := BlendScores(candidates, now, weights)
		require.Len(t, scored, 3)
		assert.Equal(t, core.ID(2), scored[0].Candidate.Snippet.Id)
		assert.Equal(t, core.ID(1), scored[2].Candidate.Snippet.Id)
		for i := 1; i < len(scored); i++ {
			assert.GreaterOrEqual(t, scored[i-1].Blended, scored[i].Blended)
		}
	})

	t.Run("scores are never negative", func(t *testing.T) {
		sn := snippet(1, "penalized snippet")
		sn.FeedbackWeight = -10
		scored := BlendScores([]core.CandidateItem{{Snippet: sn, RawScore: 0.5}}, now, weights)
		require.Len(t, scored, 1)
		assert.GreaterOrEqual(t, scored[0].Blended, 0.0)
	})

	t.Run("feedback weight lifts equally similar snippets", func(t *testing.T) {
		liked := snippet(1, "liked")
		liked.FeedbackWeight = 1.0
		neutral := snippet(2, "neutral")
		scored := BlendScores([]core.CandidateItem{
			{Snippet: neutral, RawScore: 0.5},
			{Snippet: liked, RawScore: 0.5},
		}, now, weights)
		assert.Equal(t, core.ID(1), scored[0].Candidate.Snippet.Id)
	})

	t.Run("empty pool", func(t *testing.T) {
		assert.Nil(t, BlendScores(nil, now, weights))
	})
}

func TestRecencyScore(t *testing.T) {
	now := time.Now().UTC()

	t.Run("just used is near one", func(t *testing.T) {
		assert.InDelta(t, 1.0, recencyScore(now.Add(-time.Second), now), 0.001)
	})

	t.Run("seven days old is one over e", func(t *testing.T) {
		assert.InDelta(t, 1.0/2.718281828, recencyScore(now.Add(-7*24*time.Hour), now), 0.001)
	})

	t.Run("zero timestamp scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, recencyScore(time.Time{}, now))
	})

	t.Run("future timestamp scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, recencyScore(now.Add(time.Hour), now))
	})
}

func TestNoveltyScore(t *testing.T) {
	assert.Equal(t, 1.0, noveltyScore(0))
	assert.InDelta(t, 0.5, noveltyScore(50), 1e-9)
	assert.Equal(t, 0.0, noveltyScore(100))
	assert.Equal(t, 0.0, noveltyScore(500))
}
