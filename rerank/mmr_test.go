package rerank

import (
	"sort"
	"testing"

	"github.com/poiesic/recall/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoredPool() []core.ScoredItem {
	pool := []core.ScoredItem{
		{Candidate: core.CandidateItem{Snippet: snippet(1, "firebase deploy command reference guide")}, Blended: 0.95},
		{Candidate: core.CandidateItem{Snippet: snippet(2, "firebase deploy command reference manual")}, Blended: 0.93},
		{Candidate: core.CandidateItem{Snippet: snippet(3, "postgres connection pool tuning advice")}, Blended: 0.70},
		{Candidate: core.CandidateItem{Snippet: snippet(4, "firebase deploy command reference handbook")}, Blended: 0.92},
		{Candidate: core.CandidateItem{Snippet: snippet(5, "react state management patterns overview")}, Blended: 0.60},
	}
	sort.SliceStable(pool, func(a, b int) bool { return pool[a].Blended > pool[b].Blended })
	return pool
}

func TestSelectMMR(t *testing.T) {
	t.Run("cardinality is min of k and pool", func(t *testing.T) {
		pool := scoredPool()
		assert.Len(t, SelectMMR(pool, 3, DefaultMMRLambda), 3)
		assert.Len(t, SelectMMR(pool, 10, DefaultMMRLambda), len(pool))
		assert.Empty(t, SelectMMR(pool, 0, DefaultMMRLambda))
		assert.Empty(t, SelectMMR(nil, 3, DefaultMMRLambda))
	})

	t.Run("seeds with highest blended score", func(t *testing.T) {
		selected := SelectMMR(scoredPool(), 3, DefaultMMRLambda)
		require.NotEmpty(t, selected)
		assert.Equal(t, core.ID(1), selected[0].Candidate.Snippet.Id)
	})

	t.Run("prefers diverse items over near duplicates", func(t *testing.T) {
		// Items 1, 2 and 4 are near-identical texts; with diversity
		// weighting on, a dissimilar lower-scored item breaks in.
		selected := SelectMMR(scoredPool(), 3, 0.5)
		ids := make([]core.ID, len(selected))
		for i, item := range selected {
			ids[i] = item.Candidate.Snippet.Id
		}
		assert.Contains(t, ids, core.ID(3))
	})

	t.Run("lambda one reproduces pure top-k ordering", func(t *testing.T) {
		pool := scoredPool()
		selected := SelectMMR(pool, 4, 1.0)
		require.Len(t, selected, 4)
		for i := range selected {
			assert.Equal(t, pool[i].Candidate.Snippet.Id, selected[i].Candidate.Snippet.Id)
		}
	})

	t.Run("no duplicate selections", func(t *testing.T) {
		selected := SelectMMR(scoredPool(), 5, 0.3)
		seen := map[core.ID]bool{}
		for _, item := range selected {
			id := item.Candidate.Snippet.Id
			assert.False(t, seen[id])
			seen[id] = true
		}
	})
}

func TestTokenCosine(t *testing.T) {
	a := tokenVector(snippet(1, "firebase deploy command"))
	b := tokenVector(snippet(2, "firebase deploy command"))
	c := tokenVector(snippet(3, "gardening tips for spring"))

	assert.InDelta(t, 1.0, tokenCosine(a, b), 1e-9)
	assert.Equal(t, 0.0, tokenCosine(a, c))
	assert.Equal(t, 0.0, tokenCosine(a, nil))
}
