package rerank

import (
	"math"
	"sort"
	"time"

	"github.com/poiesic/recall/core"
)

// Weights controls the blended-score mix. The four shares should sum to 1
// but nothing enforces it; callers tuning weights own that property.
type Weights struct {
	Similarity float64
	Feedback   float64
	Recency    float64
	Novelty    float64
}

// DefaultWeights favors similarity, then learned feedback, with recency
// and novelty as tie-breakers.
func DefaultWeights() Weights {
	return Weights{Similarity: 0.5, Feedback: 0.3, Recency: 0.15, Novelty: 0.05}
}

// recencyHalfLife is the age at which the recency signal decays to 1/e.
const recencyHalfLife = 7 * 24 * time.Hour

// noveltyUseCeiling is the use count at which novelty bottoms out at 0.
const noveltyUseCeiling = 100

// BlendScores computes a blended score for every candidate and returns
// them sorted descending by that score. Similarity is the candidate's raw
// retriever score min-max normalized over the pool, so candidates from
// different retrievers compare on equal footing.
func BlendScores(candidates []core.CandidateItem, now time.Time, weights Weights) []core.ScoredItem {
	if len(candidates) == 0 {
		return nil
	}
	similarities := normalizeRawScores(candidates)

	scored := make([]core.ScoredItem, len(candidates))
	for i, cand := range candidates {
		item := core.ScoredItem{
			Candidate:  cand,
			Similarity: similarities[i],
		}
		if sn := cand.Snippet; sn != nil {
			item.FeedbackWeight = sn.FeedbackWeight
			item.Recency = recencyScore(sn.LastUsedAt, now)
			item.Novelty = noveltyScore(sn.UseCount)
		}
		item.Blended = weights.Similarity*item.Similarity +
			weights.Feedback*item.FeedbackWeight +
			weights.Recency*item.Recency +
			weights.Novelty*item.Novelty
		if item.Blended < 0 {
			item.Blended = 0
		}
		scored[i] = item
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Blended > scored[b].Blended
	})
	return scored
}

// recencyScore decays exponentially with age at a 7-day half-life. A zero
// timestamp means never used; a timestamp in the future is invalid. Both
// score 0.
func recencyScore(lastUsedAt, now time.Time) float64 {
	if lastUsedAt.IsZero() || lastUsedAt.After(now) {
		return 0
	}
	age := now.Sub(lastUsedAt)
	return math.Exp(-float64(age) / float64(recencyHalfLife))
}

// noveltyScore rewards rarely-surfaced snippets, dropping linearly to 0 at
// the use ceiling.
func noveltyScore(useCount int) float64 {
	novelty := 1 - float64(useCount)/noveltyUseCeiling
	if novelty < 0 {
		return 0
	}
	return novelty
}

func normalizeRawScores(candidates []core.CandidateItem) []float64 {
	lo, hi := candidates[0].RawScore, candidates[0].RawScore
	for _, c := range candidates[1:] {
		if c.RawScore < lo {
			lo = c.RawScore
		}
		if c.RawScore > hi {
			hi = c.RawScore
		}
	}
	norm := make([]float64, len(candidates))
	if hi-lo < 1e-12 {
		for i := range norm {
			norm[i] = 1.0
		}
		return norm
	}
	for i, c := range candidates {
		norm[i] = (c.RawScore - lo) / (hi - lo)
	}
	return norm
}
