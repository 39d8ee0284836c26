package rerank

import (
	"math"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/retrieval"
)

// DefaultMMRLambda trades relevance against diversity; higher values favor
// relevance.
const DefaultMMRLambda = 0.65

// SelectMMR greedily picks min(k, len(pool)) items from a blended-score
// sorted pool. Each step takes the candidate maximizing
//
//	lambda*relevance - (1-lambda)*maxSimilarityToSelected
//
// where relevance is the candidate's blended score and the similarity term
// is a bag-of-words cosine against every already-selected item's text. At
// lambda=1 this degenerates to plain truncation of the sorted pool.
func SelectMMR(pool []core.ScoredItem, k int, lambda float64) []core.ScoredItem {
	if k <= 0 || len(pool) == 0 {
		return nil
	}
	if lambda < 0 || lambda > 1 {
		lambda = DefaultMMRLambda
	}
	if k > len(pool) {
		k = len(pool)
	}

	vectors := make([]map[string]int, len(pool))
	for i, item := range pool {
		vectors[i] = tokenVector(item.Candidate.Snippet)
	}

	selected := make([]core.ScoredItem, 0, k)
	selectedIdx := make([]int, 0, k)
	used := make([]bool, len(pool))

	// Pool is sorted descending, so the relevance-only best seed is index 0.
	selected = append(selected, pool[0])
	selectedIdx = append(selectedIdx, 0)
	used[0] = true

	for len(selected) < k {
		bestIdx := -1
		bestScore := math.Inf(-1)
		for i, item := range pool {
			if used[i] {
				continue
			}
			maxSim := 0.0
			for _, si := range selectedIdx {
				sim := tokenCosine(vectors[i], vectors[si])
				if sim > maxSim {
					maxSim = sim
				}
			}
			score := lambda*item.Blended - (1-lambda)*maxSim
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		selected = append(selected, pool[bestIdx])
		selectedIdx = append(selectedIdx, bestIdx)
		used[bestIdx] = true
	}
	return selected
}

func tokenVector(sn *core.Snippet) map[string]int {
	if sn == nil {
		return nil
	}
	vec := make(map[string]int)
	for _, t := range retrieval.Tokenize(sn.Text) {
		vec[t]++
	}
	return vec
}

// tokenCosine is cosine similarity over term-frequency vectors. Cheap
// bag-of-words diversity metric; deliberately not the embedding space.
func tokenCosine(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot, normA, normB float64
	for t, ca := range a {
		normA += float64(ca) * float64(ca)
		if cb, ok := b[t]; ok {
			dot += float64(ca) * float64(cb)
		}
	}
	for _, cb := range b {
		normB += float64(cb) * float64(cb)
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
