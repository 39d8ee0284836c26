package retrieval

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/strategy"
)

// rrfK is the standard reciprocal-rank-fusion constant.
const rrfK = 60.0

// DefaultDenseWeight is the dense share used by the explicit weighted API
// when the caller does not pick a weight.
const DefaultDenseWeight = 0.7

// HybridRetriever fuses sparse and dense rankings over the same corpus.
// Both branches run concurrently and over-fetch 2x the requested depth so
// fusion has enough overlap to work with.
type HybridRetriever struct {
	sparse *SparseRetriever
	dense  *DenseRetriever
}

// NewHybridRetriever combines the two single-mode rankers.
func NewHybridRetriever(sparse *SparseRetriever, dense *DenseRetriever) *HybridRetriever {
	return &HybridRetriever{sparse: sparse, dense: dense}
}

// Rank fuses by reciprocal rank fusion: each list contributes
// 1/(K + rank + 1) per item, contributions summed for items present in
// both lists. The first branch error aborts the call.
func (r *HybridRetriever) Rank(ctx context.Context, query string, corpus []*core.Snippet, topK int) ([]core.CandidateItem, error) {
	sparseItems, denseItems, err := r.fetchBoth(ctx, query, corpus, topK)
	if err != nil {
		return nil, err
	}

	scores := make(map[core.ID]float64, len(sparseItems)+len(denseItems))
	snippets := make(map[core.ID]*core.Snippet, len(sparseItems)+len(denseItems))
	for rank, item := range sparseItems {
		scores[item.Snippet.Id] += 1.0 / (rrfK + float64(rank) + 1)
		snippets[item.Snippet.Id] = item.Snippet
	}
	for rank, item := range denseItems {
		scores[item.Snippet.Id] += 1.0 / (rrfK + float64(rank) + 1)
		snippets[item.Snippet.Id] = item.Snippet
	}

	return sortAndTruncate(scores, snippets, topK), nil
}

// RankWeighted fuses by min-max normalizing each branch's raw scores to
// [0,1] and blending as denseWeight*dense + (1-denseWeight)*sparse. Pass a
// weight outside (0,1) to get DefaultDenseWeight.
func (r *HybridRetriever) RankWeighted(ctx context.Context, query string, corpus []*core.Snippet, topK int, denseWeight float64) ([]core.CandidateItem, error) {
	if denseWeight <= 0 || denseWeight >= 1 {
		denseWeight = DefaultDenseWeight
	}
	sparseItems, denseItems, err := r.fetchBoth(ctx, query, corpus, topK)
	if err != nil {
		return nil, err
	}

	sparseNorm := minMaxNormalize(sparseItems)
	denseNorm := minMaxNormalize(denseItems)

	scores := make(map[core.ID]float64, len(sparseItems)+len(denseItems))
	snippets := make(map[core.ID]*core.Snippet, len(sparseItems)+len(denseItems))
	for i, item := range sparseItems {
		scores[item.Snippet.Id] += (1 - denseWeight) * sparseNorm[i]
		snippets[item.Snippet.Id] = item.Snippet
	}
	for i, item := range denseItems {
		scores[item.Snippet.Id] += denseWeight * denseNorm[i]
		snippets[item.Snippet.Id] = item.Snippet
	}

	return sortAndTruncate(scores, snippets, topK), nil
}

// AdaptiveDenseWeight picks the dense share of the weighted blend from the
// query's shape: exact-match queries lean sparse, long natural language
// leans dense.
func AdaptiveDenseWeight(query string) float64 {
	tokens := Tokenize(query)
	switch {
	case strategy.HasQuotedPhrase(query):
		return 0.3
	case strategy.HasCodeSignal(query):
		return 0.5
	case len(tokens) <= 3:
		return 0.5
	case len(tokens) > 10:
		return 0.8
	default:
		return DefaultDenseWeight
	}
}

func (r *HybridRetriever) fetchBoth(ctx context.Context, query string, corpus []*core.Snippet, topK int) ([]core.CandidateItem, []core.CandidateItem, error) {
	if topK <= 0 || len(corpus) == 0 {
		return nil, nil, nil
	}
	fetchK := 2 * topK

	var sparseItems, denseItems []core.CandidateItem
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sparseItems = r.sparse.Rank(query, corpus, fetchK)
		return nil
	})
	g.Go(func() error {
		var err error
		denseItems, err = r.dense.Rank(gctx, query, corpus, fetchK)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return sparseItems, denseItems, nil
}

// minMaxNormalize maps raw scores to [0,1]. When the range is degenerate
// every item gets 1.0.
func minMaxNormalize(items []core.CandidateItem) []float64 {
	if len(items) == 0 {
		return nil
	}
	lo, hi := items[0].RawScore, items[0].RawScore
	for _, it := range items[1:] {
		if it.RawScore < lo {
			lo = it.RawScore
		}
		if it.RawScore > hi {
			hi = it.RawScore
		}
	}
	norm := make([]float64, len(items))
	if hi-lo < 1e-12 {
		for i := range norm {
			norm[i] = 1.0
		}
		return norm
	}
	for i, it := range items {
		norm[i] = (it.RawScore - lo) / (hi - lo)
	}
	return norm
}

func sortAndTruncate(scores map[core.ID]float64, snippets map[core.ID]*core.Snippet, topK int) []core.CandidateItem {
	items := make([]core.CandidateItem, 0, len(scores))
	for id, score := range scores {
		items = append(items, core.CandidateItem{Snippet: snippets[id], RawScore: score})
	}
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].RawScore != items[b].RawScore {
			return items[a].RawScore > items[b].RawScore
		}
		return items[a].Snippet.Id < items[b].Snippet.Id
	})
	if len(items) > topK {
		items = items[:topK]
	}
	return items
}
