package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/core"
)

// zeroNormEpsilon is the norm below which a vector is treated as zero;
// cosine similarity against it is defined as exactly 0.
const zeroNormEpsilon = 1e-9

// DenseRetriever ranks candidates by cosine similarity between the query
// embedding and each candidate's embedding. Embedding caching is the
// provider's concern; this ranker always asks for the full batch.
type DenseRetriever struct {
	embedder ai.Embedder
}

// NewDenseRetriever builds a semantic ranker over embedder.
func NewDenseRetriever(embedder ai.Embedder) *DenseRetriever {
	return &DenseRetriever{embedder: embedder}
}

// Rank embeds the query and every candidate, scores by cosine similarity
// and returns the topK best sorted descending. Embedding errors abort the
// call; a dimension mismatch between any pair of vectors is a hard error.
func (r *DenseRetriever) Rank(ctx context.Context, query string, corpus []*core.Snippet, topK int) ([]core.CandidateItem, error) {
	if topK <= 0 || len(corpus) == 0 {
		return nil, nil
	}

	queryVec, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrEmbeddingFailure, err)
	}

	texts := make([]string, len(corpus))
	for i, sn := range corpus {
		texts[i] = sn.Text
	}
	vecs, err := r.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: corpus batch: %v", ErrEmbeddingFailure, err)
	}
	if len(vecs) != len(corpus) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbeddingFailure, len(vecs), len(corpus))
	}

	items := make([]core.CandidateItem, 0, len(corpus))
	for i, sn := range corpus {
		sim, err := CosineSimilarity(queryVec, vecs[i])
		if err != nil {
			return nil, err
		}
		items = append(items, core.CandidateItem{Snippet: sn, RawScore: sim})
	}

	sort.SliceStable(items, func(a, b int) bool {
		return items[a].RawScore > items[b].RawScore
	})
	if len(items) > topK {
		items = items[:topK]
	}
	return items, nil
}

// CosineSimilarity returns dot(a,b)/(|a|*|b|), or 0 when either norm is
// below zeroNormEpsilon. Vectors of different lengths are an error.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	normA = math.Sqrt(normA)
	normB = math.Sqrt(normB)
	if normA < zeroNormEpsilon || normB < zeroNormEpsilon {
		return 0, nil
	}
	return dot / (normA * normB), nil
}
