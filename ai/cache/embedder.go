package cache

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/core"
)

// Embedder wraps another ai.Embedder with an in-process ristretto cache keyed
// by normalized text. Batch calls only forward the texts that miss.
type Embedder struct {
	inner  ai.Embedder
	cache  *ristretto.Cache[string, []float32]
	logger *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder creates a caching wrapper around inner holding up to capacity
// embeddings.
func NewEmbedder(inner ai.Embedder, capacity int64) (*Embedder, error) {
	if inner == nil {
		return nil, ErrEmbedderRequired
	}
	if capacity <= 0 {
		capacity = 8192
	}

	c, err := ristretto.NewCache(&ristretto.Config[string, []float32]{
		NumCounters: capacity * 10,
		MaxCost:     capacity,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &Embedder{
		inner:  inner,
		cache:  c,
		logger: slog.Default().With("component", "embedding-cache"),
	}, nil
}

// EmbedText returns the cached vector for the text, embedding on miss.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	key := core.NormalizeQuery(text)
	if vec, ok := e.cache.Get(key); ok {
		e.hits.Add(1)
		return vec, nil
	}
	e.misses.Add(1)

	vec, err := e.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Set(key, vec, 1)
	return vec, nil
}

// EmbedTexts returns vectors for all texts in input order, batching only the
// cache misses to the inner embedder.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	var missed []string
	var missedIdx []int

	for i, text := range texts {
		key := core.NormalizeQuery(text)
		if vec, ok := e.cache.Get(key); ok {
			e.hits.Add(1)
			result[i] = vec
			continue
		}
		e.misses.Add(1)
		missed = append(missed, text)
		missedIdx = append(missedIdx, i)
	}

	if len(missed) == 0 {
		return result, nil
	}

	e.logger.Debug("embedding cache misses", "missed", len(missed), "total", len(texts))

	vectors, err := e.inner.EmbedTexts(ctx, missed)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missed) {
		return nil, ErrBatchSizeMismatch
	}

	for j, vec := range vectors {
		result[missedIdx[j]] = vec
		e.cache.Set(core.NormalizeQuery(missed[j]), vec, 1)
	}
	// Make freshly cached vectors visible before returning so that repeated
	// recalls over the same corpus hit the cache deterministically.
	e.cache.Wait()

	return result, nil
}

// Hits returns the number of cache hits so far.
func (e *Embedder) Hits() int64 { return e.hits.Load() }

// Misses returns the number of cache misses so far.
func (e *Embedder) Misses() int64 { return e.misses.Load() }

// Close releases the underlying cache.
func (e *Embedder) Close() {
	e.cache.Close()
}
