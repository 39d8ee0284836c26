package cache

import (
	"context"
	"testing"

	"github.com/poiesic/recall/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbedder(t *testing.T) {
	t.Run("nil inner", func(t *testing.T) {
		_, err := NewEmbedder(nil, 16)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("zero capacity uses default", func(t *testing.T) {
		e, err := NewEmbedder(mock.NewMockEmbedder(), 0)
		require.NoError(t, err)
		defer e.Close()
		assert.NotNil(t, e)
	})
}

func TestEmbedTexts_CachesMisses(t *testing.T) {
	inner := mock.NewMockEmbedder()
	e, err := NewEmbedder(inner, 128)
	require.NoError(t, err)
	defer e.Close()

	ctx := context.Background()
	texts := []string{"alpha", "beta", "gamma"}

	first, err := e.EmbedTexts(ctx, texts)
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.EqualValues(t, 3, e.Misses())

	second, err := e.EmbedTexts(ctx, texts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 3, e.Hits())

	// One inner batch call only; the second round was served from cache.
	assert.Equal(t, 1, inner.CallCount())
}

func TestEmbedTexts_PartialHit(t *testing.T) {
	inner := mock.NewMockEmbedder()
	e, err := NewEmbedder(inner, 128)
	require.NoError(t, err)
	defer e.Close()

	ctx := context.Background()
	_, err = e.EmbedTexts(ctx, []string{"alpha"})
	require.NoError(t, err)

	var forwarded []string
	inner.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		forwarded = texts
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, 0, 0}
		}
		return out, nil
	}

	result, err := e.EmbedTexts(ctx, []string{"alpha", "delta"})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, []string{"delta"}, forwarded)
}

func TestEmbedText_NormalizedKey(t *testing.T) {
	inner := mock.NewMockEmbedder()
	e, err := NewEmbedder(inner, 128)
	require.NoError(t, err)
	defer e.Close()

	ctx := context.Background()
	v1, err := e.EmbedText(ctx, "Hello   World")
	require.NoError(t, err)
	e.cache.Wait()

	_, err = e.EmbedText(ctx, "hello world")
	require.NoError(t, err)
	assert.EqualValues(t, 1, e.Hits())
	assert.NotNil(t, v1)
}
