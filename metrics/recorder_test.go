package metrics

import (
	"testing"

	"github.com/poiesic/recall/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderSnapshot(t *testing.T) {
	t.Run("empty window", func(t *testing.T) {
		snap := NewRecorder(16).Snapshot()
		assert.Equal(t, 0, snap.Count)
		assert.Equal(t, 0.0, snap.CacheHitRate)
	})

	t.Run("aggregates counts and hit rate", func(t *testing.T) {
		r := NewRecorder(16)
		require.NoError(t, r.Record(Entry{Strategy: core.StrategyDense, TookMs: 10, CacheHit: false}))
		require.NoError(t, r.Record(Entry{Strategy: core.StrategyDense, TookMs: 20, CacheHit: true}))
		require.NoError(t, r.Record(Entry{Strategy: core.StrategySparse, TookMs: 30, CacheHit: true}))
		require.NoError(t, r.Record(Entry{Strategy: core.StrategyHybrid, TookMs: 40, CacheHit: false}))

		snap := r.Snapshot()
		assert.Equal(t, 4, snap.Count)
		assert.Equal(t, 2, snap.CacheHits)
		assert.InDelta(t, 0.5, snap.CacheHitRate, 1e-9)
		assert.Equal(t, 2, snap.ByStrategy[core.StrategyDense])
		assert.Equal(t, 1, snap.ByStrategy[core.StrategySparse])
		assert.Equal(t, 1, snap.ByStrategy[core.StrategyHybrid])
	})

	t.Run("percentiles over uniform latencies", func(t *testing.T) {
		r := NewRecorder(128)
		for i := 1; i <= 100; i++ {
			require.NoError(t, r.Record(Entry{Strategy: core.StrategyDense, TookMs: float64(i)}))
		}
		snap := r.Snapshot()
		assert.InDelta(t, 50, snap.LatencyP50Ms, 1)
		assert.InDelta(t, 95, snap.LatencyP95Ms, 1)
		assert.InDelta(t, 99, snap.LatencyP99Ms, 1)
	})

	t.Run("ring evicts oldest entries", func(t *testing.T) {
		r := NewRecorder(4)
		for i := 0; i < 6; i++ {
			hit := i >= 2
			require.NoError(t, r.Record(Entry{Strategy: core.StrategyDense, TookMs: 1, CacheHit: hit}))
		}
		snap := r.Snapshot()
		assert.Equal(t, 4, snap.Count)
		assert.Equal(t, 4, snap.CacheHits)
	})
}

func TestPrometheusSink(t *testing.T) {
	sink := NewPrometheusSink()
	require.NoError(t, sink.Record(Entry{Strategy: core.StrategySparse, TookMs: 12.5, CacheHit: false, ItemCount: 5}))
	require.NoError(t, sink.Record(Entry{Strategy: core.StrategySparse, TookMs: 3.1, CacheHit: true, ItemCount: 5}))
	assert.NotNil(t, sink.Handler())
}
