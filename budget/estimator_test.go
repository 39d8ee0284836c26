package budget

import (
	"strings"
	"testing"

	"github.com/poiesic/recall/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateTokens(t *testing.T) {
	est := NewEstimator(nil)

	t.Run("empty text is zero", func(t *testing.T) {
		assert.Equal(t, 0, est.EstimateTokens(""))
	})

	t.Run("count grows with text", func(t *testing.T) {
		short := est.EstimateTokens("deploy the app")
		long := est.EstimateTokens(strings.Repeat("deploy the app to production ", 20))
		assert.Greater(t, short, 0)
		assert.Greater(t, long, short)
	})
}

func TestTruncateToTokens(t *testing.T) {
	est := NewEstimator(nil)

	t.Run("short text untouched", func(t *testing.T) {
		assert.Equal(t, "hello world", est.TruncateToTokens("hello world", 100))
	})

	t.Run("zero budget yields empty", func(t *testing.T) {
		assert.Equal(t, "", est.TruncateToTokens("hello world", 0))
	})

	t.Run("truncated text fits budget", func(t *testing.T) {
		text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 50)
		out := est.TruncateToTokens(text, 10)
		assert.Less(t, len(out), len(text))
		assert.LessOrEqual(t, est.EstimateTokens(out), 10)
	})
}

func TestFitToBudget(t *testing.T) {
	est := NewEstimator(nil)

	items := []core.RecallItem{
		{Id: 1, Text: "first snippet about deployment", Score: 0.9},
		{Id: 2, Text: strings.Repeat("very long snippet text ", 200), Score: 0.8},
		{Id: 3, Text: "third snippet about rollback", Score: 0.7},
	}

	t.Run("skips oversized item and keeps later ones", func(t *testing.T) {
		budget := est.EstimateTokens(items[0].Text) + est.EstimateTokens(items[2].Text) + 2
		kept := est.FitToBudget(items, budget)
		require.Len(t, kept, 2)
		assert.Equal(t, core.ID(1), kept[0].Id)
		assert.Equal(t, core.ID(3), kept[1].Id)
	})

	t.Run("never exceeds the cap", func(t *testing.T) {
		for _, budget := range []int{5, 20, 100, 1000} {
			kept := est.FitToBudget(items, budget)
			total := 0
			for _, it := range kept {
				total += est.EstimateTokens(it.Text)
			}
			assert.LessOrEqual(t, total, budget, "budget %d", budget)
		}
	})

	t.Run("single oversized first item is truncated not dropped", func(t *testing.T) {
		kept := est.FitToBudget([]core.RecallItem{items[1]}, 10)
		require.Len(t, kept, 1)
		assert.LessOrEqual(t, est.EstimateTokens(kept[0].Text), 10)
	})

	t.Run("nil on zero budget", func(t *testing.T) {
		assert.Nil(t, est.FitToBudget(items, 0))
	})
}
