package retrieval

import (
	"fmt"
	"strings"
	"testing"

	"github.com/poiesic/recall/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeCorpus(texts ...string) []*core.Snippet {
	corpus := make([]*core.Snippet, len(texts))
	for i, text := range texts {
		corpus[i] = &core.Snippet{
			Id:          core.ID(i + 1),
			WorkspaceId: "ws1",
			Source:      core.SourceDoc,
			Text:        text,
		}
	}
	return corpus
}

func TestSparseRank(t *testing.T) {
	r := NewSparseRetriever()

	t.Run("relevant document outranks decoy", func(t *testing.T) {
		corpus := makeCorpus(
			"Random unrelated text about cooking pasta",
			"Run the firebase deploy command to ship.",
			"General notes on project setup",
		)
		items := r.Rank("firebase deploy command", corpus, 8)
		require.NotEmpty(t, items)
		assert.Equal(t, core.ID(2), items[0].Snippet.Id)
		assert.Greater(t, items[0].RawScore, 0.0)
	})

	t.Run("scores are non-negative", func(t *testing.T) {
		corpus := makeCorpus("alpha beta", "gamma delta", "alpha alpha alpha")
		for _, item := range r.Rank("alpha gamma", corpus, 10) {
			assert.GreaterOrEqual(t, item.RawScore, 0.0)
		}
	})

	t.Run("score non-decreasing in term frequency", func(t *testing.T) {
		low := makeCorpus("deploy once and " + strings.Repeat("filler ", 8))
		high := makeCorpus("deploy deploy deploy and " + strings.Repeat("filler ", 8))
		// Pad each corpus with the same neutral documents so IDF and
		// average length stay comparable.
		for i := 0; i < 3; i++ {
			pad := fmt.Sprintf("neutral document number %d about nothing in particular", i)
			low = append(low, makeCorpus(pad)...)
			high = append(high, makeCorpus(pad)...)
		}
		lowItems := r.Rank("deploy", low, 1)
		highItems := r.Rank("deploy", high, 1)
		require.NotEmpty(t, lowItems)
		require.NotEmpty(t, highItems)
		assert.GreaterOrEqual(t, highItems[0].RawScore, lowItems[0].RawScore)
	})

	t.Run("phrase boost lifts exact quoted match", func(t *testing.T) {
		corpus := makeCorpus(
			"the deploy firebase order is reversed here",
			"run firebase deploy now",
		)
		items := r.Rank(`"firebase deploy" instructions`, corpus, 2)
		require.Len(t, items, 2)
		assert.Equal(t, core.ID(2), items[0].Snippet.Id)
	})

	t.Run("truncates to topK", func(t *testing.T) {
		corpus := makeCorpus("alpha one", "alpha two", "alpha three", "alpha four")
		assert.Len(t, r.Rank("alpha", corpus, 2), 2)
	})

	t.Run("empty query or corpus", func(t *testing.T) {
		assert.Empty(t, r.Rank("", makeCorpus("text"), 5))
		assert.Empty(t, r.Rank("query", nil, 5))
		assert.Empty(t, r.Rank("query", makeCorpus("text"), 0))
	})
}
