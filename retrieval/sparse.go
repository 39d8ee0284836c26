package retrieval

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/poiesic/recall/core"
)

const (
	bm25K1 = 1.2
	bm25B  = 0.75

	// DefaultPhraseBoost multiplies a document's BM25 score once per
	// quoted phrase from the query that appears verbatim in the text.
	DefaultPhraseBoost = 1.5
)

var quotedSubstringRe = regexp.MustCompile(`"([^"]+)"`)

// SparseRetriever ranks candidates with BM25. Document statistics are
// computed per call over the supplied corpus window.
type SparseRetriever struct {
	phraseBoost float64
}

// NewSparseRetriever builds a BM25 ranker with the default phrase boost.
func NewSparseRetriever() *SparseRetriever {
	return &SparseRetriever{phraseBoost: DefaultPhraseBoost}
}

// SetPhraseBoost overrides the quoted-phrase boost factor. A factor of 1
// disables boosting.
func (r *SparseRetriever) SetPhraseBoost(factor float64) {
	if factor > 0 {
		r.phraseBoost = factor
	}
}

// Rank scores every candidate against query and returns the topK best,
// sorted by descending score. Candidates with a zero score are dropped.
func (r *SparseRetriever) Rank(query string, corpus []*core.Snippet, topK int) []core.CandidateItem {
	if topK <= 0 || len(corpus) == 0 {
		return nil
	}
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	docs := make([]map[string]int, len(corpus))
	lengths := make([]int, len(corpus))
	totalLen := 0
	for i, sn := range corpus {
		tokens := Tokenize(sn.Text)
		docs[i] = termFrequencies(tokens)
		lengths[i] = len(tokens)
		totalLen += len(tokens)
	}
	avgLen := float64(totalLen) / float64(len(corpus))
	if avgLen == 0 {
		return nil
	}

	// Document frequency per query term, over the fetched window only.
	df := make(map[string]int, len(queryTokens))
	for _, t := range queryTokens {
		if _, seen := df[t]; seen {
			continue
		}
		for i := range docs {
			if docs[i][t] > 0 {
				df[t]++
			}
		}
	}

	n := float64(len(corpus))
	idf := make(map[string]float64, len(df))
	for t, d := range df {
		idf[t] = math.Log((n-float64(d)+0.5)/(float64(d)+0.5) + 1)
	}

	phrases := quotedPhrases(query)
	items := make([]core.CandidateItem, 0, len(corpus))
	for i, sn := range corpus {
		score := 0.0
		norm := bm25K1 * (1 - bm25B + bm25B*float64(lengths[i])/avgLen)
		for _, t := range queryTokens {
			tf := float64(docs[i][t])
			if tf == 0 {
				continue
			}
			score += idf[t] * (tf * (bm25K1 + 1)) / (tf + norm)
		}
		if score <= 0 {
			continue
		}
		lower := strings.ToLower(sn.Text)
		for _, p := range phrases {
			if strings.Contains(lower, p) {
				score *= r.phraseBoost
			}
		}
		items = append(items, core.CandidateItem{Snippet: sn, RawScore: score})
	}

	sort.SliceStable(items, func(a, b int) bool {
		return items[a].RawScore > items[b].RawScore
	})
	if len(items) > topK {
		items = items[:topK]
	}
	return items
}

func quotedPhrases(query string) []string {
	matches := quotedSubstringRe.FindAllStringSubmatch(query, -1)
	phrases := make([]string, 0, len(matches))
	for _, m := range matches {
		phrases = append(phrases, strings.ToLower(m[1]))
	}
	return phrases
}
