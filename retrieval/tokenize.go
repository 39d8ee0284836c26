package retrieval

import (
	"strings"
	"unicode"
)

// Tokenize lowercases text, strips characters that are neither letters nor
// digits, and splits on whitespace. Empty tokens are dropped. Both rankers
// and the MMR diversity metric use this same tokenization so their notions
// of a "term" agree.
func Tokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

// termFrequencies counts token occurrences in an already-tokenized text.
func termFrequencies(tokens []string) map[string]int {
	tf := make(map[string]int, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return tf
}
