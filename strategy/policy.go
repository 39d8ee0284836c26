// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package strategy classifies a free-text query into a retrieval strategy.
// Classification is deterministic and purely lexical: exact-match signals
// route to sparse retrieval, code-shaped or very short queries to hybrid,
// and long natural language to dense. The rules are ordered and the first
// match wins; Explain and Confidence mirror that same order so the three
// functions never disagree about which rule fired.
package strategy

import (
	"regexp"
	"strings"

	"github.com/poiesic/recall/core"
)

var (
	quotedPhraseRe = regexp.MustCompile(`"[^"]+"`)
	filterTokenRe  = regexp.MustCompile(`(?i)\b(?:file|path|site):\S`)
	leadingTagRe   = regexp.MustCompile(`(?:^|\s)#\w`)
	findVerbRe     = regexp.MustCompile(`(?i)\b(?:find|search|locate)\b\s+\S`)
	codeKeywordRe  = regexp.MustCompile(`(?i)\b(?:function|class|const|import|export|def|if|for|while)\b`)
)

// Choose picks a retrieval strategy for query. Rule order matters:
// exact-match signals beat code signals beat length.
func Choose(query string) core.Strategy {
	if HasExactMatchSignal(query) {
		return core.StrategySparse
	}
	if HasCodeSignal(query) {
		return core.StrategyHybrid
	}
	if tokenCount(query) <= 4 {
		return core.StrategyHybrid
	}
	return core.StrategyDense
}

// Confidence reports a fixed heuristic confidence for a (query, strategy)
// pair. It is advisory only: logging and UX, never execution gating.
func Confidence(query string, chosen core.Strategy) float64 {
	switch {
	case chosen == core.StrategySparse && HasExactMatchSignal(query):
		return 0.95
	case chosen == core.StrategyDense && tokenCount(query) > 10:
		return 0.90
	case chosen == core.StrategyHybrid && tokenCount(query) <= 4 && !HasCodeSignal(query):
		return 0.85
	default:
		return 0.70
	}
}

// Explain returns a human-readable justification matching the rule Choose
// would fire for query.
func Explain(query string) string {
	switch {
	case quotedPhraseRe.MatchString(query):
		return "quoted phrase requests exact matching, using sparse retrieval"
	case filterTokenRe.MatchString(query) || leadingTagRe.MatchString(query):
		return "filter token requests exact matching, using sparse retrieval"
	case findVerbRe.MatchString(query):
		return "explicit find/search verb requests exact matching, using sparse retrieval"
	case HasCodeSignal(query):
		return "code signals benefit from both lexical and semantic matching, using hybrid retrieval"
	case tokenCount(query) <= 4:
		return "short query carries little semantic context, using hybrid retrieval"
	default:
		return "long natural-language query, using dense retrieval"
	}
}

// HasQuotedPhrase reports whether query contains a "quoted phrase".
func HasQuotedPhrase(query string) bool {
	return quotedPhraseRe.MatchString(query)
}

// HasExactMatchSignal reports whether query carries a signal that calls
// for exact lexical matching: a quoted phrase, a file:/path:/site: filter,
// a #tag, or an explicit find/search/locate verb.
func HasExactMatchSignal(query string) bool {
	return quotedPhraseRe.MatchString(query) ||
		filterTokenRe.MatchString(query) ||
		leadingTagRe.MatchString(query) ||
		findVerbRe.MatchString(query)
}

// HasCodeSignal reports whether query looks code-shaped: a fenced block or
// common programming keywords.
func HasCodeSignal(query string) bool {
	return strings.Contains(query, "```") || codeKeywordRe.MatchString(query)
}

func tokenCount(query string) int {
	return len(strings.Fields(query))
}
