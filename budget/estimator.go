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

// Package budget estimates token counts and trims recall results to a
// token budget. Counting uses the cl100k_base BPE when its vocabulary is
// available and falls back to a characters/4 heuristic when it is not,
// so callers never have to care which mode is active.
package budget

import (
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/poiesic/recall/core"
)

const encodingName = "cl100k_base"

// fallbackCharsPerToken approximates English prose when no BPE is loaded.
const fallbackCharsPerToken = 4

// Estimator counts tokens for budget decisions. The zero value is not
// usable; construct with NewEstimator.
type Estimator struct {
	mu       sync.Mutex
	encoding *tiktoken.Tiktoken
	logger   *slog.Logger
}

// NewEstimator builds an Estimator. Loading the BPE vocabulary may fail
// in offline environments; that is not an error, the estimator simply
// degrades to the heuristic.
func NewEstimator(logger *slog.Logger) *Estimator {
	if logger == nil {
		logger = slog.Default()
	}
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		logger.Warn("token encoding unavailable, using heuristic estimate",
			"encoding", encodingName, "error", err)
		enc = nil
	}
	return &Estimator{encoding: enc, logger: logger}
}

// EstimateTokens returns the token count for text. Empty text is zero
// tokens.
func (e *Estimator) EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	if e.encoding == nil {
		return heuristicTokens(text)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.encoding.Encode(text, nil, nil))
}

// TruncateToTokens returns text cut down to at most maxTokens tokens.
// A non-positive budget yields the empty string.
func (e *Estimator) TruncateToTokens(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	if text == "" {
		return text
	}
	if e.encoding == nil {
		limit := maxTokens * fallbackCharsPerToken
		if len(text) <= limit {
			return text
		}
		return text[:limit]
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	tokens := e.encoding.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return e.encoding.Decode(tokens[:maxTokens])
}

// FitToBudget keeps items, in order, whose cumulative token count stays
// within budgetTokens. Items that do not fit are skipped rather than
// truncated, except that a first item larger than the whole budget is
// truncated so the result is never empty when the input is not.
func (e *Estimator) FitToBudget(items []core.RecallItem, budgetTokens int) []core.RecallItem {
	if budgetTokens <= 0 || len(items) == 0 {
		return nil
	}
	kept := make([]core.RecallItem, 0, len(items))
	remaining := budgetTokens
	for _, item := range items {
		cost := e.EstimateTokens(item.Text)
		if cost > remaining {
			if len(kept) == 0 {
				item.Text = e.TruncateToTokens(item.Text, remaining)
				kept = append(kept, item)
				return kept
			}
			continue
		}
		remaining -= cost
		kept = append(kept, item)
	}
	return kept
}

func heuristicTokens(text string) int {
	n := len(text) / fallbackCharsPerToken
	if n == 0 {
		n = 1
	}
	return n
}
