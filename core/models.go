package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Strategy selects which retrieval algorithm serves a query.
type Strategy string

const (
	// StrategyAuto lets the policy pick a strategy from query shape.
	StrategyAuto Strategy = "auto"
	// StrategyDense ranks by embedding cosine similarity.
	StrategyDense Strategy = "dense"
	// StrategySparse ranks by BM25 lexical match.
	StrategySparse Strategy = "sparse"
	// StrategyHybrid fuses dense and sparse rankings.
	StrategyHybrid Strategy = "hybrid"
)

// Snippet source constants.
const (
	SourceMemory = "memory"
	SourceDoc    = "doc"
	SourceOps    = "ops"
)

// Snippet is the atomic unit of retrievable text within a workspace.
// Usage and feedback fields are read by the reranker; the feedback weight
// itself is maintained by an external process.
type Snippet struct {
	Id             ID
	WorkspaceId    string
	Source         string // memory, doc, ops
	Text           string
	LastUsedAt     time.Time // Zero if the snippet was never returned from a recall
	UseCount       int
	FeedbackWeight float64
	Metadata       map[string]string // Opaque pass-through, not interpreted by ranking
	InsertedAt     time.Time
	UpdatedAt      time.Time
}

// CandidateItem is a snippet produced by a retriever together with the
// retriever's raw score (BM25 score, cosine similarity, or fused score).
type CandidateItem struct {
	Snippet  *Snippet
	RawScore float64
}

// ScoredItem decorates a candidate with the individual ranking signals and
// the blended score. Intermediate only, never persisted.
type ScoredItem struct {
	Candidate      CandidateItem
	Similarity     float64
	FeedbackWeight float64
	Recency        float64
	Novelty        float64
	Blended        float64
}

// RecallItem is the externally visible ranked result. Score is the final
// post-rerank relevance value, not the raw retriever score.
type RecallItem struct {
	Id       ID
	Source   string
	Text     string
	Score    float64
	Metadata map[string]string
}

// ComponentTiming records how long a single pipeline stage took.
type ComponentTiming struct {
	Name   string
	TookMs float64
}

// RecallDiagnostics describes how a recall was served. It is always attached
// to a RecallResult, including cache hits and empty results.
type RecallDiagnostics struct {
	Strategy       Strategy
	TookMs         float64
	CacheHit       bool
	Timings        []ComponentTiming
	ItemsBeforeMMR int
	ItemsAfterMMR  int
}

// RecallResult is the full response to a single recall: ranked items plus
// diagnostics. Index 0 is the most relevant/diverse item.
type RecallResult struct {
	Items       []RecallItem
	Diagnostics RecallDiagnostics
}

// CacheEntry is a cached ranked result for a (workspace, strategy, query)
// triple. Values are never mutated after write; refreshes replace the entry.
type CacheEntry struct {
	Key         ID
	WorkspaceId string
	Query       string
	Strategy    Strategy
	Items       []RecallItem
	CreatedAt   time.Time
	ExpireAt    time.Time
	HitCount    int
}

// Expired reports whether the entry's TTL has elapsed at the given time.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpireAt)
}

// NormalizeQuery canonicalizes a query for cache keying: lowercased with
// whitespace runs collapsed to single spaces.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// CacheKey derives the deterministic cache key for a query. The probe and
// store paths of the query cache must both go through this function.
func CacheKey(workspaceId string, strategy Strategy, query string) ID {
	return IDFromContent(workspaceId + "\x1f" + string(strategy) + "\x1f" + NormalizeQuery(query))
}
