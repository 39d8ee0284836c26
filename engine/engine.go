package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/budget"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/metrics"
	"github.com/poiesic/recall/rerank"
	"github.com/poiesic/recall/retrieval"
	"github.com/poiesic/recall/storage"
	"github.com/poiesic/recall/strategy"
)

// Defaults for engine-level knobs.
const (
	// DefaultCorpusLimit is how many recent snippets are fetched per recall.
	// Document statistics are computed over this window only.
	DefaultCorpusLimit = 400

	// DefaultCacheTTL is how long a ranked result stays servable from cache.
	DefaultCacheTTL = 20 * time.Minute

	// DefaultBatchConcurrency bounds simultaneous recalls in RecallBatch so
	// a batch cannot overwhelm the embedding provider.
	DefaultBatchConcurrency = 3
)

// Pipeline stage names as they appear in diagnostics timings.
const (
	stageStrategySelect = "strategy_select"
	stageCacheProbe     = "cache_probe"
	stageCorpusFetch    = "corpus_fetch"
	stageRetrieve       = "retrieve"
	stageRerank         = "rerank"
	stageCacheStore     = "cache_store"
)

// Engine runs the recall pipeline. Construct with NewEngine; a zero value
// is not usable.
type Engine struct {
	snippets  storage.SnippetRepository
	cache     storage.CacheRepository
	embedder  ai.Embedder
	estimator *budget.Estimator
	recorder  *metrics.Recorder
	sink      metrics.Sink
	logger    *slog.Logger

	sparse *retrieval.SparseRetriever
	dense  *retrieval.DenseRetriever
	hybrid *retrieval.HybridRetriever

	weights     rerank.Weights
	corpusLimit int
	cacheTTL    time.Duration
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithCache enables the query cache. Without it every recall computes
// fresh.
func WithCache(cache storage.CacheRepository) Option {
	return func(e *Engine) error {
		e.cache = cache
		return nil
	}
}

// WithMetricsSink forwards telemetry to an additional sink beyond the
// engine's own in-memory recorder. Sink failures are absorbed.
func WithMetricsSink(sink metrics.Sink) Option {
	return func(e *Engine) error {
		e.sink = sink
		return nil
	}
}

// WithCorpusLimit overrides how many recent snippets each recall fetches.
func WithCorpusLimit(limit int) Option {
	return func(e *Engine) error {
		if limit > 0 {
			e.corpusLimit = limit
		}
		return nil
	}
}

// WithCacheTTL overrides how long cached results stay servable.
func WithCacheTTL(ttl time.Duration) Option {
	return func(e *Engine) error {
		if ttl > 0 {
			e.cacheTTL = ttl
		}
		return nil
	}
}

// WithWeights overrides the blended-scoring weights.
func WithWeights(weights rerank.Weights) Option {
	return func(e *Engine) error {
		e.weights = weights
		return nil
	}
}

// NewEngine creates a recall engine over a snippet corpus and an
// embedding provider.
func NewEngine(snippets storage.SnippetRepository, provider ai.EmbeddingProvider, opts ...Option) (*Engine, error) {
	if snippets == nil {
		return nil, ErrSnippetRepositoryRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	embedder := provider.Embedder()
	sparse := retrieval.NewSparseRetriever()
	dense := retrieval.NewDenseRetriever(embedder)

	e := &Engine{
		snippets:    snippets,
		embedder:    embedder,
		recorder:    metrics.NewRecorder(metrics.DefaultWindowSize),
		logger:      slog.Default(),
		sparse:      sparse,
		dense:       dense,
		hybrid:      retrieval.NewHybridRetriever(sparse, dense),
		weights:     rerank.DefaultWeights(),
		corpusLimit: DefaultCorpusLimit,
		cacheTTL:    DefaultCacheTTL,
	}
	e.estimator = budget.NewEstimator(e.logger)

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Recall runs the full pipeline for a single query.
func (e *Engine) Recall(ctx context.Context, query string, opts core.RecallOpts) (core.RecallResult, error) {
	return e.RecallWithMonitor(ctx, query, opts, nil)
}

// RecallWithMonitor runs the pipeline with monitoring. The monitor
// receives callbacks at each stage of the recall.
func (e *Engine) RecallWithMonitor(ctx context.Context, query string, opts core.RecallOpts, monitor RecallMonitor) (core.RecallResult, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	started := time.Now()
	var result core.RecallResult

	if core.NormalizeQuery(query) == "" {
		return result, ErrQueryRequired
	}
	monitor.Start(query)
	opts.Normalize()
	if err := opts.Validate(); err != nil {
		return result, err
	}

	// 1. Strategy selection
	stageStart := time.Now()
	chosen := opts.Strategy
	if chosen == core.StrategyAuto {
		chosen = strategy.Choose(query)
		e.logger.Debug("strategy selected",
			"strategy", chosen,
			"confidence", strategy.Confidence(query, chosen),
			"reason", strategy.Explain(query))
	}
	result.Diagnostics.Strategy = chosen
	monitor.StrategySelected(chosen, strategy.Confidence(query, chosen))
	e.addTiming(&result, stageStrategySelect, stageStart)

	// 2. Cache probe
	stageStart = time.Now()
	key := core.CacheKey(opts.WorkspaceId, chosen, query)
	if entry, ok := e.probeCache(ctx, key); ok {
		result.Items = entry.Items
		result.Diagnostics.CacheHit = true
		monitor.CacheProbe(key, true)
		e.addTiming(&result, stageCacheProbe, stageStart)
		e.finish(&result, started)
		monitor.Finish(&result)
		return result, nil
	}
	monitor.CacheProbe(key, false)
	e.addTiming(&result, stageCacheProbe, stageStart)
	if err := ctx.Err(); err != nil {
		return result, err
	}

	// 3. Corpus fetch
	stageStart = time.Now()
	corpus, err := e.snippets.GetRecentSnippets(ctx, opts.WorkspaceId, e.corpusLimit)
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrCorpusFetch, err)
	}
	e.addTiming(&result, stageCorpusFetch, stageStart)
	monitor.CorpusFetched(len(corpus))
	if len(corpus) == 0 {
		e.finish(&result, started)
		monitor.Finish(&result)
		return result, nil
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	// 4. Retrieval, over-fetching 2x so reranking has slack
	stageStart = time.Now()
	candidates, err := e.retrieve(ctx, chosen, query, corpus, 2*opts.TopK)
	if err != nil {
		return result, err
	}
	monitor.Retrieved(candidates)
	e.addTiming(&result, stageRetrieve, stageStart)
	if err := ctx.Err(); err != nil {
		return result, err
	}

	// 5. Rerank
	stageStart = time.Now()
	scored := rerank.BlendScores(candidates, time.Now().UTC(), e.weights)
	result.Diagnostics.ItemsBeforeMMR = len(scored)
	if opts.UseMMR {
		scored = rerank.SelectMMR(scored, opts.TopK, opts.MMRLambda)
	} else if len(scored) > opts.TopK {
		scored = scored[:opts.TopK]
	}
	result.Diagnostics.ItemsAfterMMR = len(scored)
	monitor.Reranked(result.Diagnostics.ItemsBeforeMMR, result.Diagnostics.ItemsAfterMMR)
	result.Items = e.assemble(scored, opts)
	e.addTiming(&result, stageRerank, stageStart)

	e.touchUsed(ctx, result.Items)

	// 6. Cache store. Skipped once the caller's deadline has passed so a
	// load-shedding period cannot poison the cache.
	stageStart = time.Now()
	if ctx.Err() == nil {
		e.storeCache(ctx, key, query, chosen, opts.WorkspaceId, result.Items)
	}
	e.addTiming(&result, stageCacheStore, stageStart)

	e.finish(&result, started)
	monitor.Finish(&result)
	return result, nil
}

// RecallWithFallback re-runs the whole pipeline on hybrid when a dense or
// sparse pass comes back empty.
func (e *Engine) RecallWithFallback(ctx context.Context, query string, opts core.RecallOpts) (core.RecallResult, error) {
	result, err := e.Recall(ctx, query, opts)
	if err != nil {
		return result, err
	}
	served := result.Diagnostics.Strategy
	if len(result.Items) > 0 || (served != core.StrategyDense && served != core.StrategySparse) {
		return result, nil
	}
	e.logger.Debug("empty result, retrying with hybrid strategy", "query", query, "first", served)
	opts.Strategy = core.StrategyHybrid
	return e.Recall(ctx, query, opts)
}

// assemble converts ranked scored items to the public result shape,
// applying the relevance floor and the token budget.
func (e *Engine) assemble(scored []core.ScoredItem, opts core.RecallOpts) []core.RecallItem {
	items := make([]core.RecallItem, 0, len(scored))
	for _, s := range scored {
		if opts.MinRelevance >= 0 && s.Blended < opts.MinRelevance {
			continue
		}
		sn := s.Candidate.Snippet
		if sn == nil {
			continue
		}
		items = append(items, core.RecallItem{
			Id:       sn.Id,
			Source:   sn.Source,
			Text:     sn.Text,
			Score:    s.Blended,
			Metadata: sn.Metadata,
		})
	}
	if opts.BudgetTokens > 0 {
		items = e.estimator.FitToBudget(items, opts.BudgetTokens)
	}
	return items
}

func (e *Engine) retrieve(ctx context.Context, chosen core.Strategy, query string, corpus []*core.Snippet, fetchK int) ([]core.CandidateItem, error) {
	switch chosen {
	case core.StrategySparse:
		return e.sparse.Rank(query, corpus, fetchK), nil
	case core.StrategyDense:
		return e.dense.Rank(ctx, query, corpus, fetchK)
	default:
		return e.hybrid.Rank(ctx, query, corpus, fetchK)
	}
}

// probeCache reports a servable entry for key. All failures degrade to a
// miss.
func (e *Engine) probeCache(ctx context.Context, key core.ID) (*core.CacheEntry, bool) {
	if e.cache == nil {
		return nil, false
	}
	entry, found, err := e.cache.GetEntry(ctx, key)
	if err != nil {
		e.logger.Warn("cache probe failed, computing fresh", "err", err)
		return nil, false
	}
	if !found || entry.Expired(time.Now().UTC()) {
		return nil, false
	}
	e.bumpHitCount(ctx, entry)
	return entry, true
}

// bumpHitCount replaces the entry with an incremented hit count, keeping
// the original expiry. Entries are replace-only, never mutated in place.
func (e *Engine) bumpHitCount(ctx context.Context, entry *core.CacheEntry) {
	remaining := time.Until(entry.ExpireAt)
	if remaining <= 0 {
		return
	}
	bumped := *entry
	bumped.HitCount++
	if err := e.cache.PutEntry(ctx, &bumped, remaining); err != nil {
		e.logger.Warn("cache hit-count update failed", "err", err)
	}
}

func (e *Engine) storeCache(ctx context.Context, key core.ID, query string, chosen core.Strategy, workspaceId string, items []core.RecallItem) {
	if e.cache == nil {
		return
	}
	now := time.Now().UTC()
	entry := &core.CacheEntry{
		Key:         key,
		WorkspaceId: workspaceId,
		Query:       core.NormalizeQuery(query),
		Strategy:    chosen,
		Items:       items,
		CreatedAt:   now,
		ExpireAt:    now.Add(e.cacheTTL),
	}
	if err := e.cache.PutEntry(ctx, entry, e.cacheTTL); err != nil {
		e.logger.Warn("cache store failed", "err", err)
	}
}

// touchUsed bumps usage counters for returned snippets so recency and
// novelty signals learn from serving. Best-effort.
func (e *Engine) touchUsed(ctx context.Context, items []core.RecallItem) {
	if len(items) == 0 {
		return
	}
	ids := make([]core.ID, len(items))
	for i, item := range items {
		ids[i] = item.Id
	}
	if err := e.snippets.TouchSnippets(ctx, time.Now().UTC(), ids...); err != nil {
		e.logger.Warn("usage tracking update failed", "err", err)
	}
}

func (e *Engine) addTiming(result *core.RecallResult, name string, since time.Time) {
	result.Diagnostics.Timings = append(result.Diagnostics.Timings, core.ComponentTiming{
		Name:   name,
		TookMs: float64(time.Since(since).Microseconds()) / 1000,
	})
}

// finish stamps total wall time and records telemetry.
func (e *Engine) finish(result *core.RecallResult, started time.Time) {
	result.Diagnostics.TookMs = float64(time.Since(started).Microseconds()) / 1000
	entry := metrics.Entry{
		Strategy:  result.Diagnostics.Strategy,
		TookMs:    result.Diagnostics.TookMs,
		CacheHit:  result.Diagnostics.CacheHit,
		ItemCount: len(result.Items),
		At:        time.Now().UTC(),
	}
	if err := e.recorder.Record(entry); err != nil {
		e.logger.Warn("metrics recording failed", "err", err)
	}
	if e.sink != nil {
		if err := e.sink.Record(entry); err != nil {
			e.logger.Warn("metrics sink failed", "err", err)
		}
	}
}

// MetricsSnapshot summarizes recent recalls from the engine's in-memory
// recorder.
func (e *Engine) MetricsSnapshot() metrics.Snapshot {
	return e.recorder.Snapshot()
}
