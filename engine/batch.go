package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/recall/core"
)

// RecallBatch runs one recall per query with a bounded worker pool and
// returns results in input order. Individual failures do not abort the
// rest of the batch; they come back joined in the error with an empty
// result at the matching index. Non-positive concurrency uses
// DefaultBatchConcurrency.
func (e *Engine) RecallBatch(ctx context.Context, queries []string, opts core.RecallOpts, concurrency int) ([]core.RecallResult, error) {
	if len(queries) == 0 {
		return nil, nil
	}
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	pool, err := ants.NewPool(concurrency)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	results := make([]core.RecallResult, len(queries))
	errs := make([]error, len(queries))
	var wg sync.WaitGroup

	for i, query := range queries {
		i, query := i, query
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			results[i], errs[i] = e.Recall(ctx, query, opts)
		})
		if submitErr != nil {
			errs[i] = submitErr
			wg.Done()
		}
	}
	wg.Wait()

	return results, errors.Join(errs...)
}
