package engine

import (
	"context"
	"errors"

	"github.com/lintang-b-s/gridnav/pkg/concurrent"
	da "github.com/lintang-b-s/gridnav/pkg/datastructure"
	"github.com/lintang-b-s/gridnav/pkg/engine/search"
	"github.com/lintang-b-s/gridnav/pkg/metrics"
	"github.com/lintang-b-s/gridnav/pkg/util"
	"go.uber.org/zap"
)

type Query struct {
	Start da.Coordinate
	Goal  da.Coordinate
}

func NewQuery(sx, sy, gx, gy int) Query {
	return Query{Start: da.NewCoordinate(sx, sy), Goal: da.NewCoordinate(gx, gy)}
}

type QueryResult struct {
	Query    Query
	Solution *search.Solution
	Err      error
}

type pathCacheKey struct {
	start da.Coordinate
	goal  da.Coordinate
}

type batchJob struct {
	index int
	query Query
}

type batchResult struct {
	index  int
	result QueryResult
}

// FindPaths answers queries concurrently on NumWorkers goroutines. results keep the order of
// queries; a failed query only sets its own Err.
func (e *Engine) FindPaths(ctx context.Context, queries []Query) []QueryResult {
	results := make([]QueryResult, len(queries))
	if len(queries) == 0 {
		return results
	}

	numWorkers := e.cfg.NumWorkers
	if numWorkers > len(queries) {
		numWorkers = len(queries)
	}

	searchers := make([]*search.AStar, numWorkers)
	for i := range searchers {
		searchers[i] = e.searchers.Get().(*search.AStar)
	}
	defer func() {
		for _, a := range searchers {
			e.searchers.Put(a)
		}
	}()

	wp := concurrent.NewWorkerPool[batchJob, batchResult](numWorkers, len(queries))
	wp.Start(func(workerID int, job batchJob) batchResult {
		return batchResult{index: job.index, result: e.answer(ctx, searchers[workerID], job.query)}
	})

	for i, q := range queries {
		wp.AddJob(batchJob{index: i, query: q})
	}
	wp.Close()
	wp.Wait()

	failed := 0
	for res := range wp.CollectResults() {
		results[res.index] = res.result
		if res.result.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		e.logger.Warn("batch queries failed", zap.Int("failed", failed), zap.Int("total", len(queries)))
	}
	return results
}

func (e *Engine) answer(ctx context.Context, a *search.AStar, q Query) QueryResult {
	policy := e.searchCfg.Policy.String()
	key := pathCacheKey{start: q.Start, goal: q.Goal}
	if e.pathCache != nil {
		if sol, ok := e.pathCache.Get(key); ok {
			metrics.ObserveQuery(policy, metrics.RESULT_CACHE_HIT, 0, 0)
			return QueryResult{Query: q, Solution: sol}
		}
	}

	sol, err := a.FindPath(ctx, search.Problem{Start: q.Start, Goal: q.Goal})
	if err != nil {
		metrics.ObserveQuery(policy, queryResult(err), 0, 0)
		return QueryResult{Query: q, Err: err}
	}

	result := metrics.RESULT_FOUND
	if !sol.Found {
		result = metrics.RESULT_NO_PATH
	}
	metrics.ObserveQuery(policy, result, sol.Stats.Elapsed, sol.Stats.Expanded)
	if e.pathCache != nil {
		e.pathCache.Add(key, sol)
	}
	return QueryResult{Query: q, Solution: sol}
}

func queryResult(err error) string {
	switch {
	case errors.Is(err, util.ErrInvalidQuery):
		return metrics.RESULT_INVALID_QUERY
	case errors.Is(err, util.ErrSearchCancelled):
		return metrics.RESULT_CANCELLED
	case errors.Is(err, util.ErrTimeBudgetExceeded):
		return metrics.RESULT_TIME_BUDGET
	default:
		return metrics.RESULT_INTERNAL_ERROR
	}
}
