package knngraph

import (
	"context"
	"iter"
	"time"

	"github.com/hupe1980/knngraph/internal/hnsw"
	"github.com/hupe1980/knngraph/internal/queue"
)

// SearchOptions tunes a single query.
type SearchOptions struct {
	// EF widens the final beam to max(EF, k). Zero leaves it at k.
	// A non-zero EF smaller than k is rejected with ErrInvalidEF.
	EF int
}

// SearchResult is one neighbor returned by a query.
type SearchResult[P any] struct {
	ID       uint32
	Point    P
	Distance float64
}

// TraceStage marks whether a snapshot was taken before or after a level was searched.
type TraceStage = hnsw.TraceStage

const (
	StageBefore = hnsw.StageBefore
	StageAfter  = hnsw.StageAfter
)

// TraceStep is a snapshot of the candidate set at one level of a traced search.
type TraceStep[P any] struct {
	Level      int
	Stage      TraceStage
	Candidates []SearchResult[P]
}

// Search returns up to k approximate nearest neighbors of q in ascending
// distance order. Searching an empty index returns no results and no error.
func (idx *Index[P]) Search(ctx context.Context, q P, k int, opts *SearchOptions) ([]SearchResult[P], error) {
	start := time.Now()

	results, err := idx.search(ctx, q, k, opts)

	idx.metrics.RecordSearch(k, time.Since(start), err)
	idx.logger.LogSearch(ctx, k, len(results), err)

	return results, err
}

func (idx *Index[P]) search(ctx context.Context, q P, k int, opts *SearchOptions) ([]SearchResult[P], error) {
	ef, err := idx.checkQuery(ctx, k, opts)
	if err != nil {
		return nil, err
	}

	return idx.results(idx.graph.Search(q, k, ef)), nil
}

func (idx *Index[P]) checkQuery(ctx context.Context, k int, opts *SearchOptions) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return validateQuery(k, opts)
}

// SearchTrace validates the query and returns a lazy sequence of per-level
// snapshots: for every level from the top down to 0 a StageBefore step with
// the entry candidates and a StageAfter step with the result of that level.
// The final step holds the same results Search would return. Each ranging
// of the sequence performs an independent traversal.
//
// A query rejected before tracing starts is recorded and logged like a
// failed Search.
func (idx *Index[P]) SearchTrace(ctx context.Context, q P, k int, opts *SearchOptions) (iter.Seq[TraceStep[P]], error) {
	start := time.Now()

	ef, err := idx.checkQuery(ctx, k, opts)
	if err != nil {
		idx.metrics.RecordSearch(k, time.Since(start), err)
		idx.logger.LogSearch(ctx, k, 0, err)
		return nil, err
	}

	return func(yield func(TraceStep[P]) bool) {
		start := time.Now()
		steps := 0
		defer func() {
			idx.metrics.RecordTrace(k, steps, time.Since(start))
		}()

		for step := range idx.graph.Trace(q, k, ef) {
			steps++
			if !yield(TraceStep[P]{
				Level:      step.Level,
				Stage:      step.Stage,
				Candidates: idx.results(step.Candidates),
			}) {
				return
			}
		}
	}, nil
}

// BruteSearch scans every point and returns the exact k nearest neighbors of q.
// It is intended as ground truth when measuring recall.
func (idx *Index[P]) BruteSearch(ctx context.Context, q P, k int) ([]SearchResult[P], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k < 1 {
		return nil, ErrInvalidK
	}
	return idx.results(idx.graph.BruteSearch(q, k)), nil
}

func (idx *Index[P]) results(items []queue.Item) []SearchResult[P] {
	out := make([]SearchResult[P], len(items))
	for i, item := range items {
		p, _ := idx.graph.Point(item.Node)
		out[i] = SearchResult[P]{ID: item.Node, Point: p, Distance: item.Distance}
	}
	return out
}
