package hnsw

import (
	"iter"
	"slices"

	"github.com/hupe1980/knngraph/internal/queue"
)

// TraceStage marks whether a snapshot was taken before or after a layer search.
type TraceStage int

const (
	StageBefore TraceStage = iota
	StageAfter
)

func (s TraceStage) String() string {
	if s == StageBefore {
		return "before"
	}
	return "after"
}

// TraceStep is an immutable snapshot of the candidate set at one level.
type TraceStep struct {
	Level      int
	Stage      TraceStage
	Candidates []queue.Item
}

// Search returns up to k items closest to q in ascending distance order.
// ef widens the final ground-layer beam to max(ef, k). The graph is not modified.
func (g *Graph[P]) Search(q P, k int, ef int) []queue.Item {
	return g.descend(q, k, ef, nil)
}

// Trace performs the same traversal as Search and yields a Before and After
// snapshot for every level from the top down to 0. Every iteration of the
// returned sequence runs an independent traversal.
func (g *Graph[P]) Trace(q P, k int, ef int) iter.Seq[TraceStep] {
	return func(yield func(TraceStep) bool) {
		g.descend(q, k, ef, func(level int, stage TraceStage, candidates []queue.Item) bool {
			return yield(TraceStep{Level: level, Stage: stage, Candidates: slices.Clone(candidates)})
		})
	}
}

// descend runs the layered search. snapshot, when non-nil, sees the candidate
// set before and after every level and stops the traversal by returning false.
func (g *Graph[P]) descend(q P, k, ef int, snapshot func(level int, stage TraceStage, candidates []queue.Item) bool) []queue.Item {
	if len(g.points) == 0 {
		return nil
	}

	ep := []queue.Item{{Node: g.entryPoint, Distance: g.dist(q, g.points[g.entryPoint])}}

	for lc := g.MaxLevel(); lc >= 0; lc-- {
		if snapshot != nil && !snapshot(lc, StageBefore, ep) {
			return nil
		}

		beam := 1
		if lc == 0 {
			beam = max(ef, k)
		}

		ep = g.searchLayer(q, itemIDs(ep), beam, lc, nil)
		if lc == 0 && len(ep) > k {
			ep = ep[:k]
		}

		if snapshot != nil && !snapshot(lc, StageAfter, ep) {
			return nil
		}
	}

	return ep
}

// BruteSearch scans every point and returns the exact k nearest to q.
func (g *Graph[P]) BruteSearch(q P, k int) []queue.Item {
	results := queue.NewMax(k)
	for id, p := range g.points {
		results.PushItemBounded(queue.Item{Node: uint32(id), Distance: g.dist(q, p)}, k)
	}
	return results.Drain()
}
