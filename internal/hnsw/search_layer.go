package hnsw

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/hupe1980/knngraph/internal/queue"
)

// beamObserver receives the result set size and its worst distance after
// each expanded candidate.
type beamObserver func(size int, worst float64)

// searchLayer runs a greedy beam search of width ef within one layer and
// returns up to ef items in ascending distance order.
func (g *Graph[P]) searchLayer(q P, entryPoints []uint32, ef int, level int, observe beamObserver) []queue.Item {
	lyr := g.layers[level]
	visited := bitset.New(uint(len(g.points)))

	candidates := queue.NewMin(ef)
	results := queue.NewMax(ef)

	for _, ep := range entryPoints {
		if visited.Test(uint(ep)) {
			continue
		}
		visited.Set(uint(ep))

		item := queue.Item{Node: ep, Distance: g.dist(q, g.points[ep])}
		candidates.PushItem(item)
		results.PushItemBounded(item, ef)
	}

	for candidates.Len() > 0 {
		curr, _ := candidates.PopItem()

		// Nothing reachable from a candidate farther than the current worst
		// result can improve the beam.
		worst, _ := results.TopItem()
		if curr.Distance > worst.Distance {
			break
		}

		for _, next := range lyr.neighbors(curr.Node) {
			if visited.Test(uint(next)) {
				continue
			}
			visited.Set(uint(next))

			nextDist := g.dist(q, g.points[next])

			worst, _ = results.TopItem()
			if results.Len() < ef || nextDist < worst.Distance {
				item := queue.Item{Node: next, Distance: nextDist}
				candidates.PushItem(item)
				results.PushItemBounded(item, ef)
			}
		}

		if observe != nil {
			worst, _ = results.TopItem()
			observe(results.Len(), worst.Distance)
		}
	}

	return results.Drain()
}

func itemIDs(items []queue.Item) []uint32 {
	ids := make([]uint32, len(items))
	for i, item := range items {
		ids[i] = item.Node
	}
	return ids
}
