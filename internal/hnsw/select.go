package hnsw

import "github.com/hupe1980/knngraph/internal/queue"

// selectNeighbors picks up to m neighbors for q from candidates whose
// distances are measured against q.
func (g *Graph[P]) selectNeighbors(q uint32, candidates []queue.Item, m int, level int) []queue.Item {
	if g.cfg.Heuristic {
		return g.selectNeighborsHeuristic(q, candidates, m, level)
	}
	return g.selectNeighborsSimple(q, candidates, m)
}

// selectNeighborsSimple keeps the m closest candidates.
func (g *Graph[P]) selectNeighborsSimple(q uint32, candidates []queue.Item, m int) []queue.Item {
	res := make([]queue.Item, 0, len(candidates))
	for _, c := range candidates {
		if c.Node != q {
			res = append(res, c)
		}
	}
	queue.Sort(res)
	if len(res) > m {
		res = res[:m]
	}
	return res
}

// selectNeighborsHeuristic prefers candidates that are not already covered
// by a selected neighbor, which spreads edges over different directions.
func (g *Graph[P]) selectNeighborsHeuristic(q uint32, candidates []queue.Item, m int, level int) []queue.Item {
	working := g.workingSet(q, candidates, level)

	result := make([]queue.Item, 0, m)
	discarded := make([]queue.Item, 0, len(working))

	for _, cand := range working {
		if len(result) >= m {
			break
		}
		if len(result) == 0 || g.accept(cand, result) {
			result = append(result, cand)
		} else {
			discarded = append(discarded, cand)
		}
	}

	if g.cfg.KeepPrunedConnections {
		// discarded is already ascending.
		for _, cand := range discarded {
			if len(result) >= m {
				break
			}
			result = append(result, cand)
		}
	}

	return result
}

// workingSet returns the deduplicated candidate pool sorted by distance to q,
// optionally widened with the candidates' own neighbors at level.
func (g *Graph[P]) workingSet(q uint32, candidates []queue.Item, level int) []queue.Item {
	seen := make(map[uint32]struct{}, len(candidates))
	working := make([]queue.Item, 0, len(candidates))

	for _, c := range candidates {
		if c.Node == q {
			continue
		}
		if _, ok := seen[c.Node]; ok {
			continue
		}
		seen[c.Node] = struct{}{}
		working = append(working, c)
	}

	if g.cfg.ExtendCandidates && level < len(g.layers) {
		lyr := g.layers[level]
		qPoint := g.points[q]
		for _, c := range candidates {
			for _, adj := range lyr.neighbors(c.Node) {
				if adj == q {
					continue
				}
				if _, ok := seen[adj]; ok {
					continue
				}
				seen[adj] = struct{}{}
				working = append(working, queue.Item{Node: adj, Distance: g.dist(qPoint, g.points[adj])})
			}
		}
	}

	queue.Sort(working)
	return working
}

func (g *Graph[P]) accept(cand queue.Item, result []queue.Item) bool {
	if g.cfg.HeuristicMode == HeuristicRandomized {
		r := result[g.rng.IntN(len(result))]
		return cand.Distance < r.Distance
	}

	candPoint := g.points[cand.Node]
	for _, r := range result {
		if g.dist(candPoint, g.points[r.Node]) < cand.Distance {
			return false
		}
	}
	return true
}
