package hnsw

import "github.com/hupe1980/knngraph/internal/queue"

// InsertResult describes where a point landed in the graph.
type InsertResult struct {
	ID            uint32
	Level         int
	PreviousLevel int // max level before the insert, -1 for the first point
}

// Grew reports whether the insert raised the graph's max level.
func (r InsertResult) Grew() bool {
	return r.Level > r.PreviousLevel
}

// Insert adds p to the graph and returns its id and level.
func (g *Graph[P]) Insert(p P) InsertResult {
	id := uint32(len(g.points))
	g.points = append(g.points, p)

	if len(g.layers) == 0 {
		ground := newLayer(0)
		ground.add(id)
		g.layers = append(g.layers, ground)
		g.entryPoint = id
		return InsertResult{ID: id, Level: 0, PreviousLevel: -1}
	}

	level := g.levelFn()
	maxLevel := g.MaxLevel()
	top := min(level, maxLevel)

	// 1. Greedy descent through the layers above the node's level.
	ep := []uint32{g.entryPoint}
	for lc := maxLevel; lc > top; lc-- {
		ep = itemIDs(g.searchLayer(p, ep, 1, lc, nil))
	}

	// 2. Search and link from the node's level down to 0.
	for lc := top; lc >= 0; lc-- {
		lyr := g.layers[lc]
		lyr.add(id)

		candidates := g.searchLayer(p, ep, g.cfg.EF, lc, nil)
		maxConns := g.maxConnections(lc)
		neighbors := g.selectNeighbors(id, candidates, maxConns, lc)

		for _, n := range neighbors {
			if n.Node == id {
				continue
			}
			lyr.link(id, n.Node)
			lyr.link(n.Node, id)
		}

		for _, n := range neighbors {
			if len(lyr.neighbors(n.Node)) > maxConns {
				g.shrinkConnections(n.Node, lc, maxConns)
			}
		}

		ep = itemIDs(candidates)
	}

	// 3. Grow the hierarchy when the node outranks the current top.
	if level > maxLevel {
		for lc := maxLevel + 1; lc <= level; lc++ {
			lyr := newLayer(lc)
			lyr.add(id)
			g.layers = append(g.layers, lyr)
		}
		g.entryPoint = id
	}

	return InsertResult{ID: id, Level: level, PreviousLevel: maxLevel}
}

// shrinkConnections re-selects the adjacency of id at level so it holds at
// most maxConns edges. Dropped edges are not removed from the other endpoint.
func (g *Graph[P]) shrinkConnections(id uint32, level int, maxConns int) {
	lyr := g.layers[level]
	conns := lyr.neighbors(id)
	origin := g.points[id]

	candidates := make([]queue.Item, len(conns))
	for i, c := range conns {
		candidates[i] = queue.Item{Node: c, Distance: g.dist(origin, g.points[c])}
	}

	selected := g.selectNeighbors(id, candidates, maxConns, level)
	lyr.setNeighbors(id, itemIDs(selected))
}
