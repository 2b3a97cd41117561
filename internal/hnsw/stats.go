package hnsw

// LevelStats summarizes one layer.
type LevelStats struct {
	Level     int
	Nodes     int
	Edges     int
	MaxDegree int
	AvgDegree float64
}

// Stats summarizes the graph.
type Stats struct {
	Points     int
	MaxLevel   int
	EntryPoint uint32
	Levels     []LevelStats
}

// Stats returns per-level statistics about the graph.
func (g *Graph[P]) Stats() Stats {
	s := Stats{
		Points:     len(g.points),
		MaxLevel:   g.MaxLevel(),
		EntryPoint: g.entryPoint,
		Levels:     make([]LevelStats, len(g.layers)),
	}

	for lc, lyr := range g.layers {
		ls := LevelStats{
			Level: lc,
			Nodes: lyr.size(),
			Edges: lyr.edgeCount(),
		}
		for _, conns := range lyr.edges {
			ls.MaxDegree = max(ls.MaxDegree, len(conns))
		}
		if ls.Nodes > 0 {
			ls.AvgDegree = float64(ls.Edges) / float64(ls.Nodes)
		}
		s.Levels[lc] = ls
	}

	return s
}
