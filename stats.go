package knngraph

import (
	"fmt"
	"strings"

	"github.com/hupe1980/knngraph/internal/hnsw"
)

// LevelStats summarizes one graph level.
type LevelStats = hnsw.LevelStats

// Stats summarizes the structure of an index.
type Stats struct {
	Points     int
	MaxLevel   int
	EntryPoint uint32
	M          int
	M0         int
	EF         int
	ML         float64
	Heuristic  string
	Levels     []LevelStats
}

// Stats returns structural statistics about the index.
func (idx *Index[P]) Stats() Stats {
	gs := idx.graph.Stats()
	cfg := idx.graph.Config()

	heuristic := "simple"
	if cfg.Heuristic {
		heuristic = cfg.HeuristicMode.String()
	}

	return Stats{
		Points:     gs.Points,
		MaxLevel:   gs.MaxLevel,
		EntryPoint: gs.EntryPoint,
		M:          cfg.M,
		M0:         cfg.M0,
		EF:         cfg.EF,
		ML:         cfg.ML,
		Heuristic:  heuristic,
		Levels:     gs.Levels,
	}
}

// String renders the statistics as a small table, top level first.
func (s Stats) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "points=%d max_level=%d entry_point=%d m=%d m0=%d ef=%d ml=%.3f heuristic=%s\n",
		s.Points, s.MaxLevel, s.EntryPoint, s.M, s.M0, s.EF, s.ML, s.Heuristic)

	for i := len(s.Levels) - 1; i >= 0; i-- {
		l := s.Levels[i]
		fmt.Fprintf(&sb, "  level %d: nodes=%d edges=%d max_degree=%d avg_degree=%.2f\n",
			l.Level, l.Nodes, l.Edges, l.MaxDegree, l.AvgDegree)
	}

	return sb.String()
}
