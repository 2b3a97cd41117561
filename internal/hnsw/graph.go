package hnsw

import (
	"math/rand/v2"
	"slices"

	"github.com/hupe1980/knngraph/distance"
)

// HeuristicMode selects the acceptance test of the diversity heuristic.
type HeuristicMode int

const (
	// HeuristicCanonical accepts a candidate unless an already selected
	// neighbor is closer to it than the query is.
	HeuristicCanonical HeuristicMode = iota
	// HeuristicRandomized accepts a candidate if it is closer to the query
	// than one uniformly drawn selected neighbor.
	HeuristicRandomized
)

func (m HeuristicMode) String() string {
	switch m {
	case HeuristicCanonical:
		return "canonical"
	case HeuristicRandomized:
		return "randomized"
	default:
		return "unknown"
	}
}

// Config holds validated graph parameters.
type Config struct {
	M                     int
	M0                    int
	EF                    int
	ML                    float64
	Heuristic             bool
	HeuristicMode         HeuristicMode
	ExtendCandidates      bool
	KeepPrunedConnections bool

	// Rand drives level assignment and randomized tie-breaks.
	Rand *rand.Rand
}

// Graph is a layered proximity graph over points of type P.
type Graph[P any] struct {
	dist   distance.Func[P]
	cfg    Config
	rng    *rand.Rand
	levels *LevelGenerator

	// levelFn is replaceable in tests.
	levelFn func() int

	points     []P
	layers     []*layer
	entryPoint uint32
}

// New creates an empty graph. cfg must already be validated.
func New[P any](dist distance.Func[P], cfg Config) *Graph[P] {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) // nolint gosec
	}
	g := &Graph[P]{
		dist:   dist,
		cfg:    cfg,
		rng:    rng,
		levels: NewLevelGenerator(cfg.ML, rng),
	}
	g.levelFn = g.levels.Level
	return g
}

// Len returns the number of inserted points.
func (g *Graph[P]) Len() int { return len(g.points) }

// MaxLevel returns the highest level, or -1 for an empty graph.
func (g *Graph[P]) MaxLevel() int { return len(g.layers) - 1 }

// EntryPoint returns the id every descent starts from.
func (g *Graph[P]) EntryPoint() (uint32, bool) {
	if len(g.points) == 0 {
		return 0, false
	}
	return g.entryPoint, true
}

// Point returns the payload stored under id.
func (g *Graph[P]) Point(id uint32) (P, bool) {
	if int(id) >= len(g.points) {
		var zero P
		return zero, false
	}
	return g.points[id], true
}

// Neighbors returns a copy of the adjacency list of id at level.
func (g *Graph[P]) Neighbors(level int, id uint32) []uint32 {
	if level < 0 || level >= len(g.layers) {
		return nil
	}
	return slices.Clone(g.layers[level].neighbors(id))
}

// NodeLevel returns the top level id is present on, or -1 if unknown.
func (g *Graph[P]) NodeLevel(id uint32) int {
	for lc := len(g.layers) - 1; lc >= 0; lc-- {
		if g.layers[lc].contains(id) {
			return lc
		}
	}
	return -1
}

// LayerSize returns the number of points present at level.
func (g *Graph[P]) LayerSize(level int) int {
	if level < 0 || level >= len(g.layers) {
		return 0
	}
	return g.layers[level].size()
}

// Distance computes the metric between a query and a stored point.
func (g *Graph[P]) Distance(q P, id uint32) float64 {
	return g.dist(q, g.points[id])
}

func (g *Graph[P]) maxConnections(level int) int {
	if level == 0 {
		return g.cfg.M0
	}
	return g.cfg.M
}

// Config returns the parameters the graph was built with.
func (g *Graph[P]) Config() Config {
	return g.cfg
}
