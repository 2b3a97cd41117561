package hnsw

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/internal/queue"
	"github.com/hupe1980/knngraph/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(seed uint64, optFns ...func(c *Config)) Config {
	cfg := Config{
		M:                     5,
		M0:                    10,
		EF:                    200,
		ML:                    1 / math.Log(5),
		Heuristic:             true,
		ExtendCandidates:      true,
		KeepPrunedConnections: true,
		Rand:                  rand.New(rand.NewPCG(seed, seed)),
	}
	for _, fn := range optFns {
		fn(&cfg)
	}
	return cfg
}

func newTestGraph(t *testing.T, points [][]float32, optFns ...func(c *Config)) *Graph[[]float32] {
	t.Helper()
	g := New(distance.Euclidean, testConfig(4711, optFns...))
	for _, p := range points {
		g.Insert(p)
	}
	require.NoError(t, g.Validate())
	return g
}

func TestInsert_First(t *testing.T) {
	g := New(distance.Euclidean, testConfig(1))

	res := g.Insert([]float32{1, 2})
	assert.Equal(t, uint32(0), res.ID)
	assert.Equal(t, 0, res.Level)
	assert.True(t, res.Grew())

	assert.Equal(t, 1, g.Len())
	assert.Equal(t, 0, g.MaxLevel())
	ep, ok := g.EntryPoint()
	require.True(t, ok)
	assert.Equal(t, uint32(0), ep)

	out := g.Search([]float32{1, 2}, 1, 1)
	require.Len(t, out, 1)
	assert.Equal(t, uint32(0), out[0].Node)
	assert.Equal(t, 0.0, out[0].Distance)
}

func TestSearch_Empty(t *testing.T) {
	g := New(distance.Euclidean, testConfig(1))

	assert.Empty(t, g.Search([]float32{0, 0}, 3, 10))
	for range g.Trace([]float32{0, 0}, 3, 10) {
		t.Fatal("trace of an empty graph must not yield")
	}
	_, ok := g.EntryPoint()
	assert.False(t, ok)
	assert.Equal(t, -1, g.MaxLevel())
	require.NoError(t, g.Validate())
}

func TestSearch_TwoClusters(t *testing.T) {
	points := [][]float32{{0, 0}, {1, 0}, {0, 1}, {10, 10}, {11, 10}, {10, 11}}

	for _, seed := range []uint64{1, 2, 3, 42, 4711} {
		g := New(distance.Euclidean, testConfig(seed))
		for _, p := range points {
			g.Insert(p)
		}
		require.NoError(t, g.Validate())

		out := g.Search([]float32{0.1, 0.1}, 3, 1)
		require.Len(t, out, 3)

		ids := itemIDs(out)
		assert.ElementsMatch(t, []uint32{0, 1, 2}, ids, "seed %d", seed)
		for _, item := range out {
			assert.Less(t, item.Distance, 2.0)
		}
		for i := 1; i < len(out); i++ {
			assert.LessOrEqual(t, out[i-1].Distance, out[i].Distance)
		}
	}
}

func TestInvariants(t *testing.T) {
	points := testutil.NewRNG(7).UniformVectors(300, 4)

	tests := []struct {
		name string
		fn   func(c *Config)
	}{
		{"Canonical", func(c *Config) {}},
		{"Randomized", func(c *Config) { c.HeuristicMode = HeuristicRandomized }},
		{"Simple", func(c *Config) { c.Heuristic = false }},
		{"NoExtend", func(c *Config) { c.ExtendCandidates = false }},
		{"NoKeepPruned", func(c *Config) { c.KeepPrunedConnections = false }},
		{"SmallBeam", func(c *Config) { c.EF = 4; c.M = 2; c.M0 = 3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGraph(t, points, tt.fn)

			assert.Equal(t, len(points), g.LayerSize(0))
			for lc := 1; lc <= g.MaxLevel(); lc++ {
				upper := g.layers[lc].members
				lower := g.layers[lc-1].members
				assert.Equal(t, upper.GetCardinality(), upper.AndCardinality(lower), "level %d", lc)
			}

			for lc, lyr := range g.layers {
				for id, conns := range lyr.edges {
					assert.LessOrEqual(t, len(conns), g.maxConnections(lc), "node %d level %d", id, lc)
				}
			}

			ep, ok := g.EntryPoint()
			require.True(t, ok)
			assert.Equal(t, g.MaxLevel(), g.NodeLevel(ep))
		})
	}
}

func TestSelfRetrieval(t *testing.T) {
	points := testutil.NewRNG(11).UniformVectors(60, 2)

	t.Run("Simple", func(t *testing.T) {
		g := newTestGraph(t, points[:12], func(c *Config) {
			c.Heuristic = false
		})
		for id, p := range points[:12] {
			out := g.Search(p, 1, 12)
			require.Len(t, out, 1)
			assert.Equal(t, 0.0, out[0].Distance, "point %d", id)
		}
	})

	// Exact for the canonical rule once ef reaches M0.
	t.Run("Canonical", func(t *testing.T) {
		for seed := range uint64(50) {
			g := New(distance.Euclidean, testConfig(seed))
			for _, p := range points {
				g.Insert(p)
			}
			for id, p := range points {
				out := g.Search(p, 1, g.cfg.M0)
				require.Len(t, out, 1)
				assert.Equal(t, uint32(id), out[0].Node, "seed %d point %d", seed, id)
			}
		}
	})

	t.Run("Randomized", func(t *testing.T) {
		found, total := 0, 0
		for seed := range uint64(50) {
			g := New(distance.Euclidean, testConfig(seed, func(c *Config) {
				c.HeuristicMode = HeuristicRandomized
			}))
			for _, p := range points {
				g.Insert(p)
			}
			for _, p := range points {
				out := g.Search(p, 1, g.cfg.M0)
				if len(out) == 1 && out[0].Distance == 0 {
					found++
				}
				total++
			}
		}
		assert.GreaterOrEqual(t, float64(found)/float64(total), 0.98)
	})
}

func TestRecall(t *testing.T) {
	rng := testutil.NewRNG(4711)
	data := rng.ClusteredVectors(550, 8, 10, 0.2)
	points, queries := data[:500], data[500:]
	k := 10

	g := newTestGraph(t, points, func(c *Config) {
		c.M = 8
		c.M0 = 16
		c.ML = 1 / math.Log(8)
	})

	var truth, approx [][]testutil.SearchResult
	for _, q := range queries {
		truth = append(truth, testutil.BruteForceSearch(points, q, k, distance.Euclidean))

		var res []testutil.SearchResult
		for _, item := range g.Search(q, k, 64) {
			res = append(res, testutil.SearchResult{ID: item.Node, Distance: item.Distance})
		}
		approx = append(approx, res)
	}

	assert.GreaterOrEqual(t, testutil.MeanRecall(truth, approx), 0.9)
}

func TestMonotonicBeam(t *testing.T) {
	points := testutil.NewRNG(3).UniformVectors(400, 3)
	g := newTestGraph(t, points)

	q := []float32{0.5, 0.5, 0.5}
	ef := 16

	var sizes []int
	var worsts []float64
	g.searchLayer(q, []uint32{g.entryPoint}, ef, 0, func(size int, worst float64) {
		sizes = append(sizes, size)
		worsts = append(worsts, worst)
	})
	require.NotEmpty(t, worsts)

	full := false
	prev := math.Inf(1)
	for i := range worsts {
		if sizes[i] < ef {
			require.False(t, full, "result set shrank")
			continue
		}
		full = true
		assert.LessOrEqual(t, worsts[i], prev, "step %d", i)
		prev = worsts[i]
	}
}

func TestSearchLayer_SeedsTrimmedToEF(t *testing.T) {
	points := testutil.Grid2D(4)
	g := newTestGraph(t, points)

	out := g.searchLayer([]float32{0, 0}, []uint32{15, 14, 13, 12, 0}, 2, 0, nil)
	require.Len(t, out, 2)
	assert.Equal(t, uint32(0), out[0].Node)
	assert.Equal(t, 0.0, out[0].Distance)
}

func TestDeterminism(t *testing.T) {
	points := testutil.NewRNG(99).UniformVectors(200, 4)

	build := func() *Graph[[]float32] {
		g := New(distance.Euclidean, testConfig(2024, func(c *Config) {
			c.HeuristicMode = HeuristicRandomized
		}))
		for _, p := range points {
			g.Insert(p)
		}
		return g
	}

	g1, g2 := build(), build()
	require.Equal(t, g1.MaxLevel(), g2.MaxLevel())
	assert.Equal(t, g1.entryPoint, g2.entryPoint)
	for lc := range g1.layers {
		assert.True(t, g1.layers[lc].members.Equals(g2.layers[lc].members), "level %d members", lc)
		assert.Equal(t, g1.layers[lc].edges, g2.layers[lc].edges, "level %d edges", lc)
	}

	q := []float32{0.1, 0.2, 0.3, 0.4}
	assert.Equal(t, g1.Search(q, 5, 20), g2.Search(q, 5, 20))
}

func TestLevelGenerator(t *testing.T) {
	gen := NewLevelGenerator(1/math.Log(5), rand.New(rand.NewPCG(1, 2)))

	const n = 20000
	above := 0
	for range n {
		l := gen.Level()
		require.GreaterOrEqual(t, l, 0)
		if l >= 1 {
			above++
		}
	}

	// P(level >= 1) = exp(-1/ml) = 1/5
	assert.InDelta(t, 0.2, float64(above)/n, 0.02)
}

func TestLevelGenerator_Capped(t *testing.T) {
	for _, ml := range []float64{1e5, 1e300, math.MaxFloat64} {
		gen := NewLevelGenerator(ml, rand.New(rand.NewPCG(1, 2)))
		for range 1000 {
			l := gen.Level()
			require.GreaterOrEqual(t, l, 0, "ml %g", ml)
			require.LessOrEqual(t, l, LevelCap, "ml %g", ml)
		}
	}
}

func TestInsert_HugeML(t *testing.T) {
	points := testutil.NewRNG(1).UniformVectors(20, 2)
	g := newTestGraph(t, points, func(c *Config) {
		c.ML = 1e300
	})
	assert.Equal(t, 20, g.Len())
	assert.LessOrEqual(t, g.MaxLevel(), LevelCap)

	out := g.Search(points[7], 1, 10)
	require.Len(t, out, 1)
	assert.Equal(t, uint32(7), out[0].Node)
}

func TestLevelGrowth(t *testing.T) {
	g := New(distance.Euclidean, testConfig(1))
	levels := []int{3, 1, 0, 5}
	g.levelFn = func() int {
		l := levels[0]
		levels = levels[1:]
		return l
	}

	g.Insert([]float32{0, 0})
	assert.Equal(t, 0, g.MaxLevel())

	res := g.Insert([]float32{1, 0})
	assert.True(t, res.Grew())
	assert.Equal(t, 3, g.MaxLevel())
	ep, _ := g.EntryPoint()
	assert.Equal(t, uint32(1), ep)
	for lc := 1; lc <= 3; lc++ {
		assert.Equal(t, 1, g.LayerSize(lc))
	}

	res = g.Insert([]float32{2, 0})
	assert.False(t, res.Grew())
	assert.Equal(t, 1, g.NodeLevel(res.ID))
	assert.Equal(t, 2, g.LayerSize(1))
	assert.Contains(t, g.Neighbors(1, 2), uint32(1))
	assert.Contains(t, g.Neighbors(1, 1), uint32(2))

	g.Insert([]float32{3, 0})
	res = g.Insert([]float32{4, 0})
	assert.Equal(t, 5, g.MaxLevel())
	ep, _ = g.EntryPoint()
	assert.Equal(t, res.ID, ep)

	require.NoError(t, g.Validate())
}

func TestTrace(t *testing.T) {
	points := testutil.NewRNG(5).UniformVectors(150, 2)
	g := newTestGraph(t, points)
	q := []float32{0.3, 0.7}

	var steps []TraceStep
	for step := range g.Trace(q, 4, 8) {
		steps = append(steps, step)
	}

	require.Len(t, steps, 2*(g.MaxLevel()+1))
	for i, step := range steps {
		assert.Equal(t, g.MaxLevel()-i/2, step.Level)
		if i%2 == 0 {
			assert.Equal(t, StageBefore, step.Stage)
		} else {
			assert.Equal(t, StageAfter, step.Stage)
			if i+1 < len(steps) {
				assert.Equal(t, step.Candidates, steps[i+1].Candidates, "level %d", step.Level)
			}
		}
	}
	assert.Len(t, steps[0].Candidates, 1)

	last := steps[len(steps)-1]
	assert.Equal(t, g.Search(q, 4, 8), last.Candidates)
	assert.Len(t, last.Candidates, 4)

	// Restartable by re-ranging, early exit honored.
	count := 0
	for range g.Trace(q, 4, 8) {
		count++
		if count == 1 {
			break
		}
	}
	assert.Equal(t, 1, count)

	var again []TraceStep
	for step := range g.Trace(q, 4, 8) {
		again = append(again, step)
	}
	assert.Equal(t, steps, again)
}

func TestSearch_MatchesTrace(t *testing.T) {
	points := testutil.NewRNG(8).UniformVectors(200, 3)
	g := newTestGraph(t, points)

	for i, q := range testutil.NewRNG(9).UniformVectors(20, 3) {
		k := 1 + i%5
		var last TraceStep
		for step := range g.Trace(q, k, 12) {
			last = step
		}
		assert.Equal(t, last.Candidates, g.Search(q, k, 12), "query %d", i)
	}

	calls := 0
	out := g.descend(points[0], 3, 12, func(int, TraceStage, []queue.Item) bool {
		calls++
		return false
	})
	assert.Nil(t, out)
	assert.Equal(t, 1, calls)
}

func TestTrace_SnapshotsAreCopies(t *testing.T) {
	g := newTestGraph(t, testutil.Grid2D(5))

	var first []TraceStep
	for step := range g.Trace([]float32{2, 2}, 3, 5) {
		first = append(first, step)
	}
	for _, step := range first {
		for i := range step.Candidates {
			step.Candidates[i].Distance = -1
		}
	}

	for step := range g.Trace([]float32{2, 2}, 3, 5) {
		for _, c := range step.Candidates {
			assert.GreaterOrEqual(t, c.Distance, 0.0)
		}
	}
}

func TestBruteSearch(t *testing.T) {
	points := testutil.Grid2D(6)
	g := newTestGraph(t, points)

	out := g.BruteSearch([]float32{0, 0}, 3)
	require.Len(t, out, 3)
	assert.Equal(t, uint32(0), out[0].Node)
	assert.ElementsMatch(t, []uint32{1, 6}, []uint32{out[1].Node, out[2].Node})
}

func TestStats(t *testing.T) {
	points := testutil.NewRNG(8).UniformVectors(120, 3)
	g := newTestGraph(t, points)

	s := g.Stats()
	assert.Equal(t, 120, s.Points)
	assert.Equal(t, g.MaxLevel(), s.MaxLevel)
	require.Len(t, s.Levels, g.MaxLevel()+1)
	assert.Equal(t, 120, s.Levels[0].Nodes)
	assert.LessOrEqual(t, s.Levels[0].MaxDegree, 10)
	assert.Greater(t, s.Levels[0].AvgDegree, 0.0)
	for lc := 1; lc < len(s.Levels); lc++ {
		assert.LessOrEqual(t, s.Levels[lc].Nodes, s.Levels[lc-1].Nodes)
		assert.LessOrEqual(t, s.Levels[lc].MaxDegree, 5)
	}
}

func TestValidate_DetectsViolations(t *testing.T) {
	g := newTestGraph(t, testutil.Grid2D(4))

	g.layers[0].setNeighbors(0, []uint32{0})
	assert.ErrorIs(t, g.Validate(), ErrInvariantViolation)

	g = newTestGraph(t, testutil.Grid2D(4))
	g.layers[0].setNeighbors(0, []uint32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11})
	assert.ErrorIs(t, g.Validate(), ErrInvariantViolation)

	g = newTestGraph(t, testutil.Grid2D(4))
	g.points = append(g.points, []float32{9, 9})
	assert.ErrorIs(t, g.Validate(), ErrInvariantViolation)
}

func TestPoint(t *testing.T) {
	g := newTestGraph(t, [][]float32{{1, 1}, {2, 2}})

	p, ok := g.Point(1)
	require.True(t, ok)
	assert.Equal(t, []float32{2, 2}, p)

	_, ok = g.Point(5)
	assert.False(t, ok)

	assert.Nil(t, g.Neighbors(7, 0))
	assert.Equal(t, 0, g.LayerSize(-1))
	assert.Equal(t, -1, g.NodeLevel(42))
	assert.InDelta(t, math.Sqrt2, g.Distance([]float32{0, 0}, 0), 1e-6)
}
