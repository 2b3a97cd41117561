package hnsw

import (
	"math"
	"math/rand/v2"
)

// LevelCap is the highest level a node can be assigned.
const LevelCap = 64

// LevelGenerator draws insertion levels from an exponential distribution so
// layer population decays geometrically with the level.
type LevelGenerator struct {
	ml  float64
	rng *rand.Rand
}

// NewLevelGenerator creates a generator with scale ml backed by rng.
func NewLevelGenerator(ml float64, rng *rand.Rand) *LevelGenerator {
	return &LevelGenerator{ml: ml, rng: rng}
}

// Level returns floor(-ln(U) * ml) for U uniform in (0, 1], clamped to
// [0, LevelCap].
func (g *LevelGenerator) Level() int {
	u := 1 - g.rng.Float64()
	l := math.Floor(-math.Log(u) * g.ml)
	if l >= LevelCap || math.IsNaN(l) {
		return LevelCap
	}
	return max(int(l), 0)
}
