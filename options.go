package knngraph

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/hupe1980/knngraph/internal/hnsw"
)

const (
	// DefaultM is the default maximum number of neighbors on levels above 0.
	DefaultM = 5
	// DefaultEF is the default beam width used while inserting.
	DefaultEF = 200
	// MaxML is the largest accepted level scale. Drawn levels are capped at
	// the same value.
	MaxML = hnsw.LevelCap
)

// HeuristicMode selects the acceptance test of the diversity heuristic.
type HeuristicMode = hnsw.HeuristicMode

const (
	// HeuristicCanonical rejects a candidate when an already selected neighbor
	// is strictly closer to it than the inserted point is.
	HeuristicCanonical = hnsw.HeuristicCanonical
	// HeuristicRandomized accepts a candidate when it is closer to the inserted
	// point than one randomly drawn selected neighbor.
	HeuristicRandomized = hnsw.HeuristicRandomized
)

// Options represents the options for configuring an Index.
type Options struct {
	// M is the maximum number of connections per point on levels >= 1.
	// Higher values improve recall on high-dimensional data at the cost of
	// memory and insertion time.
	M int

	// M0 is the maximum number of connections per point on level 0.
	// Zero derives 2*M.
	M0 int

	// EF is the size of the dynamic candidate list used during insertion.
	EF int

	// ML scales the level distribution. Zero derives 1/ln(M). Values above
	// MaxML are rejected.
	ML float64

	// Heuristic selects diversity-aware neighbor selection (true) or plain
	// closest-M selection (false).
	Heuristic bool

	// HeuristicMode picks the acceptance test used when Heuristic is set.
	HeuristicMode HeuristicMode

	// ExtendCandidates widens the selection pool with the candidates' own neighbors.
	ExtendCandidates bool

	// KeepPrunedConnections fills remaining slots with rejected candidates.
	KeepPrunedConnections bool

	// RandomSeed makes level assignment reproducible. Ignored when Source is set.
	RandomSeed *int64

	// Source overrides the random source entirely.
	Source rand.Source

	// Logger receives structured operation logs. Nil disables logging.
	Logger *Logger

	// MetricsCollector receives operation metrics. Nil disables collection.
	MetricsCollector MetricsCollector
}

// DefaultOptions contains the default options for an Index.
var DefaultOptions = Options{
	M:                     DefaultM,
	EF:                    DefaultEF,
	Heuristic:             true,
	HeuristicMode:         HeuristicCanonical,
	ExtendCandidates:      true,
	KeepPrunedConnections: true,
}

// WithSeed returns an option setting RandomSeed.
func WithSeed(seed int64) func(o *Options) {
	return func(o *Options) {
		o.RandomSeed = &seed
	}
}

// config validates the options and resolves derived parameters.
func (o Options) config() (hnsw.Config, error) {
	if o.M <= 0 {
		return hnsw.Config{}, &ErrInvalidConfiguration{Field: "M", Value: o.M, Reason: "must be positive"}
	}

	m0 := o.M0
	if m0 == 0 {
		m0 = 2 * o.M
	}
	if m0 <= 0 {
		return hnsw.Config{}, &ErrInvalidConfiguration{Field: "M0", Value: o.M0, Reason: "must be positive"}
	}

	if o.EF < 1 {
		return hnsw.Config{}, &ErrInvalidConfiguration{Field: "EF", Value: o.EF, Reason: "must be at least 1"}
	}

	ml := o.ML
	if ml == 0 {
		// M == 1 yields 1/ln(1) = +Inf and is rejected below.
		ml = 1 / math.Log(float64(o.M))
	}
	if ml <= 0 || math.IsInf(ml, 0) || math.IsNaN(ml) {
		return hnsw.Config{}, &ErrInvalidConfiguration{Field: "ML", Value: ml, Reason: "must be positive and finite"}
	}
	if ml > MaxML {
		return hnsw.Config{}, &ErrInvalidConfiguration{Field: "ML", Value: ml, Reason: fmt.Sprintf("must not exceed %d", MaxML)}
	}

	return hnsw.Config{
		M:                     o.M,
		M0:                    m0,
		EF:                    o.EF,
		ML:                    ml,
		Heuristic:             o.Heuristic,
		HeuristicMode:         o.HeuristicMode,
		ExtendCandidates:      o.ExtendCandidates,
		KeepPrunedConnections: o.KeepPrunedConnections,
		Rand:                  o.rand(),
	}, nil
}

func (o Options) rand() *rand.Rand {
	if o.Source != nil {
		return rand.New(o.Source)
	}

	var seed uint64
	if o.RandomSeed != nil {
		seed = uint64(*o.RandomSeed)
	} else {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed))
}
