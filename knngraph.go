package knngraph

import (
	"context"
	"time"

	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/internal/hnsw"
)

// Index is an approximate nearest neighbor index over points of type P.
type Index[P any] struct {
	graph   *hnsw.Graph[P]
	opts    Options
	logger  *Logger
	metrics MetricsCollector
}

// New creates an empty index using metric for all distance computations.
func New[P any](metric distance.Func[P], optFns ...func(o *Options)) (*Index[P], error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if metric == nil {
		return nil, &ErrInvalidConfiguration{Field: "metric", Value: nil, Reason: "must not be nil"}
	}

	cfg, err := opts.config()
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = NoopLogger()
	}

	metrics := opts.MetricsCollector
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}

	return &Index[P]{
		graph:   hnsw.New(metric, cfg),
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// NewEuclidean creates an empty index over float32 vectors using the Euclidean distance.
func NewEuclidean(optFns ...func(o *Options)) (*Index[[]float32], error) {
	return New(distance.Euclidean, optFns...)
}

// Insert adds p to the index and returns its id.
func (idx *Index[P]) Insert(ctx context.Context, p P) (uint32, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		idx.metrics.RecordInsert(time.Since(start), err)
		idx.logger.LogInsert(ctx, 0, 0, err)
		return 0, err
	}

	res := idx.graph.Insert(p)

	idx.metrics.RecordInsert(time.Since(start), nil)
	idx.logger.LogInsert(ctx, res.ID, res.Level, nil)
	if res.Grew() && res.PreviousLevel >= 0 {
		idx.logger.WithID(res.ID).LogLevelGrowth(ctx, res.PreviousLevel, res.Level)
	}

	return res.ID, nil
}

// InsertBatch inserts points in order and returns their ids. The context is
// checked before every point; on cancellation the ids of the points inserted
// so far are returned together with the context error. Inserted points stay
// in the index.
func (idx *Index[P]) InsertBatch(ctx context.Context, points []P) ([]uint32, error) {
	start := time.Now()
	ids := make([]uint32, 0, len(points))

	var err error
	for _, p := range points {
		var id uint32
		if id, err = idx.Insert(ctx, p); err != nil {
			break
		}
		ids = append(ids, id)
	}

	idx.metrics.RecordBatchInsert(len(points), len(points)-len(ids), time.Since(start))
	idx.logger.LogBatchInsert(ctx, len(points), len(ids))

	return ids, err
}

// Len returns the number of inserted points.
func (idx *Index[P]) Len() int {
	return idx.graph.Len()
}

// MaxLevel returns the highest graph level, or -1 if the index is empty.
func (idx *Index[P]) MaxLevel() int {
	return idx.graph.MaxLevel()
}

// EntryPoint returns the id every search starts from. ok is false for an empty index.
func (idx *Index[P]) EntryPoint() (id uint32, ok bool) {
	return idx.graph.EntryPoint()
}

// Point returns the point stored under id.
func (idx *Index[P]) Point(id uint32) (P, bool) {
	return idx.graph.Point(id)
}

// Neighbors returns a copy of the adjacency list of id at level.
func (idx *Index[P]) Neighbors(level int, id uint32) []uint32 {
	return idx.graph.Neighbors(level, id)
}

// Options returns the options the index was created with.
func (idx *Index[P]) Options() Options {
	return idx.opts
}

// Validate checks the structural invariants of the graph. Errors match
// ErrInvariantViolation.
func (idx *Index[P]) Validate() error {
	return idx.graph.Validate()
}
