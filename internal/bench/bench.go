// Package bench measures build time, query latency and recall of an index
// on synthetic clustered data.
package bench

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/hupe1980/knngraph"
	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/internal/cpuinfo"
	"github.com/hupe1980/knngraph/testutil"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Config describes one benchmark run.
type Config struct {
	Points   int
	Dim      int
	Queries  int
	K        int
	EF       int
	Clusters int
	Spread   float32
	Seed     int64
	Metric   distance.Metric

	// Workers is the maximum number of concurrent queries. If 0, defaults to 1.
	Workers int

	// QPS caps the query rate. If 0, unlimited.
	QPS float64
}

// DefaultConfig mirrors the CLI defaults.
var DefaultConfig = Config{
	Points:   10000,
	Dim:      32,
	Queries:  200,
	K:        10,
	EF:       64,
	Clusters: 32,
	Spread:   0.15,
	Seed:     42,
	Metric:   distance.MetricEuclidean,
	Workers:  4,
}

// Report holds the measurements of a run.
type Report struct {
	Points      int            `json:"points"`
	Dim         int            `json:"dim"`
	Metric      string         `json:"metric"`
	Queries     int            `json:"queries"`
	K           int            `json:"k"`
	EF          int            `json:"ef"`
	BuildTime   time.Duration  `json:"build_time_ns"`
	QueryTime   time.Duration  `json:"query_time_ns"`
	LatencyMean time.Duration  `json:"latency_mean_ns"`
	LatencyP50  time.Duration  `json:"latency_p50_ns"`
	LatencyP99  time.Duration  `json:"latency_p99_ns"`
	Throughput  float64        `json:"qps"`
	Recall      float64        `json:"recall"`
	ISA         string         `json:"isa"`
	Stats       knngraph.Stats `json:"stats"`
}

func (c Config) validate() error {
	switch {
	case c.Points < 1:
		return fmt.Errorf("points must be positive: %d", c.Points)
	case c.Dim < 1:
		return fmt.Errorf("dim must be positive: %d", c.Dim)
	case c.Queries < 1:
		return fmt.Errorf("queries must be positive: %d", c.Queries)
	case c.Clusters < 1:
		return fmt.Errorf("clusters must be positive: %d", c.Clusters)
	case c.QPS < 0:
		return fmt.Errorf("qps must not be negative: %v", c.QPS)
	}
	return nil
}

// Run builds an index from seeded clustered vectors, answers the queries
// concurrently and compares them against exact results.
func Run(ctx context.Context, cfg Config, optFns ...func(o *knngraph.Options)) (*Report, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	rng := testutil.NewRNG(cfg.Seed)
	data := rng.ClusteredVectors(cfg.Points+cfg.Queries, cfg.Dim, cfg.Clusters, cfg.Spread)
	points, queries := data[:cfg.Points], data[cfg.Points:]

	metric, err := distance.Provider(cfg.Metric)
	if err != nil {
		return nil, err
	}

	opts := append([]func(o *knngraph.Options){knngraph.WithSeed(cfg.Seed)}, optFns...)
	idx, err := knngraph.New(metric, opts...)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if _, err := idx.InsertBatch(ctx, points); err != nil {
		return nil, fmt.Errorf("build failed: %w", err)
	}
	buildTime := time.Since(start)

	approx, latencies, queryTime, err := runQueries(ctx, idx, queries, cfg)
	if err != nil {
		return nil, err
	}

	var recall float64
	for i, q := range queries {
		truth := testutil.BruteForceSearch(points, q, cfg.K, metric)
		recall += testutil.ComputeRecall(truth, approx[i])
	}
	recall /= float64(len(queries))

	r := &Report{
		Points:    cfg.Points,
		Dim:       cfg.Dim,
		Metric:    cfg.Metric.String(),
		Queries:   cfg.Queries,
		K:         cfg.K,
		EF:        cfg.EF,
		BuildTime: buildTime,
		QueryTime: queryTime,
		Recall:    recall,
		ISA:       cpuinfo.Best().String(),
		Stats:     idx.Stats(),
	}
	r.setLatencies(latencies)
	if queryTime > 0 {
		r.Throughput = float64(len(queries)) / queryTime.Seconds()
	}

	return r, nil
}

// runQueries fans the queries out over at most cfg.Workers goroutines. The
// index is not mutated while they run.
func runQueries(ctx context.Context, idx *knngraph.Index[[]float32], queries [][]float32, cfg Config) ([][]testutil.SearchResult, []time.Duration, time.Duration, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	var limiter *rate.Limiter
	if cfg.QPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.QPS), 1)
	}

	results := make([][]testutil.SearchResult, len(queries))
	latencies := make([]time.Duration, len(queries))
	opts := &knngraph.SearchOptions{EF: cfg.EF}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	start := time.Now()
	for i, q := range queries {
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
			}

			t := time.Now()
			res, err := idx.Search(gctx, q, cfg.K, opts)
			if err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}
			latencies[i] = time.Since(t)

			out := make([]testutil.SearchResult, len(res))
			for j, r := range res {
				out[j] = testutil.SearchResult{ID: r.ID, Distance: r.Distance}
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, 0, err
	}

	return results, latencies, time.Since(start), nil
}

func (r *Report) setLatencies(latencies []time.Duration) {
	if len(latencies) == 0 {
		return
	}

	sorted := slices.Clone(latencies)
	slices.Sort(sorted)

	var total time.Duration
	for _, l := range sorted {
		total += l
	}

	r.LatencyMean = total / time.Duration(len(sorted))
	r.LatencyP50 = percentile(sorted, 0.50)
	r.LatencyP99 = percentile(sorted, 0.99)
}

// percentile expects sorted input.
func percentile(sorted []time.Duration, p float64) time.Duration {
	i := int(float64(len(sorted)-1) * p)
	return sorted[i]
}

// WriteText renders the report for humans.
func (r *Report) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, `cpu:         %s
points:      %d (dim %d, %s)
build:       %v
queries:     %d (k=%d, ef=%d)
query time:  %v (%.0f qps)
latency:     mean %v, p50 %v, p99 %v
recall@%d:   %.4f

%s`,
		r.ISA,
		r.Points, r.Dim, r.Metric,
		r.BuildTime,
		r.Queries, r.K, r.EF,
		r.QueryTime, r.Throughput,
		r.LatencyMean, r.LatencyP50, r.LatencyP99,
		r.K, r.Recall,
		r.Stats)
	return err
}

// WriteJSON renders the report as a single JSON document.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
