// Package distance provides metric functions for knngraph indexes.
//
// Vector metrics are backed by github.com/viterin/vek, which dispatches to
// AVX2/FMA kernels on amd64 when available and falls back to pure Go elsewhere.
//
// # Supported Metrics
//
//   - MetricEuclidean: Euclidean (L2) distance (default)
//   - MetricSquaredL2: squared Euclidean distance
//   - MetricCosine: cosine distance, 1 - cosine similarity
//   - MetricManhattan: L1 distance
//
// Any function of type Func[P] can serve as a metric. The index assumes the
// function is symmetric, non-negative and zero for identical inputs; this is
// not checked at runtime and violations only degrade recall.
//
// # Usage
//
//	d := distance.Euclidean(a, b)
//	fn, err := distance.Provider(distance.MetricCosine)
package distance
