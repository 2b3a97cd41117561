package distance

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/viterin/vek/vek32"
)

// Func computes the distance between two points.
type Func[P any] func(a, b P) float64

// Euclidean calculates the L2 distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Euclidean(a, b []float32) float64 {
	if len(a) == 0 {
		return 0
	}
	return float64(vek32.Distance(a, b))
}

// SquaredL2 calculates the squared L2 distance between two vectors.
// It preserves the ordering of Euclidean without the square root.
func SquaredL2(a, b []float32) float64 {
	d := Euclidean(a, b)
	return d * d
}

// Cosine calculates 1 - cosine similarity, a value in [0, 2].
// Returns 1 if either vector has zero magnitude.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 {
		return 1
	}
	normA := vek32.Norm(a)
	normB := vek32.Norm(b)
	if normA == 0 || normB == 0 {
		return 1
	}
	sim := float64(vek32.Dot(a, b)) / (float64(normA) * float64(normB))
	// Rounding can push identical vectors slightly past 1.
	return math.Max(0, 1-sim)
}

// Manhattan calculates the L1 distance between two vectors.
func Manhattan(a, b []float32) float64 {
	if len(a) == 0 {
		return 0
	}
	return float64(vek32.ManhattanDistance(a, b))
}

// Hamming calculates the number of differing bits between two byte slices.
// Assumes slices are the same length.
func Hamming(a, b []byte) float64 {
	var n int
	for i := range a {
		n += bits.OnesCount8(a[i] ^ b[i])
	}
	return float64(n)
}

// Metric represents a built-in vector metric.
type Metric int

const (
	MetricEuclidean Metric = iota
	MetricSquaredL2
	MetricCosine
	MetricManhattan
)

func (m Metric) String() string {
	switch m {
	case MetricEuclidean:
		return "Euclidean"
	case MetricSquaredL2:
		return "SquaredL2"
	case MetricCosine:
		return "Cosine"
	case MetricManhattan:
		return "Manhattan"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// ParseMetric maps a metric name to a Metric.
func ParseMetric(name string) (Metric, error) {
	switch name {
	case "euclidean", "l2", "Euclidean", "":
		return MetricEuclidean, nil
	case "squared_l2", "sql2", "SquaredL2":
		return MetricSquaredL2, nil
	case "cosine", "Cosine":
		return MetricCosine, nil
	case "manhattan", "l1", "Manhattan":
		return MetricManhattan, nil
	default:
		return 0, fmt.Errorf("unknown metric %q", name)
	}
}

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func[[]float32], error) {
	switch m {
	case MetricEuclidean:
		return Euclidean, nil
	case MetricSquaredL2:
		return SquaredL2, nil
	case MetricCosine:
		return Cosine, nil
	case MetricManhattan:
		return Manhattan, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}
