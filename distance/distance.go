// Package distance provides the distance functions used for building and
// querying the k-means tree.
package distance

import (
	"fmt"

	"github.com/hupe1980/kmtree/internal/math32"
)

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	return math32.SquaredL2(a, b)
}

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	return math32.Dot(a, b)
}

// SquaredNorm calculates the squared L2 norm of v, i.e. the squared L2
// distance between v and the zero vector.
func SquaredNorm(v []float32) float32 {
	return math32.SquaredNorm(v)
}

// NormalizeL2InPlace L2-normalizes v in place.
// Returns false if v has zero L2 norm.
func NormalizeL2InPlace(v []float32) bool {
	if len(v) == 0 {
		return false
	}
	norm2 := math32.SquaredNorm(v)
	if norm2 == 0 {
		return false
	}
	inv := 1 / sqrt(norm2)
	math32.ScaleInPlace(v, inv)
	return true
}

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	// MetricSquaredL2 is the squared Euclidean distance.
	MetricSquaredL2 Metric = iota
	// MetricCosine orders results by cosine similarity. It is implemented as
	// squared L2 distance over L2-normalized vectors; callers are expected to
	// normalize both the dataset and the queries.
	MetricCosine
)

func (m Metric) String() string {
	switch m {
	case MetricSquaredL2:
		return "SquaredL2"
	case MetricCosine:
		return "Cosine"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Func is a function type for distance calculation.
type Func func(a, b []float32) float32

// WideFunc is a function type for distance calculation against a float64
// accumulator vector, used by the Lloyd iteration working centers.
type WideFunc func(a []float32, b []float64) float64

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricSquaredL2, MetricCosine:
		return SquaredL2, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}

// ProviderWide returns the wide-accumulator distance function for the
// given metric.
func ProviderWide(m Metric) (WideFunc, error) {
	switch m {
	case MetricSquaredL2, MetricCosine:
		return math32.SquaredL2Wide, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}
