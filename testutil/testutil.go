// Package testutil provides deterministic data generation and reference
// search helpers for tests.
package testutil

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/hupe1980/kmtree/distance"
	"github.com/hupe1980/kmtree/kmeans"
)

// RNG encapsulates a seeded random number generator. It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float32 in a loop).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32()
	}
}

// UniformMatrix generates a rows x cols matrix with values in [0, 1).
func (r *RNG) UniformMatrix(rows, cols int) *kmeans.Matrix {
	data := make([]float32, rows*cols)
	r.FillUniform(data)
	return &kmeans.Matrix{Data: data, Rows: rows, Cols: cols}
}

// GaussianClusters generates numClusters groups of perCluster points each,
// scattered with the given standard deviation around centers whose
// coordinates are drawn uniformly from [0, spread). Returns the matrix and
// the cluster centers.
func (r *RNG) GaussianClusters(numClusters, perCluster, cols int, spread, stddev float64) (*kmeans.Matrix, [][]float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := numClusters * perCluster
	data := make([]float32, rows*cols)
	centers := make([][]float32, numClusters)

	for c := range numClusters {
		center := make([]float32, cols)
		for j := range center {
			center[j] = float32(r.rand.Float64() * spread)
		}
		centers[c] = center

		for i := range perCluster {
			row := data[(c*perCluster+i)*cols : (c*perCluster+i+1)*cols]
			for j := range row {
				row[j] = center[j] + float32(r.rand.NormFloat64()*stddev)
			}
		}
	}

	return &kmeans.Matrix{Data: data, Rows: rows, Cols: cols}, centers
}

// BruteForceSearch returns the true k nearest rows of mat to query under
// the given distance function, ties broken by lower row id.
func BruteForceSearch(mat *kmeans.Matrix, query []float32, k int, distFunc distance.Func) []kmeans.SearchResult {
	results := make([]kmeans.SearchResult, mat.Rows)
	for i := 0; i < mat.Rows; i++ {
		results[i] = kmeans.SearchResult{ID: i, Distance: distFunc(mat.Row(i), query)}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if k > len(results) {
		k = len(results)
	}
	return results[:k]
}
