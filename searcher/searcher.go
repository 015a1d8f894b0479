// Package searcher provides the online top-k result sink consumed by tree
// searches.
package searcher

import "math"

// ResultSet accumulates nearest-neighbor candidates online. The search
// engine feeds it one (distance, id) pair at a time and uses WorstDist and
// Full to prune.
type ResultSet interface {
	// AddPoint offers a candidate to the set.
	AddPoint(dist float32, id int)

	// WorstDist returns the largest distance currently worth beating.
	// While the set is not full this is the maximum float32 value, so every
	// candidate is accepted.
	WorstDist() float32

	// Full reports whether the set holds its target number of results.
	Full() bool
}

// Result is a single search result.
type Result struct {
	// ID is the dataset row of the result.
	ID int

	// Distance is the distance between the query and the result vector.
	Distance float32
}

// Compile time check to ensure KNNResultSet satisfies the ResultSet interface.
var _ ResultSet = (*KNNResultSet)(nil)

// KNNResultSet keeps the k nearest candidates seen so far, ordered by
// ascending distance. Ties are kept in insertion order: a new candidate is
// placed after existing candidates at the same distance.
type KNNResultSet struct {
	capacity int
	ids      []int
	dists    []float32
}

// NewKNNResultSet creates a result set holding at most k results.
func NewKNNResultSet(k int) *KNNResultSet {
	return &KNNResultSet{
		capacity: k,
		ids:      make([]int, 0, k),
		dists:    make([]float32, 0, k),
	}
}

// AddPoint implements ResultSet.
func (rs *KNNResultSet) AddPoint(dist float32, id int) {
	n := len(rs.dists)

	if n == rs.capacity {
		if dist >= rs.dists[n-1] {
			return
		}
		n--
		rs.ids = rs.ids[:n]
		rs.dists = rs.dists[:n]
	}

	// Insertion point: after all entries with distance <= dist.
	i := n
	for i > 0 && rs.dists[i-1] > dist {
		i--
	}

	rs.ids = append(rs.ids, 0)
	rs.dists = append(rs.dists, 0)
	copy(rs.ids[i+1:], rs.ids[i:])
	copy(rs.dists[i+1:], rs.dists[i:])
	rs.ids[i] = id
	rs.dists[i] = dist
}

// WorstDist implements ResultSet.
func (rs *KNNResultSet) WorstDist() float32 {
	if len(rs.dists) < rs.capacity {
		return math.MaxFloat32
	}
	return rs.dists[len(rs.dists)-1]
}

// Full implements ResultSet.
func (rs *KNNResultSet) Full() bool {
	return len(rs.dists) == rs.capacity
}

// Len returns the number of results collected so far.
func (rs *KNNResultSet) Len() int {
	return len(rs.dists)
}

// Results returns the collected results in ascending distance order.
func (rs *KNNResultSet) Results() []Result {
	out := make([]Result, len(rs.dists))
	for i := range rs.dists {
		out[i] = Result{ID: rs.ids[i], Distance: rs.dists[i]}
	}
	return out
}

// Reset clears the set for reuse.
func (rs *KNNResultSet) Reset() {
	rs.ids = rs.ids[:0]
	rs.dists = rs.dists[:0]
}
