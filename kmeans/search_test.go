package kmeans

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/hupe1980/kmtree/searcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bruteForce(mat *Matrix, idx *Index, query []float32, k int) []SearchResult {
	results := make([]SearchResult, mat.Rows)
	for i := 0; i < mat.Rows; i++ {
		results[i] = SearchResult{ID: i, Distance: idx.distFunc(mat.Row(i), query)}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if k > len(results) {
		k = len(results)
	}
	return results[:k]
}

func search(t *testing.T, idx *Index, query []float32, k, checks int) []searcher.Result {
	t.Helper()

	rs := searcher.NewKNNResultSet(k)
	require.NoError(t, idx.FindNeighbors(query, rs, checks))
	return rs.Results()
}

func TestFindNeighborsNotBuilt(t *testing.T) {
	mat := uniformMatrix(t, 1, 10, 4)

	idx, err := New(mat)
	require.NoError(t, err)

	rs := searcher.NewKNNResultSet(1)
	assert.ErrorIs(t, idx.FindNeighbors(mat.Row(0), rs, ChecksUnlimited), ErrNotBuilt)
}

func TestFindNeighborsDimensionMismatch(t *testing.T) {
	mat := uniformMatrix(t, 1, 10, 4)
	idx := buildIndex(t, mat)

	rs := searcher.NewKNNResultSet(1)
	err := idx.FindNeighbors([]float32{1, 2}, rs, ChecksUnlimited)

	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 4, dm.Expected)
	assert.Equal(t, 2, dm.Actual)
}

func TestExactSearchTwoClusters(t *testing.T) {
	// Two tight clusters far apart; the query between (0,0) and (0,1) must
	// return exactly those two points at squared distance 0.25 each.
	data := []float32{
		0, 0,
		0, 1,
		10, 0,
		10, 1,
	}
	mat, err := NewMatrix(data, 4, 2)
	require.NoError(t, err)

	idx := buildIndex(t, mat, func(o *Options) {
		o.Branching = 2
	})

	results := search(t, idx, []float32{0, 0.5}, 2, ChecksUnlimited)
	require.Len(t, results, 2)

	ids := []int{results[0].ID, results[1].ID}
	sort.Ints(ids)
	assert.Equal(t, []int{0, 1}, ids)
	assert.InDelta(t, 0.25, results[0].Distance, 1e-6)
	assert.InDelta(t, 0.25, results[1].Distance, 1e-6)
}

func TestExactSearchMatchesBruteForce(t *testing.T) {
	mat := uniformMatrix(t, 17, 300, 8)

	idx := buildIndex(t, mat, func(o *Options) {
		o.Branching = 8
		o.Iterations = -1
	})

	rng := rand.New(rand.NewSource(99))
	query := make([]float32, 8)

	for q := 0; q < 20; q++ {
		for i := range query {
			query[i] = rng.Float32()
		}

		got := search(t, idx, query, 10, ChecksUnlimited)
		want := bruteForce(mat, idx, query, 10)

		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i].ID, got[i].ID, "query %d rank %d", q, i)
			assert.InDelta(t, want[i].Distance, got[i].Distance, 1e-5)
		}
	}
}

func TestBBFFullBudgetMatchesExact(t *testing.T) {
	mat := uniformMatrix(t, 23, 400, 8)

	idx := buildIndex(t, mat, func(o *Options) {
		o.Branching = 10
		o.Iterations = -1
	})

	rng := rand.New(rand.NewSource(123))
	query := make([]float32, 8)

	for q := 0; q < 50; q++ {
		for i := range query {
			query[i] = rng.Float32()
		}

		exact := search(t, idx, query, 10, ChecksUnlimited)
		bbf := search(t, idx, query, 10, mat.Rows)

		require.Len(t, bbf, len(exact))
		for i := range exact {
			assert.Equal(t, exact[i].ID, bbf[i].ID, "query %d rank %d", q, i)
		}
	}
}

func TestBBFSmallBudgetRecall(t *testing.T) {
	// A small budget still fills the result set; recall against exact
	// results should be decent on uniform random data.
	mat := uniformMatrix(t, 31, 1000, 8)

	idx := buildIndex(t, mat, func(o *Options) {
		o.Branching = 10
	})

	rng := rand.New(rand.NewSource(7))
	query := make([]float32, 8)

	hits, total := 0, 0
	for q := 0; q < 20; q++ {
		for i := range query {
			query[i] = rng.Float32()
		}

		exact := search(t, idx, query, 5, ChecksUnlimited)
		bbf := search(t, idx, query, 5, 100)
		require.Len(t, bbf, 5)

		exactIDs := map[int]bool{}
		for _, r := range exact {
			exactIDs[r.ID] = true
		}
		for _, r := range bbf {
			if exactIDs[r.ID] {
				hits++
			}
			total++
		}
	}

	assert.Greater(t, float64(hits)/float64(total), 0.3, "recall too low")
}

func TestExactSearchGaussianClusters(t *testing.T) {
	// 10 well-separated clusters of 100 points. Exact top-5 for a query at
	// a cluster center must come from that cluster's group.
	rng := rand.New(rand.NewSource(5))

	const (
		numClusters = 10
		perCluster  = 100
		cols        = 8
	)

	data := make([]float32, numClusters*perCluster*cols)
	centers := make([][]float32, numClusters)
	for c := 0; c < numClusters; c++ {
		center := make([]float32, cols)
		for j := range center {
			center[j] = float32(c * 100)
		}
		centers[c] = center
		for i := 0; i < perCluster; i++ {
			row := data[(c*perCluster+i)*cols : (c*perCluster+i+1)*cols]
			for j := range row {
				row[j] = center[j] + float32(rng.NormFloat64())
			}
		}
	}

	mat, err := NewMatrix(data, numClusters*perCluster, cols)
	require.NoError(t, err)

	idx := buildIndex(t, mat, func(o *Options) {
		o.Branching = 10
		o.Iterations = -1
	})

	for c := 0; c < numClusters; c++ {
		results := search(t, idx, centers[c], 5, ChecksUnlimited)
		require.Len(t, results, 5)
		for _, r := range results {
			assert.GreaterOrEqual(t, r.ID, c*perCluster)
			assert.Less(t, r.ID, (c+1)*perCluster)
		}
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	mat, err := NewMatrix(nil, 0, 4)
	require.NoError(t, err)
	idx := buildIndex(t, mat)

	results := search(t, idx, []float32{0, 0, 0, 0}, 3, ChecksUnlimited)
	assert.Empty(t, results)
}

func TestBBFMoreNeighborsThanPoints(t *testing.T) {
	mat := uniformMatrix(t, 3, 4, 2)
	idx := buildIndex(t, mat, func(o *Options) {
		o.Branching = 2
	})

	rs := searcher.NewKNNResultSet(10)
	err := idx.FindNeighbors(mat.Row(0), rs, 4)
	assert.ErrorIs(t, err, ErrInvariantViolation)
}
