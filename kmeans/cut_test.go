package kmeans

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClusterCentersInvalidK(t *testing.T) {
	mat := uniformMatrix(t, 1, 50, 4)
	idx := buildIndex(t, mat, func(o *Options) {
		o.Branching = 4
	})

	_, _, err := idx.ClusterCenters(0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestClusterCentersNotBuilt(t *testing.T) {
	mat := uniformMatrix(t, 1, 50, 4)

	idx, err := New(mat)
	require.NoError(t, err)

	_, _, err = idx.ClusterCenters(3)
	assert.ErrorIs(t, err, ErrNotBuilt)
}

func TestClusterCutCoversDataset(t *testing.T) {
	mat := uniformMatrix(t, 41, 400, 6)
	idx := buildIndex(t, mat, func(o *Options) {
		o.Branching = 4
	})

	for _, k := range []int{1, 4, 10, 25} {
		clusters, _, err := idx.ClusterCut(k)
		require.NoError(t, err)
		require.NotEmpty(t, clusters)
		assert.LessOrEqual(t, len(clusters), k)

		// Sizes sum to N and memberships partition the dataset.
		var all []int
		total := 0
		for _, c := range clusters {
			assert.Equal(t, c.Size, len(c.IDs))
			total += c.Size
			all = append(all, c.IDs...)
		}
		assert.Equal(t, 400, total)

		sort.Ints(all)
		require.Len(t, all, 400)
		for i, id := range all {
			assert.Equal(t, i, id)
		}
	}
}

func TestClusterCutVarianceMonotone(t *testing.T) {
	mat := uniformMatrix(t, 43, 500, 6)
	idx := buildIndex(t, mat, func(o *Options) {
		o.Branching = 4
		o.Iterations = -1
	})

	prev := float32(0)
	first := true
	for k := 1; k <= 40; k += 3 {
		clusters, variance, err := idx.ClusterCut(k)
		require.NoError(t, err)
		require.NotEmpty(t, clusters)

		if !first {
			assert.LessOrEqual(t, variance, prev+1e-3, "weighted variance increased at k=%d", k)
		}
		prev = variance
		first = false
	}
}

func TestClusterCentersMatchCut(t *testing.T) {
	mat := uniformMatrix(t, 47, 200, 4)
	idx := buildIndex(t, mat, func(o *Options) {
		o.Branching = 4
	})

	centers, v1, err := idx.ClusterCenters(6)
	require.NoError(t, err)
	clusters, v2, err := idx.ClusterCut(6)
	require.NoError(t, err)

	require.Equal(t, len(clusters), len(centers))
	assert.InDelta(t, v1, v2, 1e-6)
	for i := range centers {
		assert.Equal(t, clusters[i].Pivot, centers[i])
	}
}

func TestClusterCentersRootOnly(t *testing.T) {
	// k=1 returns the root pivot without splitting.
	mat := uniformMatrix(t, 53, 100, 4)
	idx := buildIndex(t, mat, func(o *Options) {
		o.Branching = 8
	})

	centers, _, err := idx.ClusterCenters(1)
	require.NoError(t, err)
	require.Len(t, centers, 1)
	assert.Len(t, centers[0], 4)
}
