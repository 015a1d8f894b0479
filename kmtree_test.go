package kmtree_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hupe1980/kmtree"
	"github.com/hupe1980/kmtree/blobstore"
	"github.com/hupe1980/kmtree/distance"
	"github.com/hupe1980/kmtree/kmeans"
	"github.com/hupe1980/kmtree/persistence"
	"github.com/hupe1980/kmtree/resource"
	"github.com/hupe1980/kmtree/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTree(t *testing.T, mat *kmeans.Matrix, optFns ...kmtree.Option) *kmtree.KMTree {
	t.Helper()

	tree, err := kmtree.New(mat, optFns...)
	require.NoError(t, err)
	require.NoError(t, tree.Build(context.Background()))
	t.Cleanup(func() { _ = tree.Close() })
	return tree
}

func TestTreeSearch(t *testing.T) {
	rng := testutil.NewRNG(1)
	mat := rng.UniformMatrix(500, 8)

	tree := buildTree(t, mat, kmtree.WithBranching(10), kmtree.WithIterations(-1))

	query := mat.Row(42)
	results, err := tree.Search(query, 5, kmeans.ChecksUnlimited)
	require.NoError(t, err)
	require.Len(t, results, 5)

	assert.Equal(t, 42, results[0].ID)
	assert.Zero(t, results[0].Distance)

	want := testutil.BruteForceSearch(mat, query, 5, distance.SquaredL2)
	for i := range want {
		assert.Equal(t, want[i].ID, results[i].ID)
	}
}

func TestTreeSearchInvalidK(t *testing.T) {
	rng := testutil.NewRNG(1)
	tree := buildTree(t, rng.UniformMatrix(50, 4))

	_, err := tree.Search(make([]float32, 4), 0, kmeans.ChecksUnlimited)
	assert.ErrorIs(t, err, kmtree.ErrInvalidK)
}

func TestTreeSearchBatch(t *testing.T) {
	rng := testutil.NewRNG(2)
	mat := rng.UniformMatrix(400, 8)

	tree := buildTree(t, mat, kmtree.WithBranching(8))

	queries := make([][]float32, 20)
	for i := range queries {
		queries[i] = mat.Row(i * 7)
	}

	batch, err := tree.SearchBatch(context.Background(), queries, 3, kmeans.ChecksUnlimited)
	require.NoError(t, err)
	require.Len(t, batch, len(queries))

	for i, q := range queries {
		single, err := tree.Search(q, 3, kmeans.ChecksUnlimited)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i], "batch result %d differs", i)
	}
}

func TestTreeLevelClusters(t *testing.T) {
	rng := testutil.NewRNG(3)
	mat, _ := rng.GaussianClusters(4, 50, 6, 100, 1)

	tree := buildTree(t, mat, kmtree.WithBranching(4))

	clusters, maxLevel, err := tree.LevelClusters(1)
	require.NoError(t, err)
	require.NotEmpty(t, clusters)
	assert.GreaterOrEqual(t, maxLevel, 1)

	// Bitmaps partition the dataset.
	total := uint64(0)
	for i, c := range clusters {
		total += c.Members.GetCardinality()
		for j := i + 1; j < len(clusters); j++ {
			assert.Zero(t, c.Members.AndCardinality(clusters[j].Members),
				"clusters %d and %d overlap", i, j)
		}
	}
	assert.EqualValues(t, mat.Rows, total)
}

func TestTreeSaveLoadFile(t *testing.T) {
	rng := testutil.NewRNG(4)
	mat := rng.UniformMatrix(300, 8)

	tree := buildTree(t, mat,
		kmtree.WithBranching(8),
		kmtree.WithCompression(persistence.CompressionZSTD),
	)

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.kmt")
	require.NoError(t, tree.SaveFile(ctx, path))

	loaded, err := kmtree.New(mat)
	require.NoError(t, err)
	require.NoError(t, loaded.LoadFile(ctx, path))

	query := mat.Row(7)
	want, err := tree.Search(query, 5, 64)
	require.NoError(t, err)
	got, err := loaded.Search(query, 5, 64)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTreeSaveLoadStore(t *testing.T) {
	rng := testutil.NewRNG(5)
	mat := rng.UniformMatrix(200, 6)

	tree := buildTree(t, mat, kmtree.WithBranching(5))

	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, tree.SaveToStore(ctx, store, "trees/a.kmt"))

	names, err := store.List(ctx, "trees/")
	require.NoError(t, err)
	assert.Equal(t, []string{"trees/a.kmt"}, names)

	loaded, err := kmtree.New(mat)
	require.NoError(t, err)
	require.NoError(t, loaded.LoadFromStore(ctx, store, "trees/a.kmt"))

	query := mat.Row(0)
	want, err := tree.Search(query, 3, kmeans.ChecksUnlimited)
	require.NoError(t, err)
	got, err := loaded.Search(query, 3, kmeans.ChecksUnlimited)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTreeSaveLoadLocalStore(t *testing.T) {
	rng := testutil.NewRNG(6)
	mat := rng.UniformMatrix(100, 4)

	tree := buildTree(t, mat, kmtree.WithBranching(4))

	ctx := context.Background()
	store := blobstore.NewLocalStore(t.TempDir())
	require.NoError(t, tree.SaveToStore(ctx, store, "index.kmt"))

	loaded, err := kmtree.New(mat)
	require.NoError(t, err)
	require.NoError(t, loaded.LoadFromStore(ctx, store, "index.kmt"))

	assert.Equal(t, tree.UsedMemory(), loaded.UsedMemory())
}

func TestTreeMetricsAndResources(t *testing.T) {
	rng := testutil.NewRNG(7)
	mat := rng.UniformMatrix(200, 6)

	metrics := &kmtree.BasicMetricsCollector{}
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 24})

	tree, err := kmtree.New(mat,
		kmtree.WithBranching(5),
		kmtree.WithMetricsCollector(metrics),
		kmtree.WithResourceController(rc),
	)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, tree.Build(ctx))
	assert.Positive(t, rc.MemoryUsage())

	_, err = tree.Search(mat.Row(1), 3, kmeans.ChecksUnlimited)
	require.NoError(t, err)

	store := blobstore.NewMemoryStore()
	require.NoError(t, tree.SaveToStore(ctx, store, "a"))

	stats := metrics.GetStats()
	assert.EqualValues(t, 1, stats.BuildCount)
	assert.EqualValues(t, 1, stats.SearchCount)
	assert.EqualValues(t, 1, stats.SaveCount)
	assert.Zero(t, stats.SearchErrors)

	require.NoError(t, tree.Close())
	assert.Zero(t, rc.MemoryUsage())
}

func TestTreeClusterCenters(t *testing.T) {
	rng := testutil.NewRNG(8)
	mat, _ := rng.GaussianClusters(5, 40, 6, 100, 1)

	tree := buildTree(t, mat, kmtree.WithBranching(5))

	centers, variance, err := tree.ClusterCenters(5)
	require.NoError(t, err)
	assert.NotEmpty(t, centers)
	assert.LessOrEqual(t, len(centers), 5)
	assert.GreaterOrEqual(t, variance, float32(0)-1e-3)
}

func TestTreeAccessors(t *testing.T) {
	rng := testutil.NewRNG(9)
	mat := rng.UniformMatrix(50, 4)

	tree := buildTree(t, mat, kmtree.WithBranching(4), kmtree.WithSeed(11))

	assert.Equal(t, 50, tree.Size())
	assert.Equal(t, 4, tree.VecLen())
	assert.Positive(t, tree.UsedMemory())
	assert.NotNil(t, tree.Index())

	tree.SetCBIndex(0.2)
	assert.InDelta(t, 0.2, tree.Index().CBIndex(), 1e-6)
}
