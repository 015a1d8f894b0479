package kmtree

import (
	"context"
	"time"

	"github.com/hupe1980/kmtree/kmeans"
	"github.com/hupe1980/kmtree/searcher"
)

// KMTree is the facade around a hierarchical k-means tree index: build,
// search, cluster extraction and persistence, with logging and metrics.
//
// A built tree is safe for concurrent searches. Build, Load and Close must
// not run concurrently with anything else.
type KMTree struct {
	idx  *kmeans.Index
	data *kmeans.Matrix
	opts options

	// memReserved is the build memory charged to the resource controller,
	// released on Close.
	memReserved int64
}

// New creates a tree over data. The dataset is borrowed and must stay
// alive and unmodified for the lifetime of the tree.
func New(data *kmeans.Matrix, optFns ...Option) (*KMTree, error) {
	opts := applyOptions(optFns)

	idx, err := kmeans.New(data, opts.kmeansOpts...)
	if err != nil {
		return nil, err
	}

	return &KMTree{
		idx:  idx,
		data: data,
		opts: opts,
	}, nil
}

// Build constructs the tree. It must be called exactly once before any
// query. ctx bounds only the resource acquisition; the build itself is not
// cancelable.
func (t *KMTree) Build(ctx context.Context) error {
	if t.idx.Built() {
		return ErrAlreadyBuilt
	}

	estimate := t.estimateBuildMemory()
	if err := t.opts.resources.AcquireMemory(ctx, estimate); err != nil {
		return err
	}
	t.memReserved += estimate

	start := time.Now()
	err := t.idx.Build()
	t.opts.metrics.RecordBuild(time.Since(start), err)
	t.opts.logger.LogBuild(ctx, t.data.Rows, t.idx.Branching(), time.Since(start), err)
	return err
}

// Search returns the k nearest neighbors of vec. checks caps how many
// dataset points have their exact distance computed; pass
// kmeans.ChecksUnlimited for exact results.
func (t *KMTree) Search(vec []float32, k, checks int) ([]kmeans.SearchResult, error) {
	start := time.Now()
	results, err := t.search(vec, k, checks)
	t.opts.metrics.RecordSearch(k, time.Since(start), err)
	t.opts.logger.LogSearch(context.Background(), k, checks, len(results), err)
	return results, err
}

func (t *KMTree) search(vec []float32, k, checks int) ([]kmeans.SearchResult, error) {
	if k < 1 {
		return nil, ErrInvalidK
	}

	rs := searcher.NewKNNResultSet(k)
	if err := t.idx.FindNeighbors(vec, rs, checks); err != nil {
		return nil, err
	}

	raw := rs.Results()
	results := make([]kmeans.SearchResult, len(raw))
	for i, r := range raw {
		results[i] = kmeans.SearchResult{ID: r.ID, Distance: r.Distance}
	}
	return results, nil
}

// ClusterCenters takes a cut through the tree and returns up to k cluster
// centers covering the whole dataset, plus the mean variance of the
// clustering.
func (t *KMTree) ClusterCenters(k int) ([][]float32, float32, error) {
	return t.idx.ClusterCenters(k)
}

// ClusterCut is like ClusterCenters but also reports each cluster's
// variance, size and member ids.
func (t *KMTree) ClusterCut(k int) ([]kmeans.Cluster, float32, error) {
	return t.idx.ClusterCut(k)
}

// LevelLabels returns, for every indexed point, the id of its ancestor
// cluster on level levelL, along with the maximum level of the tree.
func (t *KMTree) LevelLabels(levelL int) ([]int, int, error) {
	labels := make([]int, t.data.Rows)
	maxLevel, err := t.idx.LevelLabels(levelL, labels)
	if err != nil {
		return nil, maxLevel, err
	}
	return labels, maxLevel, nil
}

// SetCBIndex sets the cluster boundary index used by subsequent searches.
func (t *KMTree) SetCBIndex(v float32) {
	t.idx.SetCBIndex(v)
}

// Size returns the number of indexed points.
func (t *KMTree) Size() int {
	return t.idx.Size()
}

// VecLen returns the dimensionality of the indexed vectors.
func (t *KMTree) VecLen() int {
	return t.idx.VecLen()
}

// UsedMemory returns the approximate memory occupied by the index in
// bytes. Advisory only.
func (t *KMTree) UsedMemory() int {
	return t.idx.UsedMemory()
}

// Index exposes the underlying kmeans index for advanced use (custom
// result sinks, direct persistence).
func (t *KMTree) Index() *kmeans.Index {
	return t.idx
}

// Close releases memory reserved with the resource controller. The tree
// must not be used afterwards.
func (t *KMTree) Close() error {
	if t.memReserved > 0 {
		t.opts.resources.ReleaseMemory(t.memReserved)
		t.memReserved = 0
	}
	return nil
}

// estimateBuildMemory is a rough upper bound on the tree memory: the
// permutation plus pivots for about two nodes per branching worth of
// points.
func (t *KMTree) estimateBuildMemory() int64 {
	rows := int64(t.data.Rows)
	cols := int64(t.data.Cols)
	b := int64(t.idx.Branching())
	if b < 2 {
		b = 2
	}
	nodes := 2*rows/b + 1
	return rows*8 + nodes*(cols*4+64)
}
