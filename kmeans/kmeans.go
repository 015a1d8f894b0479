package kmeans

import (
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/hupe1980/kmtree/distance"
	"github.com/hupe1980/kmtree/internal/arena"
)

// CentersInit selects the algorithm used for picking the initial cluster
// centers of one k-means run.
type CentersInit int

const (
	// CentersRandom picks distinct random points, rejecting duplicates.
	CentersRandom CentersInit = iota
	// CentersGonzales picks points spaced apart from each other
	// (farthest-first traversal).
	CentersGonzales
	// CentersKMeansPP picks points with probability proportional to their
	// squared distance from the already chosen centers (k-means++).
	CentersKMeansPP
)

func (c CentersInit) String() string {
	switch c {
	case CentersRandom:
		return "Random"
	case CentersGonzales:
		return "Gonzales"
	case CentersKMeansPP:
		return "KMeans++"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// ChecksUnlimited disables the checks budget; searches traverse the whole
// tree and return exact results.
const ChecksUnlimited = -1

// Options contains configuration options for the k-means tree.
type Options struct {
	// Branching is the number of children per internal node. Build fails
	// if it is less than 2.
	Branching int

	// Iterations caps the Lloyd iterations per clustering run.
	// A negative value means iterate until convergence.
	Iterations int

	// CentersInit selects the seeding strategy.
	CentersInit CentersInit

	// CBIndex is the cluster boundary index: the weight of the cluster
	// variance term when ordering unexplored branches during search.
	// Zero considers pivot distances only.
	CBIndex float32

	// Metric selects the distance function.
	Metric distance.Metric

	// Seed seeds the random generator used by center seeding.
	Seed int64
}

// DefaultOptions contains the default configuration options for the tree.
var DefaultOptions = Options{
	Branching:   32,
	Iterations:  11,
	CentersInit: CentersRandom,
	CBIndex:     0.4,
	Metric:      distance.MetricSquaredL2,
	Seed:        1,
}

// SearchResult represents a single search result.
type SearchResult struct {
	// ID is the dataset row of the result.
	ID int

	// Distance is the distance between the query vector and the result.
	Distance float32
}

// node is one tree node. children == nil marks a leaf; leaves reference
// their members as the run perm[offset : offset+size].
type node struct {
	pivot      []float32
	radius     float32
	meanRadius float32
	variance   float32
	size       int
	level      int
	offset     int
	children   []*node
}

func (n *node) leaf() bool {
	return n.children == nil
}

type seeder func(k int, ids []int, centers []int) int

// Index is a hierarchical k-means tree over a borrowed dataset.
//
// Build must be called exactly once before any query. A built index is
// safe for concurrent searches; Build, SetCBIndex and Load are not safe to
// run concurrently with anything else.
type Index struct {
	data *Matrix
	opts Options

	branching int
	maxIter   int
	cbIndex   float32

	distFunc      distance.Func
	wideFunc      distance.WideFunc
	chooseCenters seeder
	rng           *rand.Rand
	zero          []float32

	perm []int
	root *node

	nodePool  *arena.Arena[node]
	childPool *arena.Arena[*node]

	memoryCounter atomic.Int64
	built         bool
}

// New creates an index over data. The dataset is borrowed and must stay
// alive and unmodified for the lifetime of the index.
func New(data *Matrix, optFns ...func(o *Options)) (*Index, error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	distFunc, err := distance.Provider(opts.Metric)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	wideFunc, err := distance.ProviderWide(opts.Metric)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}

	idx := &Index{
		data:      data,
		opts:      opts,
		branching: opts.Branching,
		maxIter:   opts.Iterations,
		cbIndex:   opts.CBIndex,
		distFunc:  distFunc,
		wideFunc:  wideFunc,
		rng:       rand.New(rand.NewSource(opts.Seed)),
		zero:      make([]float32, data.Cols),
		nodePool:  arena.New[node](0),
		childPool: arena.New[*node](0),
	}
	if idx.maxIter < 0 {
		idx.maxIter = math.MaxInt
	}

	switch opts.CentersInit {
	case CentersRandom:
		idx.chooseCenters = idx.chooseCentersRandom
	case CentersGonzales:
		idx.chooseCenters = idx.chooseCentersGonzales
	case CentersKMeansPP:
		idx.chooseCenters = idx.chooseCentersKMeansPP
	default:
		return nil, fmt.Errorf("%w: unknown algorithm for choosing initial centers: %d", ErrInvalidParameter, int(opts.CentersInit))
	}

	return idx, nil
}

// Build constructs the tree. It must be called exactly once.
func (idx *Index) Build() error {
	if idx.built {
		return ErrAlreadyBuilt
	}
	if idx.branching < 2 {
		return fmt.Errorf("%w: branching factor must be at least 2, got %d", ErrInvalidParameter, idx.branching)
	}

	idx.perm = make([]int, idx.data.Rows)
	for i := range idx.perm {
		idx.perm[i] = i
	}

	idx.root = idx.nodePool.Alloc()

	if idx.data.Rows == 0 {
		idx.root.pivot = make([]float32, idx.data.Cols)
		idx.built = true
		return nil
	}

	idx.computeNodeStatistics(idx.root, idx.perm)
	idx.computeClustering(idx.root, 0, idx.data.Rows, 0)

	idx.built = true
	return nil
}

// Built reports whether Build has completed.
func (idx *Index) Built() bool {
	return idx.built
}

// Size returns the number of indexed points.
func (idx *Index) Size() int {
	return idx.data.Rows
}

// VecLen returns the dimensionality of the indexed vectors.
func (idx *Index) VecLen() int {
	return idx.data.Cols
}

// UsedMemory returns the approximate memory occupied by the index in
// bytes: pooled nodes and child arrays plus the individually allocated
// pivot vectors. Advisory only.
func (idx *Index) UsedMemory() int {
	return idx.nodePool.UsedMemory() + idx.childPool.UsedMemory() + int(idx.memoryCounter.Load())
}

// Branching returns the branching factor.
func (idx *Index) Branching() int {
	return idx.branching
}

// CBIndex returns the current cluster boundary index.
func (idx *Index) CBIndex() float32 {
	return idx.cbIndex
}

// SetCBIndex sets the cluster boundary index used by subsequent searches.
func (idx *Index) SetCBIndex(v float32) {
	idx.cbIndex = v
}

// leafIDs returns the dataset rows referenced by a leaf, a view into the
// index-owned permutation.
func (idx *Index) leafIDs(n *node) []int {
	return idx.perm[n.offset : n.offset+n.size]
}
