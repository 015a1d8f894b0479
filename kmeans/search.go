package kmeans

import (
	"github.com/hupe1980/kmtree/queue"
	"github.com/hupe1980/kmtree/searcher"
)

// FindNeighbors feeds the nearest neighbors of vec into result.
//
// With checks == ChecksUnlimited the whole tree is traversed and the
// results are exact. Otherwise the search is best-bin-first: after the
// initial descent, deferred branches are explored in priority order until
// the checks budget is spent and the result set is full. Returns
// ErrInvariantViolation if the bounded search cannot fill the result set.
func (idx *Index) FindNeighbors(vec []float32, result searcher.ResultSet, checks int) error {
	if !idx.built {
		return ErrNotBuilt
	}
	if len(vec) != idx.data.Cols {
		return &ErrDimensionMismatch{Expected: idx.data.Cols, Actual: len(vec)}
	}

	if checks == ChecksUnlimited {
		idx.findExactNN(idx.root, result, vec)
		return nil
	}

	// Priority queue storing intermediate branches of the best-bin-first
	// search.
	heap := queue.NewMinHeap[*node](idx.data.Rows)

	checksDone := 0
	idx.findNN(idx.root, result, vec, &checksDone, checks, heap)

	for {
		branch, ok := heap.PopMin()
		if !ok {
			break
		}
		if checksDone >= checks && result.Full() {
			break
		}
		idx.findNN(branch.Node, result, vec, &checksDone, checks, heap)
	}

	if !result.Full() {
		return ErrInvariantViolation
	}

	return nil
}

// findNN performs one descent, parking the branches not taken on the heap.
func (idx *Index) findNN(n *node, result searcher.ResultSet, vec []float32, checks *int, maxChecks int, heap *queue.MinHeap[*node]) {
	// Ignore those clusters that are too far away.
	{
		bsq := idx.distFunc(vec, n.pivot)
		rsq := n.radius
		wsq := result.WorstDist()

		val := bsq - rsq - wsq
		val2 := val*val - 4*rsq*wsq

		if val > 0 && val2 > 0 {
			return
		}
	}

	if n.leaf() {
		if *checks >= maxChecks && result.Full() {
			return
		}
		*checks += n.size
		worstDist := result.WorstDist()
		for _, id := range idx.leafIDs(n) {
			dist := idx.distFunc(idx.data.Row(id), vec)
			if dist < worstDist {
				result.AddPoint(dist, id)
			}
		}
		return
	}

	closest := idx.exploreNodeBranches(n, vec, heap)
	idx.findNN(n.children[closest], result, vec, checks, maxChecks, heap)
}

// exploreNodeBranches finds the child closest to vec and parks the others
// on the heap. The priority of a deferred branch is its pivot distance
// biased by -cbIndex times its variance, so wider clusters are revisited
// earlier.
func (idx *Index) exploreNodeBranches(n *node, vec []float32, heap *queue.MinHeap[*node]) int {
	branching := len(n.children)
	domainDistances := make([]float32, branching)

	bestIndex := 0
	domainDistances[0] = idx.distFunc(vec, n.children[0].pivot)
	for i := 1; i < branching; i++ {
		domainDistances[i] = idx.distFunc(vec, n.children[i].pivot)
		if domainDistances[i] < domainDistances[bestIndex] {
			bestIndex = i
		}
	}

	for i := 0; i < branching; i++ {
		if i != bestIndex {
			domainDistances[i] -= idx.cbIndex * n.children[i].variance
			heap.Insert(queue.Branch[*node]{Node: n.children[i], Key: domainDistances[i]})
		}
	}

	return bestIndex
}

// findExactNN traverses the entire subtree, visiting children in order of
// ascending pivot distance and pruning only clusters that provably cannot
// contain a better result.
func (idx *Index) findExactNN(n *node, result searcher.ResultSet, vec []float32) {
	// Ignore those clusters that are too far away.
	{
		bsq := idx.distFunc(vec, n.pivot)
		rsq := n.radius
		wsq := result.WorstDist()

		val := bsq - rsq - wsq
		val2 := val*val - 4*rsq*wsq

		if val > 0 && val2 > 0 {
			return
		}
	}

	if n.leaf() {
		worstDist := result.WorstDist()
		for _, id := range idx.leafIDs(n) {
			dist := idx.distFunc(idx.data.Row(id), vec)
			if dist < worstDist {
				result.AddPoint(dist, id)
			}
		}
		return
	}

	for _, i := range idx.centerOrdering(n, vec) {
		idx.findExactNN(n.children[i], result, vec)
	}
}

// centerOrdering returns the child indices of n sorted by ascending pivot
// distance to q, via a single insertion-sort pass.
func (idx *Index) centerOrdering(n *node, q []float32) []int {
	branching := len(n.children)
	sortIndices := make([]int, branching)
	domainDistances := make([]float32, branching)

	for i := 0; i < branching; i++ {
		dist := idx.distFunc(q, n.children[i].pivot)

		j := 0
		for j < i && domainDistances[j] < dist {
			j++
		}
		for k := i; k > j; k-- {
			domainDistances[k] = domainDistances[k-1]
			sortIndices[k] = sortIndices[k-1]
		}
		domainDistances[j] = dist
		sortIndices[j] = i
	}

	return sortIndices
}
