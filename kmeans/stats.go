package kmeans

import "fmt"

// computeNodeStatistics computes the mean, bounding radius and variance of
// the points in ids and stores them on the node. The mean becomes the
// node's pivot, allocated separately from the node pool so it can be
// replaced on Load.
func (idx *Index) computeNodeStatistics(n *node, ids []int) {
	veclen := idx.data.Cols
	m := len(ids)

	mean := make([]float64, veclen)
	var variance float64

	for _, id := range ids {
		vec := idx.data.Row(id)
		for j := range vec {
			mean[j] += float64(vec[j])
		}
		variance += float64(idx.distFunc(vec, idx.zero))
	}

	pivot := make([]float32, veclen)
	idx.memoryCounter.Add(int64(veclen) * 4)
	for j := range mean {
		pivot[j] = float32(mean[j] / float64(m))
	}
	variance /= float64(m)
	variance -= float64(idx.distFunc(pivot, idx.zero))

	var radius float32
	for _, id := range ids {
		if d := idx.distFunc(pivot, idx.data.Row(id)); d > radius {
			radius = d
		}
	}

	n.variance = float32(variance)
	n.radius = radius
	n.pivot = pivot
}

// Stats prints statistics about the index.
func (idx *Index) Stats() {
	fmt.Println("Options:")
	fmt.Printf("\tMetric = %s\n", idx.opts.Metric)
	fmt.Printf("\tCentersInit = %s\n", idx.opts.CentersInit)

	fmt.Println("Parameters:")
	fmt.Printf("\tbranching = %d\n", idx.branching)
	fmt.Printf("\titerations = %d\n", idx.opts.Iterations)
	fmt.Printf("\tcbIndex = %g\n", idx.cbIndex)

	fmt.Println("State:")
	fmt.Printf("\tsize = %d\n", idx.Size())
	fmt.Printf("\tveclen = %d\n", idx.VecLen())
	fmt.Printf("\tbuilt = %t\n", idx.built)
	fmt.Printf("\tusedMemory = %d\n", idx.UsedMemory())
}
