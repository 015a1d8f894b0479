package kmeans

import (
	"math"
	"sort"
)

// computeClustering recursively clusters perm[base:base+length] under n.
// One Lloyd run partitions the range into branching contiguous sub-ranges,
// one per child; each child is then clustered at level+1. A range that is
// too small, or whose seeding yields fewer than branching distinct
// centers, becomes a leaf with its ids sorted ascending.
func (idx *Index) computeClustering(n *node, base, length, level int) {
	n.size = length
	n.level = level

	ids := idx.perm[base : base+length]

	if length < idx.branching {
		n.offset = base
		sort.Ints(ids)
		n.children = nil
		return
	}

	centersIdx := make([]int, idx.branching)
	centersLength := idx.chooseCenters(idx.branching, ids, centersIdx)

	if centersLength < idx.branching {
		n.offset = base
		sort.Ints(ids)
		n.children = nil
		return
	}

	branching := idx.branching
	veclen := idx.data.Cols

	// Working centers in float64; narrowed to float32 pivots only at the end.
	dcenters := make([]float64, branching*veclen)
	for i := 0; i < centersLength; i++ {
		vec := idx.data.Row(centersIdx[i])
		center := dcenters[i*veclen : (i+1)*veclen]
		for k := range vec {
			center[k] = float64(vec[k])
		}
	}

	radiuses := make([]float32, branching)
	count := make([]int, branching)

	// Initial assignment.
	belongsTo := make([]int, length)
	for i := 0; i < length; i++ {
		vec := idx.data.Row(ids[i])
		sqDist := idx.wideFunc(vec, dcenters[0:veclen])
		belongsTo[i] = 0
		for j := 1; j < branching; j++ {
			newSqDist := idx.wideFunc(vec, dcenters[j*veclen:(j+1)*veclen])
			if sqDist > newSqDist {
				belongsTo[i] = j
				sqDist = newSqDist
			}
		}
		if float32(sqDist) > radiuses[belongsTo[i]] {
			radiuses[belongsTo[i]] = float32(sqDist)
		}
		count[belongsTo[i]]++
	}

	converged := false
	iteration := 0
	for !converged && iteration < idx.maxIter {
		converged = true
		iteration++

		// Compute the new cluster centers.
		for i := range dcenters {
			dcenters[i] = 0
		}
		for i := range radiuses {
			radiuses[i] = 0
		}
		for i := 0; i < length; i++ {
			vec := idx.data.Row(ids[i])
			center := dcenters[belongsTo[i]*veclen : (belongsTo[i]+1)*veclen]
			for k := range vec {
				center[k] += float64(vec[k])
			}
		}
		for i := 0; i < branching; i++ {
			cnt := float64(count[i])
			center := dcenters[i*veclen : (i+1)*veclen]
			for k := range center {
				center[k] /= cnt
			}
		}

		// Reassign points to clusters.
		for i := 0; i < length; i++ {
			vec := idx.data.Row(ids[i])
			sqDist := idx.wideFunc(vec, dcenters[0:veclen])
			newCentroid := 0
			for j := 1; j < branching; j++ {
				newSqDist := idx.wideFunc(vec, dcenters[j*veclen:(j+1)*veclen])
				if sqDist > newSqDist {
					newCentroid = j
					sqDist = newSqDist
				}
			}
			if float32(sqDist) > radiuses[newCentroid] {
				radiuses[newCentroid] = float32(sqDist)
			}
			if newCentroid != belongsTo[i] {
				count[belongsTo[i]]--
				count[newCentroid]++
				belongsTo[i] = newCentroid

				converged = false
			}
		}

		// If a cluster converged to empty, move one element into it from
		// the next cluster holding more than one.
		for i := 0; i < branching; i++ {
			if count[i] == 0 {
				j := (i + 1) % branching
				for count[j] <= 1 {
					j = (j + 1) % branching
				}

				for k := 0; k < length; k++ {
					if belongsTo[k] == j {
						belongsTo[k] = i
						count[j]--
						count[i]++
						break
					}
				}
				converged = false
			}
		}
	}

	// Materialize the final pivots, individually owned per child.
	centers := make([][]float32, branching)
	for i := 0; i < branching; i++ {
		centers[i] = make([]float32, veclen)
		idx.memoryCounter.Add(int64(veclen) * 4)
		for k := 0; k < veclen; k++ {
			centers[i][k] = float32(dcenters[i*veclen+k])
		}
	}

	// Partition the range in cluster order and recurse. The walk also
	// accumulates each child's variance and mean radius.
	n.children = idx.childPool.AllocSlice(branching)
	start := 0
	end := start
	for c := 0; c < branching; c++ {
		s := count[c]

		variance := 0.0
		meanRadius := 0.0
		for i := 0; i < length; i++ {
			if belongsTo[i] == c {
				d := float64(idx.distFunc(idx.data.Row(ids[i]), idx.zero))
				variance += d
				meanRadius += math.Sqrt(d)
				ids[i], ids[end] = ids[end], ids[i]
				belongsTo[i], belongsTo[end] = belongsTo[end], belongsTo[i]
				end++
			}
		}
		if s > 0 {
			variance /= float64(s)
			meanRadius /= float64(s)
			variance -= float64(idx.distFunc(centers[c], idx.zero))
		}

		child := idx.nodePool.Alloc()
		child.radius = radiuses[c]
		child.pivot = centers[c]
		child.variance = float32(variance)
		child.meanRadius = float32(meanRadius)
		n.children[c] = child

		idx.computeClustering(child, base+start, end-start, level+1)
		start = end
	}
}
