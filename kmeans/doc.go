// Package kmeans implements a hierarchical k-means tree for approximate
// nearest-neighbor search over high-dimensional float32 vectors.
//
// The tree is built by recursively clustering the dataset with Lloyd's
// algorithm: each internal node holds one pivot (centroid) per child and
// the points of a node are partitioned among its children. Leaves hold
// contiguous runs of dataset row ids inside an index-owned permutation.
//
// Queries descend the tree best-bin-first: the closest child is explored
// first and the remaining branches are parked on a priority queue keyed by
// pivot distance minus a variance bias (the cluster boundary index). A
// checks budget caps how many dataset points have their exact distance
// computed; an unlimited budget switches to exact traversal of the whole
// tree with ball pruning.
package kmeans
