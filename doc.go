// Package kmtree provides approximate nearest-neighbor search over
// high-dimensional float32 vectors using a hierarchical k-means tree.
//
// Basic usage:
//
//	mat, _ := kmeans.NewMatrix(data, rows, dim)
//	tree, _ := kmtree.New(mat, kmtree.WithBranching(16))
//	_ = tree.Build(ctx)
//	results, _ := tree.Search(query, 10, 128)
//
// Pass kmeans.ChecksUnlimited as the checks budget for exact results.
//
// The facade wraps the kmeans package with structured logging, metrics,
// batch search, cluster membership bitmaps, and persistence to files or
// blob stores (local disk, memory, S3, MinIO).
package kmtree
