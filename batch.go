package kmtree

import (
	"context"
	"runtime"

	"github.com/hupe1980/kmtree/kmeans"
	"golang.org/x/sync/errgroup"
)

// SearchBatch runs independent searches for all queries concurrently and
// returns one result slice per query, in query order. Each search gets its
// own heap and result set, so queries never share mutable state.
func (t *KMTree) SearchBatch(ctx context.Context, queries [][]float32, k, checks int) ([][]kmeans.SearchResult, error) {
	results := make([][]kmeans.SearchResult, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, q := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := t.Search(q, k, checks)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
