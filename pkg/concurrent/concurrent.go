package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Collect runs fn for each item in its own goroutine, at most limit at a time
// (limit <= 0 means unbounded). out[i] belongs to items[i]. The first error cancels
// ctx for the rest and is returned, with the partial results, once every goroutine
// has finished.
func Collect[T any, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error)) ([]R, error) {
	out := make([]R, len(items))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for idx, item := range items {
		g.Go(func() error {
			r, err := fn(ctx, item)
			out[idx] = r
			return err
		})
	}
	return out, g.Wait()
}

// Range returns [0, n).
func Range(n int) []int {
	out := make([]int, max(n, 0))
	for i := range out {
		out[i] = i
	}
	return out
}
