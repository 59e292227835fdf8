package shell

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one Gather task, bound to its input index.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// Gather runs load for every index in [0, n) with at most limit in flight
// and returns the results in index order. A failed task never cancels its
// siblings; callers decide whether to omit it.
func Gather[T any](ctx context.Context, n, limit int, load func(ctx context.Context, i int) (T, error)) []Result[T] {
	out := make([]Result[T], n)
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			v, err := load(ctx, i)
			out[i] = Result[T]{Index: i, Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Succeeded returns the values of the successful results in index order.
func Succeeded[T any](results []Result[T]) []T {
	out := make([]T, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			out = append(out, r.Value)
		}
	}
	return out
}
