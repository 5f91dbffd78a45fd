package receiver

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunCells runs one subframe-processing step per coordinator
// concurrently and waits for all of them, matching the rule that
// distinct cell instances share nothing but the process-wide read-only
// lookup tables and may therefore run on independent threads. If any
// step returns an error, the first one is returned after all steps
// complete; errgroup's context cancellation is intentionally not relied
// upon here since a half-finished subframe is still reported, not
// abandoned.
func RunCells(ctx context.Context, steps []func(context.Context) error) error {
	var g errgroup.Group
	for _, step := range steps {
		step := step
		g.Go(func() error { return step(ctx) })
	}
	return g.Wait()
}
