package stepflow

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// RunEach executes one independent traversal per input, concurrently.
// Traversals share nothing but the registry snapshot, so running them
// in parallel is safe by construction. Results are returned in input
// order; the first failing traversal cancels the rest and its error is
// returned with the input index attached.
//
// limit bounds the number of concurrent traversals; limit <= 0 means
// unbounded. Each traversal gets its own auto-generated traversal ID,
// so checkpointing options (which need one stable ID per traversal) do
// not combine with RunEach.
func (g *Graph[I, S, O]) RunEach(ctx context.Context, inputs []I, limit int, opts ...RunOption) ([]O, error) {
	results := make([]O, len(inputs))

	eg, egCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		eg.SetLimit(limit)
	}

	for i, input := range inputs {
		eg.Go(func() error {
			tctx := NewContext(egCtx)
			out, err := g.Run(tctx, input, opts...)
			if err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			results[i] = out
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
