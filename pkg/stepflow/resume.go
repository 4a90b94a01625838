package stepflow

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stepflow-go/stepflow/pkg/stepflow/checkpoint"
)

// Resume continues a traversal from its latest checkpoint record.
// The record's state is decoded and dispatch restarts at the node the
// record names as next, with the step counter restored so the max-steps
// bound covers the whole traversal, not just the resumed tail.
//
// Checkpointing stays enabled for the resumed portion using the same
// store and traversal ID.
//
// Example:
//
//	// Previous run crashed somewhere after step 41
//	out, err := g.Resume(ctx, store, "trav-123")
func (g *Graph[I, S, O]) Resume(ctx Context, store checkpoint.Store, traversalID string, opts ...RunOption) (O, error) {
	var zero O

	if ctx == nil {
		return zero, ErrNilContext
	}

	rec, err := store.Latest(traversalID)
	if err != nil {
		if errors.Is(err, checkpoint.ErrNotFound) {
			return zero, fmt.Errorf("%w: %s", ErrNoCheckpoints, traversalID)
		}
		return zero, fmt.Errorf("load checkpoint: %w", err)
	}

	return g.resumeFromRecord(ctx, store, rec, opts)
}

// ResumeFrom continues a traversal from the record at a specific step.
// Unlike Resume, this replays from an earlier point in the history;
// later records are overwritten as the traversal advances past them.
func (g *Graph[I, S, O]) ResumeFrom(ctx Context, store checkpoint.Store, traversalID string, step int, opts ...RunOption) (O, error) {
	var zero O

	if ctx == nil {
		return zero, ErrNilContext
	}

	rec, err := store.Get(traversalID, step)
	if err != nil {
		if errors.Is(err, checkpoint.ErrNotFound) {
			return zero, fmt.Errorf("%w: %s at step %d", ErrNoCheckpoints, traversalID, step)
		}
		return zero, fmt.Errorf("load checkpoint: %w", err)
	}

	return g.resumeFromRecord(ctx, store, rec, opts)
}

// resumeFromRecord decodes a record and re-enters the dispatch loop.
func (g *Graph[I, S, O]) resumeFromRecord(ctx Context, store checkpoint.Store, rec *checkpoint.Record, opts []RunOption) (O, error) {
	var zero O

	if rec.Version != checkpoint.Version {
		return zero, fmt.Errorf("%w: got %d, expected %d",
			ErrCheckpointVersion, rec.Version, checkpoint.Version)
	}

	var state S
	if err := json.Unmarshal(rec.State, &state); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrDecodeState, err)
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.checkpointStore = store
	cfg.traversalID = rec.TraversalID
	cfg.startStep = rec.Step

	out, _, err := g.dispatch(ctx, ctx, state, rec.Next, &cfg, rec.TraversalID)
	return out, err
}
