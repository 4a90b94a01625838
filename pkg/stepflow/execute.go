package stepflow

import (
	"context"
	"encoding/json"
	"errors"
	"runtime/debug"
	"time"

	"github.com/stepflow-go/stepflow/pkg/stepflow/checkpoint"
	"github.com/stepflow-go/stepflow/pkg/stepflow/observability"
	"go.opentelemetry.io/otel/trace"
)

// Run executes one traversal of the graph with the given input.
//
// The entrypoint produces the initial state and first node name, then
// the executor loops: dispatch the current node with the current state,
// adopt a Continue outcome's state and next node, or accept a Finish
// outcome (running the finish hook first) and return its output.
//
// Each traversal works on a snapshot of the node registry and owns its
// state exclusively; concurrent Run calls on the same graph are
// independent. Dispatch is strictly sequential - a node's streamed
// chunks and final outcome are fully resolved before the next node
// starts.
//
// Example:
//
//	ctx := stepflow.NewContext(context.Background())
//	out, err := g.Run(ctx, input, stepflow.WithMaxSteps(100))
func (g *Graph[I, S, O]) Run(ctx Context, input I, opts ...RunOption) (output O, runErr error) {
	var zero O
	if ctx == nil {
		return zero, ErrNilContext
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	// Checkpoint records need a stable key
	if cfg.checkpointStore != nil && cfg.traversalID == "" {
		return zero, ErrTraversalIDRequired
	}

	traversalID := cfg.traversalID
	if traversalID == "" {
		traversalID = ctx.TraversalID()
	}

	startTime := time.Now()
	observability.LogTraversalStart(cfg.logger, g.name, traversalID)

	var execCtx context.Context = ctx
	var traversalSpan trace.Span
	if cfg.tracingEnabled {
		execCtx, traversalSpan = cfg.spans.StartTraversalSpan(ctx, g.name, traversalID)
		defer func() {
			cfg.spans.EndSpanWithError(traversalSpan, runErr)
		}()
	}

	// Seed the traversal, then walk the continuation chain
	var steps int
	state, next, err := g.entry(ctx, input)
	if err != nil {
		runErr = err
	} else {
		output, steps, runErr = g.dispatch(execCtx, ctx, state, next, &cfg, traversalID)
	}

	duration := time.Since(startTime)
	durationMs := float64(duration.Milliseconds())
	cfg.metrics.RecordTraversal(ctx, g.name, runErr == nil, duration)

	if runErr != nil {
		observability.LogTraversalError(cfg.logger, g.name, traversalID, runErr, durationMs, lastNodeOf(runErr))
		return zero, runErr
	}

	observability.LogTraversalComplete(cfg.logger, g.name, traversalID, durationMs, steps)
	return output, nil
}

// lastNodeOf extracts the node a traversal error points at, for logging.
func lastNodeOf(err error) string {
	var nodeErr *NodeError
	var unknownErr *UnknownNodeError
	var maxErr *MaxStepsError
	var cancelErr *CancellationError
	var panicErr *PanicError
	var invalidErr *InvalidOutcomeError
	var checkpointErr *CheckpointError

	switch {
	case errors.As(err, &nodeErr):
		return nodeErr.Node
	case errors.As(err, &panicErr):
		return panicErr.Node
	case errors.As(err, &invalidErr):
		return invalidErr.Node
	case errors.As(err, &unknownErr):
		return unknownErr.Node
	case errors.As(err, &maxErr):
		return maxErr.LastNode
	case errors.As(err, &cancelErr):
		return cancelErr.Node
	case errors.As(err, &checkpointErr):
		return checkpointErr.Node
	}
	return ""
}

// dispatch walks the continuation chain starting at current with state.
// Used by Run (after the entrypoint) and by Resume (from a checkpoint).
// Returns the output, the number of steps dispatched, and any error.
//
// A plain loop rather than recursion: self-continuations and deep
// chains must not grow the call stack.
func (g *Graph[I, S, O]) dispatch(tracingCtx context.Context, sfCtx Context, state S, current string, cfg *runConfig, traversalID string) (O, int, error) {
	var zero O
	nodes := g.snapshot()
	from := ""
	steps := cfg.startStep

	for {
		steps++
		if steps > cfg.maxSteps {
			return zero, steps - 1, &MaxStepsError{
				Max:      cfg.maxSteps,
				LastNode: current,
				State:    state,
			}
		}

		// Check for cancellation before dispatching
		select {
		case <-sfCtx.Done():
			return zero, steps - 1, &CancellationError{
				Node:  current,
				State: state,
				Cause: sfCtx.Err(),
			}
		default:
		}

		fn, ok := nodes[current]
		if !ok {
			return zero, steps - 1, &UnknownNodeError{Node: current, From: from}
		}

		observability.LogStepStart(cfg.logger, current)

		stepTracingCtx := tracingCtx
		var stepSpan trace.Span
		if cfg.tracingEnabled {
			stepTracingCtx, stepSpan = cfg.spans.StartStepSpan(tracingCtx, current)
		}

		stepStart := time.Now()
		outcome, stepErr := g.executeStep(sfCtx, cfg, current, fn, state)
		stepDuration := time.Since(stepStart)

		cfg.metrics.RecordStep(stepTracingCtx, current, stepDuration, stepErr)
		if cfg.tracingEnabled {
			cfg.spans.EndSpanWithError(stepSpan, stepErr)
		}

		if stepErr != nil {
			observability.LogStepError(cfg.logger, current, stepErr)
			return zero, steps, stepErr
		}
		observability.LogStepComplete(cfg.logger, current, float64(stepDuration.Milliseconds()))

		switch {
		case outcome.IsContinue():
			nextState, next, _ := outcome.Continuation()
			if cfg.checkpointStore != nil {
				if err := g.saveCheckpoint(sfCtx, cfg, traversalID, steps, current, next, nextState); err != nil {
					return zero, steps, err
				}
			}
			from = current
			state = nextState
			current = next

		case outcome.IsFinish():
			out, _ := outcome.Output()
			if g.finish != nil {
				if err := g.finish(sfCtx, state, out); err != nil {
					return zero, steps, &FinishHookError{Err: err}
				}
			}
			return out, steps, nil

		default:
			return zero, steps, &InvalidOutcomeError{Node: current}
		}
	}
}

// executeStep runs a single step with panic recovery.
func (g *Graph[I, S, O]) executeStep(ctx Context, cfg *runConfig, nodeID string, fn StepFunc[S, O], state S) (outcome Outcome[S, O], err error) {
	stepCtx := nodeContext(ctx, nodeID, g.chunkSink(ctx, cfg, nodeID))

	defer func() {
		if r := recover(); r != nil {
			outcome = Outcome[S, O]{}
			err = &PanicError{
				Node:  nodeID,
				Value: r,
				Stack: string(debug.Stack()),
			}
		}
	}()

	outcome, err = fn(stepCtx, state)
	if err != nil {
		return outcome, &NodeError{
			Node: nodeID,
			Op:   "execute",
			Err:  err,
		}
	}

	return outcome, nil
}

// chunkSink builds the Emit target for one step, or nil when the
// caller did not request streaming.
func (g *Graph[I, S, O]) chunkSink(ctx Context, cfg *runConfig, nodeID string) func(chunk any) {
	if cfg.onChunk == nil {
		return nil
	}
	return func(chunk any) {
		cfg.onChunk(chunk)
		observability.LogChunk(cfg.logger, nodeID)
		cfg.metrics.RecordChunk(ctx, nodeID)
	}
}

// saveCheckpoint persists the state produced by one continuation.
// Failures are logged and skipped unless WithCheckpointFailureFatal.
func (g *Graph[I, S, O]) saveCheckpoint(ctx Context, cfg *runConfig, traversalID string, step int, nodeID, next string, state S) error {
	data, err := json.Marshal(state)
	if err != nil {
		if cfg.checkpointFailureFatal {
			return &CheckpointError{Node: nodeID, Op: "encode", Err: err}
		}
		observability.LogCheckpointError(cfg.logger, nodeID, "encode", err)
		return nil
	}

	rec := checkpoint.NewRecord(traversalID, step, nodeID, next, data)
	if err := cfg.checkpointStore.Put(rec); err != nil {
		if cfg.checkpointFailureFatal {
			return &CheckpointError{Node: nodeID, Op: "put", Err: err}
		}
		observability.LogCheckpointError(cfg.logger, nodeID, "put", err)
		return nil
	}

	observability.LogCheckpoint(cfg.logger, nodeID, step, len(data))
	cfg.metrics.RecordCheckpoint(ctx, nodeID, int64(len(data)))
	return nil
}
