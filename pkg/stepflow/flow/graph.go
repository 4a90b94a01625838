package flow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stepflow-go/stepflow/pkg/stepflow"
	"github.com/stepflow-go/stepflow/pkg/stepflow/checkpoint"
	"github.com/stepflow-go/stepflow/pkg/stepflow/shape"
)

// Config declares a graph flow's identity, shapes, and policies.
type Config struct {
	// Name uniquely identifies the flow. Required.
	Name string

	// State constrains the value handed between nodes. Nil accepts any.
	State *shape.Shape

	// Input constrains values passed to Invoke. Nil accepts any.
	Input *shape.Shape

	// Output constrains terminal results. Nil accepts any, which makes
	// every non-continuation result terminal.
	Output *shape.Shape

	// Stream constrains emitted chunks. Nil accepts any.
	Stream *shape.Shape

	// Durable enables checkpointing through Store after every handoff.
	Durable bool

	// Store persists traversal checkpoints when Durable is set.
	Store checkpoint.Store

	// Authorize, when non-nil, is consulted with the validated input
	// before any node runs. A non-nil return aborts the invocation.
	Authorize func(ctx context.Context, input any) error

	// MaxSteps caps dispatches per invocation. Zero means the default.
	MaxSteps int

	// Logger receives traversal and step logs. Nil disables logging.
	Logger *slog.Logger
}

// GraphFlow is a graph executor exposed as a Flow. Nodes are themselves
// flows, registered and removed at any time; each invocation dispatches
// against a snapshot of the registry taken at entry.
type GraphFlow struct {
	cfg          Config
	continuation *shape.Shape
	graph        *stepflow.Graph[any, any, any]
}

var steps = stepflow.Steps[any, any]{}

// Option configures a GraphFlow at definition time.
type Option func(*GraphFlow)

// WithBeforeFinish installs a hook that runs exactly once per terminal
// result, seeing the final state and output together before the output
// is returned. A hook error fails the invocation.
func WithBeforeFinish(hook stepflow.FinishHook[any, any]) Option {
	return func(g *GraphFlow) {
		g.graph.OnFinish(hook)
	}
}

// DefineGraph builds a graph flow around an entrypoint. The entrypoint
// maps the invocation input to the initial state and first node; it
// cannot terminate the traversal itself.
func DefineGraph(cfg Config, entry stepflow.EntryFunc[any, any], opts ...Option) (*GraphFlow, error) {
	if cfg.Name == "" {
		return nil, ErrNameRequired
	}
	cont, err := shape.Continuation(cfg.State)
	if err != nil {
		return nil, fmt.Errorf("define graph '%s': %w", cfg.Name, err)
	}
	g := &GraphFlow{
		cfg:          cfg,
		continuation: cont,
		graph:        stepflow.New[any, any, any](cfg.Name, entry),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Name returns the flow's name.
func (g *GraphFlow) Name() string { return g.cfg.Name }

// AddNode registers a sub-flow as a node under its own name.
// The node's result is classified by shape: a value matching the
// continuation shape hands off to the named next node, a value matching
// the output shape terminates the traversal, and anything else fails
// with InvalidOutputError. Chunks the node emits are validated against
// the stream shape before being forwarded.
func (g *GraphFlow) AddNode(f Flow) error {
	if f == nil {
		return ErrNilFlow
	}
	return g.graph.AddNode(f.Name(), g.wrap(f))
}

// AddFunc registers a plain function as a node.
func (g *GraphFlow) AddFunc(name string, fn InvokeFunc) error {
	return g.AddNode(New(name, fn))
}

// RemoveNode unregisters a node. Traversals already running keep their
// registry snapshot and are unaffected.
func (g *GraphFlow) RemoveNode(name string) error {
	return g.graph.RemoveNode(name)
}

func (g *GraphFlow) wrap(f Flow) stepflow.StepFunc[any, any] {
	node := f.Name()
	return func(ctx stepflow.Context, state any) (stepflow.Outcome[any, any], error) {
		var zero stepflow.Outcome[any, any]

		// Chunks are forwarded synchronously, so a bad chunk recorded
		// here is observed before the node's result is classified.
		var chunkErr error
		onChunk := func(chunk any) {
			if chunkErr != nil {
				return
			}
			norm, ok := g.cfg.Stream.SafeParse(chunk)
			if !ok {
				chunkErr = &InvalidChunkError{Node: node}
				return
			}
			ctx.Emit(norm)
		}

		result, err := f.Invoke(ctx, state, onChunk)
		if err != nil {
			return zero, err
		}
		if chunkErr != nil {
			return zero, chunkErr
		}

		// Continuation takes precedence so a handoff is never swallowed
		// by a permissive output shape.
		if norm, ok := g.continuation.SafeParse(result); ok {
			obj := norm.(map[string]any)
			next, _ := obj["nextNode"].(string)
			return steps.Continue(obj["state"], next), nil
		}
		if norm, ok := g.cfg.Output.SafeParse(result); ok {
			return steps.Finish(norm), nil
		}
		return zero, &InvalidOutputError{Node: node}
	}
}

// Invoke validates and authorizes the input, then runs the traversal.
// onChunk, when non-nil, receives every validated chunk in emission
// order before the final output is returned.
func (g *GraphFlow) Invoke(ctx context.Context, input any, onChunk func(any)) (any, error) {
	norm, err := g.cfg.Input.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if g.cfg.Authorize != nil {
		if err := g.cfg.Authorize(ctx, norm); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrNotAuthorized, err)
		}
	}

	runCtx := g.runContext(ctx)

	runOpts := g.runOptions(onChunk)
	if g.cfg.Durable && g.cfg.Store != nil {
		runOpts = append(runOpts,
			stepflow.WithCheckpoints(g.cfg.Store),
			stepflow.WithTraversalID(runCtx.TraversalID()))
	}

	return g.graph.Run(runCtx, norm, runOpts...)
}

// Resume continues a durable invocation from its latest checkpoint.
// The traversal ID is the one the crashed invocation ran under; pass a
// stepflow.Context with WithContextTraversalID to Invoke to control it.
func (g *GraphFlow) Resume(ctx context.Context, traversalID string, onChunk func(any)) (any, error) {
	if !g.cfg.Durable || g.cfg.Store == nil {
		return nil, ErrNotDurable
	}
	return g.graph.Resume(g.runContext(ctx), g.cfg.Store, traversalID, g.runOptions(onChunk)...)
}

// runContext wraps the caller's context for one traversal, adopting its
// traversal ID when it already is a stepflow.Context.
func (g *GraphFlow) runContext(ctx context.Context) stepflow.Context {
	ctxOpts := []stepflow.ContextOption{}
	if g.cfg.Logger != nil {
		ctxOpts = append(ctxOpts, stepflow.WithLogger(g.cfg.Logger))
	}
	if sc, ok := ctx.(stepflow.Context); ok {
		ctxOpts = append(ctxOpts, stepflow.WithContextTraversalID(sc.TraversalID()))
	}
	return stepflow.NewContext(ctx, ctxOpts...)
}

// runOptions builds the per-invocation options shared by Invoke and Resume.
func (g *GraphFlow) runOptions(onChunk func(any)) []stepflow.RunOption {
	runOpts := []stepflow.RunOption{}
	if g.cfg.MaxSteps > 0 {
		runOpts = append(runOpts, stepflow.WithMaxSteps(g.cfg.MaxSteps))
	}
	if onChunk != nil {
		runOpts = append(runOpts, stepflow.WithStream(onChunk))
	}
	return runOpts
}
