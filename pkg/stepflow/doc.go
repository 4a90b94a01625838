/*
Package stepflow executes continuation-driven graphs of named steps.

# Overview

stepflow is a Go library for workflows where the next step is decided at
runtime. There is no static edge list: each node returns either a
continuation naming the node to run next, or a terminal output that ends
the traversal. The graph is a registry of named step functions plus an
entrypoint that maps the input to the initial state and first node.

Features:
  - Type-safe generics over input, state, and output
  - A tagged Outcome union so continuation and termination cannot be confused
  - Dynamic node registration and removal, with per-traversal snapshots
  - Streaming of incremental chunks during execution
  - Durable checkpoints with resume (memory, SQLite)
  - OpenTelemetry integration for observability

# Basic Usage

Define an entrypoint and nodes, then run:

	type State struct {
	    Count int `json:"count"`
	}

	var steps = stepflow.Steps[State, string]{}

	func incr(ctx stepflow.Context, s State) (stepflow.Outcome[State, string], error) {
	    s.Count++
	    if s.Count >= 4 {
	        return steps.Finish(fmt.Sprintf("done at %d", s.Count)), nil
	    }
	    return steps.Continue(s, "incr"), nil
	}

	func main() {
	    graph := stepflow.New[int, State, string]("counter",
	        func(ctx stepflow.Context, start int) (State, string, error) {
	            return State{Count: start}, "incr", nil
	        })
	    if err := graph.AddNode("incr", incr); err != nil {
	        log.Fatal(err)
	    }

	    ctx := stepflow.NewContext(context.Background())
	    out, err := graph.Run(ctx, 0)
	    if err != nil {
	        log.Fatal(err)
	    }
	    fmt.Println(out) // "done at 4"
	}

# Loops and Step Limits

Loops are ordinary continuations that name an earlier node. Every
traversal is bounded by a step budget (default 1000, WithMaxSteps to
change it); exceeding it fails the traversal with a MaxStepsError that
carries the last state reached.

# Streaming

Nodes emit incremental chunks through the Context; callers opt in per
run:

	out, err := graph.Run(ctx, input, stepflow.WithStream(func(chunk any) {
	    fmt.Println("chunk:", chunk)
	}))

Chunks are forwarded synchronously in emission order, before the final
output is available. Without WithStream, Emit is a no-op.

# Checkpointing

Persist a checkpoint after every handoff and resume later:

	store, err := checkpoint.NewSQLiteStore("./traversals.db")
	if err != nil {
	    log.Fatal(err)
	}
	defer store.Close()

	out, err := graph.Run(ctx, input,
	    stepflow.WithCheckpoints(store),
	    stepflow.WithTraversalID("traversal-123"))

	// After a crash, continue from the latest checkpoint.
	out, err = graph.Resume(ctx, store, "traversal-123")

Checkpoints are keyed by traversal and step number, so histories that
revisit the same node in a loop remain distinct.

# Observability

Enable logging, metrics, and tracing per run:

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	out, err := graph.Run(ctx, input,
	    stepflow.WithObservabilityLogger(logger),
	    stepflow.WithMetrics(true),
	    stepflow.WithTracing(true))

Logs carry structured fields: traversal_id, node_id, step, duration_ms.
OpenTelemetry metrics: stepflow.step.executions, stepflow.step.latency_ms, etc.
OpenTelemetry tracing: stepflow.traversal > stepflow.step.{id} spans.

# Error Handling

Errors identify the node that failed:

	out, err := graph.Run(ctx, input)
	var nodeErr *stepflow.NodeError
	if errors.As(err, &nodeErr) {
	    log.Printf("node %s failed: %v", nodeErr.Node, nodeErr.Err)
	}

	var unknown *stepflow.UnknownNodeError
	if errors.As(err, &unknown) {
	    log.Printf("node %s handed off to unregistered node %s", unknown.From, unknown.Node)
	}

Panics in nodes are recovered and converted to PanicError with a stack
trace.

# Thread Safety

  - Graph is safe for concurrent use; registration and traversal may interleave
  - A running traversal dispatches against the registry snapshot taken at entry
  - Context is safe for concurrent use
  - checkpoint.Store implementations are safe for concurrent use

# Subpackages

  - flow: untyped flow boundary, nodes as composable sub-flows
  - shape: JSON Schema validation for the flow boundary
  - checkpoint: checkpoint storage (memory, SQLite)
  - config: typed accessors over decoded YAML/JSON configuration
  - observability: logging, metrics, and tracing helpers
*/
package stepflow
