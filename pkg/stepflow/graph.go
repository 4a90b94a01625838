package stepflow

import (
	"fmt"
	"strings"
	"sync"
)

// Graph is a named set of steps plus the entrypoint that seeds a
// traversal. There is no static edge list: each step names its
// successor at runtime through a Continue outcome.
//
// The node registry may be mutated with AddNode/RemoveNode while the
// graph is live; every Run takes a snapshot of the registry, so a
// traversal in flight never observes registration changes.
//
// Example:
//
//	g := stepflow.New[Input, Counter, Done]("counter",
//	    func(ctx stepflow.Context, in Input) (Counter, string, error) {
//	        return Counter{Count: 0}, "incr", nil
//	    })
//	if err := g.AddNode("incr", incr); err != nil {
//	    log.Fatal(err)
//	}
type Graph[I, S, O any] struct {
	name   string
	entry  EntryFunc[I, S]
	finish FinishHook[S, O]

	mu    sync.RWMutex
	nodes map[string]StepFunc[S, O]
}

// New creates a graph with the given name and entrypoint.
// The type parameters fix the input, shared state, and output types.
//
// Panics if name is empty or entry is nil; a graph cannot exist
// without either.
func New[I, S, O any](name string, entry EntryFunc[I, S]) *Graph[I, S, O] {
	if name == "" {
		panic("stepflow: graph name cannot be empty")
	}
	if entry == nil {
		panic("stepflow: entrypoint cannot be nil")
	}
	return &Graph[I, S, O]{
		name:  name,
		entry: entry,
		nodes: make(map[string]StepFunc[S, O]),
	}
}

// OnFinish installs the finish hook and returns the graph for chaining.
// The hook runs exactly once per successful traversal, after the
// terminal outcome is accepted and before the output is returned.
func (g *Graph[I, S, O]) OnFinish(hook FinishHook[S, O]) *Graph[I, S, O] {
	g.finish = hook
	return g
}

// Name returns the graph's unique identifier.
func (g *Graph[I, S, O]) Name() string {
	return g.name
}

// AddNode registers a named step.
//
// Fails with ErrInvalidNodeID for an empty or whitespace-containing
// name, ErrNilStep for a nil function, and ErrDuplicateNode when the
// name is already registered (the existing registration is untouched).
func (g *Graph[I, S, O]) AddNode(id string, fn StepFunc[S, O]) error {
	if id == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidNodeID)
	}
	if strings.ContainsAny(id, " \t\n\r") {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidNodeID, id)
	}
	if fn == nil {
		return fmt.Errorf("%w: %s", ErrNilStep, id)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}

	g.nodes[id] = fn
	return nil
}

// RemoveNode unregisters a step by name.
// Fails with ErrNodeNotFound when the name is not registered.
//
// Traversals already running keep their registry snapshot and are
// unaffected by the removal.
func (g *Graph[I, S, O]) RemoveNode(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; !exists {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	delete(g.nodes, id)
	return nil
}

// HasNode reports whether a step is registered under the given name.
func (g *Graph[I, S, O]) HasNode(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, exists := g.nodes[id]
	return exists
}

// NodeIDs returns the names of all registered steps.
// The order is not guaranteed.
func (g *Graph[I, S, O]) NodeIDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of registered steps.
func (g *Graph[I, S, O]) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.nodes)
}

// snapshot copies the registry for one traversal.
func (g *Graph[I, S, O]) snapshot() map[string]StepFunc[S, O] {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make(map[string]StepFunc[S, O], len(g.nodes))
	for id, fn := range g.nodes {
		nodes[id] = fn
	}
	return nodes
}
