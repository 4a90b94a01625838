// Package benchmarks contains performance benchmarks for stepflow.
package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/stepflow-go/stepflow/pkg/stepflow"
)

// Counter is the state threaded through benchmark traversals.
type Counter struct {
	Count int `json:"count"`
}

// Done is the terminal output of benchmark traversals.
type Done struct {
	Final int `json:"final"`
}

var st stepflow.Steps[Counter, Done]

// nodeID produces stable short node names for generated graphs.
func nodeID(n int) string {
	return fmt.Sprintf("n%03d", n)
}

// mustAdd registers a node, failing loudly on fixture mistakes.
func mustAdd[I, S, O any](g *stepflow.Graph[I, S, O], id string, fn stepflow.StepFunc[S, O]) {
	if err := g.AddNode(id, fn); err != nil {
		panic(fmt.Sprintf("add node %s: %v", id, err))
	}
}

// buildLoopGraph constructs a graph with a single self-looping node that
// increments until limit, then finishes.
func buildLoopGraph(limit int) *stepflow.Graph[int, Counter, Done] {
	g := stepflow.New[int, Counter, Done]("bench-loop",
		func(ctx stepflow.Context, input int) (Counter, string, error) {
			return Counter{Count: input}, "incr", nil
		})
	mustAdd(g, "incr", func(ctx stepflow.Context, state Counter) (stepflow.Outcome[Counter, Done], error) {
		state.Count++
		if state.Count >= limit {
			return st.Finish(Done{Final: state.Count}), nil
		}
		return st.Continue(state, "incr"), nil
	})
	return g
}

// buildChainGraph constructs a linear chain of n nodes, each handing off to
// the next, with the last node finishing.
func buildChainGraph(n int) *stepflow.Graph[int, Counter, Done] {
	g := stepflow.New[int, Counter, Done]("bench-chain",
		func(ctx stepflow.Context, input int) (Counter, string, error) {
			return Counter{Count: input}, nodeID(0), nil
		})
	for i := 0; i < n; i++ {
		last := i == n-1
		next := nodeID(i + 1)
		mustAdd(g, nodeID(i), func(ctx stepflow.Context, state Counter) (stepflow.Outcome[Counter, Done], error) {
			state.Count++
			if last {
				return st.Finish(Done{Final: state.Count}), nil
			}
			return st.Continue(state, next), nil
		})
	}
	return g
}

func BenchmarkNew(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = stepflow.New[int, Counter, Done]("bench",
			func(ctx stepflow.Context, input int) (Counter, string, error) {
				return Counter{Count: input}, "incr", nil
			})
	}
}

func BenchmarkAddNode(b *testing.B) {
	step := func(ctx stepflow.Context, state Counter) (stepflow.Outcome[Counter, Done], error) {
		return st.Finish(Done{Final: state.Count}), nil
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g := stepflow.New[int, Counter, Done]("bench",
			func(ctx stepflow.Context, input int) (Counter, string, error) {
				return Counter{}, "n000", nil
			})
		g.AddNode("n000", step)
	}
}

func BenchmarkAddNode_100(b *testing.B) {
	step := func(ctx stepflow.Context, state Counter) (stepflow.Outcome[Counter, Done], error) {
		return st.Finish(Done{Final: state.Count}), nil
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g := stepflow.New[int, Counter, Done]("bench",
			func(ctx stepflow.Context, input int) (Counter, string, error) {
				return Counter{}, nodeID(0), nil
			})
		for n := 0; n < 100; n++ {
			g.AddNode(nodeID(n), step)
		}
	}
}

func BenchmarkRemoveNode(b *testing.B) {
	step := func(ctx stepflow.Context, state Counter) (stepflow.Outcome[Counter, Done], error) {
		return st.Finish(Done{Final: state.Count}), nil
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		g := stepflow.New[int, Counter, Done]("bench",
			func(ctx stepflow.Context, input int) (Counter, string, error) {
				return Counter{}, "n000", nil
			})
		g.AddNode("n000", step)
		b.StartTimer()
		_ = g.RemoveNode("n000")
	}
}

var benchCtx = stepflow.NewContext(context.Background())
