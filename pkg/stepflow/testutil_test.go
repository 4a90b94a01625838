package stepflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/stepflow-go/stepflow/pkg/stepflow/checkpoint"
)

// Test state and output types used across tests

// Counter is a simple state for loop tests.
type Counter struct {
	Count int `json:"count"`
}

// Done is a terminal output carrying the final count.
type Done struct {
	Final int  `json:"final"`
	Done  bool `json:"done"`
}

var st Steps[Counter, Done]

// Helper graph constructors

// counterEntry seeds a Counter traversal at the "incr" node.
func counterEntry(ctx Context, start int) (Counter, string, error) {
	return Counter{Count: start}, "incr", nil
}

// newCounterGraph builds a graph whose single node increments until the
// count reaches limit, then finishes.
func newCounterGraph(limit int) *Graph[int, Counter, Done] {
	g := New[int, Counter, Done]("counter", counterEntry)
	mustAdd(g, "incr", func(ctx Context, s Counter) (Outcome[Counter, Done], error) {
		s.Count++
		if s.Count >= limit {
			return st.Finish(Done{Final: s.Count, Done: true}), nil
		}
		return st.Continue(s, "incr"), nil
	})
	return g
}

// mustAdd registers a node or panics; for test setup only.
func mustAdd[I, S, O any](g *Graph[I, S, O], id string, fn StepFunc[S, O]) {
	if err := g.AddNode(id, fn); err != nil {
		panic(fmt.Sprintf("add node %s: %v", id, err))
	}
}

// makeTrackingStep records its execution and hands off to next.
func makeTrackingStep(name, next string, tracker *[]string) StepFunc[Counter, Done] {
	return func(ctx Context, s Counter) (Outcome[Counter, Done], error) {
		*tracker = append(*tracker, name)
		return st.Continue(s, next), nil
	}
}

// makeFinishStep records its execution and finishes.
func makeFinishStep(name string, tracker *[]string) StepFunc[Counter, Done] {
	return func(ctx Context, s Counter) (Outcome[Counter, Done], error) {
		*tracker = append(*tracker, name)
		return st.Finish(Done{Final: s.Count, Done: true}), nil
	}
}

// makeFailingStep returns the given error.
func makeFailingStep(err error) StepFunc[Counter, Done] {
	return func(ctx Context, s Counter) (Outcome[Counter, Done], error) {
		return Outcome[Counter, Done]{}, err
	}
}

// makePanicStep panics with the given value.
func makePanicStep(value any) StepFunc[Counter, Done] {
	return func(ctx Context, s Counter) (Outcome[Counter, Done], error) {
		panic(value)
	}
}

// newTestStore creates an in-memory checkpoint store.
func newTestStore() *checkpoint.MemoryStore {
	return checkpoint.NewMemoryStore()
}

// testCtx creates a simple test context.
func testCtx() Context {
	return NewContext(context.Background())
}

// logRecorder captures slog records for assertions on executor logging.
type logRecorder struct {
	mu      sync.Mutex
	records []map[string]any
}

func (h *logRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (h *logRecorder) Handle(_ context.Context, r slog.Record) error {
	fields := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.Any()
		return true
	})
	h.mu.Lock()
	h.records = append(h.records, fields)
	h.mu.Unlock()
	return nil
}

func (h *logRecorder) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *logRecorder) WithGroup(name string) slog.Handler       { return h }

// find returns the first captured record with the given message.
func (h *logRecorder) find(msg string) (map[string]any, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, rec := range h.records {
		if rec["msg"] == msg {
			return rec, true
		}
	}
	return nil, false
}
