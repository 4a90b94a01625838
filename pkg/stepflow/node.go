package stepflow

// outcomeKind discriminates the two legal step results.
type outcomeKind int

const (
	outcomeInvalid outcomeKind = iota
	outcomeContinue
	outcomeFinish
)

// Outcome is the result of a single step: either a continuation that
// carries updated state and the name of the next node, or the final
// output of the traversal.
//
// Construct outcomes with Continue or Finish (or the Steps helper).
// The zero Outcome is neither and fails the traversal with an
// InvalidOutcomeError naming the step that produced it.
type Outcome[S, O any] struct {
	kind   outcomeKind
	state  S
	next   string
	output O
}

// Continue builds a continuation outcome: the traversal adopts state
// and dispatches the node named next. A node may continue to itself;
// self-loops are ordinary and bounded only by the max-steps option.
func Continue[S, O any](state S, next string) Outcome[S, O] {
	return Outcome[S, O]{kind: outcomeContinue, state: state, next: next}
}

// Finish builds a terminal outcome carrying the traversal's output.
func Finish[S, O any](output O) Outcome[S, O] {
	return Outcome[S, O]{kind: outcomeFinish, output: output}
}

// IsContinue reports whether the outcome is a continuation.
func (o Outcome[S, O]) IsContinue() bool { return o.kind == outcomeContinue }

// IsFinish reports whether the outcome is terminal.
func (o Outcome[S, O]) IsFinish() bool { return o.kind == outcomeFinish }

// Continuation returns the carried state and next-node name.
// The boolean is false when the outcome is not a continuation.
func (o Outcome[S, O]) Continuation() (S, string, bool) {
	return o.state, o.next, o.kind == outcomeContinue
}

// Output returns the carried final output.
// The boolean is false when the outcome is not terminal.
func (o Outcome[S, O]) Output() (O, bool) {
	return o.output, o.kind == outcomeFinish
}

// Steps fixes the state and output type parameters once so step
// functions can build outcomes without repeating them.
//
// Example:
//
//	var st stepflow.Steps[Counter, Done]
//
//	func incr(ctx stepflow.Context, s Counter) (stepflow.Outcome[Counter, Done], error) {
//	    s.Count++
//	    if s.Count < 3 {
//	        return st.Continue(s, "incr"), nil
//	    }
//	    return st.Finish(Done{}), nil
//	}
type Steps[S, O any] struct{}

// Continue builds a continuation outcome.
func (Steps[S, O]) Continue(state S, next string) Outcome[S, O] {
	return Continue[S, O](state, next)
}

// Finish builds a terminal outcome.
func (Steps[S, O]) Finish(output O) Outcome[S, O] {
	return Finish[S, O](output)
}

// StepFunc is the signature for all registered nodes.
// A step receives the execution context and the current shared state,
// and returns either a continuation or a terminal outcome.
//
// State is passed by value: steps modify and return a new state inside
// a Continue outcome rather than mutating shared memory. A step must
// never retain state belonging to another concurrent traversal.
type StepFunc[S, O any] func(ctx Context, state S) (Outcome[S, O], error)

// EntryFunc is the mandatory first step of a graph. It receives the
// graph input and produces the initial state and the name of the first
// node to dispatch. The entrypoint cannot finish a traversal; that is
// enforced structurally by its signature.
type EntryFunc[I, S any] func(ctx Context, input I) (S, string, error)

// FinishHook runs exactly once after a terminal outcome is accepted and
// before the output is returned. It sees the final state and output
// together, which makes it the place for persistence-style side
// effects. A non-nil error discards the output and fails the traversal
// with a FinishHookError.
type FinishHook[S, O any] func(ctx Context, state S, output O) error
