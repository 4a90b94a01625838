// Package flow hosts graph executors behind a uniform, untyped calling
// contract. A Flow takes any JSON-encodable input and returns any
// JSON-encodable output, optionally streaming chunks along the way,
// which lets graph nodes be plain functions, other flows, or whole
// sub-graphs interchangeably.
//
// The typed executor in the parent package keeps continuations and
// terminal outputs apart structurally. At this boundary a sub-flow
// returns a single untyped value, so results are classified by shape:
// a value matching the continuation shape is a handoff, anything
// matching the output shape is terminal, and everything else is an
// InvalidOutputError.
package flow

import (
	"context"
)

// Flow is a callable unit with a stable name. onChunk receives
// streamed fragments in emission order and may be nil when the caller
// does not consume the stream.
type Flow interface {
	Name() string
	Invoke(ctx context.Context, input any, onChunk func(any)) (any, error)
}

// InvokeFunc adapts a function to the Flow invocation signature.
type InvokeFunc func(ctx context.Context, input any, onChunk func(any)) (any, error)

type funcFlow struct {
	name string
	fn   InvokeFunc
}

// New wraps a function as a named Flow.
func New(name string, fn InvokeFunc) Flow {
	return &funcFlow{name: name, fn: fn}
}

func (f *funcFlow) Name() string { return f.name }

func (f *funcFlow) Invoke(ctx context.Context, input any, onChunk func(any)) (any, error) {
	return f.fn(ctx, input, onChunk)
}
