package flow

import (
	"errors"
	"fmt"
)

// Sentinel errors for flow definition and invocation.
var (
	// ErrNotAuthorized indicates the flow's authorize hook rejected the call.
	ErrNotAuthorized = errors.New("flow: not authorized")

	// ErrInvalidInput indicates the input did not match the flow's input shape.
	ErrInvalidInput = errors.New("flow: invalid input")

	// ErrNilFlow indicates a nil Flow was added as a node.
	ErrNilFlow = errors.New("flow: nil flow")

	// ErrNameRequired indicates a flow was defined without a name.
	ErrNameRequired = errors.New("flow: name required")

	// ErrNotDurable indicates Resume was called on a flow defined
	// without Durable and a Store.
	ErrNotDurable = errors.New("flow: not durable")
)

// InvalidOutputError indicates a node's result matched neither the
// continuation shape nor the flow's output shape.
type InvalidOutputError struct {
	Node string
}

func (e *InvalidOutputError) Error() string {
	return fmt.Sprintf("node '%s' returned a value that is neither a continuation nor a valid output", e.Node)
}

// InvalidChunkError indicates a node emitted a stream chunk that does
// not match the flow's stream shape.
type InvalidChunkError struct {
	Node string
}

func (e *InvalidChunkError) Error() string {
	return fmt.Sprintf("node '%s' emitted a chunk that does not match the stream shape", e.Node)
}
