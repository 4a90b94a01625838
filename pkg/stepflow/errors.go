package stepflow

import (
	"errors"
	"fmt"
)

// Sentinel errors for node registration.
var (
	// ErrDuplicateNode indicates AddNode was called with a name that is
	// already registered.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrNodeNotFound indicates RemoveNode was called with a name that
	// is not registered.
	ErrNodeNotFound = errors.New("node not found")

	// ErrInvalidNodeID indicates an empty or whitespace-containing node name.
	ErrInvalidNodeID = errors.New("invalid node id")

	// ErrNilStep indicates AddNode was called with a nil step function.
	ErrNilStep = errors.New("step function cannot be nil")
)

// Sentinel errors for traversal.
var (
	// ErrNilContext indicates Run was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrUnknownNode indicates a continuation named a node that is not
	// in the registry snapshot.
	ErrUnknownNode = errors.New("unknown node")

	// ErrInvalidOutcome indicates a step returned the zero Outcome,
	// which is neither a continuation nor a terminal result.
	ErrInvalidOutcome = errors.New("invalid step outcome")

	// ErrMaxSteps indicates the traversal exceeded the configured step limit.
	ErrMaxSteps = errors.New("exceeded maximum steps")
)

// Sentinel errors for checkpointing and resume.
var (
	// ErrTraversalIDRequired indicates checkpointing was enabled
	// without a traversal ID.
	ErrTraversalIDRequired = errors.New("traversal ID required for checkpointing")

	// ErrNoCheckpoints indicates no checkpoint records exist for the traversal.
	ErrNoCheckpoints = errors.New("no checkpoints found for traversal")

	// ErrDecodeState indicates checkpointed state could not be decoded.
	ErrDecodeState = errors.New("failed to decode checkpointed state")

	// ErrCheckpointVersion indicates an incompatible checkpoint format version.
	ErrCheckpointVersion = errors.New("checkpoint version mismatch")
)

// UnknownNodeError is raised when a continuation's next-node name does
// not resolve in the registry snapshot. Terminal for the traversal.
type UnknownNodeError struct {
	// Node is the name that failed to resolve.
	Node string
	// From is the node (or entrypoint) that produced the continuation.
	From string
}

// Error implements the error interface.
func (e *UnknownNodeError) Error() string {
	if e.From == "" {
		return fmt.Sprintf("unknown node %q", e.Node)
	}
	return fmt.Sprintf("unknown node %q (continued from %s)", e.Node, e.From)
}

// Unwrap returns ErrUnknownNode for errors.Is support.
func (e *UnknownNodeError) Unwrap() error {
	return ErrUnknownNode
}

// NodeError wraps an error raised by a step's own logic.
// The underlying error propagates unmodified through Unwrap; the
// executor neither retries nor suppresses it.
type NodeError struct {
	// Node is the name of the step that failed.
	Node string
	// Op is the operation that failed (e.g. "execute").
	Op string
	// Err is the step's error.
	Err error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %s: %v", e.Node, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *NodeError) Unwrap() error {
	return e.Err
}

// PanicError captures a panic raised inside a step.
type PanicError struct {
	// Node is the name of the step that panicked.
	Node string
	// Value is the value passed to panic().
	Value any
	// Stack is the stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("node %s panicked: %v", e.Node, e.Value)
}

// InvalidOutcomeError is raised when a step returns the zero Outcome.
type InvalidOutcomeError struct {
	// Node is the name of the offending step.
	Node string
}

// Error implements the error interface.
func (e *InvalidOutcomeError) Error() string {
	return fmt.Sprintf("node %s returned an outcome that is neither Continue nor Finish", e.Node)
}

// Unwrap returns ErrInvalidOutcome for errors.Is support.
func (e *InvalidOutcomeError) Unwrap() error {
	return ErrInvalidOutcome
}

// MaxStepsError provides context when the step limit is exceeded.
type MaxStepsError struct {
	// Max is the configured step limit.
	Max int
	// LastNode is the node that would have been dispatched next.
	LastNode string
	// State is the state at termination (type-assert to the actual type).
	State any
}

// Error implements the error interface.
func (e *MaxStepsError) Error() string {
	return fmt.Sprintf("exceeded maximum steps (%d) at node %s", e.Max, e.LastNode)
}

// Unwrap returns ErrMaxSteps for errors.Is support.
func (e *MaxStepsError) Unwrap() error {
	return ErrMaxSteps
}

// CancellationError captures the point at which a traversal observed
// context cancellation. The executor abandons the traversal before the
// named node is dispatched; no partial-state cleanup is attempted.
type CancellationError struct {
	// Node is the node that was about to be dispatched.
	Node string
	// State is the state at cancellation (type-assert to the actual type).
	State any
	// Cause is context.Canceled or context.DeadlineExceeded.
	Cause error
}

// Error implements the error interface.
func (e *CancellationError) Error() string {
	return fmt.Sprintf("cancelled before node %s: %v", e.Node, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CancellationError) Unwrap() error {
	return e.Cause
}

// FinishHookError replaces the would-be successful return when the
// finish hook fails; the terminal output is discarded.
type FinishHookError struct {
	// Err is the error returned by the hook.
	Err error
}

// Error implements the error interface.
func (e *FinishHookError) Error() string {
	return fmt.Sprintf("finish hook: %v", e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *FinishHookError) Unwrap() error {
	return e.Err
}

// CheckpointError wraps a fatal checkpoint failure.
// Checkpoint failures are non-fatal (logged and skipped) unless
// WithCheckpointFailureFatal is set.
type CheckpointError struct {
	// Node is the node whose state failed to checkpoint.
	Node string
	// Op is the operation that failed ("encode", "put").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *CheckpointError) Error() string {
	return fmt.Sprintf("checkpoint %s at node %s: %v", e.Op, e.Node, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *CheckpointError) Unwrap() error {
	return e.Err
}
