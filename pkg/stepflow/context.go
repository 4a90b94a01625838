package stepflow

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Context provides execution context to steps.
// It extends context.Context with stepflow-specific services and metadata.
//
// Context is immutable after creation. The executor derives a context
// for each step with the node name set and the logger enriched.
type Context interface {
	context.Context

	// Logger returns the configured logger, enriched with traversal and
	// node fields during execution. Never nil - defaults to slog.Default().
	Logger() *slog.Logger

	// TraversalID returns the unique identifier for this traversal.
	// Auto-generated if not configured.
	TraversalID() string

	// NodeID returns the node currently executing.
	// Empty before the first dispatch.
	NodeID() string

	// Emit forwards an incremental output chunk to the traversal's
	// stream consumer. Chunks are delivered synchronously, in emission
	// order, before the step's final outcome is processed. When the
	// caller did not request streaming, Emit is a no-op.
	Emit(chunk any)
}

// executionContext is the internal implementation of Context.
type executionContext struct {
	context.Context

	logger      *slog.Logger
	traversalID string
	nodeID      string
	emit        func(chunk any)
}

// Logger returns the configured logger.
func (c *executionContext) Logger() *slog.Logger {
	return c.logger
}

// TraversalID returns the traversal identifier.
func (c *executionContext) TraversalID() string {
	return c.traversalID
}

// NodeID returns the current node identifier.
func (c *executionContext) NodeID() string {
	return c.nodeID
}

// Emit forwards a chunk to the stream consumer, if any.
func (c *executionContext) Emit(chunk any) {
	if c.emit != nil {
		c.emit(chunk)
	}
}

// ContextOption configures a Context.
type ContextOption func(*executionContext)

// WithLogger sets the logger for the context.
// The executor enriches it with traversal_id and node_id per step.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *executionContext) {
		c.logger = logger
	}
}

// WithContextTraversalID sets the traversal identifier for the context.
// If not set, a UUID is auto-generated. This identifier is used for
// logging and tracing; for checkpointing, pass WithTraversalID to Run.
func WithContextTraversalID(id string) ContextOption {
	return func(c *executionContext) {
		c.traversalID = id
	}
}

// NewContext creates an execution context from a standard context.
//
// Example:
//
//	ctx := stepflow.NewContext(context.Background(),
//	    stepflow.WithLogger(myLogger),
//	    stepflow.WithContextTraversalID("trav-123"))
func NewContext(ctx context.Context, opts ...ContextOption) Context {
	ec := &executionContext{
		Context:     ctx,
		logger:      slog.Default(),
		traversalID: uuid.New().String(),
	}

	for _, opt := range opts {
		opt(ec)
	}

	return ec
}

// withNode returns a derived context for one step: node name set,
// logger enriched, chunk sink wired.
func (c *executionContext) withNode(nodeID string, emit func(chunk any)) *executionContext {
	return &executionContext{
		Context:     c.Context,
		logger:      c.logger.With("traversal_id", c.traversalID, "node_id", nodeID),
		traversalID: c.traversalID,
		nodeID:      nodeID,
		emit:        emit,
	}
}

// nodeContext derives a per-step context from any Context implementation.
func nodeContext(ctx Context, nodeID string, emit func(chunk any)) Context {
	if ec, ok := ctx.(*executionContext); ok {
		return ec.withNode(nodeID, emit)
	}
	return &executionContext{
		Context:     ctx,
		logger:      ctx.Logger().With("traversal_id", ctx.TraversalID(), "node_id", nodeID),
		traversalID: ctx.TraversalID(),
		nodeID:      nodeID,
		emit:        emit,
	}
}
