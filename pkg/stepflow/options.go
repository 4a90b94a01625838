package stepflow

import (
	"fmt"
	"log/slog"

	"github.com/stepflow-go/stepflow/pkg/stepflow/checkpoint"
	"github.com/stepflow-go/stepflow/pkg/stepflow/observability"
)

// DefaultMaxSteps is the step limit applied when WithMaxSteps is not given.
const DefaultMaxSteps = 1000

// MaxStepsLimit is the largest step limit WithMaxSteps accepts.
const MaxStepsLimit = 100000

// runConfig holds configuration for one traversal.
type runConfig struct {
	maxSteps int

	// streaming
	onChunk func(chunk any)

	// checkpointing
	checkpointStore        checkpoint.Store
	traversalID            string
	checkpointFailureFatal bool
	startStep              int

	// observability
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool
}

// defaultRunConfig returns the default traversal configuration.
func defaultRunConfig() runConfig {
	return runConfig{
		maxSteps: DefaultMaxSteps,
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
	}
}

// RunOption configures traversal behavior.
type RunOption func(*runConfig)

// WithMaxSteps sets the maximum number of step dispatches.
// Default: DefaultMaxSteps.
//
// Continuation graphs have no structural bound - a node may continue to
// itself forever - so every traversal carries a step limit. Exceeding
// it fails the traversal with a MaxStepsError.
//
// Panics if n is not in [1, MaxStepsLimit]; an unbounded traversal is
// never a valid configuration.
func WithMaxSteps(n int) RunOption {
	if n <= 0 {
		panic("stepflow: max steps must be > 0")
	}
	if n > MaxStepsLimit {
		panic(fmt.Sprintf("stepflow: max steps exceeds limit (%d)", MaxStepsLimit))
	}
	return func(c *runConfig) {
		c.maxSteps = n
	}
}

// WithStream registers a consumer for incremental output chunks.
// Chunks emitted by steps (via Context.Emit) are forwarded to fn
// synchronously, in emission order; all of one step's chunks are
// delivered before the next step is dispatched. Chunks already
// delivered are not retracted if the traversal later fails.
func WithStream(fn func(chunk any)) RunOption {
	return func(c *runConfig) {
		c.onChunk = fn
	}
}

// WithCheckpoints enables checkpoint persistence after every
// continuation. Requires WithTraversalID.
func WithCheckpoints(store checkpoint.Store) RunOption {
	return func(c *runConfig) {
		c.checkpointStore = store
	}
}

// WithTraversalID sets the identifier used to key checkpoint records.
func WithTraversalID(id string) RunOption {
	return func(c *runConfig) {
		c.traversalID = id
	}
}

// WithCheckpointFailureFatal makes checkpoint failures abort the
// traversal instead of being logged and skipped.
func WithCheckpointFailureFatal(fatal bool) RunOption {
	return func(c *runConfig) {
		c.checkpointFailureFatal = fatal
	}
}

// WithObservabilityLogger sets the logger for traversal and step
// lifecycle events. Without it the executor logs nothing.
func WithObservabilityLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics for the traversal.
// The recorder uses the global meter provider.
func WithMetrics(enabled bool) RunOption {
	return func(c *runConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry spans for the traversal and each step.
// The spans use the global tracer provider.
func WithTracing(enabled bool) RunOption {
	return func(c *runConfig) {
		c.tracingEnabled = enabled
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}
