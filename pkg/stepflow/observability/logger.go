// Package observability provides structured logging, metrics, and
// tracing helpers for stepflow.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds traversal context to a logger.
// Returns a new logger with traversal_id and node_id fields.
func EnrichLogger(logger *slog.Logger, traversalID, nodeID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("traversal_id", traversalID),
		slog.String("node_id", nodeID),
	)
}

// LogTraversalStart logs the start of a traversal.
func LogTraversalStart(logger *slog.Logger, graph, traversalID string) {
	if logger == nil {
		return
	}
	logger.Info("traversal starting",
		slog.String("graph", graph),
		slog.String("traversal_id", traversalID),
	)
}

// LogTraversalComplete logs successful traversal completion.
func LogTraversalComplete(logger *slog.Logger, graph, traversalID string, durationMs float64, steps int) {
	if logger == nil {
		return
	}
	logger.Info("traversal completed",
		slog.String("graph", graph),
		slog.String("traversal_id", traversalID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("steps", steps),
	)
}

// LogTraversalError logs traversal failure.
func LogTraversalError(logger *slog.Logger, graph, traversalID string, err error, durationMs float64, lastNode string) {
	if logger == nil {
		return
	}
	logger.Error("traversal failed",
		slog.String("graph", graph),
		slog.String("traversal_id", traversalID),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
		slog.String("last_node", lastNode),
	)
}

// LogStepStart logs step dispatch.
func LogStepStart(logger *slog.Logger, nodeID string) {
	if logger == nil {
		return
	}
	logger.Debug("step starting",
		slog.String("node_id", nodeID),
	)
}

// LogStepComplete logs successful step completion.
func LogStepComplete(logger *slog.Logger, nodeID string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("step completed",
		slog.String("node_id", nodeID),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogStepError logs step failure.
func LogStepError(logger *slog.Logger, nodeID string, err error) {
	if logger == nil {
		return
	}
	logger.Error("step failed",
		slog.String("node_id", nodeID),
		slog.String("error", err.Error()),
	)
}

// LogChunk logs one forwarded stream chunk.
func LogChunk(logger *slog.Logger, nodeID string) {
	if logger == nil {
		return
	}
	logger.Debug("stream chunk forwarded",
		slog.String("node_id", nodeID),
	)
}

// LogCheckpoint logs a saved checkpoint record.
func LogCheckpoint(logger *slog.Logger, nodeID string, step, sizeBytes int) {
	if logger == nil {
		return
	}
	logger.Debug("checkpoint saved",
		slog.String("node_id", nodeID),
		slog.Int("step", step),
		slog.Int("size_bytes", sizeBytes),
	)
}

// LogCheckpointError logs a checkpoint failure (non-fatal path).
func LogCheckpointError(logger *slog.Logger, nodeID string, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("checkpoint failed",
		slog.String("node_id", nodeID),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in
// milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
