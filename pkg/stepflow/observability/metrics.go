package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records stepflow metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordStep records one step dispatch with its duration and error status.
	RecordStep(ctx context.Context, nodeID string, duration time.Duration, err error)

	// RecordTraversal records a completed traversal.
	RecordTraversal(ctx context.Context, graph string, success bool, duration time.Duration)

	// RecordCheckpoint records a checkpoint put.
	RecordCheckpoint(ctx context.Context, nodeID string, sizeBytes int64)

	// RecordChunk records one forwarded stream chunk.
	RecordChunk(ctx context.Context, nodeID string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	stepExecutions    metric.Int64Counter
	stepLatency       metric.Float64Histogram
	stepErrors        metric.Int64Counter
	traversalRuns     metric.Int64Counter
	traversalLatency  metric.Float64Histogram
	checkpointSize    metric.Int64Histogram
	streamChunks      metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily initializes the default OTel metrics instance.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("stepflow")

	stepExecutions, err := meter.Int64Counter("stepflow.step.executions",
		metric.WithDescription("Number of step dispatches"),
	)
	if err != nil {
		return nil, err
	}

	stepLatency, err := meter.Float64Histogram("stepflow.step.latency_ms",
		metric.WithDescription("Step execution latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	stepErrors, err := meter.Int64Counter("stepflow.step.errors",
		metric.WithDescription("Number of step execution errors"),
	)
	if err != nil {
		return nil, err
	}

	traversalRuns, err := meter.Int64Counter("stepflow.traversal.runs",
		metric.WithDescription("Number of traversals"),
	)
	if err != nil {
		return nil, err
	}

	traversalLatency, err := meter.Float64Histogram("stepflow.traversal.latency_ms",
		metric.WithDescription("Traversal latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	checkpointSize, err := meter.Int64Histogram("stepflow.checkpoint.size_bytes",
		metric.WithDescription("Checkpoint record size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	streamChunks, err := meter.Int64Counter("stepflow.stream.chunks",
		metric.WithDescription("Number of stream chunks forwarded"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		stepExecutions:   stepExecutions,
		stepLatency:      stepLatency,
		stepErrors:       stepErrors,
		traversalRuns:    traversalRuns,
		traversalLatency: traversalLatency,
		checkpointSize:   checkpointSize,
		streamChunks:     streamChunks,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordStep records one step dispatch.
func (m *otelMetrics) RecordStep(ctx context.Context, nodeID string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("node_id", nodeID),
	}

	m.stepExecutions.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.stepLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.stepErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordTraversal records a completed traversal.
func (m *otelMetrics) RecordTraversal(ctx context.Context, graph string, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("graph", graph),
		attribute.Bool("success", success),
	}
	m.traversalRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.traversalLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordCheckpoint records a checkpoint put.
func (m *otelMetrics) RecordCheckpoint(ctx context.Context, nodeID string, sizeBytes int64) {
	attrs := []attribute.KeyValue{
		attribute.String("node_id", nodeID),
	}
	m.checkpointSize.Record(ctx, sizeBytes, metric.WithAttributes(attrs...))
}

// RecordChunk records one forwarded stream chunk.
func (m *otelMetrics) RecordChunk(ctx context.Context, nodeID string) {
	attrs := []attribute.KeyValue{
		attribute.String("node_id", nodeID),
	}
	m.streamChunks.Add(ctx, 1, metric.WithAttributes(attrs...))
}
