package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestNoopMetrics_AllMethodsAreSafe(t *testing.T) {
	var m MetricsRecorder = NoopMetrics{}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordStep(ctx, "node", 10*time.Millisecond, nil)
		m.RecordStep(ctx, "node", 10*time.Millisecond, errors.New("err"))
		m.RecordTraversal(ctx, "graph", true, time.Second)
		m.RecordCheckpoint(ctx, "node", 1024)
		m.RecordChunk(ctx, "node")
	})
}

func TestNoopSpanManager_AllMethodsAreSafe(t *testing.T) {
	var m SpanManager = NoopSpanManager{}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		spanCtx, span := m.StartTraversalSpan(ctx, "graph", "trav-1")
		assert.Equal(t, ctx, spanCtx)
		assert.NotNil(t, span)

		stepCtx, stepSpan := m.StartStepSpan(ctx, "node")
		assert.Equal(t, ctx, stepCtx)
		assert.NotNil(t, stepSpan)

		m.EndSpanWithError(span, errors.New("err"))
		m.EndSpanWithError(stepSpan, nil)
		m.AddSpanEvent(ctx, "event", attribute.Bool("ok", true))
	})
}

func TestNoopSpan_IsNotRecording(t *testing.T) {
	_, span := NoopSpanManager{}.StartStepSpan(context.Background(), "node")

	assert.False(t, span.IsRecording())
}
