package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTracingTest installs a test tracer provider with an in-memory
// span exporter.
func setupTracingTest(t *testing.T) (*tracetest.InMemoryExporter, func()) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)

	originalProvider := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	// Rebind the package-level tracer to the test provider.
	tracer = otel.Tracer("stepflow")

	cleanup := func() {
		otel.SetTracerProvider(originalProvider)
		tracer = otel.Tracer("stepflow")
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down tracer provider: %v", err)
		}
	}
	return exporter, cleanup
}

func TestStartTraversalSpan(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	m := NewSpanManager()

	t.Run("creates span with name and attributes", func(t *testing.T) {
		_, span := m.StartTraversalSpan(context.Background(), "counter", "trav-123")
		require.NotNil(t, span)
		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		s := spans[0]
		assert.Equal(t, "stepflow.traversal", s.Name)

		var graphName, traversalID string
		for _, attr := range s.Attributes {
			switch attr.Key {
			case "graph.name":
				graphName = attr.Value.AsString()
			case "traversal.id":
				traversalID = attr.Value.AsString()
			}
		}
		assert.Equal(t, "counter", graphName)
		assert.Equal(t, "trav-123", traversalID)
	})
}

func TestStartStepSpan(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	m := NewSpanManager()

	t.Run("creates child span named after the node", func(t *testing.T) {
		exporter.Reset()

		ctx, parent := m.StartTraversalSpan(context.Background(), "counter", "trav-1")
		_, child := m.StartStepSpan(ctx, "incr")
		child.End()
		parent.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 2)

		// Syncer exports in end order: child first.
		assert.Equal(t, "stepflow.step.incr", spans[0].Name)
		assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	})
}

func TestEndSpanWithError(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	m := NewSpanManager()

	t.Run("records error status", func(t *testing.T) {
		exporter.Reset()

		_, span := m.StartStepSpan(context.Background(), "failing")
		m.EndSpanWithError(span, errors.New("boom"))

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status.Code)
		require.NotEmpty(t, spans[0].Events)
		assert.Equal(t, "exception", spans[0].Events[0].Name)
	})

	t.Run("records ok status on success", func(t *testing.T) {
		exporter.Reset()

		_, span := m.StartStepSpan(context.Background(), "healthy")
		m.EndSpanWithError(span, nil)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Ok, spans[0].Status.Code)
	})

	t.Run("nil span does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.EndSpanWithError(nil, errors.New("err"))
		})
	})
}

func TestAddSpanEvent(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	m := NewSpanManager()

	t.Run("attaches event to the active span", func(t *testing.T) {
		exporter.Reset()

		ctx, span := m.StartStepSpan(context.Background(), "talk")
		m.AddSpanEvent(ctx, "chunk.emitted", attribute.Int("seq", 1))
		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		require.NotEmpty(t, spans[0].Events)
		assert.Equal(t, "chunk.emitted", spans[0].Events[0].Name)
	})

	t.Run("no active span is a no-op", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.AddSpanEvent(context.Background(), "orphan")
		})
	})
}
