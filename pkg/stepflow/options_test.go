package stepflow

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWithMaxSteps_PanicsOnZero tests zero is rejected at option
// construction time.
func TestWithMaxSteps_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() {
		WithMaxSteps(0)
	})
}

// TestWithMaxSteps_PanicsOnNegative tests negative values are rejected.
func TestWithMaxSteps_PanicsOnNegative(t *testing.T) {
	assert.Panics(t, func() {
		WithMaxSteps(-1)
	})
}

// TestWithMaxSteps_PanicsAboveLimit tests the upper bound is enforced.
func TestWithMaxSteps_PanicsAboveLimit(t *testing.T) {
	assert.Panics(t, func() {
		WithMaxSteps(MaxStepsLimit + 1)
	})
}

// TestWithMaxSteps_AcceptsBoundaries tests 1 and the limit are valid.
func TestWithMaxSteps_AcceptsBoundaries(t *testing.T) {
	assert.NotPanics(t, func() {
		WithMaxSteps(1)
		WithMaxSteps(MaxStepsLimit)
	})
}

// TestDefaultMaxSteps tests the default is applied without WithMaxSteps.
func TestDefaultMaxSteps(t *testing.T) {
	cfg := defaultRunConfig()

	assert.Equal(t, DefaultMaxSteps, cfg.maxSteps)
}

// TestWithCheckpoints_RequiresTraversalID tests checkpointing without
// an ID fails before any dispatch.
func TestWithCheckpoints_RequiresTraversalID(t *testing.T) {
	g := newCounterGraph(2)
	store := newTestStore()

	_, err := g.Run(testCtx(), 0, WithCheckpoints(store))

	assert.ErrorIs(t, err, ErrTraversalIDRequired)
}

// TestNewContext_Defaults tests the generated context carries a logger
// and a traversal ID.
func TestNewContext_Defaults(t *testing.T) {
	ctx := NewContext(context.Background())

	assert.NotNil(t, ctx.Logger())
	assert.NotEmpty(t, ctx.TraversalID())
	assert.Empty(t, ctx.NodeID())
}

// TestNewContext_Options tests logger and ID overrides.
func TestNewContext_Options(t *testing.T) {
	logger := slog.Default().With("test", true)

	ctx := NewContext(context.Background(),
		WithLogger(logger),
		WithContextTraversalID("trav-42"))

	assert.Equal(t, "trav-42", ctx.TraversalID())
	assert.Same(t, logger, ctx.Logger())
}

// TestNewContext_UniqueIDs tests each context gets its own traversal ID.
func TestNewContext_UniqueIDs(t *testing.T) {
	a := NewContext(context.Background())
	b := NewContext(context.Background())

	require.NotEmpty(t, a.TraversalID())
	assert.NotEqual(t, a.TraversalID(), b.TraversalID())
}
