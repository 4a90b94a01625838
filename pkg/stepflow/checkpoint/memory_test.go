package checkpoint

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Len(t *testing.T) {
	s := NewMemoryStore()

	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.Put(NewRecord("trav-1", 1, "a", "b", []byte(`{}`))))
	require.NoError(t, s.Put(NewRecord("trav-1", 2, "b", "c", []byte(`{}`))))
	require.NoError(t, s.Put(NewRecord("trav-2", 1, "a", "b", []byte(`{}`))))

	assert.Equal(t, 3, s.Len())
}

func TestMemoryStore_RecordsAreCopied(t *testing.T) {
	s := NewMemoryStore()

	state := []byte(`{"count":1}`)
	rec := NewRecord("trav-1", 1, "a", "b", state)
	require.NoError(t, s.Put(rec))

	// Mutating the caller's buffer must not affect the stored record.
	state[2] = 'x'

	got, err := s.Get("trav-1", 1)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":1}`, string(got.State))

	// Mutating a returned record must not affect later reads.
	got.State[2] = 'x'

	again, err := s.Get("trav-1", 1)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":1}`, string(again.State))
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(step int) {
			defer wg.Done()
			_ = s.Put(NewRecord("trav-1", step, "a", "b", []byte(`{}`)))
			_, _ = s.Latest("trav-1")
			_, _ = s.List("trav-1")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, s.Len())
}
