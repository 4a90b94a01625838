package checkpoint

import (
	"sort"
	"sync"
)

// MemoryStore is an in-memory store for tests and ephemeral use.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]map[int]*Record // traversalID -> step -> record
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[int]*Record),
	}
}

// Put implements Store.
func (m *MemoryStore) Put(rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if m.data[rec.TraversalID] == nil {
		m.data[rec.TraversalID] = make(map[int]*Record)
	}

	m.data[rec.TraversalID][rec.Step] = copyRecord(rec)
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(traversalID string, step int) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	rec, ok := m.data[traversalID][step]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRecord(rec), nil
}

// Latest implements Store.
func (m *MemoryStore) Latest(traversalID string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	steps, ok := m.data[traversalID]
	if !ok || len(steps) == 0 {
		return nil, ErrNotFound
	}

	max := -1
	for step := range steps {
		if step > max {
			max = step
		}
	}
	return copyRecord(steps[max]), nil
}

// List implements Store.
func (m *MemoryStore) List(traversalID string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	steps, ok := m.data[traversalID]
	if !ok {
		return nil, nil
	}

	infos := make([]Info, 0, len(steps))
	for _, rec := range steps {
		infos = append(infos, Info{
			TraversalID: traversalID,
			Step:        rec.Step,
			Node:        rec.Node,
			Next:        rec.Next,
			Timestamp:   rec.Timestamp,
			Size:        int64(len(rec.State)),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Step < infos[j].Step
	})

	return infos, nil
}

// DeleteTraversal implements Store.
func (m *MemoryStore) DeleteTraversal(traversalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.data, traversalID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}

// Len returns the total number of records across all traversals.
// Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, steps := range m.data {
		count += len(steps)
	}
	return count
}

// copyRecord clones a record so callers cannot mutate stored data.
func copyRecord(rec *Record) *Record {
	clone := *rec
	clone.State = make([]byte, len(rec.State))
	copy(clone.State, rec.State)
	return &clone
}
