// Package checkpoint provides persistent traversal snapshots for crash recovery.
//
// Records are keyed by (traversal ID, step index) rather than by node
// name: in a continuation graph the same node may run many times in one
// traversal, so node names cannot key a traversal's history.
package checkpoint

import (
	"encoding/json"
	"errors"
	"time"
)

// Version is the current record format version.
// Increment when making breaking changes to the record structure.
const Version = 1

// Record is the persisted snapshot taken after one continuation.
// It contains everything needed to resume the traversal: the state the
// step produced and the name of the node that runs next.
type Record struct {
	Version     int       `json:"version"`
	TraversalID string    `json:"traversal_id"`
	Step        int       `json:"step"`
	Node        string    `json:"node"`
	Next        string    `json:"next"`
	Timestamp   time.Time `json:"timestamp"`

	// State is the JSON-encoded shared state after the step ran.
	State json.RawMessage `json:"state"`
}

// NewRecord creates a record for the given traversal position.
// State must already be JSON-encoded.
func NewRecord(traversalID string, step int, node, next string, state []byte) *Record {
	return &Record{
		Version:     Version,
		TraversalID: traversalID,
		Step:        step,
		Node:        node,
		Next:        next,
		Timestamp:   time.Now().UTC(),
		State:       state,
	}
}

// Marshal serializes the record to JSON.
func (r *Record) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Unmarshal deserializes a record from JSON.
func Unmarshal(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Info provides record metadata without the state payload.
type Info struct {
	TraversalID string
	Step        int
	Node        string
	Next        string
	Timestamp   time.Time
	Size        int64
}

// Store persists traversal records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put stores a record. Overwrites any record already stored for
	// (record.TraversalID, record.Step).
	Put(rec *Record) error

	// Get retrieves the record at a specific step.
	// Returns ErrNotFound if it doesn't exist.
	Get(traversalID string, step int) (*Record, error)

	// Latest retrieves the record with the highest step index.
	// Returns ErrNotFound if the traversal has no records.
	Latest(traversalID string) (*Record, error)

	// List returns metadata for all of a traversal's records, ordered
	// by step. Returns an empty slice (not an error) when there are none.
	List(traversalID string) ([]Info, error)

	// DeleteTraversal removes all records for a traversal.
	// Returns nil if there are none.
	DeleteTraversal(traversalID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates a record doesn't exist.
	ErrNotFound = errors.New("checkpoint record not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("checkpoint store closed")
)
