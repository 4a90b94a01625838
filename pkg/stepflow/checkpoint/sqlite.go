package checkpoint

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists records to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a SQLite-backed store.
// The path should be a file path (e.g. "./traversals.db") or ":memory:"
// for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS traversal_records (
			traversal_id TEXT NOT NULL,
			step INTEGER NOT NULL,
			node TEXT NOT NULL,
			next_node TEXT NOT NULL,
			version INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			state BLOB NOT NULL,
			PRIMARY KEY (traversal_id, step)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Put implements Store.
func (s *SQLiteStore) Put(rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO traversal_records (traversal_id, step, node, next_node, version, created_at, state)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(traversal_id, step) DO UPDATE SET
			node = excluded.node,
			next_node = excluded.next_node,
			version = excluded.version,
			created_at = excluded.created_at,
			state = excluded.state
	`, rec.TraversalID, rec.Step, rec.Node, rec.Next, rec.Version,
		rec.Timestamp.UTC().Format(time.RFC3339Nano), []byte(rec.State))

	if err != nil {
		return fmt.Errorf("put record: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *SQLiteStore) Get(traversalID string, step int) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	row := s.db.QueryRow(`
		SELECT step, node, next_node, version, created_at, state
		FROM traversal_records
		WHERE traversal_id = ? AND step = ?
	`, traversalID, step)

	return scanRecord(row, traversalID)
}

// Latest implements Store.
func (s *SQLiteStore) Latest(traversalID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	row := s.db.QueryRow(`
		SELECT step, node, next_node, version, created_at, state
		FROM traversal_records
		WHERE traversal_id = ?
		ORDER BY step DESC
		LIMIT 1
	`, traversalID)

	return scanRecord(row, traversalID)
}

// List implements Store.
func (s *SQLiteStore) List(traversalID string) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT step, node, next_node, created_at, LENGTH(state)
		FROM traversal_records
		WHERE traversal_id = ?
		ORDER BY step
	`, traversalID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var info Info
		var timestamp string
		if err := rows.Scan(&info.Step, &info.Node, &info.Next, &timestamp, &info.Size); err != nil {
			return nil, fmt.Errorf("scan record info: %w", err)
		}
		info.TraversalID = traversalID
		info.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return infos, nil
}

// DeleteTraversal implements Store.
func (s *SQLiteStore) DeleteTraversal(traversalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		DELETE FROM traversal_records WHERE traversal_id = ?
	`, traversalID)
	if err != nil {
		return fmt.Errorf("delete traversal records: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

// scanRecord reads one record row.
func scanRecord(row *sql.Row, traversalID string) (*Record, error) {
	var rec Record
	var timestamp string
	err := row.Scan(&rec.Step, &rec.Node, &rec.Next, &rec.Version, &timestamp, (*[]byte)(&rec.State))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan record: %w", err)
	}
	rec.TraversalID = traversalID
	rec.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
	return &rec, nil
}
