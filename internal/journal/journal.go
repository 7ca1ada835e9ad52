// Package journal appends city events to a SQLite audit log. The log is for
// inspection only; cities are never restored from it.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/napolitain/citysim/internal/sim"
)

// Store is an open journal database
type Store struct {
	db *sql.DB
}

// Entry is one journaled event
type Entry struct {
	ID      int64           `json:"id"`
	Session string          `json:"session"`
	Clock   time.Duration   `json:"clock"`
	Kind    string          `json:"kind"`
	X       int             `json:"x"`
	Y       int             `json:"y"`
	Payload json.RawMessage `json:"payload"`
}

// Open opens or creates the journal at path
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	// one writer; sqlite serializes anyway
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping journal: %w", err)
	}
	if err := createSchemas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}
	return &Store{db: db}, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session TEXT NOT NULL,
			clock_ms INTEGER NOT NULL,
			kind TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			payload TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_session ON events(session);`,
	}
	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Append stores one event for a session
func (s *Store) Append(ctx context.Context, session string, e sim.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (session, clock_ms, kind, x, y, payload) VALUES (?, ?, ?, ?, ?, ?)`,
		session, e.Clock.Milliseconds(), e.Kind.String(), e.Coord.X, e.Coord.Y, string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// Events returns a session's events in append order
func (s *Store) Events(ctx context.Context, session string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session, clock_ms, kind, x, y, payload FROM events WHERE session = ? ORDER BY id ASC`,
		session,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var clockMS int64
		var payload string
		if err := rows.Scan(&e.ID, &e.Session, &clockMS, &e.Kind, &e.X, &e.Y, &payload); err != nil {
			return nil, err
		}
		e.Clock = time.Duration(clockMS) * time.Millisecond
		e.Payload = json.RawMessage(payload)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns per-kind event counts for a session
func (s *Store) Count(ctx context.Context, session string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, COUNT(*) FROM events WHERE session = ? GROUP BY kind`, session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

// Journal is a sim.Observer writing one session's events to a Store.
// Observe cannot fail the city, so the first write error is kept in Err.
type Journal struct {
	store   *Store
	session string

	mu  sync.Mutex
	err error
}

// Session returns an observer journaling under the given session id
func (s *Store) Session(session string) *Journal {
	return &Journal{store: s, session: session}
}

// Observe appends the event
func (j *Journal) Observe(e sim.Event) {
	err := j.store.Append(context.Background(), j.session, e)
	if err == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err == nil {
		j.err = err
	}
}

// Err returns the first write error, if any
func (j *Journal) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}
