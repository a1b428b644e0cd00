// Package history persists metadata about finished capture and replay
// sessions. Recorded action sequences themselves are never written to
// disk; only mode, outcome, counts, and timing survive process exit.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver for database/sql

	"github.com/sergiup592/event-automation/internal/control"
	"github.com/sergiup592/event-automation/internal/logger"
)

// Record is one stored session row.
type Record struct {
	ID         string
	Mode       string
	StartedAt  time.Time
	EndedAt    time.Time
	Actions    int
	Iterations int
	Outcome    string
	Error      string
}

// Store is the session-history persistence interface.
type Store interface {
	RecordSession(s control.Session) error
	ListSessions(limit int) ([]*Record, error)
	Stats() (*Stats, error)
	Close() error
}

// Stats aggregates the stored history.
type Stats struct {
	TotalSessions int
	Recordings    int
	Playbacks     int
	Errors        int
	TotalActions  int
	LastSessionAt time.Time
	OutcomeCounts map[string]int
}

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db          *sql.DB
	maxSessions int
	mu          sync.RWMutex
}

// NewSQLiteStore opens (creating if needed) the history database.
// maxSessions bounds the table; oldest rows are pruned past it.
func NewSQLiteStore(dbPath string, maxSessions int) (*SQLiteStore, error) {
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(homeDir, ".macrod", "history.db")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	// WAL mode for better concurrency between daemon and CLI readers
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{
		db:          db,
		maxSessions: maxSessions,
	}

	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug().Str("path", dbPath).Msg("Opened history store")
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		ended_at INTEGER NOT NULL,
		actions INTEGER NOT NULL,
		iterations INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// RecordSession stores one finished session and prunes past the
// configured bound.
func (s *SQLiteStore) RecordSession(sess control.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO sessions (id, mode, started_at, ended_at, actions, iterations, outcome, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		string(sess.Mode),
		sess.StartedAt.Unix(),
		sess.EndedAt.Unix(),
		sess.Actions,
		sess.Iterations,
		sess.Outcome,
		sess.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return s.pruneLocked()
}

func (s *SQLiteStore) pruneLocked() error {
	if s.maxSessions <= 0 {
		return nil
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count); err != nil {
		return fmt.Errorf("failed to count sessions: %w", err)
	}
	if count <= s.maxSessions {
		return nil
	}

	result, err := s.db.Exec(
		`DELETE FROM sessions WHERE id IN (
			SELECT id FROM sessions ORDER BY started_at ASC LIMIT ?
		)`,
		count-s.maxSessions,
	)
	if err != nil {
		return fmt.Errorf("failed to prune sessions: %w", err)
	}

	deleted, _ := result.RowsAffected()
	if deleted > 0 {
		logger.Debug().Int64("deleted", deleted).Msg("Pruned old sessions")
	}
	return nil
}

// ListSessions returns the most recent sessions, newest first.
func (s *SQLiteStore) ListSessions(limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(
		`SELECT id, mode, started_at, ended_at, actions, iterations, outcome, error
		 FROM sessions ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*Record
	for rows.Next() {
		var rec Record
		var startedAt, endedAt int64
		var errText sql.NullString

		if err := rows.Scan(&rec.ID, &rec.Mode, &startedAt, &endedAt, &rec.Actions, &rec.Iterations, &rec.Outcome, &errText); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		rec.StartedAt = time.Unix(startedAt, 0)
		rec.EndedAt = time.Unix(endedAt, 0)
		rec.Error = errText.String
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// Stats aggregates the stored sessions.
func (s *SQLiteStore) Stats() (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{OutcomeCounts: make(map[string]int)}

	rows, err := s.db.Query(`SELECT mode, outcome, actions, started_at FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var mode, outcome string
		var actions int
		var startedAt int64
		if err := rows.Scan(&mode, &outcome, &actions, &startedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}

		stats.TotalSessions++
		stats.TotalActions += actions
		stats.OutcomeCounts[outcome]++
		switch control.Mode(mode) {
		case control.Recording:
			stats.Recordings++
		case control.Playing:
			stats.Playbacks++
		}
		if outcome == "error" {
			stats.Errors++
		}
		if at := time.Unix(startedAt, 0); at.After(stats.LastSessionAt) {
			stats.LastSessionAt = at
		}
	}

	return stats, rows.Err()
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
