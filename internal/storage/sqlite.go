// Package storage persists the best score and finished-session history in
// SQLite.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dkress/hearsay/internal/trainer"
)

// scoreSlot is the single logical slot holding the best score ever
// achieved.
const scoreSlot = "best"

// SessionResult is one finished session as stored in history.
type SessionResult struct {
	ID        int64     `json:"id"`
	Mode      string    `json:"mode"`
	Score     int       `json:"score"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		dbPath = filepath.Join("data", "hearsay.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS scores (
			slot TEXT PRIMARY KEY,
			best INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL
		);
	`); err != nil {
		return fmt.Errorf("create scores table: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			mode TEXT NOT NULL,
			score INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL
		);
	`); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}

	if _, err := s.db.Exec("CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)"); err != nil {
		return fmt.Errorf("create sessions index: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Best returns the persisted best score, or 0 when none has been written
// yet.
func (s *SQLiteStore) Best() (int, error) {
	row := s.db.QueryRow(`SELECT best FROM scores WHERE slot = ?`, scoreSlot)

	var best int
	if err := row.Scan(&best); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("query best score: %w", err)
	}
	return best, nil
}

// SetBest overwrites the persisted best score.
func (s *SQLiteStore) SetBest(score int) error {
	if score < 0 {
		return fmt.Errorf("best score must be non-negative, got %d", score)
	}

	_, err := s.db.Exec(
		`INSERT INTO scores(slot, best, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET best = excluded.best, updated_at = excluded.updated_at`,
		scoreSlot,
		score,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("persist best score: %w", err)
	}
	return nil
}

// RecordSession appends one finished session to history.
func (s *SQLiteStore) RecordSession(mode trainer.Mode, score int, startedAt, endedAt time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions(mode, score, started_at, ended_at) VALUES(?, ?, ?, ?)`,
		string(mode),
		score,
		startedAt.UTC().Format(time.RFC3339Nano),
		endedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record session: %w", err)
	}
	return nil
}

// RecentSessions returns up to limit finished sessions, newest first.
func (s *SQLiteStore) RecentSessions(limit int) ([]SessionResult, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, mode, score, started_at, ended_at
		 FROM sessions
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]SessionResult, 0, limit)
	for rows.Next() {
		var r SessionResult
		var startedAt, endedAt string
		if err := rows.Scan(&r.ID, &r.Mode, &r.Score, &startedAt, &endedAt); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}

		r.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse session %d started_at: %w", r.ID, err)
		}
		r.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, fmt.Errorf("parse session %d ended_at: %w", r.ID, err)
		}

		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session rows: %w", err)
	}

	return results, nil
}
