package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/intervox/intervox/internal/interview"
)

// Slot keys. The store is a small set of named JSON documents rather than a
// relational schema: one in-progress snapshot, one history list, and a couple
// of counters.
const (
	keySnapshot      = "interview_in_progress"
	keyHistory       = "interview_history"
	keyVisitCount    = "visit_count"
	keySessionActive = "session_active"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		dbPath = filepath.Join("data", "intervox.db")
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
		CREATE TABLE IF NOT EXISTS slots (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`); err != nil {
		return fmt.Errorf("create slots table: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) getSlot(key string) (string, bool, error) {
	row := s.db.QueryRow(`SELECT value FROM slots WHERE key = ?`, key)

	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read slot %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) putSlot(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO slots(key, value, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key,
		value,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write slot %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) deleteSlot(key string) error {
	if _, err := s.db.Exec(`DELETE FROM slots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete slot %s: %w", key, err)
	}
	return nil
}

// LoadSnapshot returns the saved in-progress interview, or nil when none is
// saved. A slot that fails to decode is treated as absent rather than fatal,
// so a corrupted save never blocks starting a fresh interview.
func (s *SQLiteStore) LoadSnapshot() (*interview.Snapshot, error) {
	raw, ok, err := s.getSlot(keySnapshot)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var snap interview.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, nil
	}
	if len(snap.Questions) == 0 {
		return nil, nil
	}
	return &snap, nil
}

func (s *SQLiteStore) SaveSnapshot(snap interview.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return s.putSlot(keySnapshot, string(raw))
}

func (s *SQLiteStore) ClearSnapshot() error {
	return s.deleteSlot(keySnapshot)
}

// PrependResult puts a completed interview at the head of the history list,
// newest first.
func (s *SQLiteStore) PrependResult(result interview.Result) error {
	results, err := s.ListResults()
	if err != nil {
		return err
	}

	updated := append([]interview.Result{result}, results...)
	raw, err := json.Marshal(updated)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	return s.putSlot(keyHistory, string(raw))
}

func (s *SQLiteStore) ListResults() ([]interview.Result, error) {
	raw, ok, err := s.getSlot(keyHistory)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var results []interview.Result
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		return nil, nil
	}
	return results, nil
}

func (s *SQLiteStore) ClearHistory() error {
	return s.deleteSlot(keyHistory)
}

// RecordVisit bumps the visit counter once per client session: repeat calls
// with the session id already on record return the current count unchanged.
func (s *SQLiteStore) RecordVisit(sessionID string) (int, error) {
	active, _, err := s.getSlot(keySessionActive)
	if err != nil {
		return 0, err
	}

	count, err := s.VisitCount()
	if err != nil {
		return 0, err
	}

	if sessionID != "" && active == sessionID {
		return count, nil
	}

	count++
	if err := s.putSlot(keyVisitCount, strconv.Itoa(count)); err != nil {
		return 0, err
	}
	if sessionID != "" {
		if err := s.putSlot(keySessionActive, sessionID); err != nil {
			return 0, err
		}
	}
	return count, nil
}

func (s *SQLiteStore) VisitCount() (int, error) {
	raw, ok, err := s.getSlot(keyVisitCount)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}

	count, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, nil
	}
	return count, nil
}
