package collector

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // CGO-free SQLite

	scout "github.com/scoutlabs/scout-go"
)

// Store persists tracking envelopes and error reports in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at the given path.
func NewStore(databasePath string) (*Store, error) {
	// WAL + busy timeout to avoid "database is locked"
	db, err := sql.Open("sqlite", databasePath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS envelopes(
	  id          TEXT PRIMARY KEY,
	  browser_id  TEXT    NOT NULL,
	  session_id  TEXT    NOT NULL,
	  view_count  INTEGER NOT NULL,
	  ts          INTEGER NOT NULL,
	  received_at INTEGER NOT NULL,
	  events_json TEXT    NOT NULL CHECK (json_valid(events_json))
	);
	CREATE INDEX IF NOT EXISTS idx_envelopes_browser ON envelopes(browser_id);
	CREATE INDEX IF NOT EXISTS idx_envelopes_ts      ON envelopes(ts);
	CREATE TABLE IF NOT EXISTS error_reports(
	  id          TEXT PRIMARY KEY,
	  msg         TEXT NOT NULL,
	  stack       TEXT,
	  received_at INTEGER NOT NULL
	);
	`)
	if err != nil {
		return fmt.Errorf("failed to create database tables: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ValidateEnvelope rejects envelopes that cannot have come from the agent.
func (s *Store) ValidateEnvelope(envelope scout.Envelope) error {
	if envelope.BrowserID == "" {
		return fmt.Errorf("browserID cannot be empty")
	}
	if envelope.SessionID == "" {
		return fmt.Errorf("sessionID cannot be empty")
	}
	if len(envelope.Events) == 0 {
		return fmt.Errorf("envelope carries no events")
	}
	if envelope.TS <= 0 {
		return fmt.Errorf("timestamp must be positive")
	}
	return nil
}

// InsertEnvelope stores one envelope in a single transaction and returns
// the receipt id assigned to it.
func (s *Store) InsertEnvelope(envelope scout.Envelope, receivedAt time.Time) (string, error) {
	if err := s.ValidateEnvelope(envelope); err != nil {
		return "", fmt.Errorf("invalid envelope: %w", err)
	}
	eventsJSON, err := json.Marshal(envelope.Events)
	if err != nil {
		return "", fmt.Errorf("failed to marshal events: %w", err)
	}

	transaction, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	id := uuid.NewString()
	_, err = transaction.Exec(
		`INSERT INTO envelopes(id, browser_id, session_id, view_count, ts, received_at, events_json) VALUES(?,?,?,?,?,?,json(?))`,
		id, envelope.BrowserID, envelope.SessionID, envelope.SessionViewCount, envelope.TS, receivedAt.UnixMilli(), string(eventsJSON),
	)
	if err != nil {
		_ = transaction.Rollback()
		return "", fmt.Errorf("failed to insert envelope: %w", err)
	}
	if err := transaction.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

// InsertErrorReport stores one error report and returns its receipt id.
func (s *Store) InsertErrorReport(msg, stack string, receivedAt time.Time) (string, error) {
	if msg == "" {
		return "", fmt.Errorf("msg cannot be empty")
	}
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO error_reports(id, msg, stack, received_at) VALUES(?,?,?,?)`,
		id, msg, stack, receivedAt.UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert error report: %w", err)
	}
	return id, nil
}

// EnvelopeCount returns the number of stored envelopes.
func (s *Store) EnvelopeCount() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM envelopes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count envelopes: %w", err)
	}
	return count, nil
}

// ErrorReportCount returns the number of stored error reports.
func (s *Store) ErrorReportCount() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM error_reports`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count error reports: %w", err)
	}
	return count, nil
}
