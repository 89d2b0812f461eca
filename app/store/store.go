// Package store persists jobs, outsource records, accounts and the activity log in SQLite.
// Each entity type has its own table and its own set of methods, consumers declare the subset
// they need as an interface.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver
)

// ErrNotFound returned when a record is missing
var ErrNotFound = errors.New("not found")

// ErrDuplicate returned when a unique key is already taken
var ErrDuplicate = errors.New("already exists")

// SQLiteStore implements persistence using SQLite
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (creating if needed) the database and initializes the schema
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// single writer, avoids SQLITE_BUSY between concurrent handlers
	db.SetMaxOpenConns(1)

	// enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to set WAL mode: %w (also failed to close db: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initialize(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w (also failed to close db: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// initialize creates the database schema
func (s *SQLiteStore) initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			country_code TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			ic_number TEXT NOT NULL DEFAULT '',
			device TEXT NOT NULL DEFAULT '',
			device_type TEXT NOT NULL DEFAULT '',
			problem TEXT NOT NULL DEFAULT '',
			accessories TEXT NOT NULL DEFAULT '[]',
			status TEXT NOT NULL DEFAULT 'checking',
			assigned TEXT NOT NULL DEFAULT '',
			remark TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL DEFAULT 0,
			photo TEXT NOT NULL DEFAULT '',
			done_date INTEGER NOT NULL DEFAULT 0,
			pickup_deadline INTEGER NOT NULL DEFAULT 0,
			confiscation_date INTEGER NOT NULL DEFAULT 0,
			pickup_date INTEGER NOT NULL DEFAULT 0,
			notified_initial BOOLEAN NOT NULL DEFAULT 0,
			notified_final BOOLEAN NOT NULL DEFAULT 0,
			is_confiscated BOOLEAN NOT NULL DEFAULT 0,
			status_history TEXT NOT NULL DEFAULT '[]'
		)`,
		`CREATE TABLE IF NOT EXISTS counters (
			name TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS outsource (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			job_id TEXT NOT NULL DEFAULT '',
			customer TEXT NOT NULL DEFAULT '',
			device TEXT NOT NULL DEFAULT '',
			problem TEXT NOT NULL DEFAULT '',
			accessories TEXT NOT NULL DEFAULT '',
			job_date INTEGER NOT NULL DEFAULT 0,
			shop_name TEXT NOT NULL DEFAULT '',
			technician TEXT NOT NULL DEFAULT '',
			delivery_date INTEGER NOT NULL DEFAULT 0,
			received_date INTEGER NOT NULL DEFAULT 0,
			return_status TEXT NOT NULL DEFAULT 'Pending',
			cost TEXT NOT NULL DEFAULT '0',
			payment_status TEXT NOT NULL DEFAULT 'Unpaid',
			internal_notes TEXT NOT NULL DEFAULT '',
			photo_proof TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outsource_job_id ON outsource(job_id)`,
		`CREATE TABLE IF NOT EXISTS accounts (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL,
			registered_at INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS activity (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			action TEXT NOT NULL,
			actor TEXT NOT NULL DEFAULT '',
			ts INTEGER NOT NULL
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// unixMilli converts time to stored integer, zero time stored as 0
func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// fromUnixMilli converts stored integer back to UTC time, 0 is zero time
func fromUnixMilli(v int64) time.Time {
	if v <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(v).UTC()
}

// withTx runs fn in a transaction, commits if fn succeeded
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
