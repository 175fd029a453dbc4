// Package duckdb records ingested samples into a DuckDB database so a
// session can be queried or exported after the device is gone.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

const schema = `
CREATE SEQUENCE IF NOT EXISTS samples_id_seq;
CREATE TABLE IF NOT EXISTS samples (
    id          BIGINT PRIMARY KEY DEFAULT nextval('samples_id_seq'),
    series      INTEGER NOT NULL,
    name        VARCHAR,
    time        DOUBLE NOT NULL,
    value       DOUBLE NOT NULL,
    received_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_samples_series ON samples(series);
`

// Store manages the DuckDB connection for one recording.
type Store struct {
	db           *sql.DB
	mu           sync.RWMutex
	dbPath       string
	QueryTimeout time.Duration
}

// NewStore opens or creates a recording database. An empty dbPath uses an
// in-memory database, useful for tests.
func NewStore(dbPath string, queryTimeout ...time.Duration) (*Store, error) {
	dsn := ""
	if dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("duckdb: creating db directory: %w", err)
		}
		dsn = dbPath
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("duckdb: open: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("duckdb: migrating schema: %w", err)
	}

	qt := 30 * time.Second
	if len(queryTimeout) > 0 && queryTimeout[0] > 0 {
		qt = queryTimeout[0]
	}

	return &Store{
		db:           db,
		dbPath:       dbPath,
		QueryTimeout: qt,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertSamples writes one batch inside a transaction.
func (s *Store) InsertSamples(rows []SampleRow) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("duckdb: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO samples (series, name, time, value, received_at) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("duckdb: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.Series, r.Name, r.Time, r.Value, r.ReceivedAt); err != nil {
			return fmt.Errorf("duckdb: insert sample: %w", err)
		}
	}

	return tx.Commit()
}
