// Package history keeps a SQLite ledger of compile attempts.
//
// The ledger is informational only. Rebuild decisions never consult it; they
// are made from file timestamps alone.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Status is the outcome of one compile attempt.
type Status string

const (
	StatusBuilt  Status = "built"
	StatusFailed Status = "failed"
)

// Entry is one compile attempt.
type Entry struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	ExitCode  int           `json:"exit_code"`
	LogID     string        `json:"log_id,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// DefaultLimit is used by Recent when limit is not positive.
const DefaultLimit = 20

// Open opens or creates the history database at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	// Another cmdload process may be recording at the same moment.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring history database: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS builds (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			exit_code INTEGER NOT NULL DEFAULT 0,
			log_id TEXT,
			started_at INTEGER NOT NULL,
			duration_ns INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_builds_name ON builds(name, started_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Record stores one compile attempt.
func (d *DB) Record(e Entry) error {
	_, err := d.db.Exec(
		`INSERT INTO builds (name, status, exit_code, log_id, started_at, duration_ns)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Name, string(e.Status), e.ExitCode, nullString(e.LogID),
		e.StartedAt.UnixNano(), int64(e.Duration),
	)
	if err != nil {
		return fmt.Errorf("recording build of %s: %w", e.Name, err)
	}
	return nil
}

// Recent returns up to limit attempts, newest first. An empty name returns
// attempts for every command.
func (d *DB) Recent(name string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := `SELECT id, name, status, exit_code, log_id, started_at, duration_ns FROM builds`
	args := []any{}
	if name != "" {
		query += ` WHERE name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY started_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			status    string
			logID     sql.NullString
			startedAt int64
			duration  int64
		)
		if err := rows.Scan(&e.ID, &e.Name, &status, &e.ExitCode, &logID, &startedAt, &duration); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		e.Status = Status(status)
		e.LogID = logID.String
		e.StartedAt = time.Unix(0, startedAt)
		e.Duration = time.Duration(duration)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return entries, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
