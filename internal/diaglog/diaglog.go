// Package diaglog persists compiler diagnostics for failed builds.
//
// Each failure gets its own file, <logs>/<uuid>.log, and the identifier is
// the only handle for retrieving it later. Records are never rewritten or
// pruned.
package diaglog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Ext is the file extension of log records.
const Ext = ".log"

// ErrLogNotFound is returned by Read for unknown or malformed identifiers.
var ErrLogNotFound = errors.New("log not found")

// Record describes one stored log.
type Record struct {
	ID      string    `json:"id"`
	Path    string    `json:"path"`
	Created time.Time `json:"created"`
}

// Logger writes and reads log records in a single directory.
type Logger struct {
	fs    afero.Fs
	dir   string
	newID func() string
}

// New creates a logger for dir.
func New(fs afero.Fs, dir string) *Logger {
	return &Logger{
		fs:    fs,
		dir:   dir,
		newID: func() string { return uuid.New().String() },
	}
}

// Dir returns the log directory.
func (l *Logger) Dir() string {
	return l.dir
}

// Path returns the file path for a log identifier.
func (l *Logger) Path(id string) string {
	return filepath.Join(l.dir, id+Ext)
}

// RecordFailure writes a new log record for a failed compilation and returns
// its identifier. Any error means the diagnostics were not persisted.
func (l *Logger) RecordFailure(name string, exitCode int, stderr string) (string, error) {
	if err := l.fs.MkdirAll(l.dir, 0755); err != nil {
		return "", fmt.Errorf("creating log directory: %w", err)
	}

	id := l.newID()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Failed to compile command %s (exit code %d):\n", name, exitCode)
	sb.WriteString(stderr)

	// O_EXCL so an identifier collision can never clobber an older record.
	f, err := l.fs.OpenFile(l.Path(id), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("creating log %s: %w", id, err)
	}
	if _, err := f.WriteString(sb.String()); err != nil {
		f.Close()
		return "", fmt.Errorf("writing log %s: %w", id, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("writing log %s: %w", id, err)
	}

	return id, nil
}

// Read returns the content of the log record id. A trailing ".log" is
// accepted. Identifiers that are not UUIDs are reported as not found.
func (l *Logger) Read(id string) (string, error) {
	id = strings.TrimSuffix(strings.TrimSpace(id), Ext)
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: %s", ErrLogNotFound, id)
	}

	data, err := afero.ReadFile(l.fs, l.Path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrLogNotFound, id)
		}
		return "", fmt.Errorf("reading log %s: %w", id, err)
	}
	return string(data), nil
}

// List returns all log records, newest first. A missing directory has no
// records.
func (l *Logger) List() ([]Record, error) {
	entries, err := afero.ReadDir(l.fs, l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading log directory: %w", err)
	}

	var records []Record
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Ext) {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), Ext)
		records = append(records, Record{
			ID:      id,
			Path:    filepath.Join(l.dir, entry.Name()),
			Created: entry.ModTime(),
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Created.After(records[j].Created)
	})
	return records, nil
}
