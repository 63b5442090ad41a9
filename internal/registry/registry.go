// Package registry manages the on-disk command registry: one source file and
// one compiled binary per command name, plus the logs directory.
//
// The registry keeps no index. Every call re-derives state by listing and
// stating files, so a fresh process always sees what is actually on disk.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/matsen/cmdload/internal/config"
	"github.com/spf13/afero"
)

// Errors.
var (
	ErrCommandNotFound = errors.New("command not found")
	ErrInvalidName     = errors.New("invalid command name")
)

// reservedNames collide with CLI targets or registry subdirectories.
var reservedNames = map[string]bool{
	"all":           true,
	config.LogsDir:  true,
	config.StateDir: true,
}

// Layout describes how command names map to artifact file names.
type Layout struct {
	SourceExt string // Without the leading dot, e.g. "go"
	BinaryExt string // With the leading dot or empty, e.g. ".exe"
}

// Registry is a command registry rooted at a directory.
type Registry struct {
	fs     afero.Fs
	root   string
	layout Layout
}

// Status is a snapshot of one command's artifacts.
type Status struct {
	Name          string    `json:"name"`
	SourcePath    string    `json:"source"`
	BinaryPath    string    `json:"binary"`
	HasBinary     bool      `json:"has_binary"`
	Stale         bool      `json:"stale"`
	SourceModTime time.Time `json:"source_modified"`
	BinaryModTime time.Time `json:"binary_modified"`
}

// New returns a registry rooted at root. Nothing is created until
// EnsureLayout or WriteSource is called.
func New(fs afero.Fs, root string, layout Layout) *Registry {
	layout.SourceExt = strings.TrimPrefix(layout.SourceExt, ".")
	return &Registry{fs: fs, root: root, layout: layout}
}

// ValidateName checks that name can be used as a file stem in the registry.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	case strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, os.PathSeparator):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidName, name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidName, name)
	case reservedNames[name]:
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	}
	return nil
}

// Root returns the registry root directory.
func (r *Registry) Root() string {
	return r.root
}

// Layout returns the artifact naming layout.
func (r *Registry) Layout() Layout {
	return r.layout
}

// Fs returns the filesystem the registry operates on.
func (r *Registry) Fs() afero.Fs {
	return r.fs
}

// SourcePath returns <root>/<name>.<source-ext>.
func (r *Registry) SourcePath(name string) string {
	return filepath.Join(r.root, name+"."+r.layout.SourceExt)
}

// BinaryPath returns <root>/<name><binary-ext>.
func (r *Registry) BinaryPath(name string) string {
	return filepath.Join(r.root, name+r.layout.BinaryExt)
}

// LogsDir returns <root>/logs.
func (r *Registry) LogsDir() string {
	return config.LogsPath(r.root)
}

// EnsureLayout creates the registry root and its logs directory if absent.
func (r *Registry) EnsureLayout() error {
	if err := r.fs.MkdirAll(r.LogsDir(), 0755); err != nil {
		return fmt.Errorf("creating registry %s: %w", r.root, err)
	}
	return nil
}

// HasSource reports whether the command's source artifact exists.
func (r *Registry) HasSource(name string) (bool, error) {
	ok, err := afero.Exists(r.fs, r.SourcePath(name))
	if err != nil {
		return false, fmt.Errorf("checking source for %s: %w", name, err)
	}
	return ok, nil
}

// Names returns the sorted names of all commands with a source artifact.
// A registry root that does not exist yet has no commands.
func (r *Registry) Names() ([]string, error) {
	entries, err := afero.ReadDir(r.fs, r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading registry %s: %w", r.root, err)
	}

	suffix := "." + r.layout.SourceExt
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), suffix)
		if ValidateName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// WriteSource writes the command's source artifact, creating the registry
// layout first.
func (r *Registry) WriteSource(name string, data []byte) error {
	if err := r.EnsureLayout(); err != nil {
		return err
	}
	if err := afero.WriteFile(r.fs, r.SourcePath(name), data, 0644); err != nil {
		return fmt.Errorf("writing source for %s: %w", name, err)
	}
	return nil
}

// RemoveSource deletes the source artifact. A missing file is not an error;
// removed reports whether a file was actually deleted.
func (r *Registry) RemoveSource(name string) (removed bool, err error) {
	return r.remove(r.SourcePath(name))
}

// RemoveBinary deletes the binary artifact. A missing file is not an error.
func (r *Registry) RemoveBinary(name string) (removed bool, err error) {
	return r.remove(r.BinaryPath(name))
}

func (r *Registry) remove(path string) (bool, error) {
	if err := r.fs.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("removing %s: %w", path, err)
	}
	return true, nil
}

// Stat returns a snapshot of the command's artifacts.
// Returns ErrCommandNotFound if the source artifact does not exist.
func (r *Registry) Stat(name string) (*Status, error) {
	src, err := r.statSource(name)
	if err != nil {
		return nil, err
	}

	st := &Status{
		Name:          name,
		SourcePath:    r.SourcePath(name),
		BinaryPath:    r.BinaryPath(name),
		SourceModTime: src.ModTime(),
		Stale:         true,
	}

	bin, err := r.fs.Stat(st.BinaryPath)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return nil, fmt.Errorf("checking binary for %s: %w", name, err)
	}
	st.HasBinary = true
	st.BinaryModTime = bin.ModTime()
	st.Stale = isStale(src, bin)
	return st, nil
}

func (r *Registry) statSource(name string) (os.FileInfo, error) {
	info, err := r.fs.Stat(r.SourcePath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrCommandNotFound, name)
		}
		return nil, fmt.Errorf("checking source for %s: %w", name, err)
	}
	return info, nil
}
