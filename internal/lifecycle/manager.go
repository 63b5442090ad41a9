// Package lifecycle implements the command operations (add, edit,
// load/reload, delete, showlogs and list) on top of the registry, the
// compiler and the diagnostics log.
//
// Every operation runs to completion synchronously. The only blocking points
// are the editor and the compiler subprocesses.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matsen/cmdload/internal/compiler"
	"github.com/matsen/cmdload/internal/diaglog"
	"github.com/matsen/cmdload/internal/editor"
	"github.com/matsen/cmdload/internal/fetch"
	"github.com/matsen/cmdload/internal/history"
	"github.com/matsen/cmdload/internal/logging"
	"github.com/matsen/cmdload/internal/registry"
)

// AllTarget selects every registered command in Load.
const AllTarget = "all"

// Compiler compiles one command.
type Compiler interface {
	Compile(ctx context.Context, job compiler.Job) error
}

// Editor opens a file and blocks until the user is done with it.
type Editor interface {
	Edit(ctx context.Context, path string) error
}

// Fetcher retrieves the initial content of a new command.
type Fetcher interface {
	Fetch(ctx context.Context, src fetch.Source, template []byte) ([]byte, error)
}

// Recorder stores compile attempts.
type Recorder interface {
	Record(e history.Entry) error
}

// Locker is an exclusive lock shared by every process using the registry.
type Locker interface {
	Lock() error
	Unlock() error
}

// Manager runs command operations against one registry.
type Manager struct {
	reg      *registry.Registry
	compiler Compiler
	diag     *diaglog.Logger
	editor   Editor
	fetcher  Fetcher
	template []byte
	recorder Recorder
	locker   Locker
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithEditor sets the editor used by Add and Edit.
func WithEditor(e Editor) Option {
	return func(m *Manager) {
		m.editor = e
	}
}

// WithFetcher sets the fetcher used by Add.
func WithFetcher(f Fetcher) Option {
	return func(m *Manager) {
		m.fetcher = f
	}
}

// WithTemplate sets the content of commands added without a source.
func WithTemplate(tmpl []byte) Option {
	return func(m *Manager) {
		m.template = tmpl
	}
}

// WithHistory records every compile attempt in r.
func WithHistory(r Recorder) Option {
	return func(m *Manager) {
		m.recorder = r
	}
}

// WithLock holds l around every stat-then-compile sequence and every delete.
func WithLock(l Locker) Option {
	return func(m *Manager) {
		m.locker = l
	}
}

// New creates a Manager. Diagnostics are written to the registry's logs
// directory. Without options the platform editor and an OS-backed fetcher are
// used, and nothing is recorded or locked.
func New(reg *registry.Registry, c Compiler, opts ...Option) *Manager {
	m := &Manager{
		reg:      reg,
		compiler: c,
		diag:     diaglog.New(reg.Fs(), reg.LogsDir()),
		editor:   editor.New(""),
		fetcher:  fetch.New(fetch.WithFs(reg.Fs())),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the registry the manager operates on.
func (m *Manager) Registry() *registry.Registry {
	return m.reg
}

// Diagnostics returns the diagnostics logger.
func (m *Manager) Diagnostics() *diaglog.Logger {
	return m.diag
}

// requireSource validates name and checks that its source exists.
func (m *Manager) requireSource(name string) error {
	if err := registry.ValidateName(name); err != nil {
		return err
	}
	ok, err := m.reg.HasSource(name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", registry.ErrCommandNotFound, name)
	}
	return nil
}

// build compiles name if it is stale, or unconditionally when force is set.
//
// Compile failures and per-command precondition errors are reported in the
// result. The returned error is reserved for conditions that must stop the
// whole operation: the compiler could not be started, the diagnostics could
// not be persisted, the lock failed or the context was cancelled.
func (m *Manager) build(ctx context.Context, name string, force bool) (BuildResult, error) {
	res := BuildResult{Name: name}

	if err := m.lock(); err != nil {
		res.fail(StatusError, err)
		return res, err
	}
	defer m.unlock()

	stale, err := m.reg.NeedsRebuild(name)
	if err != nil {
		res.fail(StatusError, err)
		return res, nil
	}
	if !stale && !force {
		res.Status = StatusUpToDate
		logging.Debug().Str("command", name).Msg("up to date")
		return res, nil
	}

	job := compiler.Job{
		Name:      name,
		Source:    m.reg.SourcePath(name),
		Output:    m.reg.BinaryPath(name),
		OutputDir: m.reg.Root(),
	}

	start := m.now()
	err = m.compiler.Compile(ctx, job)
	elapsed := m.now().Sub(start)

	var failure *compiler.Failure
	switch {
	case err == nil:
		res.Status = StatusBuilt
		m.record(history.Entry{Name: name, Status: history.StatusBuilt, StartedAt: start, Duration: elapsed})
		return res, nil

	case errors.As(err, &failure):
		id, logErr := m.diag.RecordFailure(name, failure.ExitCode, failure.Stderr)
		if logErr != nil {
			err = fmt.Errorf("saving diagnostics for %s: %w", name, logErr)
			res.fail(StatusError, err)
			return res, err
		}
		res.LogID = id
		res.fail(StatusFailed, failure)
		m.record(history.Entry{
			Name:      name,
			Status:    history.StatusFailed,
			ExitCode:  failure.ExitCode,
			LogID:     id,
			StartedAt: start,
			Duration:  elapsed,
		})
		return res, nil

	default:
		res.fail(StatusError, err)
		return res, err
	}
}

func (m *Manager) lock() error {
	if m.locker == nil {
		return nil
	}
	return m.locker.Lock()
}

func (m *Manager) unlock() {
	if m.locker == nil {
		return
	}
	if err := m.locker.Unlock(); err != nil {
		logging.Warn().Err(err).Msg("releasing registry lock")
	}
}

func (m *Manager) record(e history.Entry) {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.Record(e); err != nil {
		logging.Warn().Err(err).Str("command", e.Name).Msg("recording build history")
	}
}
