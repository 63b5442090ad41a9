// Package watch reloads commands whose sources change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matsen/cmdload/internal/lifecycle"
	"github.com/matsen/cmdload/internal/logging"
	"github.com/matsen/cmdload/internal/registry"
)

// DefaultDebounce is how long the watcher waits after the last change to a
// source before loading it. Editors often save in several writes.
const DefaultDebounce = 200 * time.Millisecond

// Loader loads a command name or lifecycle.AllTarget.
type Loader interface {
	Load(ctx context.Context, target string) (*lifecycle.LoadReport, error)
}

// ReportFunc receives the outcome of every load the watcher triggers.
type ReportFunc func(report *lifecycle.LoadReport, err error)

// Watcher watches the registry root and loads changed commands.
type Watcher struct {
	reg      *registry.Registry
	loader   Loader
	target   string
	debounce time.Duration
	report   ReportFunc
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a changed source is loaded.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithReport sets the function that receives load outcomes.
func WithReport(fn ReportFunc) Option {
	return func(w *Watcher) {
		w.report = fn
	}
}

// New creates a watcher for target, a command name or lifecycle.AllTarget.
func New(reg *registry.Registry, loader Loader, target string, opts ...Option) *Watcher {
	w := &Watcher{
		reg:      reg,
		loader:   loader,
		target:   target,
		debounce: DefaultDebounce,
		report:   func(*lifecycle.LoadReport, error) {},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run loads the target once, then watches until ctx is cancelled. A failed
// load is reported and watching continues; Run returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	if w.target != lifecycle.AllTarget {
		if err := registry.ValidateName(w.target); err != nil {
			return err
		}
	}
	if err := w.reg.EnsureLayout(); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.reg.Root()); err != nil {
		return fmt.Errorf("watching %s: %w", w.reg.Root(), err)
	}
	logging.Info().Str("root", w.reg.Root()).Str("target", w.target).Msg("watching")

	w.load(ctx, w.target)

	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			name, ok := w.commandName(ev.Name)
			if !ok {
				continue
			}
			logging.Debug().Str("command", name).Str("op", ev.Op.String()).Msg("source changed")
			pending[name] = true
			timer.Reset(w.debounce)

		case <-timer.C:
			names := make([]string, 0, len(pending))
			for name := range pending {
				names = append(names, name)
			}
			sort.Strings(names)
			clear(pending)
			for _, name := range names {
				w.load(ctx, name)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logging.Error().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) load(ctx context.Context, target string) {
	report, err := w.loader.Load(ctx, target)
	if errors.Is(err, registry.ErrCommandNotFound) {
		// Removed again before the debounce expired.
		logging.Debug().Str("command", target).Msg("source vanished")
		return
	}
	if ctx.Err() != nil {
		return
	}
	w.report(report, err)
}

// commandName maps a changed path to the command it belongs to, if it is a
// source artifact of a watched command.
func (w *Watcher) commandName(path string) (string, bool) {
	if filepath.Clean(filepath.Dir(path)) != filepath.Clean(w.reg.Root()) {
		return "", false
	}
	suffix := "." + w.reg.Layout().SourceExt
	base := filepath.Base(path)
	if !strings.HasSuffix(base, suffix) {
		return "", false
	}
	name := strings.TrimSuffix(base, suffix)
	if registry.ValidateName(name) != nil {
		return "", false
	}
	if w.target != lifecycle.AllTarget && name != w.target {
		return "", false
	}
	return name, true
}
