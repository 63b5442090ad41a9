package lifecycle

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/matsen/cmdload/internal/diaglog"
	"github.com/matsen/cmdload/internal/fetch"
	"github.com/matsen/cmdload/internal/logging"
	"github.com/matsen/cmdload/internal/registry"
)

// LogsDirID asks ShowLogs for the logs directory instead of one log.
const LogsDirID = "0"

// Errors.
var (
	ErrConfirmationRequired = errors.New("delete requires confirmation or force")
	ErrInvalidPattern       = errors.New("invalid pattern")
)

// AddOptions controls Add.
type AddOptions struct {
	// NoEdit skips the editor and compiles the fetched content as is.
	NoEdit bool
}

// Add creates a command from src, opens it in the editor and compiles it.
//
// Content is fetched before anything is written, so a failed fetch leaves no
// trace. An existing source is kept when src is the template and overwritten
// otherwise. A compile failure is reported in the result's Build field; the
// command stays registered either way.
func (m *Manager) Add(ctx context.Context, name string, src fetch.Source, opts AddOptions) (*AddResult, error) {
	if err := registry.ValidateName(name); err != nil {
		return nil, err
	}
	existed, err := m.reg.HasSource(name)
	if err != nil {
		return nil, err
	}
	if err := m.reg.EnsureLayout(); err != nil {
		return nil, err
	}

	result := &AddResult{
		Name:    name,
		Path:    m.reg.SourcePath(name),
		Source:  src.String(),
		Existed: existed,
	}

	if existed && src.Kind == fetch.Template {
		logging.Info().Str("command", name).Msg("source exists, keeping its content")
	} else {
		data, err := m.fetcher.Fetch(ctx, src, m.template)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", name, err)
		}
		if err := m.reg.WriteSource(name, data); err != nil {
			return nil, err
		}
		result.Overwritten = existed
	}

	if !opts.NoEdit {
		if err := m.editor.Edit(ctx, result.Path); err != nil {
			return result, fmt.Errorf("editing %s: %w", name, err)
		}
	}

	build, err := m.build(ctx, name, true)
	result.Build = build
	if err != nil {
		return result, fmt.Errorf("compiling %s: %w", name, err)
	}
	return result, nil
}

// Edit opens an existing command in the editor and recompiles it, whether or
// not the file changed.
func (m *Manager) Edit(ctx context.Context, name string) (*BuildResult, error) {
	if err := m.requireSource(name); err != nil {
		return nil, err
	}
	if err := m.editor.Edit(ctx, m.reg.SourcePath(name)); err != nil {
		return nil, fmt.Errorf("editing %s: %w", name, err)
	}

	res, err := m.build(ctx, name, true)
	if err != nil {
		return &res, fmt.Errorf("compiling %s: %w", name, err)
	}
	return &res, nil
}

// Load rebuilds target if stale. Target is a command name or AllTarget.
//
// With AllTarget every command is attempted; a failure in one never prevents
// the others from being processed. The report lists each command's outcome.
// An error is returned only when the batch could not run at all or had to
// stop early; the report then holds what was processed so far.
func (m *Manager) Load(ctx context.Context, target string) (*LoadReport, error) {
	var names []string
	if target == AllTarget {
		if err := m.reg.EnsureLayout(); err != nil {
			return nil, err
		}
		all, err := m.reg.Names()
		if err != nil {
			return nil, err
		}
		names = all
	} else {
		if err := m.requireSource(target); err != nil {
			return nil, err
		}
		names = []string{target}
	}

	report := &LoadReport{Target: target, Results: make([]BuildResult, 0, len(names))}
	for _, name := range names {
		res, err := m.build(ctx, name, false)
		report.Results = append(report.Results, res)
		if err != nil {
			return report, fmt.Errorf("loading %s: %w", name, err)
		}
		if res.Status == StatusError {
			logging.Warn().Err(res.Err()).Str("command", name).Msg("skipping command")
		}
	}
	return report, nil
}

// DeleteOptions controls Delete.
type DeleteOptions struct {
	// Force deletes without asking.
	Force bool

	// Confirm is asked before deleting when Force is unset.
	Confirm func(prompt string) (bool, error)
}

// Delete removes a command's source and binary after confirmation.
//
// Removal is best-effort: either artifact may already be missing, and a
// failure to remove one does not stop removal of the other.
func (m *Manager) Delete(ctx context.Context, name string, opts DeleteOptions) (*DeleteResult, error) {
	if err := registry.ValidateName(name); err != nil {
		return nil, err
	}
	result := &DeleteResult{Name: name}

	if !opts.Force {
		if opts.Confirm == nil {
			return nil, ErrConfirmationRequired
		}
		ok, err := opts.Confirm(fmt.Sprintf("Are you sure you want to delete the command '%s'? (y/N): ", name))
		if err != nil {
			return nil, fmt.Errorf("reading confirmation: %w", err)
		}
		if !ok {
			return result, nil
		}
	}
	result.Confirmed = true

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if err := m.lock(); err != nil {
		return result, err
	}
	defer m.unlock()

	var srcErr, binErr error
	result.SourceRemoved, srcErr = m.reg.RemoveSource(name)
	result.BinaryRemoved, binErr = m.reg.RemoveBinary(name)
	if !result.SourceRemoved && !result.BinaryRemoved && srcErr == nil && binErr == nil {
		logging.Info().Str("command", name).Msg("nothing to delete")
	}
	return result, errors.Join(srcErr, binErr)
}

// IsConfirmation reports whether answer confirms a prompt. Only "y", in
// either case and ignoring surrounding whitespace, does.
func IsConfirmation(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}

// PromptConfirm returns a Confirm func that writes the prompt to out and
// reads one line from in. End of input declines.
func PromptConfirm(in io.Reader, out io.Writer) func(string) (bool, error) {
	reader := bufio.NewReader(in)
	return func(prompt string) (bool, error) {
		fmt.Fprint(out, prompt)
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		return IsConfirmation(line), nil
	}
}

// ShowLogs returns the logs directory and its records for LogsDirID, or the
// content of the log with the given id.
func (m *Manager) ShowLogs(id string) (*LogsResult, error) {
	id = strings.TrimSpace(id)
	if id == LogsDirID {
		records, err := m.diag.List()
		if err != nil {
			return nil, err
		}
		return &LogsResult{ID: id, Dir: m.diag.Dir(), Records: records}, nil
	}

	content, err := m.diag.Read(id)
	if err != nil {
		return nil, err
	}
	return &LogsResult{ID: strings.TrimSuffix(id, diaglog.Ext), Content: content}, nil
}

// List returns the status of every command whose name matches pattern.
// An empty pattern matches everything.
func (m *Manager) List(pattern string) ([]*registry.Status, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}

	names, err := m.reg.Names()
	if err != nil {
		return nil, err
	}

	var statuses []*registry.Status
	for _, name := range names {
		if pattern != "" {
			ok, _ := doublestar.Match(pattern, name)
			if !ok {
				continue
			}
		}
		st, err := m.reg.Stat(name)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}
