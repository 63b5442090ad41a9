// Package editor opens command sources in the user's editor.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"

	"github.com/matsen/cmdload/internal/logging"
	"mvdan.cc/sh/v3/shell"
)

// ErrLaunch is wrapped by every error that means the editor never ran.
var ErrLaunch = errors.New("launching editor")

// Launcher runs an editor command line on a file and waits for it to exit.
type Launcher struct {
	command string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithStreams connects the editor to the given streams instead of the
// process's own terminal.
func WithStreams(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(l *Launcher) {
		l.stdin = stdin
		l.stdout = stdout
		l.stderr = stderr
	}
}

// New creates a launcher for command, a shell-style command line such as
// "code --wait". An empty command selects Default().
func New(command string, opts ...Option) *Launcher {
	if command == "" {
		command = Default()
	}
	l := &Launcher{
		command: command,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Default returns the platform editor used when nothing is configured.
func Default() string {
	if runtime.GOOS == "windows" {
		return "notepad"
	}
	return "vi"
}

// Command returns the editor command line.
func (l *Launcher) Command() string {
	return l.command
}

// Edit opens path and blocks until the editor exits. A non-zero exit status
// is logged and otherwise ignored; only a failure to run the editor at all is
// returned.
func (l *Launcher) Edit(ctx context.Context, path string) error {
	argv, err := shell.Fields(l.command, os.Getenv)
	if err != nil {
		return fmt.Errorf("%w: parsing %q: %v", ErrLaunch, l.command, err)
	}
	if len(argv) == 0 {
		return fmt.Errorf("%w: empty editor command", ErrLaunch)
	}

	args := append(argv[1:], path)
	cmd := exec.CommandContext(ctx, argv[0], args...)
	cmd.Stdin = l.stdin
	cmd.Stdout = l.stdout
	cmd.Stderr = l.stderr

	logging.Debug().Str("editor", argv[0]).Str("path", path).Msg("opening editor")

	err = cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		logging.Warn().
			Str("editor", argv[0]).
			Int("exit_code", exitErr.ExitCode()).
			Msg("editor exited with non-zero status")
		return nil
	}

	return fmt.Errorf("%w %q: %v", ErrLaunch, argv[0], err)
}
