// Package compiler runs the external compiler for a single command source.
//
// The compiler is described by a shell-style command line in which $SRC,
// $OUT, $OUTDIR and $NAME expand to the job being compiled. The invoker
// trusts the compiler's exit status: it neither parses diagnostics nor
// checks that a binary was produced.
package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/matsen/cmdload/internal/logging"
	"mvdan.cc/sh/v3/shell"
)

// Job describes one compilation.
type Job struct {
	Name      string // Command name
	Source    string // Absolute path to the source artifact
	Output    string // Absolute path the binary is expected at
	OutputDir string // Directory the compiler runs in and writes to
}

// Failure is returned when the compiler ran and exited non-zero.
type Failure struct {
	Name     string
	ExitCode int
	Stderr   string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("compiling %s: exit status %d", f.Name, f.ExitCode)
}

// StartError is returned when the compiler could not be started at all,
// which indicates a misconfigured environment rather than a bad snippet.
type StartError struct {
	Command string
	Err     error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("starting compiler %q: %v", e.Command, e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}

// ErrEmptyCommand is wrapped by StartError when the command line has no words.
var ErrEmptyCommand = errors.New("empty compiler command")

// Invoker runs a configured compiler command line.
type Invoker struct {
	command string
}

// NewInvoker creates an invoker for the given command line.
func NewInvoker(command string) *Invoker {
	return &Invoker{command: command}
}

// Command returns the unexpanded command line.
func (i *Invoker) Command() string {
	return i.command
}

// Argv expands the command line for job. $SRC, $OUT, $OUTDIR and $NAME come
// from the job; any other variable is read from the environment.
func (i *Invoker) Argv(job Job) ([]string, error) {
	argv, err := shell.Fields(i.command, func(name string) string {
		switch name {
		case "SRC":
			return job.Source
		case "OUT":
			return job.Output
		case "OUTDIR":
			return job.OutputDir
		case "NAME":
			return job.Name
		default:
			return os.Getenv(name)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("parsing compiler command: %w", err)
	}
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}
	return argv, nil
}

// Compile runs the compiler for job and blocks until it exits.
// Returns nil on exit code zero, *Failure on a non-zero exit and
// *StartError if the compiler could not be run.
func (i *Invoker) Compile(ctx context.Context, job Job) error {
	argv, err := i.Argv(job)
	if err != nil {
		return &StartError{Command: i.command, Err: err}
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = job.OutputDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logging.Debug().
		Str("command", job.Name).
		Str("argv", strings.Join(argv, " ")).
		Msg("compiling")

	start := time.Now()
	err = cmd.Run()
	elapsed := time.Since(start)

	if err == nil {
		logging.Debug().Str("command", job.Name).Dur("duration", elapsed).Msg("compiled")
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("compiling %s: %w", job.Name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		logging.Debug().
			Str("command", job.Name).
			Int("exit_code", exitErr.ExitCode()).
			Dur("duration", elapsed).
			Msg("compile failed")
		return &Failure{
			Name:     job.Name,
			ExitCode: exitErr.ExitCode(),
			Stderr:   stderr.String(),
		}
	}

	return &StartError{Command: argv[0], Err: err}
}
