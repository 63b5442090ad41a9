package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/matsen/cmdload/internal/diaglog"
	"github.com/matsen/cmdload/internal/lifecycle"
	"github.com/matsen/cmdload/internal/registry"
)

func TestBuildMessage(t *testing.T) {
	tests := []struct {
		name string
		res  lifecycle.BuildResult
		want string
	}{
		{"built", lifecycle.BuildResult{Name: "greet", Status: lifecycle.StatusBuilt}, "Compiled greet"},
		{"up to date", lifecycle.BuildResult{Name: "greet", Status: lifecycle.StatusUpToDate}, "greet is up to date"},
		{
			"failed",
			lifecycle.BuildResult{Name: "greet", Status: lifecycle.StatusFailed, LogID: "abc"},
			"Failed to compile command greet. See 'cmdload showlogs abc'.",
		},
		{"error", lifecycle.BuildResult{Name: "greet", Status: lifecycle.StatusError, Error: "permission denied"}, "greet: permission denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildMessage(tt.res)
			if !strings.HasSuffix(got, tt.want) {
				t.Errorf("buildMessage() = %q, want suffix %q", got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{1500 * time.Millisecond, "1.5s"},
		{0, "0.0s"},
		{90 * time.Second, "1m 30s"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatTimeZero(t *testing.T) {
	if got := formatTime(time.Time{}); got != "-" {
		t.Errorf("formatTime(zero) = %q, want %q", got, "-")
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: greet", registry.ErrCommandNotFound), ExitNotFound},
		{fmt.Errorf("%w: abc", diaglog.ErrLogNotFound), ExitNotFound},
		{fmt.Errorf("%w: empty name", registry.ErrInvalidName), ExitError},
		{errors.New("boom"), ExitError},
	}

	for _, tt := range tests {
		if got := exitCodeFor(tt.err); got != tt.want {
			t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRequireArgs(t *testing.T) {
	validate := requireArgs(1, 2, "add <name> [url|path]")

	if err := validate(nil, []string{"greet"}); err != nil {
		t.Errorf("one arg: unexpected error %v", err)
	}

	for _, args := range [][]string{nil, {"a", "b", "c"}} {
		err := validate(nil, args)
		var usage *usageError
		if !errors.As(err, &usage) {
			t.Fatalf("args %v: got %v, want usageError", args, err)
		}
		if usage.msg != "Usage: cmdload add <name> [url|path]" {
			t.Errorf("args %v: message = %q", args, usage.msg)
		}
	}
}
