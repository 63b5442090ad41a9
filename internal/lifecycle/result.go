package lifecycle

import (
	"github.com/matsen/cmdload/internal/diaglog"
)

// BuildStatus is the outcome for one command in a build.
type BuildStatus string

const (
	StatusBuilt    BuildStatus = "built"
	StatusUpToDate BuildStatus = "up-to-date"
	StatusFailed   BuildStatus = "failed" // Compiler exited non-zero; LogID is set
	StatusError    BuildStatus = "error"  // The command could not be processed
)

// BuildResult is the outcome for one command.
type BuildResult struct {
	Name   string      `json:"name"`
	Status BuildStatus `json:"status"`
	LogID  string      `json:"log_id,omitempty"`
	Error  string      `json:"error,omitempty"`

	err error
}

// OK reports whether the command has an up-to-date binary.
func (r BuildResult) OK() bool {
	return r.Status == StatusBuilt || r.Status == StatusUpToDate
}

// Err returns the underlying error for failed and errored results.
func (r BuildResult) Err() error {
	return r.err
}

func (r *BuildResult) fail(status BuildStatus, err error) {
	r.Status = status
	r.err = err
	r.Error = err.Error()
}

// LoadReport aggregates the results of a load/reload.
type LoadReport struct {
	Target  string        `json:"target"`
	Results []BuildResult `json:"results"`
}

// OK reports whether every processed command ended up with a current binary.
func (r *LoadReport) OK() bool {
	for _, res := range r.Results {
		if !res.OK() {
			return false
		}
	}
	return true
}

// Count returns the number of results with the given status.
func (r *LoadReport) Count(status BuildStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Failed returns the results that did not end with a current binary.
func (r *LoadReport) Failed() []BuildResult {
	var failed []BuildResult
	for _, res := range r.Results {
		if !res.OK() {
			failed = append(failed, res)
		}
	}
	return failed
}

// AddResult describes a completed add.
type AddResult struct {
	Name        string      `json:"name"`
	Path        string      `json:"path"`
	Source      string      `json:"source"`
	Existed     bool        `json:"existed"`
	Overwritten bool        `json:"overwritten"`
	Build       BuildResult `json:"build"`
}

// DeleteResult describes a delete. Confirmed is false when the user declined.
type DeleteResult struct {
	Name          string `json:"name"`
	Confirmed     bool   `json:"confirmed"`
	SourceRemoved bool   `json:"source_removed"`
	BinaryRemoved bool   `json:"binary_removed"`
}

// LogsResult is either a directory listing (ID "0") or one log's content.
type LogsResult struct {
	ID      string           `json:"id"`
	Dir     string           `json:"dir,omitempty"`
	Records []diaglog.Record `json:"records,omitempty"`
	Content string           `json:"content,omitempty"`
}
