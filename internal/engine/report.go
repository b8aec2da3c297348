package engine

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/surfacegen/pkg/core"
)

// FileStatus is the outcome of one file in a batch.
type FileStatus string

// File statuses.
const (
	// StatusUnchanged means the file already holds the generated output.
	StatusUnchanged FileStatus = "unchanged"
	// StatusUpdated means the file was rewritten.
	StatusUpdated FileStatus = "updated"
	// StatusWouldChange means check mode found the file out of date.
	StatusWouldChange FileStatus = "would-change"
	// StatusFailed means at least one class of the file failed. Failed classes
	// keep their existing regions; the other classes are still written.
	StatusFailed FileStatus = "failed"
	// StatusSkipped means the file was not selected for writing in this run.
	StatusSkipped FileStatus = "skipped"
)

// FileResult is the outcome of one source file.
type FileResult struct {
	Path    string     `json:"path" yaml:"path"`
	Status  FileStatus `json:"status" yaml:"status"`
	Classes []string   `json:"classes,omitempty" yaml:"classes,omitempty"`
	// Written lists every file touched on disk, including sidecars and
	// removed sidecars.
	Written     []string          `json:"written,omitempty" yaml:"written,omitempty"`
	Diagnostics []core.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Report is the outcome of one batch.
type Report struct {
	RunID    string        `json:"run_id" yaml:"run_id"`
	Mode     string        `json:"mode" yaml:"mode"`
	Check    bool          `json:"check" yaml:"check"`
	Started  time.Time     `json:"started" yaml:"started"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Files    []FileResult  `json:"files" yaml:"files"`
}

// Failed reports whether any file failed.
func (r *Report) Failed() bool {
	for _, f := range r.Files {
		if f.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Count returns the number of files with the given status.
func (r *Report) Count(status FileStatus) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}

// File returns the result for a path.
func (r *Report) File(path string) (FileResult, bool) {
	for _, f := range r.Files {
		if f.Path == path {
			return f, true
		}
	}
	return FileResult{}, false
}

// Diagnostics returns every diagnostic of the batch in file order.
func (r *Report) Diagnostics() []core.Diagnostic {
	var out []core.Diagnostic
	for _, f := range r.Files {
		out = append(out, f.Diagnostics...)
	}
	return out
}

// Summary returns a human-readable summary.
func (r *Report) Summary() string {
	if r.Check {
		return fmt.Sprintf("%d files: %d would change, %d unchanged, %d failed | Duration: %s",
			len(r.Files), r.Count(StatusWouldChange), r.Count(StatusUnchanged), r.Count(StatusFailed),
			r.Duration.Round(time.Millisecond))
	}
	return fmt.Sprintf("%d files: %d updated, %d unchanged, %d failed | Duration: %s",
		len(r.Files), r.Count(StatusUpdated), r.Count(StatusUnchanged), r.Count(StatusFailed),
		r.Duration.Round(time.Millisecond))
}
