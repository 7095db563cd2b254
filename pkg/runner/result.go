package runner

import (
	"github.com/yaklabco/gosage/pkg/diagmap"
	"github.com/yaklabco/gosage/pkg/langdetect"
	"github.com/yaklabco/gosage/pkg/session"
	"github.com/yaklabco/gosage/pkg/source"
)

// FileOutcome is the check result for one file.
type FileOutcome struct {
	// Path is the file path that was processed.
	Path string

	// Dialect is the dialect the file was checked as.
	Dialect langdetect.Dialect

	// Text is the file content the report refers to.
	Text *source.Snapshot

	// Spans counts the rewritten spans, excluding passthrough.
	Spans int

	// Report holds the mapped diagnostics. It is empty when Error is set.
	Report session.Report

	// Error is set if the file could not be read.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	// FilesDiscovered is the total number of files found during discovery.
	FilesDiscovered int

	// FilesProcessed is the number of files successfully processed.
	FilesProcessed int

	// FilesErrored is the number of files that could not be read.
	FilesErrored int

	// FilesUnavailable is the number of files whose analysis failed.
	FilesUnavailable int

	// DiagnosticsTotal is the total number of diagnostics across all files.
	DiagnosticsTotal int

	// DiagnosticsDropped counts analyzer findings that could not be mapped.
	DiagnosticsDropped int

	// DiagnosticsBySeverity maps severity names to counts.
	DiagnosticsBySeverity map[string]int

	// FilesWithIssues is the number of files with at least one diagnostic.
	FilesWithIssues int
}

// Result is the overall runner result.
type Result struct {
	// Files contains the outcome for each processed file, ordered by path.
	Files []FileOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats
}

// HasFailures reports whether any diagnostics with error severity occurred.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.DiagnosticsBySeverity[diagmap.SeverityError.String()] > 0 || r.Stats.FilesErrored > 0
}

// HasIssues reports whether any diagnostics were found.
func (r *Result) HasIssues() bool {
	if r == nil {
		return false
	}
	return r.Stats.DiagnosticsTotal > 0
}

// newStats creates a new Stats with initialized maps.
func newStats() Stats {
	return Stats{
		DiagnosticsBySeverity: make(map[string]int),
	}
}

// accumulate updates the result with a file outcome.
func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}

	r.Stats.FilesProcessed++
	if outcome.Report.Unavailable != nil {
		r.Stats.FilesUnavailable++
	}

	diags := outcome.Report.Diagnostics
	r.Stats.DiagnosticsTotal += len(diags)
	r.Stats.DiagnosticsDropped += outcome.Report.Dropped
	if len(diags) > 0 {
		r.Stats.FilesWithIssues++
	}
	for _, d := range diags {
		r.Stats.DiagnosticsBySeverity[d.Severity.String()]++
	}
}
