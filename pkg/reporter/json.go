package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/yaklabco/gosage/internal/ui/pretty"
	"github.com/yaklabco/gosage/pkg/diagmap"
	"github.com/yaklabco/gosage/pkg/runner"
	"github.com/yaklabco/gosage/pkg/source"
)

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string           `json:"version"`
	Files   []JSONFileResult `json:"files"`
	Summary JSONSummary      `json:"summary"`
}

// JSONFileResult represents a single file's results.
type JSONFileResult struct {
	Path        string           `json:"path"`
	Dialect     string           `json:"dialect,omitempty"`
	Spans       int              `json:"spans"`
	Diagnostics []JSONDiagnostic `json:"diagnostics"`
	Dropped     int              `json:"dropped,omitempty"`
	Unavailable string           `json:"unavailable,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// JSONDiagnostic represents a single diagnostic. Lines and columns are
// 1-based, columns count runes, offsets count bytes.
type JSONDiagnostic struct {
	Code        string `json:"code,omitempty"`
	Source      string `json:"source,omitempty"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	Origin      string `json:"origin,omitempty"`
	StartOffset int    `json:"startOffset"`
	EndOffset   int    `json:"endOffset"`
	StartLine   int    `json:"startLine"`
	StartColumn int    `json:"startColumn"`
	EndLine     int    `json:"endLine"`
	EndColumn   int    `json:"endColumn"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	FilesChecked     int            `json:"filesChecked"`
	FilesWithIssues  int            `json:"filesWithIssues"`
	FilesUnavailable int            `json:"filesUnavailable"`
	FilesErrored     int            `json:"filesErrored"`
	TotalIssues      int            `json:"totalIssues"`
	Dropped          int            `json:"dropped"`
	BySeverity       map[string]int `json:"bySeverity"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return output.Summary.TotalIssues, nil
}

func (r *JSONReporter) buildOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{
		Version: r.opts.Version,
		Files:   make([]JSONFileResult, 0),
		Summary: JSONSummary{BySeverity: make(map[string]int)},
	}

	if result == nil {
		return output
	}

	output.Files = make([]JSONFileResult, 0, len(result.Files))
	for _, file := range result.Files {
		fileResult := JSONFileResult{
			Path:        file.Path,
			Spans:       file.Spans,
			Diagnostics: make([]JSONDiagnostic, 0, len(file.Report.Diagnostics)),
			Dropped:     file.Report.Dropped,
		}
		if file.Dialect != "" {
			fileResult.Dialect = string(file.Dialect)
		}
		if file.Error != nil {
			fileResult.Error = file.Error.Error()
		}
		if file.Report.Unavailable != nil {
			fileResult.Unavailable = file.Report.Unavailable.Error()
		}

		for _, diag := range file.Report.Diagnostics {
			fileResult.Diagnostics = append(fileResult.Diagnostics, toJSONDiagnostic(file.Text, diag))
		}

		output.Files = append(output.Files, fileResult)
	}

	stats := result.Stats
	output.Summary.FilesChecked = stats.FilesProcessed
	output.Summary.FilesWithIssues = stats.FilesWithIssues
	output.Summary.FilesUnavailable = stats.FilesUnavailable
	output.Summary.FilesErrored = stats.FilesErrored
	output.Summary.TotalIssues = stats.DiagnosticsTotal
	output.Summary.Dropped = stats.DiagnosticsDropped
	maps.Copy(output.Summary.BySeverity, stats.DiagnosticsBySeverity)

	return output
}

func toJSONDiagnostic(snap *source.Snapshot, diag diagmap.Diagnostic) JSONDiagnostic {
	startLine, startCol := pretty.Location(snap, diag.Range.Start)
	endLine, endCol := pretty.Location(snap, diag.Range.End)
	return JSONDiagnostic{
		Code:        diag.Code,
		Source:      diag.Source,
		Severity:    diag.Severity.String(),
		Message:     diag.Message,
		Origin:      string(diag.Origin),
		StartOffset: diag.Range.Start,
		EndOffset:   diag.Range.End,
		StartLine:   startLine,
		StartColumn: startCol,
		EndLine:     endLine,
		EndColumn:   endCol,
	}
}
