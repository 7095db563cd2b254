package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/gosage/pkg/runner"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "3 issues (1 error, 2 warnings) in 2 files, 1 dropped".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	if stats.DiagnosticsTotal == 0 {
		msg := s.Success.Render("No issues found") +
			s.Dim.Render(fmt.Sprintf(" (%d %s checked)", stats.FilesProcessed, plural(stats.FilesProcessed, wordFile, wordFiles)))
		if stats.FilesErrored > 0 {
			msg += ", " + s.Failure.Render(fmt.Sprintf("%d unreadable", stats.FilesErrored))
		}
		return msg + "\n"
	}

	var parts []string

	var severityParts []string
	if n := stats.DiagnosticsBySeverity["error"]; n > 0 {
		severityParts = append(severityParts, s.Error.Render(fmt.Sprintf("%d %s", n, plural(n, "error", "errors"))))
	}
	if n := stats.DiagnosticsBySeverity["warning"]; n > 0 {
		severityParts = append(severityParts, s.Warning.Render(fmt.Sprintf("%d %s", n, plural(n, "warning", "warnings"))))
	}
	if n := stats.DiagnosticsBySeverity["info"]; n > 0 {
		severityParts = append(severityParts, s.Info.Render(fmt.Sprintf("%d info", n)))
	}
	if n := stats.DiagnosticsBySeverity["hint"]; n > 0 {
		severityParts = append(severityParts, s.Hint.Render(fmt.Sprintf("%d %s", n, plural(n, "hint", "hints"))))
	}

	issueWord := plural(stats.DiagnosticsTotal, "issue", "issues")
	if len(severityParts) > 0 {
		parts = append(parts, fmt.Sprintf("%d %s (%s)", stats.DiagnosticsTotal, issueWord, strings.Join(severityParts, ", ")))
	} else {
		parts = append(parts, fmt.Sprintf("%d %s", stats.DiagnosticsTotal, issueWord))
	}

	parts = append(parts, fmt.Sprintf("in %d %s", stats.FilesWithIssues, plural(stats.FilesWithIssues, wordFile, wordFiles)))

	if stats.DiagnosticsDropped > 0 {
		parts = append(parts, s.Dim.Render(fmt.Sprintf("%d dropped", stats.DiagnosticsDropped)))
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, s.Failure.Render(fmt.Sprintf("%d unreadable", stats.FilesErrored)))
	}

	return strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	builder.WriteString("  Files checked:     " +
		s.SummaryValue.Render(strconv.Itoa(stats.FilesProcessed)) + "\n")

	if stats.FilesWithIssues > 0 {
		builder.WriteString("  Files with issues: " +
			s.Failure.Render(strconv.Itoa(stats.FilesWithIssues)) + "\n")
	}
	if stats.FilesUnavailable > 0 {
		builder.WriteString("  Not analyzed:      " +
			s.Warning.Render(strconv.Itoa(stats.FilesUnavailable)) + "\n")
	}
	if stats.FilesErrored > 0 {
		builder.WriteString("  Unreadable:        " +
			s.Failure.Render(strconv.Itoa(stats.FilesErrored)) + "\n")
	}

	builder.WriteString("\n")

	builder.WriteString("  Total issues:      " +
		s.SummaryValue.Render(strconv.Itoa(stats.DiagnosticsTotal)) + "\n")

	if n := stats.DiagnosticsBySeverity["error"]; n > 0 {
		builder.WriteString("    Errors:          " + s.Error.Render(strconv.Itoa(n)) + "\n")
	}
	if n := stats.DiagnosticsBySeverity["warning"]; n > 0 {
		builder.WriteString("    Warnings:        " + s.Warning.Render(strconv.Itoa(n)) + "\n")
	}
	if n := stats.DiagnosticsBySeverity["info"]; n > 0 {
		builder.WriteString("    Info:            " + s.Info.Render(strconv.Itoa(n)) + "\n")
	}
	if n := stats.DiagnosticsBySeverity["hint"]; n > 0 {
		builder.WriteString("    Hints:           " + s.Hint.Render(strconv.Itoa(n)) + "\n")
	}
	if stats.DiagnosticsDropped > 0 {
		builder.WriteString("    Dropped:         " +
			s.Dim.Render(strconv.Itoa(stats.DiagnosticsDropped)) + "\n")
	}

	builder.WriteString("\n")

	switch {
	case stats.DiagnosticsBySeverity["error"] > 0 || stats.FilesErrored > 0:
		builder.WriteString(s.Failure.Render("Check failed with errors"))
	case stats.DiagnosticsBySeverity["warning"] > 0:
		builder.WriteString(s.Warning.Render("Check completed with warnings"))
	default:
		builder.WriteString(s.Success.Render("Check passed"))
	}
	builder.WriteString("\n")

	return builder.String()
}
