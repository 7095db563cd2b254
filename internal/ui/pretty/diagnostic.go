package pretty

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/gosage/pkg/diagmap"
	"github.com/yaklabco/gosage/pkg/source"
)

// Location resolves an offset in snap to a 1-based line and rune column.
func Location(snap *source.Snapshot, offset int) (int, int) {
	if snap == nil {
		return 0, 0
	}
	line, byteCol := snap.LineAt(offset)
	if line == 0 {
		return 0, 0
	}
	content := snap.LineContent(line)
	prefix := min(byteCol-1, len(content))
	return line, utf8.RuneCount(content[:prefix]) + 1
}

// FormatDiagnostic formats a single diagnostic for terminal output. Snap is
// the original document text the diagnostic's range refers to.
func (s *Styles) FormatDiagnostic(path string, snap *source.Snapshot, diag diagmap.Diagnostic, showContext bool) string {
	var builder strings.Builder

	line, col := Location(snap, diag.Range.Start)
	location := fmt.Sprintf("%s:%d:%d", s.FilePath.Render(path), line, col)

	code := diag.Code
	if diag.Source != "" && code != "" {
		code = diag.Source + "/" + code
	} else if code == "" {
		code = diag.Source
	}

	builder.WriteString(fmt.Sprintf("  %s  %s  %s",
		location,
		s.FormatSeverity(diag.Severity),
		s.Message.Render(diag.Message),
	))
	if code != "" {
		builder.WriteString("  " + s.Code.Render("("+code+")"))
	}
	builder.WriteString("\n")

	if showContext && snap != nil && line > 0 {
		builder.WriteString(s.FormatSourceContext(string(snap.LineContent(line)), col))
	}

	if note := originNote(diag.Origin); note != "" {
		builder.WriteString("    " + s.Origin.Render(note) + "\n")
	}

	return builder.String()
}

func originNote(origin diagmap.Origin) string {
	switch origin {
	case diagmap.OriginGenerated:
		return "reported on generated code for this declaration"
	case diagmap.OriginSynthetic:
		return "reported on inserted code"
	default:
		return ""
	}
}

// FormatSeverity returns a styled severity string.
func (s *Styles) FormatSeverity(sev diagmap.Severity) string {
	switch sev {
	case diagmap.SeverityError:
		return s.Error.Render("error")
	case diagmap.SeverityWarning:
		return s.Warning.Render("warning")
	case diagmap.SeverityInformation:
		return s.Info.Render("info")
	case diagmap.SeverityHint:
		return s.Hint.Render("hint")
	default:
		return sev.String()
	}
}

// FormatSourceContext formats the source line with a caret marker under
// the given 1-based rune column.
func (s *Styles) FormatSourceContext(line string, column int) string {
	var builder strings.Builder

	// Indent to align with diagnostic output
	const indent = "        "

	builder.WriteString(indent + s.SourceLine.Render(line) + "\n")

	if column > 0 {
		padding := indent + strings.Repeat(" ", column-1)
		builder.WriteString(padding + s.Caret.Render("^") + "\n")
	}

	return builder.String()
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, issueCount int) string {
	header := s.FilePath.Render(path)
	if issueCount > 0 {
		header += s.Dim.Render(fmt.Sprintf(" (%d issues)", issueCount))
	}
	return header
}
