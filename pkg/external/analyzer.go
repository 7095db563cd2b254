package external

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/yaklabco/gosage/pkg/diagmap"
	"github.com/yaklabco/gosage/pkg/source"
)

// Analyzer reports diagnostics for Python text. Ranges are byte offsets into
// the text it was given.
type Analyzer interface {
	Analyze(ctx context.Context, path string, text []byte) ([]diagmap.Diagnostic, error)
}

// DefaultRuffCommand runs ruff's linter.
//
//nolint:gochecknoglobals // Read-only default.
var DefaultRuffCommand = []string{"ruff", "check"}

// SyntaxErrorCode is assigned to analyzer findings that carry no rule code.
const SyntaxErrorCode = "syntax-error"

// RuffAnalyzer feeds text to ruff on stdin and parses its JSON report.
type RuffAnalyzer struct {
	Tool *Tool

	// Severities maps rule codes or code prefixes to severities. The longest
	// matching prefix wins.
	Severities map[string]diagmap.Severity

	// DefaultSeverity applies to codes without an override.
	DefaultSeverity diagmap.Severity

	// IgnoreCodes are passed to ruff as --ignore.
	IgnoreCodes []string
}

// NewRuffAnalyzer creates an analyzer for tool. Ruff exits with status 1
// when it finds problems, so that status counts as success.
func NewRuffAnalyzer(tool *Tool, severities map[string]diagmap.Severity, def diagmap.Severity) *RuffAnalyzer {
	ruff := *tool
	ruff.OKCodes = append([]int{1}, tool.OKCodes...)
	if def == 0 {
		def = diagmap.SeverityWarning
	}
	return &RuffAnalyzer{Tool: &ruff, Severities: severities, DefaultSeverity: def}
}

type ruffLocation struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

type ruffMessage struct {
	Code        *string      `json:"code"`
	Message     string       `json:"message"`
	Location    ruffLocation `json:"location"`
	EndLocation ruffLocation `json:"end_location"`
}

// Analyze implements Analyzer.
func (a *RuffAnalyzer) Analyze(ctx context.Context, path string, text []byte) ([]diagmap.Diagnostic, error) {
	args := []string{
		"--output-format=json",
		"--no-cache",
		"--stdin-filename", stdinName(path),
	}
	if len(a.IgnoreCodes) > 0 {
		args = append(args, "--ignore", strings.Join(a.IgnoreCodes, ","))
	}
	args = append(args, "-")
	out, err := a.Tool.run(ctx, args, text)
	if err != nil {
		return nil, err
	}
	return a.parse(source.NewSnapshot(path, text), out.stdout)
}

// ParseReport converts ruff's JSON report for text into diagnostics.
func (a *RuffAnalyzer) ParseReport(text, report []byte) ([]diagmap.Diagnostic, error) {
	return a.parse(source.NewSnapshot("", text), report)
}

func (a *RuffAnalyzer) parse(snap *source.Snapshot, report []byte) ([]diagmap.Diagnostic, error) {
	var messages []ruffMessage
	if err := json.Unmarshal(report, &messages); err != nil {
		return nil, fmt.Errorf("parsing ruff report: %w", err)
	}

	diags := make([]diagmap.Diagnostic, 0, len(messages))
	for _, msg := range messages {
		start := snap.FromRuneColumn(msg.Location.Row, msg.Location.Column)
		end := snap.FromRuneColumn(msg.EndLocation.Row, msg.EndLocation.Column)
		end = max(start, end)

		code := SyntaxErrorCode
		severity := diagmap.SeverityError
		if msg.Code != nil && *msg.Code != "" {
			code = *msg.Code
			severity = a.severity(code)
		}
		diags = append(diags, diagmap.Diagnostic{
			Range:    source.NewRange(start, end),
			Severity: severity,
			Code:     code,
			Message:  msg.Message,
			Source:   "ruff",
		})
	}
	sort.SliceStable(diags, func(i, j int) bool {
		return diags[i].Range.Start < diags[j].Range.Start
	})
	return diags, nil
}

func (a *RuffAnalyzer) severity(code string) diagmap.Severity {
	best, bestLen := a.DefaultSeverity, -1
	for prefix, sev := range a.Severities {
		if strings.HasPrefix(code, prefix) && len(prefix) > bestLen {
			best, bestLen = sev, len(prefix)
		}
	}
	return best
}

// stdinName gives ruff a Python file name so it applies Python settings and
// per-file ignores for the document.
func stdinName(path string) string {
	if path == "" {
		return "document.py"
	}
	if strings.HasSuffix(path, ".py") {
		return path
	}
	return path + ".py"
}
