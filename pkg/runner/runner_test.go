package runner_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yaklabco/gosage/pkg/diagmap"
	"github.com/yaklabco/gosage/pkg/external"
	"github.com/yaklabco/gosage/pkg/langdetect"
	"github.com/yaklabco/gosage/pkg/recognize"
	"github.com/yaklabco/gosage/pkg/runner"
	"github.com/yaklabco/gosage/pkg/session"
	"github.com/yaklabco/gosage/pkg/source"
	"github.com/yaklabco/gosage/pkg/sourcemap"
)

// powerAnalyzer reports every "**" in the text it is given.
type powerAnalyzer struct{}

func (powerAnalyzer) Analyze(_ context.Context, _ string, text []byte) ([]diagmap.Diagnostic, error) {
	var diags []diagmap.Diagnostic
	for i := 0; i+1 < len(text); i++ {
		if text[i] == '*' && text[i+1] == '*' {
			diags = append(diags, diagmap.Diagnostic{
				Range:    source.NewRange(i, i+2),
				Severity: diagmap.SeverityError,
				Code:     "POW",
				Message:  "power",
			})
			i++
		}
	}
	return diags, nil
}

type failingAnalyzer struct{}

func (failingAnalyzer) Analyze(context.Context, string, []byte) ([]diagmap.Diagnostic, error) {
	return nil, errors.New("ruff: not installed")
}

func newRunner(analyzer external.Analyzer) *runner.Runner {
	builder := sourcemap.NewBuilder(recognize.NewDefault(), "test", nil)
	return runner.New(session.NewStore(builder), &session.Pipeline{Analyzer: analyzer})
}

func TestRunner_Run_NoFiles(t *testing.T) {
	t.Parallel()

	result, err := newRunner(powerAnalyzer{}).Run(context.Background(), runner.Options{WorkingDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Stats.FilesDiscovered != 0 || len(result.Files) != 0 {
		t.Errorf("expected empty result, got %+v", result.Stats)
	}
	if result.HasIssues() || result.HasFailures() {
		t.Error("empty result should have no issues")
	}
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	dir := tree(t, map[string]string{
		"a.sage":     "x = 2^3\ny = x^^2\n",
		"b.sage":     "R.<t> = QQ[]\n",
		"c.sage":     "z = 1/2\n",
		"plain.sage": "print(1)\n",
	})

	result, err := newRunner(powerAnalyzer{}).Run(context.Background(), runner.Options{WorkingDir: dir, Jobs: 2})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Stats.FilesDiscovered != 4 || result.Stats.FilesProcessed != 4 {
		t.Fatalf("unexpected stats %+v", result.Stats)
	}
	if len(result.Files) != 4 || filepath.Base(result.Files[0].Path) != "a.sage" {
		t.Fatalf("files not in path order: %+v", result.Files)
	}

	a := result.Files[0]
	if a.Dialect != langdetect.Sage {
		t.Errorf("a.sage dialect = %s", a.Dialect)
	}
	if len(a.Report.Diagnostics) != 1 {
		t.Fatalf("a.sage diagnostics = %+v", a.Report.Diagnostics)
	}
	if got := a.Report.Diagnostics[0].Range; got != source.NewRange(5, 6) {
		t.Errorf("power diagnostic mapped to %v, want [5,6)", got)
	}
	if a.Spans != 2 {
		t.Errorf("a.sage spans = %d, want 2", a.Spans)
	}

	if result.Stats.DiagnosticsTotal != 1 || result.Stats.FilesWithIssues != 1 {
		t.Errorf("unexpected totals %+v", result.Stats)
	}
	if result.Stats.DiagnosticsBySeverity["error"] != 1 || !result.HasFailures() {
		t.Errorf("expected one error, got %v", result.Stats.DiagnosticsBySeverity)
	}
}

func TestRunner_Run_Unavailable(t *testing.T) {
	t.Parallel()

	dir := tree(t, map[string]string{"a.sage": "x = 1\n"})

	result, err := newRunner(failingAnalyzer{}).Run(context.Background(), runner.Options{WorkingDir: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Stats.FilesUnavailable != 1 {
		t.Fatalf("expected unavailable file, got %+v", result.Stats)
	}
	diags := result.Files[0].Report.Diagnostics
	if len(diags) != 1 || diags[0].Code != session.CodeAnalysisUnavailable {
		t.Errorf("unexpected diagnostics %+v", diags)
	}
	if result.HasFailures() {
		t.Error("an informational diagnostic is not a failure")
	}
}

func TestRunner_CheckFile_Unreadable(t *testing.T) {
	t.Parallel()

	outcome, err := newRunner(powerAnalyzer{}).CheckFile(context.Background(), filepath.Join(t.TempDir(), "gone.sage"))
	if err != nil {
		t.Fatalf("CheckFile() error = %v", err)
	}
	if outcome.Error == nil || !errors.Is(outcome.Error, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", outcome.Error)
	}
}

func TestRunner_Run_Cancelled(t *testing.T) {
	t.Parallel()

	dir := tree(t, map[string]string{"a.sage": "x = 1\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRunner(powerAnalyzer{}).Run(ctx, runner.Options{Paths: []string{filepath.Join(dir, "a.sage")}})
	if err == nil || !strings.Contains(err.Error(), "cancel") {
		t.Errorf("expected cancellation error, got %v", err)
	}
}

func TestFileURI(t *testing.T) {
	t.Parallel()

	uri := runner.FileURI("/work/my notes/ring.sage")
	if uri != "file:///work/my%20notes/ring.sage" {
		t.Errorf("FileURI() = %q", uri)
	}
	if got := session.PathFromURI(uri); got != filepath.FromSlash("/work/my notes/ring.sage") {
		t.Errorf("round trip = %q", got)
	}
}
