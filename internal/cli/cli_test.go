package cli_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/yaklabco/gosage/internal/cli"
	"github.com/yaklabco/gosage/internal/lsp"
	"github.com/yaklabco/gosage/pkg/external"
	"github.com/yaklabco/gosage/pkg/fsutil"
	"github.com/yaklabco/gosage/pkg/runner"
)

func testInfo() cli.BuildInfo {
	return cli.BuildInfo{
		Version: "test",
		Commit:  "test",
		Date:    "test",
	}
}

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())

	if cmd == nil {
		t.Fatal("NewRootCommand returned nil")
	}

	if cmd.Use != "gosage" {
		t.Errorf("expected Use to be 'gosage', got %q", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	if cmd.Long == "" {
		t.Error("expected Long description to be set")
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())

	expectedSubcommands := []string{
		"serve", "check", "convert", "spans", "complete", "rules", "doctor", "init", "version",
	}

	for _, name := range expectedSubcommands {
		subCmd, _, err := cmd.Find([]string{name})
		if err != nil {
			t.Errorf("expected subcommand %q to exist, got error: %v", name, err)
			continue
		}

		if subCmd.Name() != name {
			t.Errorf("expected subcommand name %q, got %q", name, subCmd.Name())
		}
	}
}

func TestCheckCommandFlags(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	checkCmd, _, err := cmd.Find([]string{"check"})
	if err != nil {
		t.Fatalf("check command not found: %v", err)
	}

	expectedFlags := []string{
		"format",
		"jobs",
		"dialect",
		"ignore",
		"ext",
		"no-gitignore",
		"strict",
		"no-context",
		"compact",
		"no-prelude",
	}

	for _, flagName := range expectedFlags {
		flag := checkCmd.Flags().Lookup(flagName)
		if flag == nil {
			t.Errorf("expected flag %q to exist on check command", flagName)
		}
	}
}

func TestServeCommandFlags(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	serveCmd, _, err := cmd.Find([]string{"serve"})
	if err != nil {
		t.Fatalf("serve command not found: %v", err)
	}

	for _, flagName := range []string{"stdio", "no-watch"} {
		if serveCmd.Flags().Lookup(flagName) == nil {
			t.Errorf("expected flag %q to exist on serve command", flagName)
		}
	}
}

func TestGlobalFlags(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())

	expectedFlags := []string{"debug", "config", "color"}

	for _, flagName := range expectedFlags {
		flag := cmd.PersistentFlags().Lookup(flagName)
		if flag == nil {
			t.Errorf("expected global flag %q to exist", flagName)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	info := cli.BuildInfo{
		Version: "1.2.3",
		Commit:  "abc123",
		Date:    "2024-01-01",
	}

	cmd := cli.NewRootCommand(info)
	cmd.SetArgs([]string{"version"})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	if !bytes.Contains(out.Bytes(), []byte("1.2.3")) {
		t.Errorf("expected version in output, got %q", out.String())
	}
}

func TestCheckCommandAcceptsArbitraryArgs(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	checkCmd, _, err := cmd.Find([]string{"check"})
	if err != nil {
		t.Fatalf("check command not found: %v", err)
	}

	err = checkCmd.Args(checkCmd, []string{"rings.sage", "algebra/", "script.py"})
	if err != nil {
		t.Errorf("check command should accept arbitrary args, got error: %v", err)
	}
}

func TestExitCodeFromResult(t *testing.T) {
	t.Parallel()

	withCounts := func(errs, warnings, unreadable int) *runner.Result {
		return &runner.Result{Stats: runner.Stats{
			FilesErrored:          unreadable,
			DiagnosticsBySeverity: map[string]int{"error": errs, "warning": warnings},
		}}
	}

	tests := []struct {
		name   string
		result *runner.Result
		strict bool
		want   int
	}{
		{"nil result", nil, false, cli.ExitSuccess},
		{"clean", withCounts(0, 0, 0), true, cli.ExitSuccess},
		{"errors", withCounts(2, 1, 0), false, cli.ExitIssues},
		{"warnings", withCounts(0, 3, 0), false, cli.ExitSuccess},
		{"warnings strict", withCounts(0, 3, 0), true, cli.ExitWarnings},
		{"unreadable", withCounts(0, 0, 1), false, cli.ExitIOError},
		{"errors beat unreadable", withCounts(1, 0, 1), false, cli.ExitIssues},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := cli.ExitCodeFromResult(tt.result, tt.strict); got != tt.want {
				t.Errorf("ExitCodeFromResult() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, cli.ExitSuccess},
		{"issues", cli.ErrIssuesFound, cli.ExitIssues},
		{"exit without shutdown", fmt.Errorf("language server: %w", lsp.ErrExitWithoutShutdown), cli.ExitIssues},
		{"warnings", cli.ErrWarningsFound, cli.ExitWarnings},
		{"usage", fmt.Errorf("%w: bad flag", cli.ErrUsage), cli.ExitInvalidUsage},
		{"config", errors.Join(cli.ErrConfig, errors.New("bad yaml")), cli.ExitConfigError},
		{"tool missing", fmt.Errorf("%w: ruff not found", external.ErrUnavailable), cli.ExitUnavailable},
		{"file missing", fmt.Errorf("%w: x.sage", fsutil.ErrNotFound), cli.ExitIOError},
		{"unreadable", cli.ErrUnreadable, cli.ExitIOError},
		{"other", errors.New("boom"), cli.ExitInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := cli.ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
