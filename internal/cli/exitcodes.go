package cli

import (
	"errors"

	"github.com/yaklabco/gosage/internal/lsp"
	"github.com/yaklabco/gosage/pkg/external"
	"github.com/yaklabco/gosage/pkg/fsutil"
	"github.com/yaklabco/gosage/pkg/runner"
)

// Exit codes for gosage.
const (
	// ExitSuccess indicates successful execution with no issues.
	ExitSuccess = 0

	// ExitIssues indicates check completed but found errors, or a language
	// server exited without a shutdown request.
	ExitIssues = 1

	// ExitWarnings indicates check completed with warnings in strict mode.
	ExitWarnings = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitUnavailable indicates a required external tool is missing.
	ExitUnavailable = 69

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

var (
	// ErrIssuesFound is returned when check reports error diagnostics.
	ErrIssuesFound = errors.New("issues found")

	// ErrWarningsFound is returned when check reports warnings in strict mode.
	ErrWarningsFound = errors.New("warnings found")

	// ErrUnreadable is returned when check could not read some files.
	ErrUnreadable = errors.New("unreadable files")

	// ErrUsage marks invalid arguments.
	ErrUsage = errors.New("invalid usage")
)

// ExitCodeFromResult determines the exit code based on result and strict mode.
func ExitCodeFromResult(result *runner.Result, strict bool) int {
	if result == nil {
		return ExitSuccess
	}

	errs := result.Stats.DiagnosticsBySeverity["error"]
	warnings := result.Stats.DiagnosticsBySeverity["warning"]

	switch {
	case errs > 0:
		return ExitIssues
	case result.Stats.FilesErrored > 0:
		return ExitIOError
	case strict && warnings > 0:
		return ExitWarnings
	}
	return ExitSuccess
}

// ExitCode maps an error returned by a command to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrIssuesFound), errors.Is(err, lsp.ErrExitWithoutShutdown):
		return ExitIssues
	case errors.Is(err, ErrWarningsFound):
		return ExitWarnings
	case errors.Is(err, ErrUsage):
		return ExitInvalidUsage
	case errors.Is(err, ErrConfig):
		return ExitConfigError
	case errors.Is(err, external.ErrUnavailable):
		return ExitUnavailable
	case errors.Is(err, ErrUnreadable), errors.Is(err, fsutil.ErrNotFound), errors.Is(err, fsutil.ErrPermissionDenied),
		errors.Is(err, fsutil.ErrIsDirectory), errors.Is(err, fsutil.ErrTooLarge):
		return ExitIOError
	}
	return ExitInternalError
}
