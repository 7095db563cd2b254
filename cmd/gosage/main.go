// Package main is the entry point for the gosage CLI.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/yaklabco/gosage/internal/cli"
	"github.com/yaklabco/gosage/internal/logging"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	err := rootCmd.ExecuteContext(logging.WithLogger(ctx, logging.Default()))
	if err != nil {
		// Findings are already reported; the error only selects the exit code.
		if !errors.Is(err, cli.ErrIssuesFound) && !errors.Is(err, cli.ErrWarningsFound) {
			logging.Default().Error("command failed", logging.FieldError, err)
		}
	}
	return cli.ExitCode(err)
}
