package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gosage/internal/logging"
	"github.com/yaklabco/gosage/pkg/config"
	"github.com/yaklabco/gosage/pkg/reporter"
	"github.com/yaklabco/gosage/pkg/runner"
)

type checkFlags struct {
	format      string
	dialect     string
	ignore      []string
	extensions  []string
	noGitignore bool
	strict      bool
	noContext   bool
	compact     bool
	noPrelude   bool
}

func newCheckCommand(info BuildInfo) *cobra.Command {
	var cfg config.Config
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Analyze Sage files and report findings on the original text",
		Long:  checkLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, &cfg, flags, info)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json, sarif")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringVar(&flags.dialect, "dialect", "", "treat files as: auto, sage, python")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringSliceVar(&flags.extensions, "ext", nil, "file extensions to check (default .sage)")
	cmd.Flags().BoolVar(&flags.noGitignore, "no-gitignore", false, "do not honor .gitignore files")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "treat warnings as errors for exit code")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source line context in output")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact output format")
	cmd.Flags().BoolVar(&flags.noPrelude, "no-prelude", false, "do not insert the sage.all import")

	return cmd
}

const checkLongDescription = `Rewrite Sage files to Python, run the configured analyzer on the
result and report its findings at their positions in the Sage text.

By default, checks all .sage files in the current directory and its
subdirectories, honoring .gitignore.

Examples:
  gosage check                       # Check the current directory
  gosage check src/ rings.sage       # Check specific paths
  gosage check --format sarif        # SARIF for code scanning
  gosage check --ext .sage,.py       # Include Python files
  gosage check --strict              # Fail on warnings too`

func runCheck(cmd *cobra.Command, args []string, cfg *config.Config, flags *checkFlags, info BuildInfo) error {
	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	format, err := reporter.ParseFormat(flags.format)
	if err != nil {
		return errors.Join(ErrUsage, err)
	}
	cfg.Format = config.OutputFormat(format)
	cfg.Dialect = flags.dialect
	cfg.Ignore = flags.ignore
	if flags.noPrelude {
		cfg.Prelude = config.Bool(false)
	}

	loaded, err := loadConfig(cmd, cfg)
	if err != nil {
		return err
	}
	finalCfg := loaded.Config

	comps, err := buildComponents(finalCfg)
	if err != nil {
		return err
	}
	defer comps.close()

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	runOpts := runner.Options{
		Paths:        args,
		WorkingDir:   workDir,
		Extensions:   flags.extensions,
		ExcludeGlobs: finalCfg.Ignore,
		NoGitignore:  flags.noGitignore,
		Jobs:         finalCfg.Jobs,
	}
	logger.Debug("starting check",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
		"jobs", runOpts.Jobs,
	)

	result, err := runner.New(comps.store, comps.pipeline).Run(ctx, runOpts)
	if err != nil {
		return errors.Join(errors.New("check run failed"), err)
	}
	logger.Debug("check finished",
		logging.FieldFilesProcessed, result.Stats.FilesProcessed,
		logging.FieldFilesWithIssues, result.Stats.FilesWithIssues,
		logging.FieldDiagnosticsTotal, result.Stats.DiagnosticsTotal,
	)

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		Format:      format,
		Color:       colorMode(cmd),
		ShowContext: !flags.noContext,
		ShowSummary: true,
		GroupByFile: true,
		Compact:     flags.compact,
		Version:     info.Version,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}
	if _, err := rep.Report(ctx, result); err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	switch ExitCodeFromResult(result, flags.strict) {
	case ExitIssues:
		return ErrIssuesFound
	case ExitWarnings:
		return ErrWarningsFound
	case ExitIOError:
		return fmt.Errorf("%d file(s) could not be read: %w", result.Stats.FilesErrored, ErrUnreadable)
	}
	return nil
}
