package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gosage/internal/logging"
	"github.com/yaklabco/gosage/pkg/config"
	"github.com/yaklabco/gosage/pkg/fsutil"
)

type initFlags struct {
	force  bool
	full   bool
	format string
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a gosage configuration file",
		Long: `Create a .gosage.yml configuration file in the current directory from
the built-in defaults, with a comment on each setting.

Examples:
  gosage init                     Create a minimal .gosage.yml
  gosage init --full              Include every section
  gosage init --format json       Create .gosage.json instead
  gosage init -o ci/gosage.yml    Write to a custom path`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite an existing configuration file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "include every configuration section")
	cmd.Flags().StringVar(&flags.format, "format", "yaml", "output format: yaml or json")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file path (default: .gosage.yml or .gosage.json)")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := logging.NewWithWriter(cmd.OutOrStdout(), "info")

	if flags.format != "yaml" && flags.format != "json" {
		return fmt.Errorf("%w: invalid format %q: must be yaml or json", ErrUsage, flags.format)
	}

	outputPath := flags.output
	if outputPath == "" {
		outputPath = ".gosage.yml"
		if flags.format == "json" {
			outputPath = ".gosage.json"
		}
	}
	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{
		Full:   flags.full,
		Format: flags.format,
	})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if _, err := os.Stat(absPath); err == nil && !flags.force {
		return fmt.Errorf("%w: file %q already exists; use --force to overwrite", ErrUsage, outputPath)
	}

	written, err := fsutil.WriteAtomicIfChanged(commandContext(cmd), absPath, content, fsutil.DefaultFileMode)
	if err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if !written {
		logger.Info("configuration file is already up to date", logging.FieldPath, outputPath)
		return nil
	}

	logger.Info("created configuration file", logging.FieldPath, outputPath)
	logger.Info("run 'gosage doctor' to check that the configured tools are installed")
	return nil
}
