// Package cli provides the Cobra command structure for gosage.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gosage/internal/logging"
	"github.com/yaklabco/gosage/pkg/fsutil"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root gosage command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "gosage",
		Short: "Editor support and checks for SageMath sources",
		Long: `gosage rewrites SageMath source into Python while keeping a precise map
between the two texts. Python tools run on the rewritten text, and their
findings are reported on the lines you actually wrote.

It runs as a language server for editors (gosage serve) and as a command
line checker (gosage check). The remaining commands expose the rewriting,
the source map and the completion engine for inspection.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newServeCommand(info))
	rootCmd.AddCommand(newCheckCommand(info))
	rootCmd.AddCommand(newConvertCommand())
	rootCmd.AddCommand(newSpansCommand())
	rootCmd.AddCommand(newCompleteCommand())
	rootCmd.AddCommand(newRulesCommand())
	rootCmd.AddCommand(newDoctorCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}

// readInput reads a file, or standard input when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return content, nil
	}
	content, _, err := fsutil.ReadFile(commandContext(cmd), path)
	return content, err
}

// displayPath names an input in output.
func displayPath(path string) string {
	if path == "-" {
		return "<stdin>"
	}
	return path
}

func colorMode(cmd *cobra.Command) string {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return "auto"
	}
	return mode
}
