package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gosage/internal/logging"
	"github.com/yaklabco/gosage/pkg/config"
	"github.com/yaklabco/gosage/pkg/external"
)

func newDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the configuration and the external tools",
		Long: `Show the resolved configuration sources and check that the Sage
preparser and the Python analyzer can be run. Fails when an enabled tool
is missing.`,
		Args: cobra.NoArgs,
		RunE: runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	logger := logging.NewWithWriter(cmd.OutOrStdout(), "info")

	loaded, err := loadConfig(cmd, &config.Config{})
	if err != nil {
		return err
	}
	cfg := loaded.Config
	if len(loaded.LoadedFrom) == 0 {
		logger.Info("configuration", "source", "defaults")
	}
	for _, path := range loaded.LoadedFrom {
		logger.Info("configuration", logging.FieldPath, path)
	}
	logger.Info("rewriting",
		logging.FieldDialect, cfg.Dialect,
		"prelude", config.BoolValue(cfg.Prelude, true),
	)

	comps, err := buildComponents(cfg)
	if err != nil {
		return err
	}
	defer comps.close()

	checks := []struct {
		name    string
		enabled bool
		tool    *external.Tool
	}{
		{"converter", config.BoolValue(cfg.Converter.Enabled, false), comps.tools.converter},
		{"analyzer", config.BoolValue(cfg.Analyzer.Enabled, true), comps.tools.analyzer},
	}

	var failed []error
	for _, c := range checks {
		command := strings.Join(c.tool.Command, " ")
		version, err := c.tool.Version(ctx)
		switch {
		case err == nil:
			logger.Info(c.name, logging.FieldCommand, command, logging.FieldVersion, version,
				"enabled", c.enabled, "breaker", c.tool.Breaker.State())
		case c.enabled:
			logger.Error(c.name, logging.FieldCommand, command, logging.FieldError, err)
			failed = append(failed, fmt.Errorf("%s: %w", c.name, err))
		default:
			logger.Warn(c.name, logging.FieldCommand, command, "enabled", false, logging.FieldError, err)
		}
	}

	if len(failed) > 0 {
		return errors.Join(failed...)
	}
	logger.Info("all enabled tools are available")
	return nil
}
