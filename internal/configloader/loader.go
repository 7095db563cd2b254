// Package configloader provides configuration loading and resolution.
// It implements XDG-compliant configuration discovery, pyproject.toml
// support, hierarchical merging, environment variable overrides, validation
// and live reload.
package configloader

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/gosage/internal/logging"
	"github.com/yaklabco/gosage/pkg/config"
)

// LoadOptions controls configuration loading behavior.
type LoadOptions struct {
	// WorkingDir is the directory to search from for project config.
	// Defaults to current working directory if empty.
	WorkingDir string

	// ExplicitPath is an explicit config file path (from --config flag).
	ExplicitPath string

	// IgnoreSystemConfig skips loading system-level configuration.
	IgnoreSystemConfig bool

	// IgnoreUserConfig skips loading user-level configuration.
	IgnoreUserConfig bool

	// IgnoreProjectConfig skips loading project-level configuration.
	IgnoreProjectConfig bool

	// IgnoreEnv skips loading environment variables.
	IgnoreEnv bool

	// CLIConfig contains configuration from CLI flags.
	// These take highest precedence.
	CLIConfig *config.Config
}

// LoadResult contains the resolved configuration and metadata.
type LoadResult struct {
	// Config is the final merged configuration.
	Config *config.Config

	// Paths contains the discovered configuration file paths.
	Paths *ConfigPaths

	// LoadedFrom lists the files that were actually loaded (in order).
	LoadedFrom []string

	// Warnings contains non-fatal issues encountered during loading.
	Warnings []string
}

// Load resolves the final configuration by merging all sources.
// Precedence (highest to lowest):
//  1. CLI flags (opts.CLIConfig)
//  2. Environment variables (GOSAGE_*)
//  3. Explicit config file (opts.ExplicitPath)
//  4. Project config (.gosage.yml or pyproject.toml, upward search)
//  5. User config ($XDG_CONFIG_HOME/gosage/config.yaml)
//  6. System config (/etc/gosage/config.yaml)
//  7. Defaults
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	workDir := opts.WorkingDir
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	paths, err := DiscoverPaths(ctx, workDir)
	if err != nil {
		return nil, fmt.Errorf("discover paths: %w", err)
	}
	if opts.IgnoreSystemConfig {
		paths.System = ""
	}
	if opts.IgnoreUserConfig {
		paths.User = ""
	}
	if opts.IgnoreProjectConfig {
		paths.Project = ""
	}
	paths.Explicit = opts.ExplicitPath

	result := &LoadResult{Paths: paths}
	cfg := config.NewConfig()
	logger := logging.FromContext(ctx)

	layers := []struct {
		name string
		path string
	}{
		{"system", paths.System},
		{"user", paths.User},
		{"project", paths.Project},
		{"explicit", paths.Explicit},
	}
	for _, layer := range layers {
		if layer.path == "" {
			continue
		}
		fileCfg, err := loadConfigFile(layer.path)
		if err != nil {
			return nil, fmt.Errorf("load %s config: %w", layer.name, err)
		}
		cfg = merge(cfg, fileCfg)
		result.LoadedFrom = append(result.LoadedFrom, layer.path)
		logger.Debug("loaded config", logging.FieldPath, layer.path)
	}

	if !opts.IgnoreEnv {
		if err := LoadFromEnv(cfg); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}

	if opts.CLIConfig != nil {
		cfg = merge(cfg, opts.CLIConfig)
	}

	validation := Validate(cfg)
	if !validation.Valid() {
		return nil, &validation.Errors[0]
	}
	for _, w := range validation.Warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}

	result.Config = cfg
	return result, nil
}

// loadConfigFile loads a configuration from a YAML file or from the
// [tool.gosage] table of a pyproject.toml.
func loadConfigFile(path string) (*config.Config, error) {
	if isPyproject(path) {
		return loadPyproject(path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	cfg, err := config.FromYAML(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// loadPyproject decodes the [tool.gosage] table through the YAML decoder so
// both file kinds share one schema, including duration strings.
func loadPyproject(path string) (*config.Config, error) {
	section, err := readToolSection(path)
	if err != nil {
		return nil, err
	}
	if section == nil {
		return &config.Config{}, nil
	}

	data, err := yaml.Marshal(section)
	if err != nil {
		return nil, fmt.Errorf("convert [tool.gosage]: %w", err)
	}
	cfg, err := config.FromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s [tool.gosage]: %w", path, err)
	}
	return cfg, nil
}
