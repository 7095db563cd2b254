package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

// pyprojectFile is the Python project file whose [tool.gosage] table is read
// when no dedicated config file exists.
const pyprojectFile = "pyproject.toml"

// ConfigPaths represents discovered configuration file paths.
type ConfigPaths struct {
	// System is the system-wide config path (e.g., /etc/gosage/config.yaml).
	System string

	// User is the user-level config path (e.g., ~/.config/gosage/config.yaml).
	User string

	// Project is the project-level config path: a .gosage.yml, or a
	// pyproject.toml with a [tool.gosage] table.
	Project string

	// Explicit is a config path provided via --config flag.
	Explicit string
}

// All returns the non-empty paths in load order.
func (p *ConfigPaths) All() []string {
	var out []string
	for _, path := range []string{p.System, p.User, p.Project, p.Explicit} {
		if path != "" {
			out = append(out, path)
		}
	}
	return out
}

// projectConfigFiles are the config file names we search for, in order of preference.
//
//nolint:gochecknoglobals // Read-only lookup table.
var projectConfigFiles = []string{
	".gosage.yml",
	".gosage.yaml",
	"gosage.yml",
	"gosage.yaml",
	".gosage.json",
}

// vcsRootMarkers are directories that indicate a VCS root.
//
//nolint:gochecknoglobals // Read-only lookup table.
var vcsRootMarkers = []string{".git", ".hg", ".svn"}

// DiscoverPaths finds configuration files in standard locations.
// It searches for:
//   - System config at /etc/gosage/config.{yaml,yml}
//   - User config at $XDG_CONFIG_HOME/gosage/config.{yaml,yml}
//   - Project config by searching upward from workDir
//
// Missing files are represented as empty strings (not errors).
func DiscoverPaths(ctx context.Context, workDir string) (*ConfigPaths, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	paths := &ConfigPaths{
		System: findSystemConfig(),
		User:   findUserConfig(),
	}

	projectConfig, err := FindProjectConfig(ctx, workDir)
	if err != nil {
		return nil, err
	}
	paths.Project = projectConfig

	return paths, nil
}

// findSystemConfig returns the path to the system-wide config file, if it exists.
func findSystemConfig() string {
	if runtime.GOOS == "windows" {
		programData := os.Getenv("ProgramData")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return findConfigInDir(filepath.Join(programData, "gosage"))
	}
	return findConfigInDir("/etc/gosage")
}

// findUserConfig returns the path to the user-level config file, if it exists.
func findUserConfig() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}

	return findConfigInDir(filepath.Join(configHome, "gosage"))
}

// findConfigInDir looks for config files in the given directory.
func findConfigInDir(dir string) string {
	for _, name := range []string{"config.yaml", "config.yml"} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// FindProjectConfig searches upward from startDir for a project config file.
// In each directory a dedicated config file wins over pyproject.toml, which
// only counts when it has a [tool.gosage] table. The search stops at VCS
// roots, the home directory and the filesystem root.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	if startDir == "" {
		var err error
		startDir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
	}

	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		homeDir = ""
	}

	currentDir := absDir
	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		for _, name := range projectConfigFiles {
			path := filepath.Join(currentDir, name)
			if fileExists(path) {
				return path, nil
			}
		}
		if path := filepath.Join(currentDir, pyprojectFile); hasToolSection(path) {
			return path, nil
		}

		if isVCSRoot(currentDir) {
			return "", nil
		}
		if homeDir != "" && currentDir == homeDir {
			return "", nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", nil
		}
		currentDir = parentDir
	}
}

// pyproject is the part of pyproject.toml gosage reads.
type pyproject struct {
	Tool struct {
		Gosage map[string]any `toml:"gosage"`
	} `toml:"tool"`
}

// readToolSection returns the [tool.gosage] table of a pyproject.toml, or nil.
func readToolSection(path string) (map[string]any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	var doc pyproject
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse TOML: %w", err)
	}
	return doc.Tool.Gosage, nil
}

func hasToolSection(path string) bool {
	if !fileExists(path) {
		return false
	}
	section, err := readToolSection(path)
	return err == nil && section != nil
}

// isPyproject reports whether path names a pyproject.toml.
func isPyproject(path string) bool {
	return filepath.Base(path) == pyprojectFile
}

// isVCSRoot returns true if the directory contains a VCS root marker.
func isVCSRoot(dir string) bool {
	for _, marker := range vcsRootMarkers {
		path := filepath.Join(dir, marker)
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
