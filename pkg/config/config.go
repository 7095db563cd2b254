// Package config defines gosage's configuration types. They are plain data
// with yaml tags; discovery, merging and validation live in
// internal/configloader.
package config

import "time"

// OutputFormat specifies how the check command reports diagnostics.
type OutputFormat string

const (
	FormatText  OutputFormat = "text"
	FormatJSON  OutputFormat = "json"
	FormatSARIF OutputFormat = "sarif"
)

// Dialect values accepted in configuration.
const (
	DialectAuto   = "auto"
	DialectSage   = "sage"
	DialectPython = "python"
)

// ConverterConfig controls the Sage preparser run alongside analysis.
type ConverterConfig struct {
	// Enabled runs the preparser; documents it rejects are not analyzed.
	Enabled *bool `yaml:"enabled,omitempty"`

	// Command is the preparser executable and its fixed arguments.
	Command []string `yaml:"command,omitempty"`

	// OutputSuffix is appended to the input file name to find the output.
	OutputSuffix string `yaml:"output_suffix,omitempty"`

	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// AnalyzerConfig controls the Python analyzer.
type AnalyzerConfig struct {
	Enabled *bool    `yaml:"enabled,omitempty"`
	Command []string `yaml:"command,omitempty"`

	// IgnoreCodes are rule codes the analyzer is told to skip.
	IgnoreCodes []string `yaml:"ignore_codes,omitempty"`

	Timeout time.Duration `yaml:"timeout,omitempty"`

	// SeverityDefault applies to codes without an entry in Severity.
	SeverityDefault string `yaml:"severity_default,omitempty"`

	// Severity maps rule codes or code prefixes to severities.
	Severity map[string]string `yaml:"severity,omitempty"`
}

// CompletionConfig controls the completion engine.
type CompletionConfig struct {
	AutoInsert     *bool   `yaml:"auto_insert,omitempty"`
	Fuzzy          *bool   `yaml:"fuzzy,omitempty"`
	FuzzyThreshold float64 `yaml:"fuzzy_threshold,omitempty"`

	// Window is how many bytes before the cursor matchers inspect.
	Window int `yaml:"window,omitempty"`
}

// CacheConfig sizes the cross-version source map cache.
type CacheConfig struct {
	// MaxBytes is the approximate cache budget; zero disables the cache.
	MaxBytes int64         `yaml:"max_bytes,omitempty"`
	TTL      time.Duration `yaml:"ttl,omitempty"`
}

// ConcurrencyConfig bounds external process use.
type ConcurrencyConfig struct {
	MaxProcesses    int           `yaml:"max_processes,omitempty"`
	BreakerFailures int           `yaml:"breaker_failures,omitempty"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown,omitempty"`
}

// Config is the root configuration structure for gosage.
type Config struct {
	// Dialect is "auto", "sage" or "python".
	Dialect string `yaml:"dialect,omitempty"`

	// Prelude inserts "from sage.all import *" into the rewritten text.
	Prelude *bool `yaml:"prelude,omitempty"`

	LogLevel string `yaml:"log_level,omitempty"`

	// Ignore contains glob patterns for files the check command skips.
	Ignore []string `yaml:"ignore,omitempty"`

	Converter   ConverterConfig   `yaml:"converter"`
	Analyzer    AnalyzerConfig    `yaml:"analyzer"`
	Completion  CompletionConfig  `yaml:"completion"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`

	// CLI-level options (not persisted to config files).

	// Format specifies the output format.
	Format OutputFormat `yaml:"-"`

	// Jobs specifies the number of parallel workers.
	Jobs int `yaml:"-"`
}

// NewConfig returns a Config with the defaults.
func NewConfig() *Config {
	return &Config{
		Dialect:  DialectAuto,
		Prelude:  Bool(true),
		LogLevel: "warn",
		Converter: ConverterConfig{
			Enabled:      Bool(false),
			Command:      []string{"sage", "--preparse"},
			OutputSuffix: ".py",
			Timeout:      30 * time.Second,
		},
		Analyzer: AnalyzerConfig{
			Enabled: Bool(true),
			Command: []string{"ruff", "check"},
			// Star-import findings are caused by the prelude itself.
			IgnoreCodes:     []string{"F403", "F405"},
			Timeout:         10 * time.Second,
			SeverityDefault: "warning",
			Severity:        map[string]string{"E9": "error", "F8": "error"},
		},
		Completion: CompletionConfig{
			AutoInsert:     Bool(true),
			Fuzzy:          Bool(true),
			FuzzyThreshold: 0.85,
			Window:         256,
		},
		Cache: CacheConfig{
			MaxBytes: 64 << 20,
			TTL:      10 * time.Minute,
		},
		Concurrency: ConcurrencyConfig{
			MaxProcesses:    4,
			BreakerFailures: 3,
			BreakerCooldown: 30 * time.Second,
		},
		Format: FormatText,
		Jobs:   0, // 0 means use GOMAXPROCS
	}
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}

// BoolValue dereferences p, returning def when p is nil.
func BoolValue(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
