package configloader

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/yaklabco/gosage/pkg/config"
	"github.com/yaklabco/gosage/pkg/diagmap"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "analyzer.severity.E9").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownDialects = []string{config.DialectAuto, config.DialectSage, config.DialectPython}

//nolint:gochecknoglobals // Read-only lookup table.
var knownLogLevels = []string{"debug", "info", "warn", "error"}

//nolint:gochecknoglobals // Read-only lookup table.
var knownFormats = []config.OutputFormat{config.FormatText, config.FormatJSON, config.FormatSARIF}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.Dialect != "" && !slices.Contains(knownDialects, cfg.Dialect) {
		result.fail("dialect", cfg.Dialect, "invalid dialect %q; must be one of: %s",
			cfg.Dialect, strings.Join(knownDialects, ", "))
	}
	if cfg.LogLevel != "" && !slices.Contains(knownLogLevels, cfg.LogLevel) {
		result.fail("log_level", cfg.LogLevel, "invalid log level %q; must be one of: %s",
			cfg.LogLevel, strings.Join(knownLogLevels, ", "))
	}
	if cfg.Format != "" && !slices.Contains(knownFormats, cfg.Format) {
		result.fail("format", cfg.Format, "invalid format %q; must be one of: text, json, sarif", cfg.Format)
	}
	if cfg.Jobs < 0 {
		result.fail("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}

	for i, pattern := range cfg.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			result.fail(fmt.Sprintf("ignore[%d]", i), pattern, "invalid glob pattern %q", pattern)
		}
	}

	validateTools(cfg, result)
	validateCompletion(cfg, result)

	if cfg.Cache.MaxBytes < 0 {
		result.fail("cache.max_bytes", cfg.Cache.MaxBytes, "must be >= 0 (0 disables the cache)")
	}
	if cfg.Concurrency.MaxProcesses < 0 {
		result.fail("concurrency.max_processes", cfg.Concurrency.MaxProcesses, "must be >= 0")
	}
	if cfg.Concurrency.BreakerFailures < 0 {
		result.fail("concurrency.breaker_failures", cfg.Concurrency.BreakerFailures, "must be >= 0")
	}

	return result
}

func validateTools(cfg *config.Config, result *ValidationResult) {
	if config.BoolValue(cfg.Converter.Enabled, false) && len(cfg.Converter.Command) == 0 {
		result.fail("converter.command", nil, "command is required when the converter is enabled")
	}
	if config.BoolValue(cfg.Analyzer.Enabled, true) && len(cfg.Analyzer.Command) == 0 {
		result.fail("analyzer.command", nil, "command is required when the analyzer is enabled")
	}
	if cfg.Converter.Timeout < 0 {
		result.fail("converter.timeout", cfg.Converter.Timeout, "must be >= 0")
	}
	if cfg.Analyzer.Timeout < 0 {
		result.fail("analyzer.timeout", cfg.Analyzer.Timeout, "must be >= 0")
	}

	if s := cfg.Analyzer.SeverityDefault; s != "" {
		if _, err := diagmap.ParseSeverity(s); err != nil {
			result.fail("analyzer.severity_default", s, "%v", err)
		}
	}
	for code, s := range cfg.Analyzer.Severity {
		if _, err := diagmap.ParseSeverity(s); err != nil {
			result.fail("analyzer.severity."+code, s, "%v", err)
		}
	}

	if config.BoolValue(cfg.Prelude, true) && config.BoolValue(cfg.Analyzer.Enabled, true) &&
		!slices.Contains(cfg.Analyzer.IgnoreCodes, "F405") {
		result.warn("analyzer.ignore_codes", cfg.Analyzer.IgnoreCodes,
			"F405 is not ignored; every Sage global will be reported as possibly undefined")
	}
}

func validateCompletion(cfg *config.Config, result *ValidationResult) {
	if t := cfg.Completion.FuzzyThreshold; t < 0 || t > 1 {
		result.fail("completion.fuzzy_threshold", t, "must be between 0 and 1")
	}
	if cfg.Completion.Window < 0 {
		result.fail("completion.window", cfg.Completion.Window, "must be >= 0")
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)
	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}
	return result
}
