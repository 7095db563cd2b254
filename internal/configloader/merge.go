package configloader

import (
	"maps"

	"github.com/yaklabco/gosage/pkg/config"
)

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Booleans are pointers, so an explicit false overrides
//   - Maps: deep merge, with override's values taking precedence
//   - Slices: override replaces base entirely if override is non-nil
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	mergeString(&result.Dialect, override.Dialect)
	mergeBool(&result.Prelude, override.Prelude)
	mergeString(&result.LogLevel, override.LogLevel)
	if override.Ignore != nil {
		result.Ignore = override.Ignore
	}

	mergeBool(&result.Converter.Enabled, override.Converter.Enabled)
	if override.Converter.Command != nil {
		result.Converter.Command = override.Converter.Command
	}
	mergeString(&result.Converter.OutputSuffix, override.Converter.OutputSuffix)
	mergeNonZero(&result.Converter.Timeout, override.Converter.Timeout)

	mergeBool(&result.Analyzer.Enabled, override.Analyzer.Enabled)
	if override.Analyzer.Command != nil {
		result.Analyzer.Command = override.Analyzer.Command
	}
	if override.Analyzer.IgnoreCodes != nil {
		result.Analyzer.IgnoreCodes = override.Analyzer.IgnoreCodes
	}
	mergeNonZero(&result.Analyzer.Timeout, override.Analyzer.Timeout)
	mergeString(&result.Analyzer.SeverityDefault, override.Analyzer.SeverityDefault)
	result.Analyzer.Severity = mergeSeverities(base.Analyzer.Severity, override.Analyzer.Severity)

	mergeBool(&result.Completion.AutoInsert, override.Completion.AutoInsert)
	mergeBool(&result.Completion.Fuzzy, override.Completion.Fuzzy)
	mergeNonZero(&result.Completion.FuzzyThreshold, override.Completion.FuzzyThreshold)
	mergeNonZero(&result.Completion.Window, override.Completion.Window)

	mergeNonZero(&result.Cache.MaxBytes, override.Cache.MaxBytes)
	mergeNonZero(&result.Cache.TTL, override.Cache.TTL)

	mergeNonZero(&result.Concurrency.MaxProcesses, override.Concurrency.MaxProcesses)
	mergeNonZero(&result.Concurrency.BreakerFailures, override.Concurrency.BreakerFailures)
	mergeNonZero(&result.Concurrency.BreakerCooldown, override.Concurrency.BreakerCooldown)

	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}

	return &result
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeBool(dst **bool, v *bool) {
	if v != nil {
		*dst = v
	}
}

func mergeNonZero[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

// mergeSeverities deep merges per-code severity overrides.
func mergeSeverities(base, override map[string]string) map[string]string {
	if base == nil && override == nil {
		return nil
	}
	result := make(map[string]string, len(base)+len(override))
	maps.Copy(result, base)
	maps.Copy(result, override)
	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
