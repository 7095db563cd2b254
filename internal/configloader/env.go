package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/yaklabco/gosage/pkg/config"
)

// envVarPrefix is the prefix for all gosage environment variables.
const envVarPrefix = "GOSAGE_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
	envTypeSlice
	envTypeCommand
)

// envMapping defines how one environment variable is applied.
type envMapping struct {
	typ         envFieldType
	description string
	apply       func(cfg *config.Config, v any)
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"DIALECT": {envTypeString, "Source dialect: auto, sage or python",
		func(c *config.Config, v any) { c.Dialect = v.(string) }},
	"PRELUDE": {envTypeBool, "Insert the sage.all import before analysis: true or false",
		func(c *config.Config, v any) { c.Prelude = config.Bool(v.(bool)) }},
	"LOG_LEVEL": {envTypeString, "Log level: debug, info, warn or error",
		func(c *config.Config, v any) { c.LogLevel = v.(string) }},
	"IGNORE": {envTypeSlice, "Comma-separated list of ignore patterns",
		func(c *config.Config, v any) { c.Ignore = v.([]string) }},
	"FORMAT": {envTypeString, "Output format of check: text, json or sarif",
		func(c *config.Config, v any) { c.Format = config.OutputFormat(v.(string)) }},
	"JOBS": {envTypeInt, "Number of parallel workers (0 = auto)",
		func(c *config.Config, v any) { c.Jobs = v.(int) }},
	"CONVERTER_ENABLED": {envTypeBool, "Run the Sage preparser: true or false",
		func(c *config.Config, v any) { c.Converter.Enabled = config.Bool(v.(bool)) }},
	"CONVERTER_COMMAND": {envTypeCommand, "Preparser command line, e.g. \"sage --preparse\"",
		func(c *config.Config, v any) { c.Converter.Command = v.([]string) }},
	"ANALYZER_ENABLED": {envTypeBool, "Run the Python analyzer: true or false",
		func(c *config.Config, v any) { c.Analyzer.Enabled = config.Bool(v.(bool)) }},
	"ANALYZER_COMMAND": {envTypeCommand, "Analyzer command line, e.g. \"ruff check\"",
		func(c *config.Config, v any) { c.Analyzer.Command = v.([]string) }},
	"ANALYZER_IGNORE_CODES": {envTypeSlice, "Comma-separated analyzer codes to skip",
		func(c *config.Config, v any) { c.Analyzer.IgnoreCodes = v.([]string) }},
	"COMPLETION_AUTO_INSERT": {envTypeBool, "Offer unambiguous completions preselected: true or false",
		func(c *config.Config, v any) { c.Completion.AutoInsert = config.Bool(v.(bool)) }},
	"COMPLETION_FUZZY": {envTypeBool, "Suggest misspelled function names: true or false",
		func(c *config.Config, v any) { c.Completion.Fuzzy = config.Bool(v.(bool)) }},
	"MAX_PROCESSES": {envTypeInt, "Maximum concurrent external tool processes",
		func(c *config.Config, v any) { c.Concurrency.MaxProcesses = v.(int) }},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with GOSAGE_ (e.g., GOSAGE_DIALECT).
func LoadFromEnv(cfg *config.Config) error {
	return loadFromEnv(cfg, os.Getenv)
}

func loadFromEnv(cfg *config.Config, getenv func(string) string) error {
	if cfg == nil {
		return nil
	}

	for _, suffix := range sortedEnvKeys() {
		envVar := envVarPrefix + suffix
		value := getenv(envVar)
		if value == "" {
			continue
		}

		mapping := envMappings[suffix]
		parsed, err := parseEnvValue(mapping.typ, value, envVar)
		if err != nil {
			return err
		}
		mapping.apply(cfg, parsed)
	}

	return nil
}

// parseEnvValue converts a raw environment value to the field's type.
func parseEnvValue(typ envFieldType, value, envVar string) (any, error) {
	switch typ {
	case envTypeString:
		return value, nil
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return b, nil
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return i, nil
	case envTypeSlice:
		return parseSliceValue(value), nil
	case envTypeCommand:
		return strings.Fields(value), nil
	default:
		return nil, fmt.Errorf("unknown field type for %s", envVar)
	}
}

// parseSliceValue parses a comma-separated string into a slice.
// Each element is trimmed of whitespace.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func sortedEnvKeys() []string {
	keys := make([]string, 0, len(envMappings))
	for k := range envMappings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ListEnvVars returns all supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	out := make(map[string]string, len(envMappings))
	for suffix, mapping := range envMappings {
		out[envVarPrefix+suffix] = mapping.description
	}
	return out
}
