package config

import (
	"bytes"
	"fmt"
	"maps"

	"gopkg.in/yaml.v3"
)

// ToYAML serializes the configuration to YAML format.
func (c *Config) ToYAML() ([]byte, error) {
	if c == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(YAMLIndent())

	if err := encoder.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}

	return buf.Bytes(), nil
}

// FromYAML parses a configuration from YAML bytes. Unknown keys are errors.
func FromYAML(data []byte) (*Config, error) {
	cfg := &Config{}
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return cfg, nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c
	clone.Prelude = cloneBool(c.Prelude)
	clone.Ignore = cloneStrings(c.Ignore)

	clone.Converter.Enabled = cloneBool(c.Converter.Enabled)
	clone.Converter.Command = cloneStrings(c.Converter.Command)

	clone.Analyzer.Enabled = cloneBool(c.Analyzer.Enabled)
	clone.Analyzer.Command = cloneStrings(c.Analyzer.Command)
	clone.Analyzer.IgnoreCodes = cloneStrings(c.Analyzer.IgnoreCodes)
	if c.Analyzer.Severity != nil {
		clone.Analyzer.Severity = maps.Clone(c.Analyzer.Severity)
	}

	clone.Completion.AutoInsert = cloneBool(c.Completion.AutoInsert)
	clone.Completion.Fuzzy = cloneBool(c.Completion.Fuzzy)

	return &clone
}

func cloneBool(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

// YAMLIndent returns the default YAML indentation.
func YAMLIndent() int {
	return 2
}
