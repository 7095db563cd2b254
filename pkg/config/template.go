package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// commentWrapWidth is the maximum width for wrapped comments in templates.
const commentWrapWidth = 70

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full includes every section. A minimal template covers the settings
	// most projects change.
	Full bool

	// Format is the output format: "yaml" or "json".
	Format string
}

// fieldDocs documents configuration keys by dotted path.
//
//nolint:gochecknoglobals // Read-only lookup table.
var fieldDocs = map[string]string{
	"dialect":                      "Source dialect: auto detects from file names and content, or force sage or python.",
	"prelude":                      "Insert 'from sage.all import *' before analysis so Sage globals resolve.",
	"log_level":                    "Log level for diagnostics written to stderr: debug, info, warn or error.",
	"ignore":                       "Glob patterns for files the check command skips, in addition to .gitignore.",
	"converter":                    "The Sage preparser. When enabled, documents it rejects are reported as not analyzable.",
	"analyzer":                     "The Python analyzer run on the rewritten text.",
	"analyzer.ignore_codes":        "Rule codes the analyzer skips.",
	"analyzer.severity":            "Severity per rule code or code prefix; the longest prefix wins.",
	"completion":                   "Completion while typing.",
	"completion.auto_insert":       "Offer unambiguous completions, such as ** after *, as preselected items.",
	"completion.fuzzy_threshold":   "Jaro-Winkler similarity a misspelled function name must reach.",
	"cache":                        "Source maps are reused across document versions with identical text.",
	"concurrency":                  "Limits on external tool processes.",
	"concurrency.breaker_failures": "Consecutive tool failures before the tool is paused; 0 disables pausing.",
}

//nolint:gochecknoglobals // Read-only lookup table.
var minimalKeys = map[string]bool{
	"dialect":  true,
	"prelude":  true,
	"ignore":   true,
	"analyzer": true,
}

// GenerateTemplate creates a commented configuration file from the defaults.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	var doc yaml.Node
	if err := doc.Encode(NewConfig()); err != nil {
		return nil, fmt.Errorf("encode defaults: %w", err)
	}

	if !opts.Full {
		doc.Content = filterKeys(doc.Content)
	}
	annotate(&doc, "")

	var buf bytes.Buffer
	buf.WriteString(DefaultTemplateHeader())
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(YAMLIndent())
	if err := encoder.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encode template: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}

	if opts.Format == "json" {
		return templateToJSON(buf.Bytes())
	}
	return buf.Bytes(), nil
}

// filterKeys keeps the minimal template keys of a mapping node's content.
func filterKeys(content []*yaml.Node) []*yaml.Node {
	var out []*yaml.Node
	for i := 0; i+1 < len(content); i += 2 {
		if minimalKeys[content[i].Value] {
			out = append(out, content[i], content[i+1])
		}
	}
	return out
}

// annotate attaches documentation comments to mapping keys.
func annotate(node *yaml.Node, prefix string) {
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		path := key.Value
		if prefix != "" {
			path = prefix + "." + key.Value
		}
		if doc, ok := fieldDocs[path]; ok {
			key.HeadComment = wrapComment(doc, commentWrapWidth)
		}
		annotate(value, path)
	}
}

// wrapComment wraps text at word boundaries into "#" comment lines.
func wrapComment(text string, maxWidth int) string {
	words := strings.Fields(text)
	var lines []string
	var line strings.Builder
	for _, w := range words {
		if line.Len() > 0 && line.Len()+1+len(w) > maxWidth {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(w)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return "# " + strings.Join(lines, "\n# ")
}

// templateToJSON converts YAML template content to JSON, dropping comments.
func templateToJSON(yamlContent []byte) ([]byte, error) {
	var data map[string]any
	if err := yaml.Unmarshal(yamlContent, &data); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return append(out, '\n'), nil
}

// DefaultTemplateHeader returns the comment block at the top of generated
// configuration files.
func DefaultTemplateHeader() string {
	return "# gosage configuration\n# See: https://github.com/yaklabco/gosage\n\n"
}
