package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/yaklabco/gosage/internal/ui/pretty"
	"github.com/yaklabco/gosage/pkg/diagmap"
	"github.com/yaklabco/gosage/pkg/runner"
)

// SARIF version used by this reporter.
const sarifVersion = "2.1.0"

// SARIF schema URI.
const sarifSchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"

// SARIFOutput represents the root SARIF document.
type SARIFOutput struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SARIFRun `json:"runs"`
}

// SARIFRun represents a single analysis run.
type SARIFRun struct {
	Tool    SARIFTool     `json:"tool"`
	Results []SARIFResult `json:"results"`
}

// SARIFTool describes the analysis tool.
type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

// SARIFDriver contains tool metadata and rules.
type SARIFDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []SARIFRule `json:"rules"`
}

// SARIFRule describes one diagnostic code.
type SARIFRule struct {
	ID               string               `json:"id"`
	ShortDescription SARIFMultiformatText `json:"shortDescription"`
	DefaultConfig    *SARIFRuleConfig     `json:"defaultConfiguration,omitempty"`
}

// SARIFMultiformatText contains text in multiple formats.
type SARIFMultiformatText struct {
	Text string `json:"text"`
}

// SARIFRuleConfig contains rule configuration.
type SARIFRuleConfig struct {
	Level string `json:"level"`
}

// SARIFResult represents a single diagnostic result.
type SARIFResult struct {
	RuleID     string          `json:"ruleId,omitempty"`
	Level      string          `json:"level"`
	Message    SARIFMessage    `json:"message"`
	Locations  []SARIFLocation `json:"locations"`
	Properties map[string]any  `json:"properties,omitempty"`
}

// SARIFMessage contains the result message.
type SARIFMessage struct {
	Text string `json:"text"`
}

// SARIFLocation describes a code location.
type SARIFLocation struct {
	PhysicalLocation SARIFPhysicalLocation `json:"physicalLocation"`
}

// SARIFPhysicalLocation contains file path and region.
type SARIFPhysicalLocation struct {
	ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
	Region           SARIFRegion           `json:"region"`
}

// SARIFArtifactLocation contains the file URI.
type SARIFArtifactLocation struct {
	URI string `json:"uri"`
}

// SARIFRegion describes the affected text region. Columns count runes.
type SARIFRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
	EndLine     int `json:"endLine,omitempty"`
	EndColumn   int `json:"endColumn,omitempty"`
	ByteOffset  int `json:"byteOffset"`
	ByteLength  int `json:"byteLength"`
}

// SARIFReporter formats results as SARIF.
type SARIFReporter struct {
	opts Options
	out  io.Writer
}

// NewSARIFReporter creates a new SARIF reporter.
func NewSARIFReporter(opts Options) *SARIFReporter {
	return &SARIFReporter{
		opts: opts,
		out:  opts.Writer,
	}
}

// Report implements Reporter.
func (r *SARIFReporter) Report(_ context.Context, result *runner.Result) (int, error) {
	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.out)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode SARIF: %w", err)
	}

	return len(output.Runs[0].Results), nil
}

func (r *SARIFReporter) buildOutput(result *runner.Result) *SARIFOutput {
	output := &SARIFOutput{
		Schema:  sarifSchemaURI,
		Version: sarifVersion,
		Runs: []SARIFRun{{
			Tool: SARIFTool{
				Driver: SARIFDriver{
					Name:           "gosage",
					Version:        r.opts.Version,
					InformationURI: "https://github.com/yaklabco/gosage",
					Rules:          make([]SARIFRule, 0),
				},
			},
			Results: make([]SARIFResult, 0),
		}},
	}

	if result == nil {
		return output
	}

	run := &output.Runs[0]
	rulesSeen := make(map[string]bool)

	for _, file := range result.Files {
		for _, diag := range file.Report.Diagnostics {
			ruleID := sarifRuleID(diag)
			if ruleID != "" && !rulesSeen[ruleID] {
				run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, SARIFRule{
					ID:               ruleID,
					ShortDescription: SARIFMultiformatText{Text: diag.Message},
					DefaultConfig:    &SARIFRuleConfig{Level: severityToSARIFLevel(diag.Severity)},
				})
				rulesSeen[ruleID] = true
			}

			startLine, startCol := pretty.Location(file.Text, diag.Range.Start)
			endLine, endCol := pretty.Location(file.Text, diag.Range.End)
			res := SARIFResult{
				RuleID:  ruleID,
				Level:   severityToSARIFLevel(diag.Severity),
				Message: SARIFMessage{Text: diag.Message},
				Locations: []SARIFLocation{{
					PhysicalLocation: SARIFPhysicalLocation{
						ArtifactLocation: SARIFArtifactLocation{URI: file.Path},
						Region: SARIFRegion{
							StartLine:   max(startLine, 1),
							StartColumn: startCol,
							EndLine:     endLine,
							EndColumn:   endCol,
							ByteOffset:  diag.Range.Start,
							ByteLength:  diag.Range.Len(),
						},
					},
				}},
			}
			if diag.Origin != "" && diag.Origin != diagmap.OriginDirect {
				res.Properties = map[string]any{"origin": string(diag.Origin)}
			}
			run.Results = append(run.Results, res)
		}
	}

	return output
}

func sarifRuleID(diag diagmap.Diagnostic) string {
	if diag.Source != "" && diag.Code != "" {
		return diag.Source + "/" + diag.Code
	}
	return diag.Code
}

// severityToSARIFLevel converts a diagnostic severity to a SARIF level.
func severityToSARIFLevel(severity diagmap.Severity) string {
	switch severity {
	case diagmap.SeverityError:
		return "error"
	case diagmap.SeverityWarning:
		return "warning"
	case diagmap.SeverityInformation, diagmap.SeverityHint:
		return "note"
	default:
		return "warning"
	}
}
