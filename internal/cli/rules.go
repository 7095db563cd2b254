package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gosage/internal/logging"
	"github.com/yaklabco/gosage/pkg/complete"
	"github.com/yaklabco/gosage/pkg/recognize"
)

const formatJSON = "json"

// ruleInfo describes a rewrite rule or completion matcher in JSON output.
type ruleInfo struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
	Priority    int    `json:"priority,omitempty"`
}

type rulesOutput struct {
	Rewrite    []ruleInfo `json:"rewrite"`
	Completion []ruleInfo `json:"completion"`
}

func newRulesCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List rewrite rules and completion matchers",
		Long: `List the rules that rewrite Sage syntax to Python, in the order they
are tried, and the completion matchers with their priorities.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := collectRules()
			if format == formatJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(out); err != nil {
					return fmt.Errorf("encoding rules: %w", err)
				}
				return nil
			}

			logger := logging.NewWithWriter(cmd.OutOrStdout(), "info")
			logger.Info("rewrite rules")
			for _, r := range out.Rewrite {
				logger.Info(r.ID, logging.FieldKind, r.Kind, "description", r.Description)
			}
			logger.Info("completion matchers")
			for _, m := range out.Completion {
				logger.Info(m.ID, logging.FieldKind, m.Kind, "priority", m.Priority)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json")

	return cmd
}

func collectRules() rulesOutput {
	var out rulesOutput
	for _, rule := range recognize.DefaultRegistry().Rules() {
		out.Rewrite = append(out.Rewrite, ruleInfo{
			ID:          rule.ID(),
			Kind:        rule.Kind().String(),
			Description: rule.Description(),
		})
	}
	for _, m := range complete.DefaultCatalog(complete.DefaultMatcherOptions()).Matchers() {
		out.Completion = append(out.Completion, ruleInfo{
			ID:       m.ID(),
			Kind:     m.Kind().String(),
			Priority: m.Priority(),
		})
	}
	return out
}
