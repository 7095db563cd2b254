package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gosage/internal/ui/pretty"
	"github.com/yaklabco/gosage/pkg/complete"
	"github.com/yaklabco/gosage/pkg/config"
	"github.com/yaklabco/gosage/pkg/source"
)

type completeFlags struct {
	offset int
	line   int
	column int
	format string
}

// completionOutput is the JSON form of a completion result.
type completionOutput struct {
	Cursor     int                   `json:"cursor"`
	Context    *completionContext    `json:"context,omitempty"`
	Candidates []completionCandidate `json:"candidates"`
	AutoInsert *autoInsertOutput     `json:"auto_insert,omitempty"`
}

type autoInsertOutput struct {
	Offset int    `json:"offset"`
	Text   string `json:"text"`
}

type completionContext struct {
	Kind    string `json:"kind"`
	Matcher string `json:"matcher"`
	Match   string `json:"match"`
}

type completionCandidate struct {
	Label      string `json:"label"`
	Detail     string `json:"detail,omitempty"`
	InsertText string `json:"insert_text"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Kind       string `json:"kind"`
	Matcher    string `json:"matcher"`
	Rank       int    `json:"rank"`
}

func newCompleteCommand() *cobra.Command {
	flags := &completeFlags{}

	cmd := &cobra.Command{
		Use:   "complete [file]",
		Short: "Show completions at a position in a Sage file",
		Long: `Run the completion engine at a cursor position and print the ranked
candidates. The cursor defaults to the end of the input; give a byte
--offset, or a 1-based --line and --column counted in characters.
Reads standard input when no file or "-" is given.

Examples:
  printf 'x = 2*' | gosage complete
  gosage complete --line 3 --column 12 rings.sage`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return runComplete(cmd, path, flags)
		},
	}

	cmd.Flags().IntVar(&flags.offset, "offset", -1, "cursor byte offset")
	cmd.Flags().IntVar(&flags.line, "line", 0, "cursor line (1-based)")
	cmd.Flags().IntVar(&flags.column, "column", 1, "cursor column in characters (1-based)")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json")
	cmd.MarkFlagsMutuallyExclusive("offset", "line")

	return cmd
}

func runComplete(cmd *cobra.Command, path string, flags *completeFlags) error {
	if flags.format != "text" && flags.format != "json" {
		return fmt.Errorf("%w: unknown format %q; valid formats: text, json", ErrUsage, flags.format)
	}

	loaded, err := loadConfig(cmd, &config.Config{})
	if err != nil {
		return err
	}
	content, err := readInput(cmd, path)
	if err != nil {
		return err
	}
	snap := source.NewSnapshot(path, content)

	cursor := len(content)
	switch {
	case flags.offset >= 0:
		if flags.offset > len(content) {
			return fmt.Errorf("%w: offset %d is past the end of the input (%d bytes)", ErrUsage, flags.offset, len(content))
		}
		cursor = flags.offset
	case flags.line > 0:
		cursor = snap.FromRuneColumn(flags.line, flags.column)
	}

	res := newEngine(loaded.Config.Completion).Complete(content, cursor)

	out := cmd.OutOrStdout()
	if flags.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(toCompletionOutput(snap, cursor, res)); err != nil {
			return fmt.Errorf("encoding completions: %w", err)
		}
		return nil
	}

	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), out))
	if err := writeCompletions(out, styles, snap, cursor, res); err != nil {
		return errors.Join(errors.New("write output"), err)
	}
	return nil
}

func toCompletionOutput(snap *source.Snapshot, cursor int, res complete.Result) completionOutput {
	out := completionOutput{
		Cursor:     cursor,
		Candidates: make([]completionCandidate, len(res.Candidates)),
	}
	if res.AutoInsert != nil {
		out.AutoInsert = &autoInsertOutput{Offset: res.AutoInsert.Offset, Text: res.AutoInsert.Text}
	}
	if res.Context != nil {
		out.Context = &completionContext{
			Kind:    res.Context.Kind.String(),
			Matcher: res.Context.Matcher,
			Match:   string(snap.Slice(res.Context.Match)),
		}
	}
	for i, c := range res.Candidates {
		out.Candidates[i] = completionCandidate{
			Label:      c.Label,
			Detail:     c.Detail,
			InsertText: c.InsertText,
			Start:      c.Replace.Start,
			End:        c.Replace.End,
			Kind:       c.Kind.String(),
			Matcher:    c.Matcher,
			Rank:       c.SortRank,
		}
	}
	return out
}

func writeCompletions(w io.Writer, styles *pretty.Styles, snap *source.Snapshot, cursor int, res complete.Result) error {
	line, col := pretty.Location(snap, cursor)
	if res.Context == nil {
		_, err := fmt.Fprintf(w, "No completions at %d:%d\n", line, col)
		return err
	}

	if _, err := fmt.Fprintf(w, "%s at %d:%d %s\n",
		styles.Bold.Render(res.Context.Kind.String()), line, col,
		styles.Dim.Render("("+res.Context.Matcher+")")); err != nil {
		return err
	}
	if res.AutoInsert != nil {
		if _, err := fmt.Fprintf(w, "  auto-insert %q at %d\n", res.AutoInsert.Text, res.AutoInsert.Offset); err != nil {
			return err
		}
	}
	for _, c := range res.Candidates {
		if _, err := fmt.Fprintf(w, "  %2d. %-24s %s\n", c.SortRank+1, c.Label, styles.Dim.Render(c.Detail)); err != nil {
			return err
		}
	}
	return nil
}
