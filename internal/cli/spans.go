package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/gosage/internal/ui/pretty"
	"github.com/yaklabco/gosage/pkg/config"
	"github.com/yaklabco/gosage/pkg/sourcemap"
)

type spansFlags struct {
	all       bool
	format    string
	noPrelude bool
}

func newSpansCommand() *cobra.Command {
	flags := &spansFlags{}

	cmd := &cobra.Command{
		Use:   "spans [file]",
		Short: "Show the source map of a Sage file",
		Long: `Show how a Sage file maps onto its Python rewrite, one row per span
with byte ranges in both texts. Unchanged text is hidden unless --all is
given. Reads standard input when no file or "-" is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return runSpans(cmd, path, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.all, "all", false, "include passthrough spans")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json")
	cmd.Flags().BoolVar(&flags.noPrelude, "no-prelude", false, "do not insert the sage.all import")

	return cmd
}

func runSpans(cmd *cobra.Command, path string, flags *spansFlags) error {
	if flags.format != "text" && flags.format != "json" {
		return fmt.Errorf("%w: unknown format %q; valid formats: text, json", ErrUsage, flags.format)
	}

	overrides := &config.Config{}
	if flags.noPrelude {
		overrides.Prelude = config.Bool(false)
	}
	loaded, err := loadConfig(cmd, overrides)
	if err != nil {
		return err
	}
	comps, err := buildComponents(loaded.Config)
	if err != nil {
		return err
	}
	defer comps.close()

	content, err := readInput(cmd, path)
	if err != nil {
		return err
	}
	m, err := sourcemap.Build(comps.recognizer, content)
	if err != nil {
		return fmt.Errorf("building source map: %w", err)
	}

	out := cmd.OutOrStdout()
	if flags.format == "json" {
		rows := pretty.SpanRows(m, flags.all)
		if rows == nil {
			rows = []pretty.SpanRow{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("encoding spans: %w", err)
		}
		return nil
	}

	colorEnabled := pretty.IsColorEnabled(colorMode(cmd), out)
	width := 0
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			width = w
		}
	}
	table := pretty.NewTableFormatter(pretty.NewStyles(colorEnabled), colorEnabled, width).FormatSpans(m, flags.all)
	if table == "" {
		table = fmt.Sprintf("%s: nothing is rewritten\n", displayPath(path))
	}
	if _, err := fmt.Fprint(out, table); err != nil {
		return errors.Join(errors.New("write output"), err)
	}
	return nil
}
