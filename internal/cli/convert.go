package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gosage/internal/logging"
	"github.com/yaklabco/gosage/internal/ui/pretty"
	"github.com/yaklabco/gosage/pkg/config"
	"github.com/yaklabco/gosage/pkg/edit"
	"github.com/yaklabco/gosage/pkg/external"
	"github.com/yaklabco/gosage/pkg/fsutil"
	"github.com/yaklabco/gosage/pkg/sourcemap"
)

type convertFlags struct {
	output    string
	diff      bool
	reference bool
	noPrelude bool
}

func newConvertCommand() *cobra.Command {
	flags := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Print the Python text a Sage file is rewritten to",
		Long: `Rewrite a Sage file to Python and print the result. Reads standard
input when no file or "-" is given.

With --reference the configured Sage preparser is run as well, and --diff
then compares the two rewrites instead of the Sage and Python texts.

Examples:
  gosage convert rings.sage              # Print the rewritten text
  gosage convert --diff rings.sage       # Unified diff from Sage to Python
  gosage convert --reference --diff x.sage   # Compare with sage --preparse
  gosage convert -o rings.py rings.sage  # Write to a file`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return runConvert(cmd, path, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write the result to a file instead of stdout")
	cmd.Flags().BoolVar(&flags.diff, "diff", false, "print a unified diff instead of the rewritten text")
	cmd.Flags().BoolVar(&flags.reference, "reference", false, "also run the configured Sage preparser")
	cmd.Flags().BoolVar(&flags.noPrelude, "no-prelude", false, "do not insert the sage.all import")

	return cmd
}

func runConvert(cmd *cobra.Command, path string, flags *convertFlags) error {
	ctx := commandContext(cmd)

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
	oldName, oldText := displayPath(path), content
	newName, newText := displayPath(path)+" (python)", m.Rewritten().Content

	if flags.reference {
		conv := external.NewExecConverter(comps.tools.converter, loaded.Config.Converter.OutputSuffix)
		ref, err := conv.Convert(ctx, content)
		if err != nil {
			return fmt.Errorf("reference preparser: %w", err)
		}
		logging.FromContext(ctx).Debug("reference conversion done", logging.FieldCommand, comps.tools.converter.Command)
		if flags.diff {
			oldName, oldText = displayPath(path)+" (preparser)", ref
		} else {
			newText = ref
		}
	}

	out := newText
	if flags.diff {
		out = []byte(edit.NewDiff(oldName, newName, oldText, newText).String())
	}

	if flags.output != "" {
		if flags.output == path {
			return fmt.Errorf("%w: output would overwrite the input", ErrUsage)
		}
		return fsutil.WriteAtomic(ctx, flags.output, out, 0)
	}
	w := cmd.OutOrStdout()
	if flags.diff {
		out = []byte(pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), w)).FormatDiff(string(out)))
	}
	if _, err := w.Write(out); err != nil {
		return errors.Join(errors.New("write output"), err)
	}
	return nil
}
