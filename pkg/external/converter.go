package external

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Converter turns Sage text into Python text.
type Converter interface {
	Convert(ctx context.Context, text []byte) ([]byte, error)
}

// DefaultPreparseCommand is the Sage preparser invocation.
//
//nolint:gochecknoglobals // Read-only default.
var DefaultPreparseCommand = []string{"sage", "--preparse"}

// DefaultPreparseSuffix is appended to the input file name by the preparser.
const DefaultPreparseSuffix = ".py"

// ExecConverter runs the Sage preparser on a temporary copy of the text and
// reads back the Python file it writes next to it.
type ExecConverter struct {
	Tool *Tool

	// OutputSuffix is appended to the input file name to find the output.
	OutputSuffix string
}

// NewExecConverter creates a converter for tool.
func NewExecConverter(tool *Tool, outputSuffix string) *ExecConverter {
	if outputSuffix == "" {
		outputSuffix = DefaultPreparseSuffix
	}
	return &ExecConverter{Tool: tool, OutputSuffix: outputSuffix}
}

// Convert implements Converter.
func (c *ExecConverter) Convert(ctx context.Context, text []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "gosage-preparse-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "document.sage")
	if err := os.WriteFile(input, text, 0o600); err != nil {
		return nil, fmt.Errorf("writing preparser input: %w", err)
	}

	if _, err := c.Tool.run(ctx, []string{input}, nil); err != nil {
		return nil, err
	}

	out, err := os.ReadFile(input + c.OutputSuffix)
	if err != nil {
		return nil, fmt.Errorf("reading preparser output: %w", err)
	}
	return out, nil
}
