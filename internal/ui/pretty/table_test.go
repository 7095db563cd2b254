package pretty_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gosage/internal/ui/pretty"
	"github.com/yaklabco/gosage/pkg/recognize"
	"github.com/yaklabco/gosage/pkg/sourcemap"
	"github.com/yaklabco/gosage/pkg/spanindex"
)

func buildMap(t *testing.T, text string) *sourcemap.Map {
	t.Helper()
	m, err := sourcemap.Build(recognize.NewDefault(), []byte(text))
	require.NoError(t, err)
	return m
}

func TestSpanRows(t *testing.T) {
	t.Parallel()

	m := buildMap(t, "x = 2^3\ny = x^^2\n")

	rows := pretty.SpanRows(m, false)
	require.Len(t, rows, 2)

	assert.Equal(t, pretty.SpanRow{
		Kind:      spanindex.KindOperator,
		Original:  "5-6",
		Rewritten: "5-7",
		Sage:      "^",
		Python:    "**",
	}, rows[0])
	assert.Equal(t, "13-15", rows[1].Original)
	assert.Equal(t, "14-15", rows[1].Rewritten)

	all := pretty.SpanRows(m, true)
	require.Len(t, all, 5)
	assert.Equal(t, spanindex.KindPassthrough, all[0].Kind)
	assert.Equal(t, `3\ny = x`, all[2].Sage)
}

func TestFormatSpans(t *testing.T) {
	t.Parallel()

	formatter := pretty.NewTableFormatter(pretty.NewStyles(false), false, 0)

	out := formatter.FormatSpans(buildMap(t, "x = 2^3\n"), false)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "KIND")
	assert.Contains(t, lines[0], "PYTHON")
	assert.True(t, strings.HasPrefix(lines[1], "===="))
	assert.Contains(t, lines[2], "operator-substitution")
	assert.Contains(t, lines[2], "**")
	assert.Equal(t, " 1 operator-substitution", lines[4])
}

func TestFormatSpans_Empty(t *testing.T) {
	t.Parallel()

	formatter := pretty.NewTableFormatter(pretty.NewStyles(false), false, 80)

	assert.Empty(t, formatter.FormatSpans(buildMap(t, "x = 1\n"), false))
	assert.Empty(t, formatter.FormatSpans(nil, true))
}

func TestFormatSpans_TruncatesToWidth(t *testing.T) {
	t.Parallel()

	formatter := pretty.NewTableFormatter(pretty.NewStyles(false), false, 0)

	out := formatter.FormatSpans(buildMap(t, "R.<alpha, beta, gamma, delta> = PolynomialRing(QQ)\n"), false)

	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.LessOrEqual(t, len(line), 100, line)
	}
	assert.Contains(t, out, "...")
}
