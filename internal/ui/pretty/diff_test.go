package pretty_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/gosage/internal/ui/pretty"
)

func TestFormatDiff_NoColorIsIdentity(t *testing.T) {
	t.Parallel()

	diff := "--- a.sage\n+++ a.sage (python)\n@@ -1,2 +1,2 @@\n-x = 2^3\n+x = 2**3\n y = 1\n"
	styles := pretty.NewStyles(false)

	assert.Equal(t, diff, styles.FormatDiff(diff))
	assert.Empty(t, styles.FormatDiff(""))
}

func TestFormatDiff_KeepsLines(t *testing.T) {
	t.Parallel()

	diff := "@@ -1 +1 @@\n-a\n+b\n"
	out := pretty.NewStyles(true).FormatDiff(diff)

	assert.Contains(t, out, "-a")
	assert.Contains(t, out, "+b")
	assert.Equal(t, 3, strings.Count(out, "\n"))
}

