package pretty_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/gosage/internal/ui/pretty"
	"github.com/yaklabco/gosage/pkg/diagmap"
	"github.com/yaklabco/gosage/pkg/source"
)

func TestFormatDiagnostic_Basic(t *testing.T) {
	styles := pretty.NewStyles(false) // No colors for easier testing
	snap := source.NewSnapshot("ring.sage", []byte("R.<x> = QQ[]\ny = undefined_name\n"))

	diag := diagmap.Diagnostic{
		Range:    source.NewRange(17, 31),
		Severity: diagmap.SeverityError,
		Code:     "F821",
		Source:   "ruff",
		Message:  "Undefined name `undefined_name`",
		Origin:   diagmap.OriginDirect,
	}

	result := styles.FormatDiagnostic("ring.sage", snap, diag, false)

	assert.Contains(t, result, "ring.sage:2:5")
	assert.Contains(t, result, "error")
	assert.Contains(t, result, "Undefined name `undefined_name`")
	assert.Contains(t, result, "(ruff/F821)")
	assert.NotContains(t, result, "generated")
}

func TestFormatDiagnostic_WithContext(t *testing.T) {
	styles := pretty.NewStyles(false)
	snap := source.NewSnapshot("", []byte("é = 2^3\n"))

	// "^" sits at byte 6 but rune column 6.
	diag := diagmap.Diagnostic{
		Range:    source.NewRange(6, 7),
		Severity: diagmap.SeverityWarning,
		Message:  "power",
	}

	result := styles.FormatDiagnostic("a.sage", snap, diag, true)

	assert.Contains(t, result, "a.sage:1:6")
	assert.Contains(t, result, "é = 2^3")
	lines := strings.Split(result, "\n")
	assert.Equal(t, "        "+strings.Repeat(" ", 5)+"^", lines[2])
}

func TestFormatDiagnostic_Origin(t *testing.T) {
	styles := pretty.NewStyles(false)
	snap := source.NewSnapshot("", []byte("P.<a,b> = ZZ[]\n"))

	tests := []struct {
		origin diagmap.Origin
		want   string
	}{
		{diagmap.OriginGenerated, "generated code"},
		{diagmap.OriginSynthetic, "inserted code"},
	}

	for _, tt := range tests {
		t.Run(string(tt.origin), func(t *testing.T) {
			diag := diagmap.Diagnostic{Severity: diagmap.SeverityInformation, Message: "m", Origin: tt.origin}
			assert.Contains(t, styles.FormatDiagnostic("p.sage", snap, diag, false), tt.want)
		})
	}
}

func TestLocation(t *testing.T) {
	t.Parallel()

	snap := source.NewSnapshot("", []byte("ab\nλμx\n"))

	tests := []struct {
		name     string
		offset   int
		wantLine int
		wantCol  int
	}{
		{"start", 0, 1, 1},
		{"second line", 3, 2, 1},
		{"after two runes", 7, 2, 3},
		{"out of range", 50, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			line, col := pretty.Location(snap, tt.offset)
			assert.Equal(t, tt.wantLine, line)
			assert.Equal(t, tt.wantCol, col)
		})
	}
}

func TestFormatSeverity_AllLevels(t *testing.T) {
	styles := pretty.NewStyles(false)

	tests := []struct {
		severity diagmap.Severity
		expected string
	}{
		{diagmap.SeverityError, "error"},
		{diagmap.SeverityWarning, "warning"},
		{diagmap.SeverityInformation, "info"},
		{diagmap.SeverityHint, "hint"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, styles.FormatSeverity(tt.severity))
		})
	}
}

func TestFormatFileHeader(t *testing.T) {
	styles := pretty.NewStyles(false)

	assert.Equal(t, "a.sage", styles.FormatFileHeader("a.sage", 0))
	assert.Equal(t, "a.sage (3 issues)", styles.FormatFileHeader("a.sage", 3))
}
