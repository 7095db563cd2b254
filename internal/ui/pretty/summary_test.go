package pretty_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/gosage/internal/ui/pretty"
	"github.com/yaklabco/gosage/pkg/runner"
)

func TestFormatSummary_Basic(t *testing.T) {
	styles := pretty.NewStyles(false)

	stats := runner.Stats{
		FilesProcessed:        10,
		FilesWithIssues:       3,
		DiagnosticsTotal:      15,
		DiagnosticsBySeverity: map[string]int{"error": 5, "warning": 10},
	}

	result := styles.FormatSummary(stats)

	assert.Contains(t, result, "Summary")
	assert.Contains(t, result, "Files checked:")
	assert.Contains(t, result, "Files with issues:")
	assert.Contains(t, result, "Total issues:")
	assert.Contains(t, result, "Errors:")
	assert.Contains(t, result, "Warnings:")
	assert.Contains(t, result, "Check failed with errors")
}

func TestFormatSummary_NoIssues(t *testing.T) {
	styles := pretty.NewStyles(false)

	stats := runner.Stats{
		FilesProcessed:        5,
		DiagnosticsBySeverity: map[string]int{},
	}

	result := styles.FormatSummary(stats)

	assert.Contains(t, result, "Check passed")
	assert.NotContains(t, result, "Files with issues:")
	assert.NotContains(t, result, "Dropped:")
}

func TestFormatSummary_UnavailableAndDropped(t *testing.T) {
	styles := pretty.NewStyles(false)

	stats := runner.Stats{
		FilesProcessed:        4,
		FilesUnavailable:      1,
		FilesWithIssues:       2,
		DiagnosticsTotal:      2,
		DiagnosticsDropped:    3,
		DiagnosticsBySeverity: map[string]int{"info": 1, "warning": 1},
	}

	result := styles.FormatSummary(stats)

	assert.Contains(t, result, "Not analyzed:")
	assert.Contains(t, result, "Dropped:")
	assert.Contains(t, result, "Check completed with warnings")
}

func TestFormatSummary_UnreadableFails(t *testing.T) {
	styles := pretty.NewStyles(false)

	stats := runner.Stats{FilesErrored: 1, DiagnosticsBySeverity: map[string]int{}}

	assert.Contains(t, styles.FormatSummary(stats), "Check failed with errors")
}

func TestFormatSummaryOneLine(t *testing.T) {
	styles := pretty.NewStyles(false)

	tests := []struct {
		name  string
		stats runner.Stats
		want  string
	}{
		{
			name:  "no issues",
			stats: runner.Stats{FilesProcessed: 1, DiagnosticsBySeverity: map[string]int{}},
			want:  "No issues found (1 file checked)\n",
		},
		{
			name: "mixed",
			stats: runner.Stats{
				FilesProcessed:        3,
				FilesWithIssues:       2,
				DiagnosticsTotal:      3,
				DiagnosticsBySeverity: map[string]int{"error": 1, "warning": 2},
			},
			want: "3 issues (1 error, 2 warnings) in 2 files\n",
		},
		{
			name: "dropped",
			stats: runner.Stats{
				FilesProcessed:        1,
				FilesWithIssues:       1,
				DiagnosticsTotal:      1,
				DiagnosticsDropped:    2,
				DiagnosticsBySeverity: map[string]int{"hint": 1},
			},
			want: "1 issue (1 hint) in 1 file, 2 dropped\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, styles.FormatSummaryOneLine(tt.stats))
		})
	}
}
