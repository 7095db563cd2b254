package edit

import (
	"fmt"
	"strings"
)

// contextLines is the number of unchanged lines shown around each change.
const contextLines = 3

// LineKind classifies a line of a unified diff.
type LineKind int

const (
	// LineContext is an unchanged line.
	LineContext LineKind = iota
	// LineAdd exists only in the new text.
	LineAdd
	// LineRemove exists only in the old text.
	LineRemove
)

// Line is one line of a hunk, without its diff prefix.
type Line struct {
	Kind    LineKind
	Content string
}

// Hunk is a contiguous group of changes with surrounding context.
// Start fields are 1-based line numbers.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// Diff is a line-based unified diff between two texts.
type Diff struct {
	OldPath string
	NewPath string
	Hunks   []Hunk
}

// HasChanges returns true if the diff contains any changes.
func (d *Diff) HasChanges() bool {
	return d != nil && len(d.Hunks) > 0
}

// Stats returns the number of added and removed lines.
func (d *Diff) Stats() (int, int) {
	if d == nil {
		return 0, 0
	}
	var added, removed int
	for _, hunk := range d.Hunks {
		for _, line := range hunk.Lines {
			switch line.Kind {
			case LineAdd:
				added++
			case LineRemove:
				removed++
			case LineContext:
			}
		}
	}
	return added, removed
}

// String renders the diff in unified format.
func (d *Diff) String() string {
	if !d.HasChanges() {
		return ""
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "--- %s\n+++ %s\n", d.OldPath, d.NewPath)
	for _, hunk := range d.Hunks {
		fmt.Fprintf(&builder, "@@ -%d,%d +%d,%d @@\n", hunk.OldStart, hunk.OldCount, hunk.NewStart, hunk.NewCount)
		for _, line := range hunk.Lines {
			builder.WriteByte(" +-"[line.Kind])
			builder.WriteString(line.Content)
			builder.WriteByte('\n')
		}
	}
	return builder.String()
}

// NewDiff computes a unified diff between oldText and newText.
// Returns nil when the texts have identical lines.
func NewDiff(oldPath, newPath string, oldText, newText []byte) *Diff {
	oldLines := splitLines(oldText)
	newLines := splitLines(newText)

	ops := diffOps(oldLines, newLines)
	hunks := groupHunks(ops)
	if len(hunks) == 0 {
		return nil
	}
	return &Diff{OldPath: oldPath, NewPath: newPath, Hunks: hunks}
}

func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	lines := strings.Split(string(content), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// diffOps walks an LCS table and emits one Line per input line.
func diffOps(oldLines, newLines []string) []Line {
	rows, cols := len(oldLines), len(newLines)
	table := make([][]int, rows+1)
	for i := range table {
		table[i] = make([]int, cols+1)
	}
	for i := rows - 1; i >= 0; i-- {
		for j := cols - 1; j >= 0; j-- {
			if oldLines[i] == newLines[j] {
				table[i][j] = table[i+1][j+1] + 1
			} else {
				table[i][j] = max(table[i+1][j], table[i][j+1])
			}
		}
	}

	ops := make([]Line, 0, rows+cols)
	i, j := 0, 0
	for i < rows || j < cols {
		switch {
		case i < rows && j < cols && oldLines[i] == newLines[j]:
			ops = append(ops, Line{Kind: LineContext, Content: oldLines[i]})
			i++
			j++
		case i < rows && (j == cols || table[i+1][j] >= table[i][j+1]):
			ops = append(ops, Line{Kind: LineRemove, Content: oldLines[i]})
			i++
		default:
			ops = append(ops, Line{Kind: LineAdd, Content: newLines[j]})
			j++
		}
	}
	return ops
}

func groupHunks(ops []Line) []Hunk {
	var hunks []Hunk
	oldLine, newLine := 1, 1

	for idx := 0; idx < len(ops); {
		if ops[idx].Kind == LineContext {
			oldLine++
			newLine++
			idx++
			continue
		}

		lead := min(contextLines, countContextBefore(ops, idx))
		start := idx - lead
		hunk := Hunk{OldStart: oldLine - lead, NewStart: newLine - lead}

		// Extend through changes separated by short runs of context.
		end := idx
		for end < len(ops) {
			if ops[end].Kind != LineContext {
				end++
				continue
			}
			run := end
			for run < len(ops) && ops[run].Kind == LineContext {
				run++
			}
			if run == len(ops) || run-end > contextLines*2 {
				end = min(end+contextLines, len(ops))
				break
			}
			end = run
		}

		for _, op := range ops[start:end] {
			hunk.Lines = append(hunk.Lines, op)
			switch op.Kind {
			case LineContext:
				hunk.OldCount++
				hunk.NewCount++
			case LineRemove:
				hunk.OldCount++
			case LineAdd:
				hunk.NewCount++
			}
		}
		hunks = append(hunks, hunk)

		for _, op := range ops[idx:end] {
			if op.Kind != LineAdd {
				oldLine++
			}
			if op.Kind != LineRemove {
				newLine++
			}
		}
		idx = end
	}
	return hunks
}

func countContextBefore(ops []Line, idx int) int {
	n := 0
	for i := idx - 1; i >= 0 && ops[i].Kind == LineContext; i-- {
		n++
	}
	return n
}
