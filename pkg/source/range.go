// Package source provides immutable text snapshots and the coordinate
// conversions shared by the rest of gosage: byte offsets, 1-based line and
// column pairs for terminal output, and 0-based UTF-16 positions for editors.
package source

import "fmt"

// Range is a half-open byte range [Start, End) in some text.
type Range struct {
	// Start is the byte index where the range begins (inclusive).
	Start int

	// End is the byte index where the range ends (exclusive).
	End int
}

// NewRange returns the range [start, end).
func NewRange(start, end int) Range {
	return Range{Start: start, End: end}
}

// Point returns the empty range at offset.
func Point(offset int) Range {
	return Range{Start: offset, End: offset}
}

// Len returns the length of the range in bytes.
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty returns true if the range has zero length.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// Contains returns true if the given offset is within this range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Covers returns true if other lies entirely within r.
// An empty range at r.End is covered.
func (r Range) Covers(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// Shift returns the range moved by delta bytes.
func (r Range) Shift(delta int) Range {
	return Range{Start: r.Start + delta, End: r.End + delta}
}

// Valid reports whether the range is well formed within text of length n.
func (r Range) Valid(n int) bool {
	return r.Start >= 0 && r.Start <= r.End && r.End <= n
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// Position represents a 1-based line and byte column in a file.
type Position struct {
	Line   int
	Column int
}

// IsValid returns true if this position has valid (positive) values.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0
}

// LSPPosition is a 0-based line and UTF-16 code unit offset, as editors
// speaking the language server protocol count them.
type LSPPosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// LSPRange is a pair of editor positions.
type LSPRange struct {
	Start LSPPosition `json:"start"`
	End   LSPPosition `json:"end"`
}
