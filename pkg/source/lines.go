package source

import (
	"sort"
	"unicode/utf8"
)

// LineInfo holds metadata for a single line in a file.
type LineInfo struct {
	// StartOffset is the byte index of the line start.
	StartOffset int

	// NewlineStart is the byte index where newline characters begin.
	// For lines without a trailing newline (e.g., last line), this equals EndOffset.
	NewlineStart int

	// EndOffset is the byte index just after the newline (or end of file).
	EndOffset int
}

// BuildLines constructs line metadata from content.
// It handles both LF (\n) and CRLF (\r\n) line endings. Empty content has a
// single empty line so that offset 0 always resolves.
func BuildLines(content []byte) []LineInfo {
	var lines []LineInfo
	lineStart := 0

	for idx, char := range content {
		if char != '\n' {
			continue
		}
		newlineStart := idx
		if idx > 0 && content[idx-1] == '\r' {
			newlineStart = idx - 1
		}
		lines = append(lines, LineInfo{
			StartOffset:  lineStart,
			NewlineStart: newlineStart,
			EndOffset:    idx + 1,
		})
		lineStart = idx + 1
	}

	lines = append(lines, LineInfo{
		StartOffset:  lineStart,
		NewlineStart: len(content),
		EndOffset:    len(content),
	})

	return lines
}

// lineIndex returns the 0-based index of the line containing offset.
// Offsets past the end resolve to the last line.
func (s *Snapshot) lineIndex(offset int) int {
	idx := sort.Search(len(s.Lines), func(i int) bool {
		return s.Lines[i].EndOffset > offset
	})
	if idx >= len(s.Lines) {
		idx = len(s.Lines) - 1
	}
	return idx
}

// LineCount returns the number of lines in the snapshot.
func (s *Snapshot) LineCount() int {
	return len(s.Lines)
}

// LineAt converts a byte offset to 1-based line and column numbers.
// Column counts bytes, not runes.
// Returns (0, 0) if the offset is out of range.
func (s *Snapshot) LineAt(offset int) (int, int) {
	if offset < 0 || offset > len(s.Content) {
		return 0, 0
	}
	idx := s.lineIndex(offset)
	return idx + 1, offset - s.Lines[idx].StartOffset + 1
}

// Offset converts 1-based line and column numbers to a byte offset.
// Returns (offset, true) on success, or (0, false) if out of range.
func (s *Snapshot) Offset(line, col int) (int, bool) {
	if line < 1 || line > len(s.Lines) || col < 1 {
		return 0, false
	}
	info := s.Lines[line-1]
	offset := info.StartOffset + col - 1
	if offset > info.NewlineStart {
		return 0, false
	}
	return offset, true
}

// LineContent returns the content of a 1-based line number, excluding the newline.
// Returns nil if the line number is out of range.
func (s *Snapshot) LineContent(line int) []byte {
	if line < 1 || line > len(s.Lines) {
		return nil
	}
	info := s.Lines[line-1]
	return s.Content[info.StartOffset:info.NewlineStart]
}

// LineStart returns the byte offset at which the line containing offset begins.
func (s *Snapshot) LineStart(offset int) int {
	if offset <= 0 {
		return 0
	}
	if offset > len(s.Content) {
		offset = len(s.Content)
	}
	return s.Lines[s.lineIndex(offset)].StartOffset
}

// ToLSP converts a byte offset to a 0-based line and UTF-16 column.
// Offsets beyond the content clamp to its end.
func (s *Snapshot) ToLSP(offset int) LSPPosition {
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.Content) {
		offset = len(s.Content)
	}
	idx := s.lineIndex(offset)
	start := s.Lines[idx].StartOffset
	return LSPPosition{Line: idx, Character: utf16Len(s.Content[start:offset])}
}

// FromLSP converts a 0-based line and UTF-16 column to a byte offset.
// A column past the end of the line clamps to the line end, and a line past
// the last line clamps to the end of the content, as editors expect.
func (s *Snapshot) FromLSP(pos LSPPosition) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(s.Lines) {
		return len(s.Content)
	}
	info := s.Lines[pos.Line]
	offset := info.StartOffset
	units := 0
	for offset < info.NewlineStart && units < pos.Character {
		r, size := utf8.DecodeRune(s.Content[offset:info.NewlineStart])
		units += utf16Units(r)
		offset += size
	}
	return offset
}

// FromRuneColumn converts a 1-based line and 1-based code point column to a
// byte offset, clamping like FromLSP. Python tooling reports columns this way.
func (s *Snapshot) FromRuneColumn(line, col int) int {
	if line < 1 {
		return 0
	}
	if line > len(s.Lines) {
		return len(s.Content)
	}
	info := s.Lines[line-1]
	offset := info.StartOffset
	for n := 1; n < col && offset < info.NewlineStart; n++ {
		_, size := utf8.DecodeRune(s.Content[offset:info.NewlineStart])
		offset += size
	}
	return offset
}

func utf16Len(b []byte) int {
	n := 0
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		n += utf16Units(r)
		b = b[size:]
	}
	return n
}

func utf16Units(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}
