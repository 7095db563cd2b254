package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gosage/pkg/source"
)

func TestBuildLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		expected []source.LineInfo
	}{
		{"empty", "", []source.LineInfo{{0, 0, 0}}},
		{"single line", "x = 1", []source.LineInfo{{0, 5, 5}}},
		{"trailing newline", "x\n", []source.LineInfo{{0, 1, 2}, {2, 2, 2}}},
		{"crlf", "a\r\nb", []source.LineInfo{{0, 1, 3}, {3, 4, 4}}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.expected, source.BuildLines([]byte(testCase.content)))
		})
	}
}

func TestSnapshotLineAtAndOffset(t *testing.T) {
	t.Parallel()

	snap := source.NewSnapshot("a.sage", []byte("x = 2^3\nP.<t> = QQ[]\n"))

	line, col := snap.LineAt(5)
	assert.Equal(t, 1, line)
	assert.Equal(t, 6, col)

	line, col = snap.LineAt(8)
	assert.Equal(t, 2, line)
	assert.Equal(t, 1, col)

	offset, ok := snap.Offset(2, 3)
	require.True(t, ok)
	assert.Equal(t, 10, offset)

	_, ok = snap.Offset(9, 1)
	assert.False(t, ok)

	assert.Equal(t, "P.<t> = QQ[]", string(snap.LineContent(2)))
	assert.Equal(t, 8, snap.LineStart(12))
}

func TestSnapshotLSPConversion(t *testing.T) {
	t.Parallel()

	// "é" is two bytes and one UTF-16 unit, "𝔽" is four bytes and two units.
	snap := source.NewSnapshot("", []byte("a = 'é𝔽'\nb = a^2"))

	tests := []struct {
		name   string
		offset int
		pos    source.LSPPosition
	}{
		{"start", 0, source.LSPPosition{Line: 0, Character: 0}},
		{"after two byte rune", 7, source.LSPPosition{Line: 0, Character: 6}},
		{"after astral rune", 11, source.LSPPosition{Line: 0, Character: 8}},
		{"second line caret", 18, source.LSPPosition{Line: 1, Character: 5}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.pos, snap.ToLSP(testCase.offset))
			assert.Equal(t, testCase.offset, snap.FromLSP(testCase.pos))
		})
	}

	assert.Equal(t, 12, snap.FromLSP(source.LSPPosition{Line: 0, Character: 99}), "clamps to line end")
	assert.Equal(t, len(snap.Content), snap.FromLSP(source.LSPPosition{Line: 7}))
}

func TestSnapshotFromRuneColumn(t *testing.T) {
	t.Parallel()

	snap := source.NewSnapshot("", []byte("s = 'é'; y\n"))

	assert.Equal(t, 0, snap.FromRuneColumn(1, 1))
	assert.Equal(t, 10, snap.FromRuneColumn(1, 10))
	assert.Equal(t, 12, snap.FromRuneColumn(2, 1))
	assert.Equal(t, len(snap.Content), snap.FromRuneColumn(5, 1))
}

func TestWordAt(t *testing.T) {
	t.Parallel()

	snap := source.NewSnapshot("", []byte("n = factor(120)"))

	assert.Equal(t, source.NewRange(4, 10), snap.WordAt(6))
	assert.Equal(t, source.NewRange(4, 10), snap.WordAt(10), "cursor after the word")
	assert.Equal(t, source.Point(3), snap.WordAt(3))
}

func TestRange(t *testing.T) {
	t.Parallel()

	r := source.NewRange(2, 5)
	assert.Equal(t, 3, r.Len())
	assert.True(t, r.Contains(2))
	assert.False(t, r.Contains(5))
	assert.True(t, r.Covers(source.Point(5)))
	assert.Equal(t, source.NewRange(4, 7), r.Shift(2))
	assert.True(t, r.Valid(5))
	assert.False(t, r.Valid(4))
	assert.Equal(t, "[2,5)", r.String())
}
