package recognize

import "github.com/yaklabco/gosage/pkg/source"

// byteClass tells rules which bytes are program text.
type byteClass uint8

const (
	classCode byteClass = iota
	classString
	classComment
)

// Text is an original document prepared for rule matching: every byte is
// classified as code, string literal or comment, and code bytes carry their
// bracket nesting depth.
type Text struct {
	src    []byte
	class  []byteClass
	depth  []int32
	inline []Rule
}

// NewText classifies src. Unterminated strings run to the end of their line
// (or of the text, for triple-quoted strings), matching how Python reports
// them, so that one unclosed quote cannot hide the rest of the document.
func NewText(src []byte) *Text {
	t := &Text{
		src:   src,
		class: make([]byteClass, len(src)),
		depth: make([]int32, len(src)),
	}
	t.classify()
	return t
}

// Bytes returns the underlying text.
func (t *Text) Bytes() []byte {
	return t.src
}

// Len returns the text length in bytes.
func (t *Text) Len() int {
	return len(t.src)
}

// IsCode reports whether the byte at offset is program text.
func (t *Text) IsCode(offset int) bool {
	return offset >= 0 && offset < len(t.src) && t.class[offset] == classCode
}

func (t *Text) isComment(offset int) bool {
	return offset >= 0 && offset < len(t.src) && t.class[offset] == classComment
}

// Depth returns the bracket nesting depth at offset.
func (t *Text) Depth(offset int) int {
	if offset < 0 || offset >= len(t.src) {
		return 0
	}
	return int(t.depth[offset])
}

// At returns the byte at offset, or 0 outside the text.
func (t *Text) At(offset int) byte {
	if offset < 0 || offset >= len(t.src) {
		return 0
	}
	return t.src[offset]
}

// Slice returns the text in r.
func (t *Text) Slice(r source.Range) string {
	return string(t.src[r.Start:r.End])
}

// AtStatementStart reports whether offset begins a logical statement: only
// indentation separates it from the start of the text, from a newline outside
// brackets, or from a semicolon.
func (t *Text) AtStatementStart(offset int) bool {
	if !t.IsCode(offset) || t.Depth(offset) != 0 {
		return false
	}
	i := offset - 1
	for i >= 0 && (t.src[i] == ' ' || t.src[i] == '\t') {
		i--
	}
	if i < 0 {
		return true
	}
	switch t.src[i] {
	case ';':
		return t.class[i] == classCode
	case '\n':
		return !t.continued(i)
	}
	return false
}

// continued reports whether the newline at nl ends a line joined to the
// next one by a backslash or an open bracket.
func (t *Text) continued(nl int) bool {
	if t.depth[nl] != 0 && t.class[nl] == classCode {
		return true
	}
	prev := nl - 1
	if prev >= 0 && t.src[prev] == '\r' {
		prev--
	}
	return prev >= 0 && t.src[prev] == '\\' && t.class[prev] == classCode
}

// StatementEnd reports whether offset terminates the statement containing
// the code before it: end of text, a line break, a semicolon or a comment.
func (t *Text) StatementEnd(offset int) bool {
	if offset >= len(t.src) {
		return true
	}
	switch t.src[offset] {
	case '\n', '\r', '#':
		return true
	case ';':
		return t.class[offset] == classCode
	}
	return false
}

func (t *Text) classify() {
	src := t.src
	var depth int32
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '#':
			for i < len(src) && src[i] != '\n' {
				t.class[i] = classComment
				t.depth[i] = depth
				i++
			}
		case c == '"' || c == '\'':
			i = t.markString(i, i, depth)
		case isStringPrefix(src, i):
			start := i
			for src[i] != '"' && src[i] != '\'' {
				i++
			}
			i = t.markString(start, i, depth)
		default:
			switch c {
			case '(', '[', '{':
				t.depth[i] = depth
				depth++
				i++
				continue
			case ')', ']', '}':
				if depth > 0 {
					depth--
				}
			}
			t.depth[i] = depth
			i++
		}
	}
}

// markString classifies the string literal whose prefix starts at start and
// whose opening quote is at quote. It returns the offset after the literal.
func (t *Text) markString(start, quote int, depth int32) int {
	src := t.src
	q := src[quote]
	raw := false
	for _, p := range src[start:quote] {
		if p == 'r' || p == 'R' {
			raw = true
		}
	}
	triple := quote+2 < len(src) && src[quote+1] == q && src[quote+2] == q

	end := quote + 1
	if triple {
		end = quote + 3
	}
	for end < len(src) {
		c := src[end]
		if c == '\\' && !raw {
			end += 2
			continue
		}
		if triple {
			if c == q && end+2 < len(src) && src[end+1] == q && src[end+2] == q {
				end += 3
				break
			}
		} else {
			if c == '\n' {
				break
			}
			if c == q {
				end++
				break
			}
		}
		end++
	}
	end = min(end, len(src))

	for i := start; i < end; i++ {
		t.class[i] = classString
		t.depth[i] = depth
	}
	return end
}

// isStringPrefix reports whether a string prefix such as r, b, f or rb
// starts at i and is immediately followed by a quote.
func isStringPrefix(src []byte, i int) bool {
	if i > 0 && source.IsIdentByte(src[i-1]) {
		return false
	}
	for n := 0; n < 2 && i+n < len(src); n++ {
		switch src[i+n] {
		case 'r', 'R', 'b', 'B', 'f', 'F', 'u', 'U':
			if i+n+1 < len(src) && (src[i+n+1] == '"' || src[i+n+1] == '\'') {
				return true
			}
		default:
			return false
		}
	}
	return false
}
