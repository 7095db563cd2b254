package recognize

import (
	"github.com/yaklabco/gosage/pkg/source"
	"github.com/yaklabco/gosage/pkg/spanindex"
)

// PowerOperatorRule rewrites the exponent operator "^" to "**".
// It also covers the augmented form: "a ^= 2" becomes "a **= 2".
type PowerOperatorRule struct{}

// NewPowerOperatorRule creates the power operator rule.
func NewPowerOperatorRule() *PowerOperatorRule {
	return &PowerOperatorRule{}
}

func (*PowerOperatorRule) ID() string { return "power-operator" }

func (*PowerOperatorRule) Description() string { return `exponentiation "^" becomes "**"` }

func (*PowerOperatorRule) Kind() spanindex.Kind { return spanindex.KindOperator }

func (*PowerOperatorRule) Match(text *Text, offset int) (Match, bool) {
	if text.At(offset) != '^' {
		return Match{}, false
	}
	return Match{Range: source.NewRange(offset, offset+1), Replacement: "**"}, true
}

// XorOperatorRule rewrites Sage's bitwise exclusive-or "^^" to Python's "^".
type XorOperatorRule struct{}

// NewXorOperatorRule creates the exclusive-or operator rule.
func NewXorOperatorRule() *XorOperatorRule {
	return &XorOperatorRule{}
}

func (*XorOperatorRule) ID() string { return "xor-operator" }

func (*XorOperatorRule) Description() string { return `bitwise exclusive-or "^^" becomes "^"` }

func (*XorOperatorRule) Kind() spanindex.Kind { return spanindex.KindOperator }

func (*XorOperatorRule) Match(text *Text, offset int) (Match, bool) {
	if text.At(offset) != '^' || text.At(offset+1) != '^' || !text.IsCode(offset+1) {
		return Match{}, false
	}
	return Match{Range: source.NewRange(offset, offset+2), Replacement: "^"}, true
}

// RationalLiteralRule tags a ratio of integer literals such as "1/3". The text
// is kept, but Sage evaluates it exactly while Python produces a float.
type RationalLiteralRule struct{}

// NewRationalLiteralRule creates the rational literal rule.
func NewRationalLiteralRule() *RationalLiteralRule {
	return &RationalLiteralRule{}
}

func (*RationalLiteralRule) ID() string { return "rational-literal" }

func (*RationalLiteralRule) Description() string {
	return `integer ratios such as "1/3" are exact rationals, not floats`
}

func (*RationalLiteralRule) Kind() spanindex.Kind { return spanindex.KindLiteral }

func (*RationalLiteralRule) Match(text *Text, offset int) (Match, bool) {
	prev := text.At(offset - 1)
	if offset > 0 && (source.IsIdentByte(prev) || prev == '.') {
		return Match{}, false
	}
	// In "2^1/3" the numerator binds to the operator on its left.
	if bindsTighter(text, offset) {
		return Match{}, false
	}

	numEnd := scanDigits(text, offset)
	if numEnd == offset || text.At(numEnd) != '/' || text.At(numEnd+1) == '/' || text.At(numEnd+1) == '=' {
		return Match{}, false
	}
	denEnd := scanDigits(text, numEnd+1)
	if denEnd == numEnd+1 {
		return Match{}, false
	}
	if next := text.At(denEnd); source.IsIdentByte(next) || next == '.' {
		return Match{}, false
	}

	return Match{
		Range:       source.NewRange(offset, denEnd),
		Replacement: text.Slice(source.NewRange(offset, denEnd)),
		Payload: &spanindex.Literal{
			Numerator:   text.Slice(source.NewRange(offset, numEnd)),
			Denominator: text.Slice(source.NewRange(numEnd+1, denEnd)),
		},
	}, true
}

func bindsTighter(text *Text, offset int) bool {
	i := offset - 1
	for i >= 0 && (text.At(i) == ' ' || text.At(i) == '\t') {
		i--
	}
	switch text.At(i) {
	case '^', '*', '/', '%', '@':
		return i >= 0
	}
	return false
}

// scanDigits returns the end of the run of ASCII digits starting at offset.
// Underscore separators are accepted between digits.
func scanDigits(text *Text, offset int) int {
	i := offset
	for i < text.Len() && text.IsCode(i) {
		c := text.At(i)
		if c >= '0' && c <= '9' {
			i++
			continue
		}
		if c == '_' && i > offset && isDigit(text.At(i+1)) {
			i++
			continue
		}
		break
	}
	return i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
