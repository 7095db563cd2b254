package complete

import (
	"github.com/yaklabco/gosage/pkg/source"
	"github.com/yaklabco/gosage/pkg/spanindex"
)

// OperatorMatcher completes a lone '*' after an operand to the power
// operator '**' and offers '^^' after a lone '^'.
type OperatorMatcher struct{}

func (OperatorMatcher) ID() string           { return "power-operator" }
func (OperatorMatcher) Kind() spanindex.Kind { return spanindex.KindOperator }
func (OperatorMatcher) Priority() int        { return 10 }

// Match implements Matcher.
func (OperatorMatcher) Match(w Window) (Proposal, bool) {
	t := w.Text
	n := len(t)
	if n == 0 {
		return Proposal{}, false
	}
	last := t[n-1]
	if last != '*' && last != '^' {
		return Proposal{}, false
	}
	if n >= 2 && t[n-2] == last {
		return Proposal{}, false
	}
	if !operandBefore(t, n-1) {
		return Proposal{}, false
	}

	at := source.Point(w.Cursor())
	if last == '*' {
		return Proposal{
			Matched: 1,
			Suggestions: []Suggestion{{
				Label:      "** (power operator)",
				Detail:     "exponentiation, also written ^ in Sage",
				InsertText: "*",
				Replace:    at,
			}},
			AutoInsert: "*",
		}, true
	}
	// A lone '^' is already exponentiation; xor is only a possibility.
	return Proposal{
		Matched: 1,
		Suggestions: []Suggestion{{
			Label:      "^^ (bitwise xor)",
			Detail:     "a single ^ is exponentiation in Sage",
			InsertText: "^",
			Replace:    at,
		}},
	}, true
}

// operandBefore reports whether an operand ends before position i,
// ignoring blanks.
func operandBefore(t string, i int) bool {
	j := i - 1
	for j >= 0 && (t[j] == ' ' || t[j] == '\t') {
		j--
	}
	if j < 0 {
		return false
	}
	c := t[j]
	return source.IsIdentByte(c) || c == ')' || c == ']' || c == '}'
}
