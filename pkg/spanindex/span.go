// Package spanindex records how an original Sage text corresponds to its
// rewritten Python text, one span per contiguous piece, and answers point and
// range lookups in either coordinate space by binary search.
package spanindex

import (
	"fmt"

	"github.com/yaklabco/gosage/pkg/source"
)

// Kind classifies how a span's rewritten text relates to its original text.
type Kind int

const (
	// KindPassthrough is text copied unchanged.
	KindPassthrough Kind = iota

	// KindOperator replaces an operator token with a different one,
	// such as "^" with "**".
	KindOperator

	// KindLiteral keeps the text but changes its meaning, such as a ratio
	// of integers that is exact in Sage and a float division in Python.
	KindLiteral

	// KindExpansion turns one declaration into several generated statements.
	KindExpansion

	// KindInsertion is text with no original counterpart.
	KindInsertion
)

// kindNames is indexed by Kind.
//
//nolint:gochecknoglobals // Read-only lookup table.
var kindNames = [...]string{
	KindPassthrough: "passthrough",
	KindOperator:    "operator-substitution",
	KindLiteral:     "semantic-literal",
	KindExpansion:   "declarative-expansion",
	KindInsertion:   "synthetic-insertion",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseKind converts a kind name back to a Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return KindPassthrough, false
}

// Space selects one of the two coordinate systems.
type Space int

const (
	// Original is the Sage text as the user wrote it.
	Original Space = iota
	// Rewritten is the Python text handed to analysis tools.
	Rewritten
)

func (s Space) String() string {
	if s == Rewritten {
		return "rewritten"
	}
	return "original"
}

// Other returns the opposite space.
func (s Space) Other() Space {
	if s == Original {
		return Rewritten
	}
	return Original
}

// Span pairs a range of the original text with the range of rewritten text
// produced from it.
type Span struct {
	Original  source.Range
	Rewritten source.Range
	Kind      Kind

	// Rule names the recognizer rule that produced the span.
	// Empty for passthrough text.
	Rule string

	// Payload carries kind-specific detail. Nil unless Kind is
	// KindExpansion (*Expansion) or KindLiteral (*Literal).
	Payload Payload
}

// In returns the span's range in the given space.
func (s Span) In(space Space) source.Range {
	if space == Rewritten {
		return s.Rewritten
	}
	return s.Original
}

// IsSynthetic reports whether the span has no original text.
func (s Span) IsSynthetic() bool {
	return s.Original.IsEmpty()
}

// Expansion returns the span's expansion payload, or nil.
func (s Span) Expansion() *Expansion {
	exp, _ := s.Payload.(*Expansion)
	return exp
}

// Literal returns the span's literal payload, or nil.
func (s Span) Literal() *Literal {
	lit, _ := s.Payload.(*Literal)
	return lit
}
