// Package recognize turns Sage text into Python text, recording every
// rewrite as a span so that positions can be translated between the two.
//
// Recognition is driven by a registry of rules. Each rule knows one
// construct; anything no rule claims is copied through unchanged, so
// recognition cannot fail.
package recognize

import (
	"github.com/yaklabco/gosage/pkg/source"
	"github.com/yaklabco/gosage/pkg/spanindex"
)

// Match is a rule's claim on a stretch of original text.
type Match struct {
	// Range is the claimed original text.
	Range source.Range

	// Replacement is the rewritten text for Range.
	Replacement string

	// Payload is attached to the resulting span. Offsets inside it are
	// relative to Range.Start and to the start of Replacement.
	Payload spanindex.Payload
}

// Rule recognizes one construct of the extended dialect.
type Rule interface {
	// ID returns the unique identifier for this rule (e.g., "power-operator").
	ID() string

	// Description returns a one-line summary shown by "gosage rules".
	Description() string

	// Kind returns the kind of span the rule produces.
	Kind() spanindex.Kind

	// Match tries to recognize the construct beginning at offset, which is
	// always a code byte. Rules must not claim text beyond the statement
	// containing offset.
	Match(text *Text, offset int) (Match, bool)
}
