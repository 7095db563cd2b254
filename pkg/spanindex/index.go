package spanindex

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/yaklabco/gosage/pkg/source"
)

// ErrInvariant is matched by every InvariantError.
var ErrInvariant = errors.New("span index invariant violated")

// InvariantError reports a span list that does not describe a consistent
// correspondence between two texts. It signals a defect in whatever produced
// the spans, never bad user input.
type InvariantError struct {
	// Span is the index of the offending span, or -1 for the list as a whole.
	Span   int
	Reason string
}

func (e *InvariantError) Error() string {
	if e.Span < 0 {
		return fmt.Sprintf("%s: %s", ErrInvariant, e.Reason)
	}
	return fmt.Sprintf("%s: span %d: %s", ErrInvariant, e.Span, e.Reason)
}

// Is reports whether target is ErrInvariant.
func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}

// Index is an immutable, ordered list of spans covering an original and a
// rewritten text exactly.
//
// Spans are contiguous in both spaces. Rewritten ranges are never empty, so
// rewritten starts strictly increase. Original starts strictly increase
// except around synthetic insertions, whose empty original range shares its
// offset with the following span.
type Index struct {
	spans       []Span
	originalLen int
	rewriteLen  int
}

// New validates spans against both texts and returns an Index over a copy of
// them. The error, if any, is an *InvariantError.
func New(spans []Span, original, rewritten []byte) (*Index, error) {
	idx := &Index{
		spans:       append([]Span(nil), spans...),
		originalLen: len(original),
		rewriteLen:  len(rewritten),
	}
	if err := idx.validate(original, rewritten); err != nil {
		return nil, err
	}
	return idx, nil
}

func (ix *Index) validate(original, rewritten []byte) error {
	if len(ix.spans) == 0 {
		if ix.originalLen == 0 && ix.rewriteLen == 0 {
			return nil
		}
		return &InvariantError{Span: -1, Reason: "no spans for non-empty text"}
	}

	var origCursor, rewCursor int
	for i, span := range ix.spans {
		if span.Original.Start != origCursor {
			return &InvariantError{Span: i, Reason: fmt.Sprintf("original range %s does not start at %d", span.Original, origCursor)}
		}
		if span.Rewritten.Start != rewCursor {
			return &InvariantError{Span: i, Reason: fmt.Sprintf("rewritten range %s does not start at %d", span.Rewritten, rewCursor)}
		}
		if span.Original.End < span.Original.Start || span.Rewritten.End <= span.Rewritten.Start {
			return &InvariantError{Span: i, Reason: "inverted or empty rewritten range"}
		}
		if span.Original.IsEmpty() != (span.Kind == KindInsertion) {
			return &InvariantError{Span: i, Reason: fmt.Sprintf("%s span with original range %s", span.Kind, span.Original)}
		}
		if span.Original.End > len(original) || span.Rewritten.End > len(rewritten) {
			return &InvariantError{Span: i, Reason: "range extends past end of text"}
		}

		origText := original[span.Original.Start:span.Original.End]
		rewText := rewritten[span.Rewritten.Start:span.Rewritten.End]
		if err := validatePayload(i, span, origText, rewText); err != nil {
			return err
		}

		origCursor = span.Original.End
		rewCursor = span.Rewritten.End
	}

	if origCursor != ix.originalLen || rewCursor != ix.rewriteLen {
		return &InvariantError{Span: -1, Reason: fmt.Sprintf(
			"spans cover %d/%d original and %d/%d rewritten bytes",
			origCursor, ix.originalLen, rewCursor, ix.rewriteLen)}
	}
	return nil
}

func validatePayload(i int, span Span, origText, rewText []byte) error {
	switch span.Kind {
	case KindPassthrough, KindLiteral:
		if !bytes.Equal(origText, rewText) {
			return &InvariantError{Span: i, Reason: fmt.Sprintf("%s text differs between spaces", span.Kind)}
		}
		if span.Kind == KindLiteral && span.Literal() == nil {
			return &InvariantError{Span: i, Reason: "literal span without payload"}
		}
	case KindExpansion:
		exp := span.Expansion()
		if exp == nil || len(exp.Statements) == 0 {
			return &InvariantError{Span: i, Reason: "expansion span without statements"}
		}
		for _, stmt := range exp.Statements {
			if !stmt.Rewritten.Valid(len(rewText)) {
				return &InvariantError{Span: i, Reason: fmt.Sprintf("statement range %s outside span", stmt.Rewritten)}
			}
			for _, r := range stmt.Covers {
				if !r.Valid(len(origText)) {
					return &InvariantError{Span: i, Reason: fmt.Sprintf("covered range %s outside span", r)}
				}
			}
		}
		for _, a := range exp.Anchors {
			if !a.Original.Valid(len(origText)) || !a.Rewritten.Valid(len(rewText)) ||
				!bytes.Equal(origText[a.Original.Start:a.Original.End], rewText[a.Rewritten.Start:a.Rewritten.End]) {
				return &InvariantError{Span: i, Reason: fmt.Sprintf("anchor %s -> %s is not a verbatim copy", a.Original, a.Rewritten)}
			}
		}
		for _, l := range exp.Literals {
			if !slices.ContainsFunc(exp.Anchors, func(a Anchor) bool { return a.Original.Covers(l.Original) }) {
				return &InvariantError{Span: i, Reason: fmt.Sprintf("literal %s is not a verbatim copy", l.Original)}
			}
		}
	case KindOperator, KindInsertion:
	}
	return nil
}

// Len returns the number of spans.
func (ix *Index) Len() int {
	return len(ix.spans)
}

// TextLen returns the length of the text in the given space.
func (ix *Index) TextLen(space Space) int {
	if space == Rewritten {
		return ix.rewriteLen
	}
	return ix.originalLen
}

// At returns the i-th span.
func (ix *Index) At(i int) Span {
	return ix.spans[i]
}

// Spans returns a copy of all spans in order.
func (ix *Index) Spans() []Span {
	return append([]Span(nil), ix.spans...)
}

// Find returns the index of the span whose range in space contains offset,
// treating ranges as half-open. Empty ranges contain nothing, so an offset at
// a synthetic insertion resolves to the span after it. The end of the text
// is not contained by any span.
func (ix *Index) Find(space Space, offset int) (int, bool) {
	if offset < 0 || offset >= ix.TextLen(space) {
		return -1, false
	}
	i := sort.Search(len(ix.spans), func(i int) bool {
		return ix.spans[i].In(space).End > offset
	})
	if i == len(ix.spans) || ix.spans[i].In(space).Start > offset {
		return -1, false
	}
	return i, true
}

// FindEnd returns the index of the span whose range in space satisfies
// start < offset <= end, so that a range ending at a span boundary resolves
// to the span it ends, never the one after it. Offset zero resolves like Find.
func (ix *Index) FindEnd(space Space, offset int) (int, bool) {
	if offset == 0 {
		return ix.Find(space, 0)
	}
	if offset < 0 || offset > ix.TextLen(space) {
		return -1, false
	}
	i := sort.Search(len(ix.spans), func(i int) bool {
		return ix.spans[i].In(space).End >= offset
	})
	if i == len(ix.spans) {
		return -1, false
	}
	return i, true
}

// Overlapping returns the half-open interval [lo, hi) of span indexes whose
// ranges in space intersect r. An empty r selects the span found by Find.
func (ix *Index) Overlapping(space Space, r source.Range) (int, int, bool) {
	lo, ok := ix.Find(space, r.Start)
	if !ok {
		return 0, 0, false
	}
	if r.IsEmpty() {
		return lo, lo + 1, true
	}
	hi, ok := ix.FindEnd(space, r.End)
	if !ok {
		return 0, 0, false
	}
	return lo, hi + 1, true
}

// Kinds counts spans by kind.
func (ix *Index) Kinds() map[Kind]int {
	counts := make(map[Kind]int)
	for _, span := range ix.spans {
		counts[span.Kind]++
	}
	return counts
}
