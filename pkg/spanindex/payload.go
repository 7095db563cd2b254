package spanindex

import "github.com/yaklabco/gosage/pkg/source"

// Payload is kind-specific span detail. The set of implementations is closed.
type Payload interface {
	payload()
}

// Role names what a generated statement does within an expansion.
type Role string

const (
	// RoleConstruct builds the declared object, e.g. "P = PolynomialRing(QQ, ...)".
	RoleConstruct Role = "construct"

	// RoleBind binds the generator names, e.g. "(x,) = P._first_ngens(1)".
	RoleBind Role = "bind"
)

// Statement is one generated statement of an expansion. Ranges are relative
// to the start of the span in their respective space.
type Statement struct {
	Role Role

	// Rewritten is the statement's extent within the span's rewritten text.
	Rewritten source.Range

	// Covers lists the parts of the declaration the statement stands for.
	Covers []source.Range

	// GeneratedOnly marks statements containing no verbatim original text.
	GeneratedOnly bool
}

// Anchor ties a verbatim copied piece of original text to its copy in the
// rewritten text. Both ranges are relative to the span start and have the
// same length.
type Anchor struct {
	Original  source.Range
	Rewritten source.Range
}

// Expansion describes a declaration rewritten into several statements.
type Expansion struct {
	// Name is the declared object, e.g. "P".
	Name string

	// Constructor is the called constructor or indexed base, e.g. "PolynomialRing".
	Constructor string

	// Generators lists the declared generator names in order.
	Generators []string

	// Statements are ordered by rewritten position.
	Statements []Statement

	// Anchors are ordered by position and never overlap.
	Anchors []Anchor

	// Literals are the ratios inside the declaration, in original order.
	// Each lies within an anchor.
	Literals []LiteralRef
}

func (*Expansion) payload() {}

// StatementFor returns the index of the first statement covering the
// relative original offset, or -1.
func (e *Expansion) StatementFor(offset int) int {
	for i, stmt := range e.Statements {
		for _, r := range stmt.Covers {
			if r.Contains(offset) {
				return i
			}
		}
	}
	return -1
}

// StatementAt returns the index of the statement containing the relative
// rewritten offset, or -1 for glue text between statements.
func (e *Expansion) StatementAt(offset int) int {
	for i, stmt := range e.Statements {
		if stmt.Rewritten.Contains(offset) {
			return i
		}
	}
	return -1
}

// AnchorIn returns the anchor whose range in the given space contains the
// relative offset.
func (e *Expansion) AnchorIn(space Space, offset int) (Anchor, bool) {
	for _, a := range e.Anchors {
		if a.In(space).Contains(offset) {
			return a, true
		}
	}
	return Anchor{}, false
}

// LiteralAt returns the literal whose relative original range contains offset.
func (e *Expansion) LiteralAt(offset int) (LiteralRef, bool) {
	for _, l := range e.Literals {
		if l.Original.Contains(offset) {
			return l, true
		}
	}
	return LiteralRef{}, false
}

// In returns the anchor's range in the given space.
func (a Anchor) In(space Space) source.Range {
	if space == Rewritten {
		return a.Rewritten
	}
	return a.Original
}

// Literal describes a ratio of integers kept verbatim.
type Literal struct {
	Numerator   string
	Denominator string
}

func (*Literal) payload() {}

// LiteralRef locates a literal nested in an expansion. Original is relative
// to the span start.
type LiteralRef struct {
	Original source.Range
	Literal  Literal
}
