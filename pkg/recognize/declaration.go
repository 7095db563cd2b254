package recognize

import (
	"fmt"
	"strings"

	"github.com/yaklabco/gosage/pkg/source"
	"github.com/yaklabco/gosage/pkg/spanindex"
)

// GeneratorDeclarationRule expands a generator declaration such as
//
//	P.<x, y> = PolynomialRing(QQ)
//
// into the two statements Python needs to build the same object:
//
//	P = PolynomialRing(QQ, names=('x', 'y',)); (x, y,) = P._first_ngens(2)
//
// The indexed form "R.<t> = GF(7)[]" becomes "R = GF(7)['t']; (t,) = ...".
// Operator rewrites still apply inside the constructor arguments.
type GeneratorDeclarationRule struct{}

// NewGeneratorDeclarationRule creates the generator declaration rule.
func NewGeneratorDeclarationRule() *GeneratorDeclarationRule {
	return &GeneratorDeclarationRule{}
}

func (*GeneratorDeclarationRule) ID() string { return "generator-declaration" }

func (*GeneratorDeclarationRule) Description() string {
	return `"P.<x> = Ring(...)" expands to a constructor call and generator binding`
}

func (*GeneratorDeclarationRule) Kind() spanindex.Kind { return spanindex.KindExpansion }

func (*GeneratorDeclarationRule) Match(text *Text, offset int) (Match, bool) {
	if !text.AtStatementStart(offset) {
		return Match{}, false
	}
	decl, ok := parseDeclaration(text, offset)
	if !ok {
		return Match{}, false
	}
	return decl.expand(text), true
}

// declaration holds the pieces of a parsed generator declaration.
type declaration struct {
	start      int
	end        int
	name       source.Range
	generators []source.Range
	gensEnd    int // just past ">"

	ctor    source.Range
	call    bool
	args    source.Range // inside the call parentheses
	indexed bool
	base    source.Range // everything before "[" in the indexed form
	index   source.Range // "[...]" including brackets
}

func parseDeclaration(text *Text, offset int) (declaration, bool) {
	decl := declaration{start: offset}

	pos := scanIdent(text, offset)
	if pos == offset || text.At(pos) != '.' || text.At(pos+1) != '<' {
		return decl, false
	}
	decl.name = source.NewRange(offset, pos)
	pos += 2

	for {
		pos = skipBlanks(text, pos)
		end := scanIdent(text, pos)
		if end == pos {
			return decl, false
		}
		decl.generators = append(decl.generators, source.NewRange(pos, end))
		pos = skipBlanks(text, end)
		if text.At(pos) == ',' {
			pos++
			continue
		}
		if text.At(pos) != '>' {
			return decl, false
		}
		pos++
		break
	}
	decl.gensEnd = pos

	pos = skipBlanks(text, pos)
	if text.At(pos) != '=' || text.At(pos+1) == '=' {
		return decl, false
	}
	pos = skipBlanks(text, pos+1)

	rhsStart := pos
	pos = scanDotted(text, pos)
	if pos == rhsStart {
		return decl, false
	}
	decl.ctor = source.NewRange(rhsStart, pos)

	if text.At(pos) == '(' {
		closing, ok := matchBracket(text, pos)
		if !ok {
			return decl, false
		}
		decl.call = true
		decl.args = source.NewRange(pos+1, closing)
		pos = closing + 1
	}

	if open := skipBlanks(text, pos); text.At(open) == '[' && text.IsCode(open) {
		closing, ok := matchBracket(text, open)
		if !ok || strings.TrimSpace(text.Slice(source.NewRange(open+1, closing))) != "" {
			return decl, false
		}
		decl.indexed = true
		decl.base = source.NewRange(rhsStart, pos)
		decl.index = source.NewRange(open, closing+1)
		pos = closing + 1
	} else if !decl.call {
		return decl, false
	}

	decl.end = pos
	if !text.StatementEnd(skipBlanks(text, pos)) {
		return decl, false
	}
	return decl, true
}

func (d declaration) expand(text *Text) Match {
	names := make([]string, len(d.generators))
	for i, g := range d.generators {
		names[i] = text.Slice(g)
	}
	name := text.Slice(d.name)

	w := newSpanWriter(text, d.start)
	w.verbatim(d.name)
	w.generated(" = ")

	if d.indexed {
		text.rewriteInline(w, d.base)
		w.verbatim(source.NewRange(d.index.Start, d.index.Start+1))
		w.generated("'" + strings.Join(names, ", ") + "'")
		w.verbatim(source.NewRange(d.index.End-1, d.index.End))
	} else {
		w.verbatim(source.NewRange(d.ctor.Start, d.args.Start))
		core := trimTrailingSpace(text, d.args)
		text.rewriteInline(w, core)

		quoted := make([]string, len(names))
		for i, n := range names {
			quoted[i] = "'" + n + "'"
		}
		keyword := "names=(" + strings.Join(quoted, ", ") + ",)"
		switch {
		case core.IsEmpty():
			w.generated(keyword)
		case text.At(core.End-1) == ',':
			w.generated(" " + keyword)
		default:
			w.generated(", " + keyword)
		}

		text.rewriteInline(w, source.NewRange(core.End, d.args.End))
		w.verbatim(source.NewRange(d.args.End, d.args.End+1))
	}
	constructEnd := w.len()

	w.generated("; ")
	bindStart := w.len()
	w.generated(fmt.Sprintf("(%s,) = %s._first_ngens(%d)", strings.Join(names, ", "), name, len(names)))

	rel := func(start, end int) source.Range {
		return source.NewRange(start-d.start, end-d.start)
	}
	ctorName := text.Slice(d.ctor)

	return Match{
		Range:       source.NewRange(d.start, d.end),
		Replacement: w.String(),
		Payload: &spanindex.Expansion{
			Name:        name,
			Constructor: ctorName,
			Generators:  names,
			Statements: []spanindex.Statement{
				{
					Role:      spanindex.RoleConstruct,
					Rewritten: source.NewRange(0, constructEnd),
					Covers:    []source.Range{rel(d.name.Start, d.name.End), rel(d.gensEnd, d.end)},
				},
				{
					Role:          spanindex.RoleBind,
					Rewritten:     source.NewRange(bindStart, w.len()),
					Covers:        []source.Range{rel(d.name.End, d.gensEnd)},
					GeneratedOnly: true,
				},
			},
			Anchors:  w.anchors,
			Literals: w.literals,
		},
	}
}

func scanIdent(text *Text, offset int) int {
	c := text.At(offset)
	if !text.IsCode(offset) || !(c == '_' || c >= 0x80 || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')) {
		return offset
	}
	i := offset + 1
	for text.IsCode(i) && source.IsIdentByte(text.At(i)) {
		i++
	}
	return i
}

// scanDotted scans an attribute path such as "sage.rings.PolynomialRing".
func scanDotted(text *Text, offset int) int {
	end := scanIdent(text, offset)
	for end > offset && text.At(end) == '.' {
		next := scanIdent(text, end+1)
		if next == end+1 {
			break
		}
		end = next
	}
	return end
}

func skipBlanks(text *Text, offset int) int {
	for text.IsCode(offset) && (text.At(offset) == ' ' || text.At(offset) == '\t') {
		offset++
	}
	return offset
}

// matchBracket returns the offset of the bracket closing the one at open.
func matchBracket(text *Text, open int) (int, bool) {
	depth := text.Depth(open)
	for i := open + 1; i < text.Len(); i++ {
		if !text.IsCode(i) {
			continue
		}
		switch text.At(i) {
		case ')', ']', '}':
			if text.Depth(i) == depth {
				return i, true
			}
		}
	}
	return 0, false
}

// trimTrailingSpace drops trailing whitespace and comments from r so that
// generated text can follow its last code byte.
func trimTrailingSpace(text *Text, r source.Range) source.Range {
	end := r.End
	for end > r.Start {
		switch {
		case text.isComment(end - 1):
			end--
		case text.At(end-1) == ' ', text.At(end-1) == '\t', text.At(end-1) == '\n', text.At(end-1) == '\r':
			end--
		default:
			return source.NewRange(r.Start, end)
		}
	}
	return source.NewRange(r.Start, end)
}
