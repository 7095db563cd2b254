package complete

import (
	"regexp"
	"strings"

	"github.com/yaklabco/gosage/pkg/sagedoc"
	"github.com/yaklabco/gosage/pkg/source"
	"github.com/yaklabco/gosage/pkg/spanindex"
)

// defaultArgs lists the argument templates offered for each constructor,
// most common first.
//
//nolint:gochecknoglobals // Read-only table.
var defaultArgs = map[string][]string{
	"PolynomialRing":        {"QQ", "ZZ", "GF(2)"},
	"LaurentPolynomialRing": {"QQ"},
	"PowerSeriesRing":       {"QQ"},
	"NumberField":           {"x^2 + 1"},
	"FunctionField":         {"QQ"},
	"FreeAlgebra":           {"QQ, 2"},
	"GF":                    {"4"},
}

var gensPattern = regexp.MustCompile(`^\s*[A-Za-z_]\w*(\s*,\s*[A-Za-z_]\w*)*\s*,?\s*$`)

type declStage int

const (
	stageDot     declStage = iota // "R."
	stageOpen                     // "R.<"
	stageGens                     // "R.<x,y"
	stageClosed                   // "R.<x>"
	stageAssign                   // "R.<x> ="
	stagePrefix                   // "R.<x> = Pol"
)

type constructor struct {
	name string
	args []string
}

func (c constructor) call(i int) string {
	return c.name + "(" + c.args[i] + ")"
}

// DeclarationMatcher completes the prefix forms of a generator declaration
// such as "R.<x,y> = PolynomialRing(QQ)".
type DeclarationMatcher struct {
	ctors []constructor
}

// NewDeclarationMatcher creates a matcher offering the constructors
// documented in cat.
func NewDeclarationMatcher(cat *sagedoc.Catalog) *DeclarationMatcher {
	m := &DeclarationMatcher{}
	for _, e := range cat.OfKind(sagedoc.KindConstructor) {
		args := defaultArgs[e.Name]
		if len(args) == 0 {
			args = []string{"QQ"}
		}
		m.ctors = append(m.ctors, constructor{name: e.Name, args: args})
	}
	return m
}

func (*DeclarationMatcher) ID() string           { return "generator-declaration" }
func (*DeclarationMatcher) Kind() spanindex.Kind { return spanindex.KindExpansion }
func (*DeclarationMatcher) Priority() int        { return 20 }

// Match implements Matcher.
func (m *DeclarationMatcher) Match(w Window) (Proposal, bool) {
	stmt := statementTail(w.Text)
	if stmt == "" {
		return Proposal{}, false
	}
	name := leadingIdent(stmt)
	if name == "" {
		return Proposal{}, false
	}
	rest := stmt[len(name):]
	if !strings.HasPrefix(rest, ".") {
		return Proposal{}, false
	}

	stage, prefix, ok := parseDeclPrefix(name, rest[1:])
	if !ok || len(m.ctors) == 0 {
		return Proposal{}, false
	}

	at := source.Point(w.Cursor())
	first := m.ctors[0].call(0)
	p := Proposal{Matched: len(stmt)}
	add := func(label, insert string) {
		p.Suggestions = append(p.Suggestions, Suggestion{
			Label:      label,
			Detail:     "generator declaration",
			InsertText: insert,
			Replace:    at,
		})
	}

	switch stage {
	case stageDot:
		add(name+".<x> = "+first, "<x> = "+first)
		add(name+".<x,y> = "+first, "<x,y> = "+first)
	case stageOpen:
		add(name+".<x> = "+first, "x> = "+first)
		add(name+".<x,y> = "+first, "x,y> = "+first)
	case stageGens:
		for _, c := range m.ctors {
			add(c.call(0), "> = "+c.call(0))
		}
	case stageClosed:
		sep := " "
		if strings.HasSuffix(stmt, " ") {
			sep = ""
		}
		for _, c := range m.ctors {
			add(c.call(0), sep+"= "+c.call(0))
		}
	case stageAssign:
		sep := " "
		if strings.HasSuffix(stmt, " ") {
			sep = ""
		}
		for _, c := range m.ctors {
			for i := range c.args {
				add(c.call(i), sep+c.call(i))
			}
		}
	case stagePrefix:
		var matched []constructor
		for _, c := range m.ctors {
			if strings.HasPrefix(c.name, prefix) {
				matched = append(matched, c)
			}
		}
		if len(matched) == 0 {
			return Proposal{}, false
		}
		for _, c := range matched {
			for i := range c.args {
				add(c.call(i), c.call(i)[len(prefix):])
			}
		}
		if len(matched) == 1 {
			p.AutoInsert = matched[0].call(0)[len(prefix):]
		}
	}
	return p, true
}

// parseDeclPrefix classifies what follows "Name." in a partial declaration.
func parseDeclPrefix(name, rest string) (declStage, string, bool) {
	if rest == "" {
		// A bare "obj." is an attribute access far more often than not.
		if name[0] < 'A' || name[0] > 'Z' {
			return 0, "", false
		}
		return stageDot, "", true
	}
	if rest[0] != '<' {
		return 0, "", false
	}
	rest = rest[1:]

	closeIdx := strings.IndexByte(rest, '>')
	if closeIdx < 0 {
		switch {
		case rest == "":
			return stageOpen, "", true
		case gensPattern.MatchString(rest):
			return stageGens, "", true
		default:
			return 0, "", false
		}
	}

	if !gensPattern.MatchString(rest[:closeIdx]) {
		return 0, "", false
	}
	tail := strings.TrimLeft(rest[closeIdx+1:], " \t")
	if tail == "" {
		return stageClosed, "", true
	}
	if tail[0] != '=' || strings.HasPrefix(tail, "==") {
		return 0, "", false
	}
	prefix := strings.TrimLeft(tail[1:], " \t")
	switch {
	case prefix == "":
		return stageAssign, "", true
	case leadingIdent(prefix) == prefix:
		return stagePrefix, prefix, true
	default:
		return 0, "", false
	}
}

// statementTail returns the text of the statement the cursor is in,
// without leading blanks.
func statementTail(line string) string {
	if i := strings.LastIndexByte(line, ';'); i >= 0 {
		line = line[i+1:]
	}
	return strings.TrimLeft(line, " \t")
}

// leadingIdent returns the identifier at the start of s.
func leadingIdent(s string) string {
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		return ""
	}
	i := 0
	for i < len(s) && source.IsIdentByte(s[i]) {
		i++
	}
	return s[:i]
}

// trailingIdent returns the identifier ending at the end of s.
func trailingIdent(s string) string {
	i := len(s)
	for i > 0 && source.IsIdentByte(s[i-1]) {
		i--
	}
	word := s[i:]
	if word != "" && word[0] >= '0' && word[0] <= '9' {
		return ""
	}
	return word
}
