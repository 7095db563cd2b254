package hover

import (
	"strings"

	"github.com/yaklabco/gosage/pkg/source"
	"github.com/yaklabco/gosage/pkg/sourcemap"
	"github.com/yaklabco/gosage/pkg/spanindex"
)

// SymbolKind uses the editor protocol's numbering.
type SymbolKind int

const (
	SymbolClass    SymbolKind = 5
	SymbolVariable SymbolKind = 13
)

// Symbol is a named declaration in the original text.
type Symbol struct {
	Name   string
	Detail string
	Kind   SymbolKind

	// Range covers the whole declaration; Selection covers the name.
	Range     source.Range
	Selection source.Range

	Children []Symbol
}

// Symbols lists the generator declarations of a document with their
// generators as children.
func Symbols(m *sourcemap.Map) []Symbol {
	var out []Symbol
	for _, span := range m.Index().Spans() {
		if span.Kind != spanindex.KindExpansion {
			continue
		}
		exp := span.Expansion()
		text := string(m.Original().Slice(span.Original))
		start := span.Original.Start

		sym := Symbol{
			Name:      exp.Name,
			Detail:    exp.Constructor,
			Kind:      SymbolClass,
			Range:     span.Original,
			Selection: source.NewRange(start, start+len(exp.Name)),
		}

		open := strings.Index(text, ".<")
		closeIdx := strings.IndexByte(text, '>')
		if open >= 0 && closeIdx > open {
			pos := open + 2
			for _, gen := range exp.Generators {
				rel := identIndex(text[pos:closeIdx], gen)
				if rel < 0 {
					break
				}
				r := source.NewRange(start+pos+rel, start+pos+rel+len(gen))
				sym.Children = append(sym.Children, Symbol{
					Name:      gen,
					Detail:    "generator of " + exp.Name,
					Kind:      SymbolVariable,
					Range:     r,
					Selection: r,
				})
				pos += rel + len(gen)
			}
		}
		out = append(out, sym)
	}
	return out
}

// identIndex finds name in s as a whole identifier.
func identIndex(s, name string) int {
	for from := 0; from <= len(s)-len(name); {
		i := strings.Index(s[from:], name)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(name)
		if (i == 0 || !source.IsIdentByte(s[i-1])) && (end == len(s) || !source.IsIdentByte(s[end])) {
			return i
		}
		from = i + 1
	}
	return -1
}
