// Package hover builds editor views of a document from its source map:
// hover text for names and rewritten constructs, and the document's symbols.
package hover

import (
	"fmt"
	"strings"

	"github.com/yaklabco/gosage/pkg/sagedoc"
	"github.com/yaklabco/gosage/pkg/source"
	"github.com/yaklabco/gosage/pkg/sourcemap"
	"github.com/yaklabco/gosage/pkg/spanindex"
)

// Hover is Markdown shown for a range of the original text.
type Hover struct {
	Range    source.Range
	Markdown string
}

// At returns hover content for an offset in the original text of m.
// Documented names show their documentation. Rewritten constructs explain
// what Python receives instead.
func At(m *sourcemap.Map, docs *sagedoc.Catalog, offset int) (Hover, bool) {
	orig := m.Original()
	word := orig.WordAt(offset)

	var parts []string
	rng := word
	if !word.IsEmpty() {
		if entry, ok := docs.Lookup(string(orig.Slice(word))); ok {
			parts = append(parts, entry.Markdown())
		}
	}

	if span, ok := m.SpanAt(spanindex.Original, offset); ok {
		if text := explain(m, span, offset-span.Original.Start); text != "" {
			parts = append(parts, text)
			if len(parts) == 1 {
				rng = span.Original
			}
		}
	}

	if len(parts) == 0 {
		return Hover{}, false
	}
	return Hover{Range: rng, Markdown: strings.Join(parts, "\n---\n\n")}, true
}

// explain describes span. rel is the hovered offset relative to the span start.
func explain(m *sourcemap.Map, span spanindex.Span, rel int) string {
	orig := string(m.Original().Slice(span.Original))
	rew := string(m.Rewritten().Slice(span.Rewritten))

	switch span.Kind {
	case spanindex.KindOperator:
		if orig == "^^" {
			return fmt.Sprintf("`^^` is bitwise exclusive or in Sage. Python receives `%s`.\n", rew)
		}
		return fmt.Sprintf("`%s` is exponentiation in Sage. Python receives `%s`.\n", orig, rew)
	case spanindex.KindLiteral:
		return explainLiteral(orig, span.Literal())
	case spanindex.KindExpansion:
		exp := span.Expansion()
		var b strings.Builder
		if ref, ok := exp.LiteralAt(rel); ok {
			b.WriteString(explainLiteral(orig[ref.Original.Start:ref.Original.End], &ref.Literal))
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Declares `%s` with generators %s. Python receives:\n\n",
			exp.Name, quoteAll(exp.Generators))
		fmt.Fprintf(&b, "```python\n%s\n```\n", rew)
		return b.String()
	}
	return ""
}

func explainLiteral(text string, lit *spanindex.Literal) string {
	return fmt.Sprintf("`%s` is the exact rational number %s/%s in Sage, not a float division.\n",
		text, lit.Numerator, lit.Denominator)
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "`" + n + "`"
	}
	return strings.Join(quoted, ", ")
}
