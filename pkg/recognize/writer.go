package recognize

import (
	"strings"

	"github.com/yaklabco/gosage/pkg/source"
	"github.com/yaklabco/gosage/pkg/spanindex"
)

// spanWriter assembles the replacement text of one match and records which
// parts of it are verbatim copies of the original.
type spanWriter struct {
	text     *Text
	base     int
	buf      strings.Builder
	anchors  []spanindex.Anchor
	literals []spanindex.LiteralRef
}

func newSpanWriter(text *Text, base int) *spanWriter {
	return &spanWriter{text: text, base: base}
}

func (w *spanWriter) len() int {
	return w.buf.Len()
}

func (w *spanWriter) String() string {
	return w.buf.String()
}

// verbatim copies original text and anchors it. Adjacent copies merge.
func (w *spanWriter) verbatim(r source.Range) {
	if r.IsEmpty() {
		return
	}
	orig := r.Shift(-w.base)
	out := source.NewRange(w.buf.Len(), w.buf.Len()+r.Len())
	w.buf.Write(w.text.src[r.Start:r.End])

	if n := len(w.anchors); n > 0 {
		last := &w.anchors[n-1]
		if last.Original.End == orig.Start && last.Rewritten.End == out.Start {
			last.Original.End = orig.End
			last.Rewritten.End = out.End
			return
		}
	}
	w.anchors = append(w.anchors, spanindex.Anchor{Original: orig, Rewritten: out})
}

func (w *spanWriter) generated(s string) {
	w.buf.WriteString(s)
}

// literal copies the ratio at r verbatim and records it.
func (w *spanWriter) literal(r source.Range, lit *spanindex.Literal) {
	w.literals = append(w.literals, spanindex.LiteralRef{Original: r.Shift(-w.base), Literal: *lit})
	w.verbatim(r)
}

// rewriteInline copies r into w, applying the inline rules to its code.
// Rewrites whose replacement equals their text are copied verbatim.
func (t *Text) rewriteInline(w *spanWriter, r source.Range) {
	pos := r.Start
	for pos < r.End {
		if t.IsCode(pos) {
			if m, _, ok := bestMatch(t.inline, t, pos); ok && m.Range.End <= r.End {
				switch lit, isLit := m.Payload.(*spanindex.Literal); {
				case isLit && m.Replacement == t.Slice(m.Range):
					w.literal(m.Range, lit)
					pos = m.Range.End
					continue
				case m.Replacement != t.Slice(m.Range):
					w.generated(m.Replacement)
					pos = m.Range.End
					continue
				}
			}
		}
		w.verbatim(source.NewRange(pos, pos+1))
		pos++
	}
}

// bestMatch runs rules at offset and keeps the longest match. Among equally
// long matches the earliest rule in the catalog wins.
func bestMatch(rules []Rule, text *Text, offset int) (Match, Rule, bool) {
	var (
		best     Match
		bestRule Rule
	)
	for _, rule := range rules {
		m, ok := rule.Match(text, offset)
		if !ok || m.Range.Start != offset || m.Range.End <= offset {
			continue
		}
		if bestRule == nil || m.Range.Len() > best.Range.Len() {
			best, bestRule = m, rule
		}
	}
	return best, bestRule, bestRule != nil
}
