package recognize

import (
	"bytes"

	"github.com/yaklabco/gosage/pkg/edit"
	"github.com/yaklabco/gosage/pkg/source"
	"github.com/yaklabco/gosage/pkg/spanindex"
)

// DefaultPrelude is the import that makes Sage names visible to Python tools.
const DefaultPrelude = "from sage.all import *\n"

// PreludeRuleID labels the synthetic prelude span.
const PreludeRuleID = "sage-prelude"

// Recognizer rewrites Sage text to Python text. It is safe for concurrent use.
type Recognizer struct {
	rules   []Rule
	inline  []Rule
	prelude string
}

// Option configures a Recognizer.
type Option func(*Recognizer)

// WithPrelude inserts text ahead of the first statement of every document.
// An empty string disables the prelude.
func WithPrelude(text string) Option {
	return func(r *Recognizer) {
		r.prelude = text
	}
}

// New creates a Recognizer that applies the rules of reg in catalog order.
func New(reg *Registry, opts ...Option) *Recognizer {
	rules := reg.Rules()
	r := &Recognizer{rules: rules, inline: inlineRules(rules)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewDefault creates a Recognizer with the built-in rules and no prelude.
func NewDefault() *Recognizer {
	return New(DefaultRegistry())
}

// Result is the outcome of recognizing one text.
type Result struct {
	Original  []byte
	Rewritten []byte

	// Spans cover both texts in order.
	Spans []spanindex.Span

	// Edits turn Original into Rewritten.
	Edits []edit.TextEdit
}

// Index validates the spans and returns them as an index.
func (res *Result) Index() (*spanindex.Index, error) {
	return spanindex.New(res.Spans, res.Original, res.Rewritten)
}

// Recognize rewrites original. Text no rule claims is copied through as
// passthrough spans, so every input produces a result.
func (r *Recognizer) Recognize(original []byte) *Result {
	text := NewText(original)
	text.inline = r.inline

	type claim struct {
		match Match
		rule  Rule
	}
	var claims []claim
	for pos := 0; pos < len(original); {
		if !text.IsCode(pos) {
			pos++
			continue
		}
		m, rule, ok := bestMatch(r.rules, text, pos)
		if !ok {
			pos++
			continue
		}
		claims = append(claims, claim{match: m, rule: rule})
		pos = m.Range.End
	}

	b := newResultBuilder(original)
	insertAt := -1
	if r.prelude != "" {
		insertAt = preludeOffset(text)
	}
	for _, c := range claims {
		if insertAt >= 0 && c.match.Range.Start >= insertAt {
			b.insert(insertAt, r.prelude)
			insertAt = -1
		}
		b.claim(c.match, c.rule)
	}
	if insertAt >= 0 {
		b.insert(insertAt, r.prelude)
	}
	b.passthrough(len(original))

	return &Result{
		Original:  original,
		Rewritten: edit.Apply(original, b.edits.Edits),
		Spans:     b.spans,
		Edits:     b.edits.Edits,
	}
}

// resultBuilder lays out spans left to right while tracking the rewritten
// offset. Claims arrive sorted and non-overlapping.
type resultBuilder struct {
	original  []byte
	spans     []spanindex.Span
	edits     *edit.Builder
	origPos   int
	rewritten int
}

func newResultBuilder(original []byte) *resultBuilder {
	return &resultBuilder{original: original, edits: edit.NewBuilder()}
}

func (b *resultBuilder) passthrough(end int) {
	if end <= b.origPos {
		return
	}
	n := end - b.origPos
	b.spans = append(b.spans, spanindex.Span{
		Original:  source.NewRange(b.origPos, end),
		Rewritten: source.NewRange(b.rewritten, b.rewritten+n),
		Kind:      spanindex.KindPassthrough,
	})
	b.origPos = end
	b.rewritten += n
}

func (b *resultBuilder) claim(m Match, rule Rule) {
	b.passthrough(m.Range.Start)
	b.spans = append(b.spans, spanindex.Span{
		Original:  m.Range,
		Rewritten: source.NewRange(b.rewritten, b.rewritten+len(m.Replacement)),
		Kind:      rule.Kind(),
		Rule:      rule.ID(),
		Payload:   m.Payload,
	})
	if !bytes.Equal(b.original[m.Range.Start:m.Range.End], []byte(m.Replacement)) {
		b.edits.Replace(m.Range.Start, m.Range.End, m.Replacement)
	}
	b.origPos = m.Range.End
	b.rewritten += len(m.Replacement)
}

func (b *resultBuilder) insert(offset int, text string) {
	b.passthrough(offset)
	if offset > 0 && b.original[offset-1] != '\n' {
		text = "\n" + text
	}
	b.spans = append(b.spans, spanindex.Span{
		Original:  source.Point(offset),
		Rewritten: source.NewRange(b.rewritten, b.rewritten+len(text)),
		Kind:      spanindex.KindInsertion,
		Rule:      PreludeRuleID,
	})
	b.edits.Insert(offset, text)
	b.rewritten += len(text)
}

// preludeOffset returns the start of the first line that is not blank, a
// comment (shebang and encoding lines included) or a __future__ import.
func preludeOffset(text *Text) int {
	src := text.Bytes()
	pos := 0
	for pos < len(src) {
		end := bytes.IndexByte(src[pos:], '\n')
		lineEnd := len(src)
		if end >= 0 {
			lineEnd = pos + end + 1
		}
		line := bytes.TrimSpace(src[pos:lineEnd])
		if len(line) > 0 && line[0] != '#' && !bytes.HasPrefix(line, []byte("from __future__ import")) {
			return pos
		}
		pos = lineEnd
	}
	return len(src)
}
