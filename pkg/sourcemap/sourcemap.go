// Package sourcemap translates positions and ranges between a Sage document
// and the Python text it was rewritten to.
//
// A Map is built once per document version and never changes afterwards, so
// it may be shared freely between goroutines.
package sourcemap

import (
	"github.com/yaklabco/gosage/pkg/recognize"
	"github.com/yaklabco/gosage/pkg/source"
	"github.com/yaklabco/gosage/pkg/spanindex"
)

// Map is the bidirectional correspondence between an original and a
// rewritten text. Maps carry no document identity, so documents with equal
// content can share one.
type Map struct {
	index     *spanindex.Index
	original  *source.Snapshot
	rewritten *source.Snapshot
}

// Build recognizes original and returns its map. The only possible error is
// a *spanindex.InvariantError, which indicates a defect in a rule.
func Build(rec *recognize.Recognizer, original []byte) (*Map, error) {
	return FromResult(rec.Recognize(original))
}

// FromResult wraps a recognition result in a Map after validating its spans.
func FromResult(res *recognize.Result) (*Map, error) {
	idx, err := res.Index()
	if err != nil {
		return nil, err
	}
	return &Map{
		index:     idx,
		original:  source.NewSnapshot("", res.Original),
		rewritten: source.NewSnapshot("", res.Rewritten),
	}, nil
}

// Identity returns a map in which both texts are content, for documents that
// are already Python.
func Identity(content []byte) *Map {
	var spans []spanindex.Span
	if len(content) > 0 {
		spans = []spanindex.Span{{
			Original:  source.NewRange(0, len(content)),
			Rewritten: source.NewRange(0, len(content)),
			Kind:      spanindex.KindPassthrough,
		}}
	}
	idx, err := spanindex.New(spans, content, content)
	if err != nil {
		panic(err) // unreachable: a single passthrough span is always consistent
	}
	snap := source.NewSnapshot("", content)
	return &Map{index: idx, original: snap, rewritten: snap}
}

// Original returns the original text.
func (m *Map) Original() *source.Snapshot {
	return m.original
}

// Rewritten returns the rewritten text.
func (m *Map) Rewritten() *source.Snapshot {
	return m.rewritten
}

// Text returns the text of the given space.
func (m *Map) Text(space spanindex.Space) *source.Snapshot {
	if space == spanindex.Rewritten {
		return m.rewritten
	}
	return m.original
}

// Index returns the underlying span index.
func (m *Map) Index() *spanindex.Index {
	return m.index
}

// SpanAt returns the span containing offset in space.
func (m *Map) SpanAt(space spanindex.Space, offset int) (spanindex.Span, bool) {
	i, ok := m.index.Find(space, offset)
	if !ok {
		return spanindex.Span{}, false
	}
	return m.index.At(i), true
}

// Translate maps an original offset to the rewritten text. The end of the
// original maps to the end of the rewritten text.
func (m *Map) Translate(offset int) (int, bool) {
	return m.point(spanindex.Original, offset)
}

// TranslateReverse maps a rewritten offset back to the original text.
// Offsets in generated text resolve to a boundary of the span that produced
// it, never to a position outside that span.
func (m *Map) TranslateReverse(offset int) (int, bool) {
	return m.point(spanindex.Rewritten, offset)
}

// TranslateRange maps an original range to the rewritten text.
func (m *Map) TranslateRange(r source.Range) (source.Range, bool) {
	return m.rng(spanindex.Original, r)
}

// TranslateRangeReverse maps a rewritten range back to the original text.
// A range touching generated text of an expansion widens to the whole
// declaration; a range inside a synthetic insertion collapses to the
// insertion point.
func (m *Map) TranslateRangeReverse(r source.Range) (source.Range, bool) {
	return m.rng(spanindex.Rewritten, r)
}

func (m *Map) point(from spanindex.Space, offset int) (int, bool) {
	if offset == m.index.TextLen(from) && offset >= 0 {
		return m.index.TextLen(from.Other()), true
	}
	i, ok := m.index.Find(from, offset)
	if !ok {
		return 0, false
	}
	return mapStart(m.index.At(i), from, offset), true
}

func (m *Map) rng(from spanindex.Space, r source.Range) (source.Range, bool) {
	if r.Start > r.End {
		return source.Range{}, false
	}
	if r.IsEmpty() {
		p, ok := m.point(from, r.Start)
		return source.Point(p), ok
	}

	first, ok := m.index.Find(from, r.Start)
	if !ok {
		return source.Range{}, false
	}
	last, ok := m.index.FindEnd(from, r.End)
	if !ok {
		return source.Range{}, false
	}

	start := mapRangeStart(m.index.At(first), from, r.Start)
	end := mapEnd(m.index.At(last), from, r.End)
	return source.NewRange(start, max(start, end)), true
}
