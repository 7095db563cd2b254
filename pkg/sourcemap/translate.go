package sourcemap

import "github.com/yaklabco/gosage/pkg/spanindex"

// mapStart maps a point, or the start of a range, contained in span.
//
// Operator spans interpolate linearly, rounding down. Inside an expansion,
// anchored text maps exactly; other original text maps to the start of the
// first generated statement covering it; generated rewritten text maps to the
// declaration start when its statement is generated-only and otherwise to the
// end of the nearest preceding anchor.
func mapStart(span spanindex.Span, from spanindex.Space, offset int) int {
	to := from.Other()
	src, dst := span.In(from), span.In(to)
	rel := offset - src.Start

	switch span.Kind {
	case spanindex.KindPassthrough, spanindex.KindLiteral:
		return dst.Start + rel
	case spanindex.KindOperator:
		return dst.Start + rel*dst.Len()/src.Len()
	case spanindex.KindInsertion:
		return dst.Start
	case spanindex.KindExpansion:
		exp := span.Expansion()
		if anchor, ok := exp.AnchorIn(from, rel); ok {
			return dst.Start + anchor.In(to).Start + rel - anchor.In(from).Start
		}
		if from == spanindex.Original {
			if s := exp.StatementFor(rel); s >= 0 {
				return dst.Start + exp.Statements[s].Rewritten.Start
			}
			return dst.Start
		}
		if s := exp.StatementAt(rel); s >= 0 && exp.Statements[s].GeneratedOnly {
			return dst.Start
		}
		return dst.Start + precedingAnchorEnd(exp, rel)
	}
	return dst.Start
}

// mapRangeStart is mapStart, except that a range starting in generated
// expansion text starts at the declaration start.
func mapRangeStart(span spanindex.Span, from spanindex.Space, offset int) int {
	if span.Kind == spanindex.KindExpansion && from == spanindex.Rewritten {
		rel := offset - span.Rewritten.Start
		if _, ok := span.Expansion().AnchorIn(from, rel); !ok {
			return span.Original.Start
		}
	}
	return mapStart(span, from, offset)
}

// mapEnd maps the end of a range, where span satisfies
// start < offset <= end. A range ending exactly at a span end ends at the
// span's end in the other space.
func mapEnd(span spanindex.Span, from spanindex.Space, offset int) int {
	to := from.Other()
	src, dst := span.In(from), span.In(to)
	if offset == src.End {
		return dst.End
	}
	rel := offset - src.Start

	switch span.Kind {
	case spanindex.KindPassthrough, spanindex.KindLiteral:
		return dst.Start + rel
	case spanindex.KindOperator:
		return dst.Start + (rel*dst.Len()+src.Len()-1)/src.Len()
	case spanindex.KindInsertion:
		return dst.Start
	case spanindex.KindExpansion:
		exp := span.Expansion()
		if anchor, ok := exp.AnchorIn(from, rel-1); ok {
			return dst.Start + anchor.In(to).Start + rel - anchor.In(from).Start
		}
		if from == spanindex.Original {
			if s := exp.StatementFor(rel - 1); s >= 0 {
				return dst.Start + exp.Statements[s].Rewritten.End
			}
		}
		return dst.End
	}
	return dst.End
}

// precedingAnchorEnd returns the original end of the last anchor that ends
// at or before the relative rewritten offset, or 0.
func precedingAnchorEnd(exp *spanindex.Expansion, rel int) int {
	end := 0
	for _, anchor := range exp.Anchors {
		if anchor.Rewritten.End > rel {
			break
		}
		end = anchor.Original.End
	}
	return end
}
