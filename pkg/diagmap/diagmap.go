package diagmap

import (
	"context"

	"github.com/yaklabco/gosage/internal/logging"
	"github.com/yaklabco/gosage/pkg/source"
	"github.com/yaklabco/gosage/pkg/sourcemap"
	"github.com/yaklabco/gosage/pkg/spanindex"
)

// Result holds mapped diagnostics in input order.
type Result struct {
	Diagnostics []Diagnostic

	// Dropped counts diagnostics whose range could not be resolved.
	Dropped int
}

// Map translates diagnostics from the rewritten text of m to its original
// text.
func Map(diags []Diagnostic, m *sourcemap.Map) Result {
	return MapContext(context.Background(), diags, m)
}

// MapContext is Map with a context carrying the logger used to report
// dropped diagnostics.
func MapContext(ctx context.Context, diags []Diagnostic, m *sourcemap.Map) Result {
	res := Result{Diagnostics: make([]Diagnostic, 0, len(diags))}
	for _, d := range diags {
		mapped, ok := mapOne(d, m)
		if !ok {
			res.Dropped++
			logging.FromContext(ctx).Error("dropping diagnostic with unresolvable range",
				logging.FieldRange, d.Range.String(),
				logging.FieldCode, d.Code,
			)
			continue
		}
		res.Diagnostics = append(res.Diagnostics, mapped)
	}
	return res
}

func mapOne(d Diagnostic, m *sourcemap.Map) (Diagnostic, bool) {
	ix := m.Index()
	if !d.Range.Valid(ix.TextLen(spanindex.Rewritten)) {
		return Diagnostic{}, false
	}

	if lo, hi, ok := ix.Overlapping(spanindex.Rewritten, d.Range); ok && hi-lo == 1 {
		span := ix.At(lo)
		switch span.Kind {
		case spanindex.KindInsertion:
			d.Range = source.Point(span.Original.Start)
			d.Origin = OriginSynthetic
			return d, true
		case spanindex.KindExpansion:
			if insideGenerated(span, d.Range) {
				d.Range = span.Original
				d.Origin = OriginGenerated
				return d, true
			}
		}
	}

	r, ok := m.TranslateRangeReverse(d.Range)
	if !ok {
		return Diagnostic{}, false
	}
	d.Range = r
	d.Origin = OriginDirect
	return d, true
}

// insideGenerated reports whether r lies within a single generated-only
// statement of the expansion span.
func insideGenerated(span spanindex.Span, r source.Range) bool {
	exp := span.Expansion()
	rel := r.Shift(-span.Rewritten.Start)
	s := exp.StatementAt(rel.Start)
	if s < 0 || !exp.Statements[s].GeneratedOnly {
		return false
	}
	return exp.Statements[s].Rewritten.Covers(rel)
}
