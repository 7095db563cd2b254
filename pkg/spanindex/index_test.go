package spanindex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gosage/pkg/source"
	"github.com/yaklabco/gosage/pkg/spanindex"
)

// "x = 2^3" rewritten to "# p\nx = 2**3" with a synthetic prelude.
func sampleSpans() ([]spanindex.Span, []byte, []byte) {
	original := []byte("x = 2^3")
	rewritten := []byte("# p\nx = 2**3")
	spans := []spanindex.Span{
		{Original: source.NewRange(0, 0), Rewritten: source.NewRange(0, 4), Kind: spanindex.KindInsertion, Rule: "sage-prelude"},
		{Original: source.NewRange(0, 5), Rewritten: source.NewRange(4, 9), Kind: spanindex.KindPassthrough},
		{Original: source.NewRange(5, 6), Rewritten: source.NewRange(9, 11), Kind: spanindex.KindOperator, Rule: "power-operator"},
		{Original: source.NewRange(6, 7), Rewritten: source.NewRange(11, 12), Kind: spanindex.KindPassthrough},
	}
	return spans, original, rewritten
}

func TestNewAcceptsConsistentSpans(t *testing.T) {
	t.Parallel()

	spans, original, rewritten := sampleSpans()
	idx, err := spanindex.New(spans, original, rewritten)
	require.NoError(t, err)

	assert.Equal(t, 4, idx.Len())
	assert.Equal(t, 7, idx.TextLen(spanindex.Original))
	assert.Equal(t, 12, idx.TextLen(spanindex.Rewritten))
	assert.Equal(t, map[spanindex.Kind]int{
		spanindex.KindInsertion:   1,
		spanindex.KindPassthrough: 2,
		spanindex.KindOperator:    1,
	}, idx.Kinds())
}

func TestNewEmptyText(t *testing.T) {
	t.Parallel()

	idx, err := spanindex.New(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())

	_, ok := idx.Find(spanindex.Original, 0)
	assert.False(t, ok)
}

func TestNewRejectsInconsistentSpans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func([]spanindex.Span) []spanindex.Span
		reason string
	}{
		{
			name:   "gap in original coverage",
			mutate: func(s []spanindex.Span) []spanindex.Span { s[2].Original = source.NewRange(6, 6); return s },
			reason: "original range",
		},
		{
			name:   "missing tail",
			mutate: func(s []spanindex.Span) []spanindex.Span { return s[:3] },
			reason: "spans cover",
		},
		{
			name:   "passthrough text mismatch",
			mutate: func(s []spanindex.Span) []spanindex.Span { s[2].Kind = spanindex.KindPassthrough; return s },
			reason: "text differs",
		},
		{
			name: "empty original outside insertion",
			mutate: func(s []spanindex.Span) []spanindex.Span {
				s[0].Kind = spanindex.KindPassthrough
				return s
			},
			reason: "passthrough span with original range",
		},
		{
			name: "literal without payload",
			mutate: func(s []spanindex.Span) []spanindex.Span {
				s[3].Kind = spanindex.KindLiteral
				return s
			},
			reason: "literal span without payload",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			spans, original, rewritten := sampleSpans()
			spans = testCase.mutate(spans)
			if testCase.name == "passthrough text mismatch" {
				// Same lengths in both spaces so that only the text check fails.
				spans[2].Rewritten = source.NewRange(9, 10)
				spans[3].Rewritten = source.NewRange(10, 12)
			}

			_, err := spanindex.New(spans, original, rewritten)
			require.Error(t, err)
			require.ErrorIs(t, err, spanindex.ErrInvariant)

			var invErr *spanindex.InvariantError
			require.ErrorAs(t, err, &invErr)
			assert.Contains(t, err.Error(), testCase.reason)
		})
	}
}

func TestNewRejectsAnchorMismatch(t *testing.T) {
	t.Parallel()

	original := []byte("P.<x> = QQ[]")
	rewritten := []byte("P = QQ['x']; (x,) = P._first_ngens(1)")
	spans := []spanindex.Span{{
		Original:  source.NewRange(0, len(original)),
		Rewritten: source.NewRange(0, len(rewritten)),
		Kind:      spanindex.KindExpansion,
		Payload: &spanindex.Expansion{
			Statements: []spanindex.Statement{{Role: spanindex.RoleConstruct, Rewritten: source.NewRange(0, 11)}},
			Anchors:    []spanindex.Anchor{{Original: source.NewRange(0, 1), Rewritten: source.NewRange(4, 5)}},
		},
	}}

	_, err := spanindex.New(spans, original, rewritten)
	require.ErrorIs(t, err, spanindex.ErrInvariant)
	assert.Contains(t, err.Error(), "verbatim")
}

func TestNewRejectsLiteralOutsideAnchors(t *testing.T) {
	t.Parallel()

	original := []byte("P.<x> = QQ[]")
	rewritten := []byte("P = QQ['x']; (x,) = P._first_ngens(1)")
	spans := []spanindex.Span{{
		Original:  source.NewRange(0, len(original)),
		Rewritten: source.NewRange(0, len(rewritten)),
		Kind:      spanindex.KindExpansion,
		Payload: &spanindex.Expansion{
			Statements: []spanindex.Statement{{Role: spanindex.RoleConstruct, Rewritten: source.NewRange(0, 11)}},
			Anchors:    []spanindex.Anchor{{Original: source.NewRange(0, 1), Rewritten: source.NewRange(0, 1)}},
			Literals: []spanindex.LiteralRef{{
				Original: source.NewRange(8, 10),
				Literal:  spanindex.Literal{Numerator: "1", Denominator: "2"},
			}},
		},
	}}

	_, err := spanindex.New(spans, original, rewritten)
	require.ErrorIs(t, err, spanindex.ErrInvariant)
	assert.Contains(t, err.Error(), "literal")
}

func TestFind(t *testing.T) {
	t.Parallel()

	spans, original, rewritten := sampleSpans()
	idx, err := spanindex.New(spans, original, rewritten)
	require.NoError(t, err)

	tests := []struct {
		name   string
		space  spanindex.Space
		offset int
		want   int
		found  bool
	}{
		{"original start skips insertion", spanindex.Original, 0, 1, true},
		{"original operator", spanindex.Original, 5, 2, true},
		{"original last byte", spanindex.Original, 6, 3, true},
		{"original end of text", spanindex.Original, 7, -1, false},
		{"rewritten prelude", spanindex.Rewritten, 2, 0, true},
		{"rewritten second operator byte", spanindex.Rewritten, 10, 2, true},
		{"negative", spanindex.Rewritten, -1, -1, false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got, ok := idx.Find(testCase.space, testCase.offset)
			assert.Equal(t, testCase.found, ok)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestFindEnd(t *testing.T) {
	t.Parallel()

	spans, original, rewritten := sampleSpans()
	idx, err := spanindex.New(spans, original, rewritten)
	require.NoError(t, err)

	got, ok := idx.FindEnd(spanindex.Original, 5)
	require.True(t, ok)
	assert.Equal(t, 1, got, "a boundary resolves to the span it ends")

	got, ok = idx.FindEnd(spanindex.Original, 7)
	require.True(t, ok)
	assert.Equal(t, 3, got)

	got, ok = idx.FindEnd(spanindex.Rewritten, 4)
	require.True(t, ok)
	assert.Equal(t, 0, got)

	_, ok = idx.FindEnd(spanindex.Rewritten, 13)
	assert.False(t, ok)
}

func TestOverlapping(t *testing.T) {
	t.Parallel()

	spans, original, rewritten := sampleSpans()
	idx, err := spanindex.New(spans, original, rewritten)
	require.NoError(t, err)

	lo, hi, ok := idx.Overlapping(spanindex.Rewritten, source.NewRange(8, 11))
	require.True(t, ok)
	assert.Equal(t, 1, lo)
	assert.Equal(t, 3, hi)

	lo, hi, ok = idx.Overlapping(spanindex.Original, source.Point(5))
	require.True(t, ok)
	assert.Equal(t, 2, lo)
	assert.Equal(t, 3, hi)
}

func TestKindNames(t *testing.T) {
	t.Parallel()

	for _, kind := range []spanindex.Kind{
		spanindex.KindPassthrough, spanindex.KindOperator, spanindex.KindLiteral,
		spanindex.KindExpansion, spanindex.KindInsertion,
	} {
		parsed, ok := spanindex.ParseKind(kind.String())
		require.True(t, ok)
		assert.Equal(t, kind, parsed)
	}

	_, ok := spanindex.ParseKind("unknown")
	assert.False(t, ok)
	assert.Equal(t, "Kind(42)", spanindex.Kind(42).String())
}

func TestExpansionLookups(t *testing.T) {
	t.Parallel()

	exp := &spanindex.Expansion{
		Statements: []spanindex.Statement{
			{Role: spanindex.RoleConstruct, Rewritten: source.NewRange(0, 10), Covers: []source.Range{source.NewRange(0, 1), source.NewRange(5, 12)}},
			{Role: spanindex.RoleBind, Rewritten: source.NewRange(12, 20), Covers: []source.Range{source.NewRange(1, 5)}, GeneratedOnly: true},
		},
		Anchors: []spanindex.Anchor{{Original: source.NewRange(0, 1), Rewritten: source.NewRange(0, 1)}},
	}

	assert.Equal(t, 1, exp.StatementFor(3))
	assert.Equal(t, 0, exp.StatementFor(7))
	assert.Equal(t, -1, exp.StatementFor(40))
	assert.Equal(t, -1, exp.StatementAt(11))
	assert.Equal(t, 1, exp.StatementAt(12))

	anchor, ok := exp.AnchorIn(spanindex.Rewritten, 0)
	require.True(t, ok)
	assert.Equal(t, source.NewRange(0, 1), anchor.Original)
}
