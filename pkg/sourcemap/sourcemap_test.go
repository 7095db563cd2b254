package sourcemap_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gosage/pkg/recognize"
	"github.com/yaklabco/gosage/pkg/source"
	"github.com/yaklabco/gosage/pkg/sourcemap"
	"github.com/yaklabco/gosage/pkg/spanindex"
)

func build(t *testing.T, text string, opts ...recognize.Option) *sourcemap.Map {
	t.Helper()

	m, err := sourcemap.Build(recognize.New(recognize.DefaultRegistry(), opts...), []byte(text))
	require.NoError(t, err)
	return m
}

func TestOperatorScenario(t *testing.T) {
	t.Parallel()

	m := build(t, "x = 2^3")
	assert.Equal(t, "x = 2**3", m.Rewritten().Text())

	got, ok := m.Translate(5)
	require.True(t, ok)
	assert.Equal(t, 5, got)

	got, ok = m.Translate(6)
	require.True(t, ok)
	assert.Equal(t, 7, got)

	for _, r := range []int{5, 6} {
		got, ok = m.TranslateReverse(r)
		require.True(t, ok)
		assert.Equal(t, 5, got, "both operator bytes map to the caret")
	}

	rng, ok := m.TranslateRangeReverse(source.NewRange(5, 7))
	require.True(t, ok)
	assert.Equal(t, source.NewRange(5, 6), rng)

	rng, ok = m.TranslateRange(source.NewRange(4, 7))
	require.True(t, ok)
	assert.Equal(t, source.NewRange(4, 8), rng)
}

func TestRationalScenario(t *testing.T) {
	t.Parallel()

	m := build(t, "y = 1/3")
	assert.Equal(t, "y = 1/3", m.Rewritten().Text())

	for offset := range 8 {
		got, ok := m.Translate(offset)
		require.True(t, ok)
		assert.Equal(t, offset, got)
	}

	span, ok := m.SpanAt(spanindex.Original, 5)
	require.True(t, ok)
	assert.Equal(t, spanindex.KindLiteral, span.Kind)
}

func TestExpansionScenario(t *testing.T) {
	t.Parallel()

	text := "P.<x> = PolynomialRing(QQ)"
	m := build(t, text)
	rewritten := m.Rewritten().Text()
	require.Equal(t, "P = PolynomialRing(QQ, names=('x',)); (x,) = P._first_ngens(1)", rewritten)

	for offset := range len(text) {
		got, ok := m.Translate(offset)
		require.True(t, ok)
		assert.Less(t, got, len(rewritten))

		back, ok := m.TranslateReverse(got)
		require.True(t, ok)
		assert.GreaterOrEqual(t, back, 0)
		assert.Less(t, back, len(text))
	}

	t.Run("generator list maps to the binding statement", func(t *testing.T) {
		t.Parallel()

		got, ok := m.Translate(3)
		require.True(t, ok)
		assert.Equal(t, 38, got)
	})

	t.Run("anchored constructor maps exactly", func(t *testing.T) {
		t.Parallel()

		got, ok := m.Translate(10)
		require.True(t, ok)
		assert.Equal(t, 6, got)

		rng, ok := m.TranslateRangeReverse(source.NewRange(4, 18))
		require.True(t, ok)
		assert.Equal(t, source.NewRange(8, 22), rng)
	})

	t.Run("binding statement widens to the declaration", func(t *testing.T) {
		t.Parallel()

		for _, r := range []source.Range{
			source.NewRange(38, 62),
			source.NewRange(39, 40),
			source.NewRange(45, 61),
		} {
			rng, ok := m.TranslateRangeReverse(r)
			require.True(t, ok)
			assert.Equal(t, source.NewRange(0, len(text)), rng, r.String())
		}

		got, ok := m.TranslateReverse(50)
		require.True(t, ok)
		assert.Equal(t, 0, got, "generated-only text maps to the declaration site")
	})

	t.Run("generated keyword argument", func(t *testing.T) {
		t.Parallel()

		got, ok := m.TranslateReverse(25)
		require.True(t, ok)
		assert.Equal(t, 25, got, "glue text resolves to the end of the preceding anchor")

		rng, ok := m.TranslateRangeReverse(source.NewRange(23, 35))
		require.True(t, ok)
		assert.Equal(t, source.NewRange(0, len(text)), rng)
	})
}

func TestPreludeInsertion(t *testing.T) {
	t.Parallel()

	m := build(t, "x = 2^3", recognize.WithPrelude(recognize.DefaultPrelude))
	preludeLen := len(recognize.DefaultPrelude)

	got, ok := m.Translate(0)
	require.True(t, ok)
	assert.Equal(t, preludeLen, got, "original start skips the prelude")

	rng, ok := m.TranslateRangeReverse(source.NewRange(5, 12))
	require.True(t, ok)
	assert.Equal(t, source.Point(0), rng)

	rng, ok = m.TranslateRangeReverse(source.NewRange(2, preludeLen+3))
	require.True(t, ok)
	assert.Equal(t, source.NewRange(0, 3), rng)

	back, ok := m.TranslateReverse(4)
	require.True(t, ok)
	assert.Equal(t, 0, back)
}

func TestBoundaryBias(t *testing.T) {
	t.Parallel()

	m := build(t, "a^b")

	rng, ok := m.TranslateRange(source.Point(1))
	require.True(t, ok)
	assert.Equal(t, source.Point(1), rng, "zero-length range at a span start")

	rng, ok = m.TranslateRange(source.Point(2))
	require.True(t, ok)
	assert.Equal(t, source.Point(3), rng, "zero-length range at a span end")

	rng, ok = m.TranslateRange(source.NewRange(0, 1))
	require.True(t, ok)
	assert.Equal(t, source.NewRange(0, 1), rng, "range ending at the operator excludes it")

	rng, ok = m.TranslateRangeReverse(source.NewRange(1, 2))
	require.True(t, ok)
	assert.Equal(t, source.NewRange(1, 2), rng, "half an operator widens to the operator")
}

func TestEndsAndOutOfRange(t *testing.T) {
	t.Parallel()

	m := build(t, "x = 2^3")

	got, ok := m.Translate(7)
	require.True(t, ok)
	assert.Equal(t, 8, got)

	got, ok = m.TranslateReverse(8)
	require.True(t, ok)
	assert.Equal(t, 7, got)

	_, ok = m.Translate(9)
	assert.False(t, ok)
	_, ok = m.TranslateReverse(-1)
	assert.False(t, ok)
	_, ok = m.TranslateRangeReverse(source.NewRange(3, 20))
	assert.False(t, ok)
	_, ok = m.TranslateRange(source.NewRange(3, 1))
	assert.False(t, ok)
}

func TestRoundTripProperty(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"x = 2^3\ny = x^2 + 1/3\n",
		"s = 'a^b'  # c^d\nt = (1 +\n  2^3)\n",
		"f = lambda n: n^2 ^ 3\n",
	}

	for _, input := range inputs {
		m := build(t, input)
		for offset := 0; offset <= len(input); offset++ {
			span, found := m.SpanAt(spanindex.Original, offset)
			if found && span.Kind == spanindex.KindExpansion {
				continue
			}
			fwd, ok := m.Translate(offset)
			require.True(t, ok)
			back, ok := m.TranslateReverse(fwd)
			require.True(t, ok)
			assert.Equal(t, offset, back, "offset %d of %q", offset, input)
		}

		for start := 0; start <= len(input); start++ {
			for end := start; end <= len(input); end++ {
				rng, ok := m.TranslateRange(source.NewRange(start, end))
				require.True(t, ok)
				assert.LessOrEqual(t, rng.Start, rng.End)
			}
		}
	}
}

func TestContractingOperator(t *testing.T) {
	t.Parallel()

	m := build(t, "a ^^ b")
	require.Equal(t, "a ^ b", m.Rewritten().Text())

	got, ok := m.Translate(3)
	require.True(t, ok)
	assert.Equal(t, 2, got)

	rng, ok := m.TranslateRangeReverse(source.NewRange(2, 3))
	require.True(t, ok)
	assert.Equal(t, source.NewRange(2, 4), rng)
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	m := sourcemap.Identity([]byte("print(1)\n"))
	got, ok := m.TranslateReverse(6)
	require.True(t, ok)
	assert.Equal(t, 6, got)
	assert.Same(t, m.Original(), m.Rewritten())

	empty := sourcemap.Identity(nil)
	got, ok = empty.Translate(0)
	require.True(t, ok)
	assert.Equal(t, 0, got)
}

func TestBuilderCache(t *testing.T) {
	t.Parallel()

	cache, err := sourcemap.NewCache(1<<20, 0)
	require.NoError(t, err)
	defer cache.Close()

	builder := sourcemap.NewBuilder(recognize.NewDefault(), "default", cache)
	ctx := context.Background()

	first, err := builder.Build(ctx, []byte("x = 2^3"))
	require.NoError(t, err)
	second, err := builder.Build(ctx, []byte("x = 2^3"))
	require.NoError(t, err)
	assert.Same(t, first, second)

	other, err := builder.Build(ctx, []byte("x = 2^4"))
	require.NoError(t, err)
	assert.NotSame(t, first, other)

	_, ok := cache.Lookup(sourcemap.Key("default", []byte("x = 2^3")), []byte("different"))
	assert.False(t, ok)
	assert.NotEqual(t, sourcemap.Key("a", []byte("x")), sourcemap.Key("b", []byte("x")))
}
