package edit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gosage/pkg/edit"
	"github.com/yaklabco/gosage/pkg/source"
)

func TestApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		edits    []edit.TextEdit
		expected string
	}{
		{"no edits", "x = 2^3", nil, "x = 2^3"},
		{
			"single replacement",
			"x = 2^3",
			edit.NewBuilder().Replace(5, 6, "**").Edits,
			"x = 2**3",
		},
		{
			"insert at start and replace",
			"y = a^b",
			edit.NewBuilder().Insert(0, "from sage.all import *\n").Replace(5, 6, "**").Edits,
			"from sage.all import *\ny = a**b",
		},
		{
			"delete",
			"a ^^ b",
			edit.NewBuilder().Delete(2, 3).Edits,
			"a ^ b",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			prepared, err := edit.Prepare(testCase.edits, len(testCase.content))
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, string(edit.Apply([]byte(testCase.content), prepared)))
		})
	}
}

func TestPrepareRejectsInvalidEdits(t *testing.T) {
	t.Parallel()

	var validationErr *edit.ValidationError
	_, err := edit.Prepare(edit.NewBuilder().Replace(3, 9, "").Edits, 5)
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, err.Error(), "exceeds content length")

	_, err = edit.Prepare(edit.NewBuilder().Replace(-1, 2, "").Edits, 5)
	require.ErrorAs(t, err, &validationErr)

	var conflictErr *edit.ConflictError
	_, err = edit.Prepare(edit.NewBuilder().Replace(3, 4, "a").Replace(0, 4, "b").Edits, 5)
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, source.NewRange(0, 4), conflictErr.First.Range)
}

func TestPrepareDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	edits := edit.NewBuilder().Insert(4, "b").Insert(1, "a").Edits
	prepared, err := edit.Prepare(edits, 5)
	require.NoError(t, err)

	assert.Equal(t, 4, edits[0].Range.Start)
	assert.Equal(t, 1, prepared[0].Range.Start)
}

func TestApplySequential(t *testing.T) {
	t.Parallel()

	edits := []edit.TextEdit{
		{Range: source.NewRange(5, 5), NewText: "^"},
		{Range: source.NewRange(6, 6), NewText: "3"},
	}
	out, err := edit.ApplySequential([]byte("x = 2"), edits)
	require.NoError(t, err)
	assert.Equal(t, "x = 2^3", string(out))

	_, err = edit.ApplySequential([]byte("x"), []edit.TextEdit{{Range: source.NewRange(4, 5)}})
	require.Error(t, err)
}

func TestNewDiff(t *testing.T) {
	t.Parallel()

	t.Run("identical texts", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, edit.NewDiff("a.sage", "a.py", []byte("x\n"), []byte("x\n")))
	})

	t.Run("single line change", func(t *testing.T) {
		t.Parallel()

		diff := edit.NewDiff("a.sage", "a.py", []byte("a = 1\nx = 2^3\nb = 2\n"), []byte("a = 1\nx = 2**3\nb = 2\n"))
		require.NotNil(t, diff)
		require.Len(t, diff.Hunks, 1)

		added, removed := diff.Stats()
		assert.Equal(t, 1, added)
		assert.Equal(t, 1, removed)
		assert.Equal(t,
			"--- a.sage\n+++ a.py\n@@ -1,3 +1,3 @@\n a = 1\n-x = 2^3\n+x = 2**3\n b = 2\n",
			diff.String())
	})

	t.Run("distant changes form separate hunks", func(t *testing.T) {
		t.Parallel()

		oldText := "a\n1\n2\n3\n4\n5\n6\n7\n8\nb\n"
		newText := "A\n1\n2\n3\n4\n5\n6\n7\n8\nB\n"
		diff := edit.NewDiff("old", "new", []byte(oldText), []byte(newText))
		require.NotNil(t, diff)
		require.Len(t, diff.Hunks, 2)
		assert.Equal(t, 1, diff.Hunks[0].OldStart)
		assert.Equal(t, 7, diff.Hunks[1].OldStart)
		assert.Equal(t, 4, diff.Hunks[1].OldCount)
	})
}
