package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gosage/pkg/fsutil"
)

func TestReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "ring.sage")
	content := []byte("R.<x> = QQ[]\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	got, info, err := fsutil.ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, path, info.Path)
	assert.Equal(t, int64(len(content)), info.Size)
	assert.Equal(t, xxhash.Sum64(content), info.Hash)
}

func TestReadFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	big := filepath.Join(dir, "big.sage")
	require.NoError(t, os.WriteFile(big, nil, 0o600))
	require.NoError(t, os.Truncate(big, fsutil.MaxFileSize+1))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		ctx     context.Context
		path    string
		wantErr error
	}{
		{"missing", context.Background(), filepath.Join(dir, "nope.sage"), fsutil.ErrNotFound},
		{"directory", context.Background(), dir, fsutil.ErrIsDirectory},
		{"too large", context.Background(), big, fsutil.ErrTooLarge},
		{"cancelled", cancelled, big, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := fsutil.ReadFile(tt.ctx, tt.path)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.py")

	require.NoError(t, fsutil.WriteAtomic(context.Background(), path, []byte("x = 2**3\n"), 0))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x = 2**3\n", string(got))

	stat, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, fsutil.DefaultFileMode, stat.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestWriteAtomic_MissingDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "out.py")
	require.Error(t, fsutil.WriteAtomic(context.Background(), path, []byte("x"), 0))
}

func TestWriteAtomicIfChanged(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), ".gosage.yml")

	written, err := fsutil.WriteAtomicIfChanged(ctx, path, []byte("prelude: true\n"), 0o600)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = fsutil.WriteAtomicIfChanged(ctx, path, []byte("prelude: true\n"), 0o600)
	require.NoError(t, err)
	assert.False(t, written)

	written, err = fsutil.WriteAtomicIfChanged(ctx, path, []byte("prelude: false\n"), 0o600)
	require.NoError(t, err)
	assert.True(t, written)
}
