package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yaklabco/gosage/pkg/runner"
)

// tree creates files under dir and returns dir.
func tree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("setup mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("setup write: %v", err)
		}
	}
	return dir
}

func relAll(t *testing.T, dir string, files []string) string {
	t.Helper()
	out := make([]string, len(files))
	for i, f := range files {
		rel, err := filepath.Rel(dir, f)
		if err != nil {
			t.Fatalf("rel: %v", err)
		}
		out[i] = filepath.ToSlash(rel)
	}
	return strings.Join(out, ",")
}

func TestDiscover_SingleFile(t *testing.T) {
	t.Parallel()

	dir := tree(t, map[string]string{"rings.sage": "R.<x> = QQ[]\n"})
	file := filepath.Join(dir, "rings.sage")

	files, err := runner.Discover(context.Background(), runner.Options{Paths: []string{file}, WorkingDir: dir})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(files) != 1 || files[0] != file {
		t.Fatalf("expected [%s], got %v", file, files)
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"rings.sage":              "",
		"fields/number.sage":      "",
		"fields/helper.py":        "",
		"notes.txt":               "",
		".hidden/secret.sage":     "",
		"__pycache__/cached.sage": "",
		"vendor/lib/ext.sage":     "",
		"generated/out.sage":      "",
		".gitignore":              "generated/\n",
	}

	tests := []struct {
		name string
		opts runner.Options
		want string
	}{
		{
			name: "defaults skip hidden, cache and gitignored directories",
			opts: runner.Options{},
			want: "fields/number.sage,rings.sage,vendor/lib/ext.sage",
		},
		{
			name: "exclude glob",
			opts: runner.Options{ExcludeGlobs: []string{"vendor/**"}},
			want: "fields/number.sage,rings.sage",
		},
		{
			name: "include glob",
			opts: runner.Options{IncludeGlobs: []string{"fields/**"}},
			want: "fields/number.sage",
		},
		{
			name: "base name exclude",
			opts: runner.Options{ExcludeGlobs: []string{"ring*.sage"}},
			want: "fields/number.sage,vendor/lib/ext.sage",
		},
		{
			name: "extra extensions",
			opts: runner.Options{Extensions: []string{".sage", ".py"}, ExcludeGlobs: []string{"vendor/**"}},
			want: "fields/helper.py,fields/number.sage,rings.sage",
		},
		{
			name: "gitignore disabled",
			opts: runner.Options{NoGitignore: true, ExcludeGlobs: []string{"vendor/**"}},
			want: "fields/number.sage,generated/out.sage,rings.sage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := tree(t, files)
			opts := tt.opts
			opts.WorkingDir = dir

			got, err := runner.Discover(context.Background(), opts)
			if err != nil {
				t.Fatalf("Discover() error = %v", err)
			}
			if rel := relAll(t, dir, got); rel != tt.want {
				t.Errorf("got %s, want %s", rel, tt.want)
			}
		})
	}
}

func TestDiscover_Deduplicates(t *testing.T) {
	t.Parallel()

	dir := tree(t, map[string]string{"a.sage": "", "sub/b.sage": ""})

	got, err := runner.Discover(context.Background(), runner.Options{
		Paths:      []string{".", "sub", "a.sage"},
		WorkingDir: dir,
	})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if rel := relAll(t, dir, got); rel != "a.sage,sub/b.sage" {
		t.Errorf("got %s", rel)
	}
}

func TestDiscover_MissingPath(t *testing.T) {
	t.Parallel()

	_, err := runner.Discover(context.Background(), runner.Options{
		Paths:      []string{"missing.sage"},
		WorkingDir: t.TempDir(),
	})
	if err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestDiscover_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Discover(ctx, runner.Options{WorkingDir: t.TempDir()})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}
