package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// skippedDirs are never descended into.
//
//nolint:gochecknoglobals // Read-only lookup table.
var skippedDirs = map[string]bool{
	"__pycache__":  true,
	"node_modules": true,
	"venv":         true,
	"build":        true,
	"dist":         true,
}

// Discover finds files matching opts under the given working directory.
// It returns a deterministically sorted list of absolute file paths.
// Explicitly named files are returned even when an ignore rule matches them.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	m := &matcher{
		workDir:    workDir,
		extensions: opts.effectiveExtensions(),
		opts:       opts,
	}
	if !opts.NoGitignore {
		m.gitignore = loadGitignore(workDir)
	}

	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	for _, inputPath := range opts.effectivePaths() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("discovery cancelled: %w", ctx.Err())
		default:
		}

		absPath := inputPath
		if !filepath.IsAbs(inputPath) {
			absPath = filepath.Join(workDir, inputPath)
		}
		absPath = filepath.Clean(absPath)

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", inputPath, err)
		}

		if !info.IsDir() {
			add(absPath)
			continue
		}

		discovered, err := m.walk(ctx, absPath)
		if err != nil {
			return nil, err
		}
		for _, f := range discovered {
			add(f)
		}
	}

	sort.Strings(files)
	return files, nil
}

// resolveWorkDir resolves the working directory, defaulting to os.Getwd().
func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	absPath, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return absPath, nil
}

// loadGitignore compiles workDir/.gitignore if it exists.
func loadGitignore(workDir string) *ignore.GitIgnore {
	path := filepath.Join(workDir, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}

type matcher struct {
	workDir    string
	extensions []string
	gitignore  *ignore.GitIgnore
	opts       Options
}

// walk recursively walks a directory and returns matching files.
func (m *matcher) walk(ctx context.Context, root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}

		rel := m.rel(path)

		if entry.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(entry.Name(), ".") || skippedDirs[entry.Name()] || m.excluded(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			realPath, evalErr := filepath.EvalSymlinks(path)
			if evalErr != nil {
				return nil //nolint:nilerr // Intentionally skip broken symlinks
			}
			info, statErr := os.Stat(realPath)
			if statErr != nil {
				return nil //nolint:nilerr // Intentionally skip inaccessible symlink targets
			}
			if info.IsDir() {
				if !m.opts.FollowSymlinks || m.excluded(rel, true) {
					return nil
				}
				subFiles, err := m.walk(ctx, realPath)
				if err != nil {
					return err
				}
				files = append(files, subFiles...)
				return nil
			}
		}

		if strings.HasPrefix(entry.Name(), ".") {
			return nil
		}
		if m.matches(path, rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}

	return files, nil
}

func (m *matcher) rel(path string) string {
	rel, err := filepath.Rel(m.workDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// matches checks if a walked file matches the inclusion criteria.
func (m *matcher) matches(path, rel string) bool {
	if !hasMatchingExtension(path, m.extensions) || m.excluded(rel, false) {
		return false
	}
	if len(m.opts.IncludeGlobs) > 0 {
		return matchAny(rel, m.opts.IncludeGlobs)
	}
	return true
}

// excluded applies exclude globs and .gitignore to a slash-separated
// relative path.
func (m *matcher) excluded(rel string, dir bool) bool {
	if matchAny(rel, m.opts.ExcludeGlobs) {
		return true
	}
	if dir && matchAny(rel+"/", m.opts.ExcludeGlobs) {
		return true
	}
	if m.gitignore != nil {
		if dir {
			return m.gitignore.MatchesPath(rel + "/")
		}
		return m.gitignore.MatchesPath(rel)
	}
	return false
}

// hasMatchingExtension checks if the file has a matching extension.
func hasMatchingExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// matchAny reports whether rel, or its base name, matches any pattern. A
// pattern ending in "/**" also matches the directory itself.
func matchAny(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, strings.TrimSuffix(rel, "/")); ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, _ := doublestar.Match(pattern, filepath.Base(rel)); ok {
				return true
			}
		}
		if dir, found := strings.CutSuffix(pattern, "/**"); found && strings.TrimSuffix(rel, "/") == dir {
			return true
		}
	}
	return false
}
