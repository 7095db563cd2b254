// Package runner checks many files at once: it discovers Sage sources,
// rewrites and analyzes each on a worker pool, and aggregates the outcomes.
package runner

// Options controls multi-file checking behavior.
type Options struct {
	// Paths are the user-specified paths (files or directories) to process.
	// If empty, defaults to the current working directory.
	Paths []string

	// WorkingDir is the base directory used to resolve relative Paths.
	// If empty, the current process working directory is used.
	WorkingDir string

	// Extensions is the set of file extensions (lowercase, with leading dot)
	// to check. Defaults to DefaultExtensions().
	Extensions []string

	// IncludeGlobs are additional doublestar patterns to include, relative
	// to WorkingDir. Empty means "include everything that matches Extensions".
	IncludeGlobs []string

	// ExcludeGlobs are doublestar patterns used to skip files or directories.
	ExcludeGlobs []string

	// NoGitignore disables .gitignore handling.
	NoGitignore bool

	// FollowSymlinks controls whether directory symlinks are traversed.
	FollowSymlinks bool

	// Jobs controls the maximum number of concurrent workers.
	// 0 or negative means "auto" (runtime.NumCPU()).
	Jobs int
}

// DefaultExtensions returns the default set of Sage file extensions.
func DefaultExtensions() []string {
	return []string{".sage"}
}

// effectiveExtensions returns the extensions to use, defaulting if empty.
func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

// effectivePaths returns the paths to process, defaulting to "." if empty.
func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
