// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldWorkingDir = "working_dir"
	FieldCommand    = "command"
	FieldDuration   = "duration"

	// Document fields.
	FieldURI      = "uri"
	FieldVersion  = "version"
	FieldDialect  = "dialect"
	FieldSpans    = "spans"
	FieldOffset   = "offset"
	FieldRange    = "range"
	FieldCode     = "code"
	FieldKind     = "kind"
	FieldDropped  = "dropped"
	FieldCacheHit = "cache_hit"

	// Protocol fields.
	FieldMethod = "method"
	FieldID     = "id"

	// Statistics fields.
	FieldFilesDiscovered  = "files_discovered"
	FieldFilesProcessed   = "files_processed"
	FieldFilesWithIssues  = "files_with_issues"
	FieldDiagnosticsTotal = "diagnostics_total"

	// Build fields.
	FieldCommit = "commit"
	FieldBuilt  = "built"
)
