package source

// Snapshot is an immutable view of a document's text at one version.
// It holds the raw content and line metadata; callers must not mutate Content.
type Snapshot struct {
	// Path is the file path or URI (may be empty for in-memory content).
	Path string

	// Content is the full text.
	Content []byte

	// Lines contains metadata for each line in the text.
	Lines []LineInfo
}

// NewSnapshot creates a Snapshot from content and builds its line index.
func NewSnapshot(path string, content []byte) *Snapshot {
	return &Snapshot{
		Path:    path,
		Content: content,
		Lines:   BuildLines(content),
	}
}

// Text returns the content as a string.
func (s *Snapshot) Text() string {
	return string(s.Content)
}

// Slice returns the bytes covered by r, clamped to the content.
func (s *Snapshot) Slice(r Range) []byte {
	start := max(0, min(r.Start, len(s.Content)))
	end := max(start, min(r.End, len(s.Content)))
	return s.Content[start:end]
}

// RangeToLSP converts a byte range to a pair of editor positions.
func (s *Snapshot) RangeToLSP(r Range) (LSPPosition, LSPPosition) {
	return s.ToLSP(r.Start), s.ToLSP(r.End)
}

// RangeFromLSP converts a pair of editor positions to a byte range. An
// inverted input yields an empty range at its start.
func (s *Snapshot) RangeFromLSP(r LSPRange) Range {
	start := s.FromLSP(r.Start)
	return NewRange(start, max(start, s.FromLSP(r.End)))
}
