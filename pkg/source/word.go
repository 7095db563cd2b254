package source

// IsIdentByte reports whether c can appear in a Python identifier.
// Non-ASCII bytes are accepted so that Unicode identifiers stay whole.
func IsIdentByte(c byte) bool {
	return c == '_' || c >= 0x80 ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// WordAt returns the range of the identifier touching offset, or an empty
// range at offset when there is none. A cursor just after a word selects it.
func (s *Snapshot) WordAt(offset int) Range {
	if offset < 0 || offset > len(s.Content) {
		return Point(max(0, min(offset, len(s.Content))))
	}
	start := offset
	for start > 0 && IsIdentByte(s.Content[start-1]) {
		start--
	}
	end := offset
	for end < len(s.Content) && IsIdentByte(s.Content[end]) {
		end++
	}
	return Range{Start: start, End: end}
}
