package edit

import "bytes"

// Apply applies a sorted, validated slice of edits to content.
// Edits must be prepared with Prepare before calling.
func Apply(content []byte, edits []TextEdit) []byte {
	if len(edits) == 0 {
		return content
	}

	delta := 0
	for _, e := range edits {
		delta += e.Delta()
	}

	var out bytes.Buffer
	out.Grow(len(content) + delta)

	cursor := 0
	for _, e := range edits {
		out.Write(content[cursor:e.Range.Start])
		out.WriteString(e.NewText)
		cursor = e.Range.End
	}
	out.Write(content[cursor:])

	return out.Bytes()
}

// ApplySequential applies edits one after another, each expressed against
// the result of the previous one. This is how editors describe incremental
// document changes.
func ApplySequential(content []byte, edits []TextEdit) ([]byte, error) {
	out := content
	for _, e := range edits {
		prepared, err := Prepare([]TextEdit{e}, len(out))
		if err != nil {
			return nil, err
		}
		out = Apply(out, prepared)
	}
	return out, nil
}
