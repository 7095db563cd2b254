// Package edit provides byte-range text edits, their validation and
// application, and unified diffs between two versions of a text.
//
// The recognizer expresses every rewrite it performs as an edit against the
// original text, and the document store applies editor content changes the
// same way.
package edit

import "github.com/yaklabco/gosage/pkg/source"

// TextEdit replaces the bytes in Range with NewText.
type TextEdit struct {
	// Range is the half-open byte range being replaced.
	Range source.Range

	// NewText is the replacement text.
	NewText string
}

// Delta returns how much the edit grows (positive) or shrinks the text.
func (e TextEdit) Delta() int {
	return len(e.NewText) - e.Range.Len()
}

// Builder accumulates text edits against one text.
type Builder struct {
	Edits []TextEdit
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{Edits: make([]TextEdit, 0)}
}

// Replace adds an edit that replaces bytes [start, end) with newText.
func (b *Builder) Replace(start, end int, newText string) *Builder {
	b.Edits = append(b.Edits, TextEdit{Range: source.NewRange(start, end), NewText: newText})
	return b
}

// Insert adds an edit that inserts text at the given offset.
func (b *Builder) Insert(offset int, text string) *Builder {
	return b.Replace(offset, offset, text)
}

// Delete adds an edit that deletes bytes [start, end).
func (b *Builder) Delete(start, end int) *Builder {
	return b.Replace(start, end, "")
}
