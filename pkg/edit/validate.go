package edit

import (
	"fmt"
	"sort"
)

// ValidationError describes an invalid edit.
type ValidationError struct {
	Edit    TextEdit
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid edit %s: %s", e.Edit.Range, e.Message)
}

// ConflictError describes overlapping edits.
type ConflictError struct {
	First  TextEdit
	Second TextEdit
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("overlapping edits: %s and %s", e.First.Range, e.Second.Range)
}

// Validate checks that all edits have valid ranges for the given content length.
// Returns the first validation error encountered.
func Validate(edits []TextEdit, contentLen int) error {
	for _, e := range edits {
		switch {
		case e.Range.Start < 0:
			return &ValidationError{Edit: e, Message: "start offset is negative"}
		case e.Range.End < e.Range.Start:
			return &ValidationError{Edit: e, Message: "end offset is before start offset"}
		case e.Range.End > contentLen:
			return &ValidationError{
				Edit:    e,
				Message: fmt.Sprintf("end offset %d exceeds content length %d", e.Range.End, contentLen),
			}
		}
	}
	return nil
}

// Sort orders edits by start offset, then by end offset.
// The sort is stable so insertions at the same offset keep their order.
func Sort(edits []TextEdit) {
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Range.Start != edits[j].Range.Start {
			return edits[i].Range.Start < edits[j].Range.Start
		}
		return edits[i].Range.End < edits[j].Range.End
	})
}

// DetectConflicts checks for overlapping edits in a sorted slice.
func DetectConflicts(edits []TextEdit) error {
	for i := 1; i < len(edits); i++ {
		if edits[i].Range.Start < edits[i-1].Range.End {
			return &ConflictError{First: edits[i-1], Second: edits[i]}
		}
	}
	return nil
}

// Prepare validates, sorts, and checks for conflicts.
// It returns a sorted copy; the input slice is left untouched.
func Prepare(edits []TextEdit, contentLen int) ([]TextEdit, error) {
	if len(edits) == 0 {
		return edits, nil
	}

	if err := Validate(edits, contentLen); err != nil {
		return nil, err
	}

	result := make([]TextEdit, len(edits))
	copy(result, edits)
	Sort(result)

	if err := DetectConflicts(result); err != nil {
		return nil, err
	}

	return result, nil
}
