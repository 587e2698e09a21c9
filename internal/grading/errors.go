package grading

import (
	"errors"
	"fmt"
)

var ErrStructureMismatch = errors.New("submission does not match core structure")

// StructureError reports a response that cannot be aligned with its core by
// index. Question is -1 when the mismatch is at section level.
type StructureError struct {
	Section  int
	Question int
	Expected int
	Actual   int
	What     string
}

func (e *StructureError) Error() string {
	if e.Section < 0 {
		return fmt.Sprintf("%s: %s expected %d, got %d", ErrStructureMismatch, e.What, e.Expected, e.Actual)
	}
	if e.Question < 0 {
		return fmt.Sprintf("%s: section %d: %s expected %d, got %d",
			ErrStructureMismatch, e.Section, e.What, e.Expected, e.Actual)
	}
	return fmt.Sprintf("%s: section %d question %d: %s",
		ErrStructureMismatch, e.Section, e.Question, e.What)
}

func (e *StructureError) Unwrap() error {
	return ErrStructureMismatch
}
