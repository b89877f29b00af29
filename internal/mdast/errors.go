package mdast

import (
	"errors"
	"fmt"
)

// ErrStructural matches every *StructuralError via errors.Is.
var ErrStructural = errors.New("structural parse error")

// ErrorKind names the invariant a StructuralError reports.
type ErrorKind string

const (
	KindHeaderLevel ErrorKind = "header_level" // hash run outside 1..6
	KindHeaderShape ErrorKind = "header_shape" // hash run not followed by a space
	KindStalled     ErrorKind = "stalled"      // a consumer made no progress
	KindDepth       ErrorKind = "depth"        // chapter nesting deeper than MaxLevel
)

// StructuralError aborts a parse. Offset is the byte offset into the
// normalized input and Span the offending text, cut at the end of its line.
type StructuralError struct {
	Kind   ErrorKind
	Offset int
	Span   string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("mdast: %s at offset %d: %q", e.Kind, e.Offset, e.Span)
}

func (e *StructuralError) Is(target error) bool {
	return target == ErrStructural
}

func structuralError(kind ErrorKind, src string, offset int) *StructuralError {
	return &StructuralError{
		Kind:   kind,
		Offset: offset,
		Span:   lineAt(src, offset),
	}
}

const maxSpan = 80

// lineAt returns the text from offset to the end of its line, truncated.
func lineAt(src string, offset int) string {
	if offset >= len(src) {
		return ""
	}
	line, _ := splitLine(src, offset)
	if len(line) > maxSpan {
		line = line[:maxSpan] + "..."
	}
	return line
}
