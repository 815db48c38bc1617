package markdown

import "fmt"

// DepthError reports that nesting exceeded the configured stack capacity.
// The parse is aborted; no partial output is returned. Offset is the
// position of the marker byte whose context could not be opened.
type DepthError struct {
	Offset int
	Marker byte
	Limit  int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("markdown: nesting deeper than %d at offset %d (marker %q)", e.Limit, e.Offset, e.Marker)
}

// UnderflowError reports a pop from an empty context stack. It is not
// reachable through any input; its presence keeps the stack invariant
// checked instead of assumed.
type UnderflowError struct {
	Offset int
}

func (e *UnderflowError) Error() string {
	return fmt.Sprintf("markdown: context stack underflow at offset %d", e.Offset)
}

// StateError reports dispatch on a context kind the engine does not know.
// Like UnderflowError it is not reachable through any input.
type StateError struct {
	Offset int
	Kind   uint8
}

func (e *StateError) Error() string {
	return fmt.Sprintf("markdown: invalid parse state %d at offset %d", e.Kind, e.Offset)
}
