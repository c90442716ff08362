package asg

import "fmt"

// ParseError indicates the input document could not be read or decoded at
// all. It is fatal: no partial graph is produced.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string { return e.Message }

// EmptyGraphError indicates the document parsed but declares no nodes.
// Callers treat this differently from a parse failure: the document is
// valid, there is just nothing to lower.
type EmptyGraphError struct {
	Message string
}

func (e *EmptyGraphError) Error() string { return e.Message }

// ErrParse creates a ParseError with a formatted message.
func ErrParse(format string, args ...interface{}) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}

// ErrEmptyGraph creates an EmptyGraphError with a formatted message.
func ErrEmptyGraph(format string, args ...interface{}) *EmptyGraphError {
	return &EmptyGraphError{Message: fmt.Sprintf(format, args...)}
}
