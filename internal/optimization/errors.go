package optimization

import (
	"fmt"
	"strings"
)

// ErrAbandonExceedsPopulation is returned when a search is configured
// with a population smaller than the number of candidates it is asked
// to abandon after each replacement.
var ErrAbandonExceedsPopulation = NewError("population size is smaller than abandon count").
	WithComponent("cuckoo").
	WithOperation("validate")

// Error is an optimization failure tagged with the component and
// operation that produced it. The tags are optional and prepended to
// the message when set; a wrapped cause is appended.
type Error struct {
	Message   string
	Op        string
	Component string
	Err       error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	var b strings.Builder
	if e.Component != "" {
		b.WriteString(e.Component)
		b.WriteString(": ")
	}
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithOperation tags the error with the operation that produced it.
func (e *Error) WithOperation(op string) *Error {
	e.Op = op
	return e
}

// WithComponent tags the error with the component that produced it.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// NewError creates an untagged error with the given message.
func NewError(message string) *Error {
	return &Error{Message: message}
}

// NewErrorf creates an untagged error with a formatted message.
func NewErrorf(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// WrapError annotates a cause with a message. A nil cause yields nil.
func WrapError(err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Message: message, Err: err}
}
