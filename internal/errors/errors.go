// Package errors defines the error taxonomy shared by the store, codec and shell.
//
// Three kinds of failure exist:
//   - MalformedDocumentError: the persisted document cannot be read. Fatal at startup.
//   - ValidationError: operator input was rejected. Recovered by re-prompting.
//   - IOError: a write to disk failed. Fatal, never retried.
package errors

import (
	"errors"
	"fmt"
)

// MalformedDocumentError reports an unreadable or corrupt persisted document.
type MalformedDocumentError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MalformedDocumentError) Error() string {
	msg := "malformed document"
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}

// NewMalformedDocument creates a MalformedDocumentError with a formatted reason.
func NewMalformedDocument(format string, args ...any) *MalformedDocumentError {
	return &MalformedDocumentError{Reason: fmt.Sprintf(format, args...)}
}

// ValidationError reports rejected input, such as an unparseable snooze
// duration or an out-of-range menu selection.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// NewValidation creates a ValidationError.
func NewValidation(field, value, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// IOError reports a failed filesystem operation on the persisted document.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIO creates an IOError for the given operation and path.
func NewIO(op, path string, err error) *IOError {
	return &IOError{Op: op, Path: path, Err: err}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsFatal reports whether err must terminate the program: malformed
// documents and I/O failures leave no safe way to continue mutating state.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var md *MalformedDocumentError
	var ioe *IOError
	return errors.As(err, &md) || errors.As(err, &ioe)
}
