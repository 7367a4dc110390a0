// Package domainerrors carries error codes across layers. Stores return plain
// or sentinel errors; services wrap them with a Code; handlers translate the
// Code into a transport status.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a failure independently of the transport.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeTimeout      Code = "timeout"
	CodeUnavailable  Code = "unavailable"
	CodeInternal     Code = "internal_error"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a coded error without a cause.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to err. A nil err yields a plain coded error.
func Wrap(err error, code Code, msg string) error {
	return &Error{Code: code, Message: msg, Err: err}
}

// GetCode returns the outermost code in the chain, or CodeInternal when none is set.
func GetCode(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the outermost coded error in the chain has code.
func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return GetCode(err) == code
}
