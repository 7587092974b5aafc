package errors

import (
	"errors"
	"fmt"
)

// Error is a typed error carrying a stable machine-readable code.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so that clones and wraps of a predefined error
// still satisfy errors.Is against it.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) || e == nil || other == nil {
		return false
	}
	return e.Code == other.Code
}

func New(code string, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(err error, code string, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

var (
	ErrInvalidInput      = New("INVALID_INPUT", "invalid model input")
	ErrInvalidParameters = New("INVALID_PARAMETERS", "invalid solver parameters")
	ErrNodeLimit         = New("NODE_LIMIT", "search node budget exhausted")
	ErrSolver            = New("SOLVER_FAILURE", "sat solver failure")
	ErrInternal          = New("INTERNAL_ERROR", "internal error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Message)
}

// Clone returns a copy of err with an optional message override.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Cause wraps err under a copy of base, keeping base's code.
func Cause(base *Error, err error, message string) *Error {
	clone := Clone(base, message)
	clone.Err = err
	return clone
}
