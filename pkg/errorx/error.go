package errorx

import (
	"errors"
	"fmt"
)

type Error struct {
	Code    Code
	Message string
	cause   error
}

func New(code Code, format string, a ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, a...)}
}

// Wrap keeps err reachable through errors.Unwrap while tagging it with code.
func Wrap(code Code, err error, format string, a ...any) Error {
	e := New(code, format, a...)
	e.cause = err
	return e
}

func (e Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}

	return e.Message
}

func (e Error) Unwrap() error {
	return e.cause
}

// Is reports whether any error in err's chain is an Error with the given code.
func Is(err error, code Code) bool {
	var e Error
	if errors.As(err, &e) {
		return e.Code == code
	}

	return false
}
