// Package apperr carries user-facing failures together with the process exit
// code they should produce.
package apperr

import (
	"errors"
	"fmt"
)

// DefaultExitCode is used for errors that carry no explicit code.
const DefaultExitCode = 1

// Error is a failure that is reported to the user verbatim.
type Error struct {
	Msg  string
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an Error with DefaultExitCode.
func New(msg string) *Error {
	return &Error{Msg: msg, Code: DefaultExitCode}
}

// Newf is New with formatting.
func Newf(format string, args ...any) *Error {
	return New(fmt.Sprintf(format, args...))
}

// WithCode returns an Error that exits with code.
func WithCode(code int, msg string) *Error {
	return &Error{Msg: msg, Code: code}
}

// Exit returns a silent Error: the process exits with code and prints nothing.
func Exit(code int) *Error {
	return &Error{Code: code}
}

// Wrap returns an Error with msg that keeps err in the chain.
func Wrap(err error, msg string) *Error {
	return &Error{Msg: msg, Code: DefaultExitCode, Err: err}
}

// ExitCode returns the exit code for err: 0 for nil, the code of the first
// *Error in the chain, or DefaultExitCode otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	return DefaultExitCode
}
