package syntax

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is matched by every error returned from this package.
	ErrSyntax = errors.New("syntax error")

	// ErrMaxDepth reports an expression nested deeper than the parser allows.
	ErrMaxDepth = errors.New("expression nesting exceeds maximum depth")

	errUnterminatedString = errors.New("unterminated string literal")
	errInvalidNumber      = errors.New("invalid numeric literal")
)

// Error is a syntax error at a byte offset of the input.
type Error struct {
	Pos   int
	Msg   string
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at position %d", e.Msg, e.Pos)
}

func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrSyntax}
	}
	return []error{ErrSyntax, e.cause}
}

func errorf(pos int, format string, args ...interface{}) error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func wrapf(cause error, pos int, format string, args ...interface{}) error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...), cause: cause}
}
