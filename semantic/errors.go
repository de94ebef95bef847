package semantic

import (
	"errors"
	"fmt"
)

var (
	// ErrNotImplemented is matched by every NotImplementedError. It means the
	// visitor does not support a construct, not that the query is malformed.
	ErrNotImplemented = errors.New("semantic: visit not implemented")

	// ErrInvalidNode is returned when dispatch receives a nil node, a nil
	// visitor or a node whose kind is not recognised.
	ErrInvalidNode = errors.New("semantic: invalid node")
)

// NotImplementedError reports a visitor that has no handler for Kind.
type NotImplementedError struct {
	Kind Kind
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("semantic: visit not implemented for node kind %s", e.Kind)
}

// Is makes errors.Is(err, ErrNotImplemented) hold for every kind.
func (e *NotImplementedError) Is(target error) bool {
	return target == ErrNotImplemented
}

// NotImplementedKind extracts the unhandled kind from err.
func NotImplementedKind(err error) (Kind, bool) {
	var nie *NotImplementedError
	if errors.As(err, &nie) {
		return nie.Kind, true
	}
	return KindNone, false
}

func notImplemented[R any](kind Kind) (R, error) {
	var zero R
	return zero, &NotImplementedError{Kind: kind}
}
