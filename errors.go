package uriparser

import (
	"errors"
	"fmt"

	"github.com/nlstn/go-odata-uriparser/internal/binder"
	"github.com/nlstn/go-odata-uriparser/internal/observability"
	"github.com/nlstn/go-odata-uriparser/internal/syntax"
	"github.com/nlstn/go-odata-uriparser/semantic"
)

// Sentinel errors returned by the parser. Every error returned from
// ParseFilter, ParseOrderBy and ParseQuery matches exactly one of them with
// errors.Is.
var (
	// ErrEntitySetNotFound indicates the query targets an entity set the
	// model does not declare.
	ErrEntitySetNotFound = errors.New("uriparser: entity set not found")

	// ErrInvalidSyntax indicates the query option text is not well formed.
	ErrInvalidSyntax = errors.New("uriparser: invalid syntax")

	// ErrInvalidQuery indicates a well formed query option that cannot be
	// bound against the model, such as an unknown property or a type mismatch.
	ErrInvalidQuery = errors.New("uriparser: invalid query")
)

// ErrNotImplemented is returned by tree consumers asked to handle a node
// kind they do not support. It is distinct from the errors above: the query
// is valid, the consumer is limited.
var ErrNotImplemented = semantic.ErrNotImplemented

// classify wraps err with the sentinel describing its cause.
func classify(err error) error {
	switch {
	case errors.Is(err, syntax.ErrSyntax):
		return fmt.Errorf("%w: %w", ErrInvalidSyntax, err)
	case errors.Is(err, binder.ErrBind):
		return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	return err
}

// errorType names the class of err for metrics.
func errorType(err error) string {
	switch {
	case errors.Is(err, ErrInvalidSyntax):
		return observability.ErrorTypeSyntax
	case errors.Is(err, ErrInvalidQuery):
		return observability.ErrorTypeBind
	case errors.Is(err, ErrEntitySetNotFound):
		return observability.ErrorTypeNotFound
	case errors.Is(err, ErrNotImplemented):
		return observability.ErrorTypeUnsupported
	}
	return "other"
}
