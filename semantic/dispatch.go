package semantic

import "fmt"

// Accept routes n to the one method of v handling n's kind and returns that
// method's result unchanged. It does not visit children, keeps no state, and
// neither wraps nor recovers what the method returns or panics with. A node
// whose concrete type does not match its kind, such as a struct embedding a
// payload type, is rejected with ErrInvalidNode.
func Accept[R any](n Node, v Visitor[R]) (R, error) {
	var zero R
	if n == nil {
		return zero, fmt.Errorf("%w: nil node", ErrInvalidNode)
	}
	if v == nil {
		return zero, fmt.Errorf("%w: nil visitor", ErrInvalidNode)
	}

	switch n.Kind() {
	case KindAll:
		return dispatch(n, v.VisitAll)
	case KindAny:
		return dispatch(n, v.VisitAny)
	case KindBinaryOperator:
		return dispatch(n, v.VisitBinaryOperator)
	case KindCollectionNavigation:
		return dispatch(n, v.VisitCollectionNavigation)
	case KindCollectionPropertyAccess:
		return dispatch(n, v.VisitCollectionPropertyAccess)
	case KindConstant:
		return dispatch(n, v.VisitConstant)
	case KindConvert:
		return dispatch(n, v.VisitConvert)
	case KindEntityCollectionCast:
		return dispatch(n, v.VisitEntityCollectionCast)
	case KindEntityRangeVariableReference:
		return dispatch(n, v.VisitEntityRangeVariableReference)
	case KindNonentityRangeVariableReference:
		return dispatch(n, v.VisitNonentityRangeVariableReference)
	case KindSingleEntityCast:
		return dispatch(n, v.VisitSingleEntityCast)
	case KindSingleNavigation:
		return dispatch(n, v.VisitSingleNavigation)
	case KindSingleEntityFunctionCall:
		return dispatch(n, v.VisitSingleEntityFunctionCall)
	case KindSingleValueFunctionCall:
		return dispatch(n, v.VisitSingleValueFunctionCall)
	case KindSingleValueOpenPropertyAccess:
		return dispatch(n, v.VisitSingleValueOpenPropertyAccess)
	case KindSingleValuePropertyAccess:
		return dispatch(n, v.VisitSingleValuePropertyAccess)
	case KindUnaryOperator:
		return dispatch(n, v.VisitUnaryOperator)
	case KindEntitySet:
		return dispatch(n, v.VisitEntitySet)
	case KindEntityCollectionFunctionCall:
		return dispatch(n, v.VisitEntityCollectionFunctionCall)
	case KindCollectionFunctionCall:
		return dispatch(n, v.VisitCollectionFunctionCall)
	case KindIn:
		return dispatch(n, v.VisitIn)
	case KindCollectionConstant:
		return dispatch(n, v.VisitCollectionConstant)
	}

	return zero, fmt.Errorf("%w: unrecognised kind %s", ErrInvalidNode, n.Kind())
}

// dispatch hands n to visit when n is exactly the payload type visit takes.
func dispatch[T Node, R any](n Node, visit func(T) (R, error)) (R, error) {
	payload, ok := n.(T)
	if !ok {
		var zero R
		return zero, fmt.Errorf("%w: %T does not carry kind %s", ErrInvalidNode, n, n.Kind())
	}
	return visit(payload)
}
