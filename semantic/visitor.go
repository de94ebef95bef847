package semantic

// Visitor handles each node kind, producing a value of type R.
//
// Concrete visitors embed DefaultVisitor[R] and override the methods for
// the kinds they support; every other kind then fails with a
// NotImplementedError. Visit methods do not descend into children on their
// own; a visitor that needs the children calls Accept on them.
type Visitor[R any] interface {
	VisitAll(n *AllNode) (R, error)
	VisitAny(n *AnyNode) (R, error)
	VisitBinaryOperator(n *BinaryOperatorNode) (R, error)
	VisitCollectionNavigation(n *CollectionNavigationNode) (R, error)
	VisitCollectionPropertyAccess(n *CollectionPropertyAccessNode) (R, error)
	VisitConstant(n *ConstantNode) (R, error)
	VisitConvert(n *ConvertNode) (R, error)
	VisitEntityCollectionCast(n *EntityCollectionCastNode) (R, error)
	VisitEntityRangeVariableReference(n *EntityRangeVariableReferenceNode) (R, error)
	VisitNonentityRangeVariableReference(n *NonentityRangeVariableReferenceNode) (R, error)
	VisitSingleEntityCast(n *SingleEntityCastNode) (R, error)
	VisitSingleNavigation(n *SingleNavigationNode) (R, error)
	VisitSingleEntityFunctionCall(n *SingleEntityFunctionCallNode) (R, error)
	VisitSingleValueFunctionCall(n *SingleValueFunctionCallNode) (R, error)
	VisitSingleValueOpenPropertyAccess(n *SingleValueOpenPropertyAccessNode) (R, error)
	VisitSingleValuePropertyAccess(n *SingleValuePropertyAccessNode) (R, error)
	VisitUnaryOperator(n *UnaryOperatorNode) (R, error)
	VisitEntitySet(n *EntitySetNode) (R, error)
	VisitEntityCollectionFunctionCall(n *EntityCollectionFunctionCallNode) (R, error)
	VisitCollectionFunctionCall(n *CollectionFunctionCallNode) (R, error)
	VisitIn(n *InNode) (R, error)
	VisitCollectionConstant(n *CollectionConstantNode) (R, error)
}

// DefaultVisitor implements every Visitor method by failing with a
// NotImplementedError naming the node's kind. It never returns a usable
// zero value.
type DefaultVisitor[R any] struct{}

var _ Visitor[any] = DefaultVisitor[any]{}

func (DefaultVisitor[R]) VisitAll(*AllNode) (R, error) { return notImplemented[R](KindAll) }
func (DefaultVisitor[R]) VisitAny(*AnyNode) (R, error) { return notImplemented[R](KindAny) }

func (DefaultVisitor[R]) VisitBinaryOperator(*BinaryOperatorNode) (R, error) {
	return notImplemented[R](KindBinaryOperator)
}

func (DefaultVisitor[R]) VisitCollectionNavigation(*CollectionNavigationNode) (R, error) {
	return notImplemented[R](KindCollectionNavigation)
}

func (DefaultVisitor[R]) VisitCollectionPropertyAccess(*CollectionPropertyAccessNode) (R, error) {
	return notImplemented[R](KindCollectionPropertyAccess)
}

func (DefaultVisitor[R]) VisitConstant(*ConstantNode) (R, error) {
	return notImplemented[R](KindConstant)
}

func (DefaultVisitor[R]) VisitConvert(*ConvertNode) (R, error) {
	return notImplemented[R](KindConvert)
}

func (DefaultVisitor[R]) VisitEntityCollectionCast(*EntityCollectionCastNode) (R, error) {
	return notImplemented[R](KindEntityCollectionCast)
}

func (DefaultVisitor[R]) VisitEntityRangeVariableReference(*EntityRangeVariableReferenceNode) (R, error) {
	return notImplemented[R](KindEntityRangeVariableReference)
}

func (DefaultVisitor[R]) VisitNonentityRangeVariableReference(*NonentityRangeVariableReferenceNode) (R, error) {
	return notImplemented[R](KindNonentityRangeVariableReference)
}

func (DefaultVisitor[R]) VisitSingleEntityCast(*SingleEntityCastNode) (R, error) {
	return notImplemented[R](KindSingleEntityCast)
}

func (DefaultVisitor[R]) VisitSingleNavigation(*SingleNavigationNode) (R, error) {
	return notImplemented[R](KindSingleNavigation)
}

func (DefaultVisitor[R]) VisitSingleEntityFunctionCall(*SingleEntityFunctionCallNode) (R, error) {
	return notImplemented[R](KindSingleEntityFunctionCall)
}

func (DefaultVisitor[R]) VisitSingleValueFunctionCall(*SingleValueFunctionCallNode) (R, error) {
	return notImplemented[R](KindSingleValueFunctionCall)
}

func (DefaultVisitor[R]) VisitSingleValueOpenPropertyAccess(*SingleValueOpenPropertyAccessNode) (R, error) {
	return notImplemented[R](KindSingleValueOpenPropertyAccess)
}

func (DefaultVisitor[R]) VisitSingleValuePropertyAccess(*SingleValuePropertyAccessNode) (R, error) {
	return notImplemented[R](KindSingleValuePropertyAccess)
}

func (DefaultVisitor[R]) VisitUnaryOperator(*UnaryOperatorNode) (R, error) {
	return notImplemented[R](KindUnaryOperator)
}

func (DefaultVisitor[R]) VisitEntitySet(*EntitySetNode) (R, error) {
	return notImplemented[R](KindEntitySet)
}

func (DefaultVisitor[R]) VisitEntityCollectionFunctionCall(*EntityCollectionFunctionCallNode) (R, error) {
	return notImplemented[R](KindEntityCollectionFunctionCall)
}

func (DefaultVisitor[R]) VisitCollectionFunctionCall(*CollectionFunctionCallNode) (R, error) {
	return notImplemented[R](KindCollectionFunctionCall)
}

func (DefaultVisitor[R]) VisitIn(*InNode) (R, error) { return notImplemented[R](KindIn) }

func (DefaultVisitor[R]) VisitCollectionConstant(*CollectionConstantNode) (R, error) {
	return notImplemented[R](KindCollectionConstant)
}
