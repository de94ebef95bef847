package semantic

import (
	"slices"

	"github.com/nlstn/go-odata-uriparser/edm"
)

// lambda holds the payload shared by All and Any.
type lambda struct {
	singleValue
	rangeVariables []RangeVariable
	current        RangeVariable
	source         CollectionNode
	body           SingleValueNode
}

func newLambda(rangeVariables []RangeVariable, current RangeVariable, source CollectionNode, body SingleValueNode) lambda {
	return lambda{
		rangeVariables: slices.Clone(rangeVariables),
		current:        current,
		source:         source,
		body:           body,
	}
}

func (l *lambda) TypeReference() edm.TypeReference { return edm.Boolean(true) }

// RangeVariables returns every range variable in scope of the body,
// including the one introduced by the lambda.
func (l *lambda) RangeVariables() []RangeVariable { return slices.Clone(l.rangeVariables) }

// CurrentRangeVariable returns the variable introduced by the lambda, or nil
// for the parameterless form.
func (l *lambda) CurrentRangeVariable() RangeVariable { return l.current }

// Source returns the collection the lambda ranges over.
func (l *lambda) Source() CollectionNode { return l.source }

// Body returns the predicate, or nil when the lambda has none.
func (l *lambda) Body() SingleValueNode { return l.body }

// AllNode is true when every element of Source satisfies Body.
type AllNode struct {
	lambda
}

// NewAllNode creates an all lambda. source and body may be nil.
func NewAllNode(rangeVariables []RangeVariable, current RangeVariable, source CollectionNode, body SingleValueNode) *AllNode {
	return &AllNode{lambda: newLambda(rangeVariables, current, source, body)}
}

func (n *AllNode) Kind() Kind { return KindAll }

// AnyNode is true when at least one element of Source satisfies Body, or,
// without a body, when Source is not empty.
type AnyNode struct {
	lambda
}

// NewAnyNode creates an any lambda. source and body may be nil.
func NewAnyNode(rangeVariables []RangeVariable, current RangeVariable, source CollectionNode, body SingleValueNode) *AnyNode {
	return &AnyNode{lambda: newLambda(rangeVariables, current, source, body)}
}

func (n *AnyNode) Kind() Kind { return KindAny }
