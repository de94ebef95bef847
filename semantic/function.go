package semantic

import (
	"slices"

	"github.com/nlstn/go-odata-uriparser/edm"
)

// call holds the payload shared by function call nodes.
type call struct {
	name      string
	arguments []Node
}

func newCall(name string, arguments []Node) call {
	return call{name: name, arguments: slices.Clone(arguments)}
}

// Name returns the function name as written in the query.
func (c *call) Name() string { return c.name }

// Arguments returns the arguments in call order.
func (c *call) Arguments() []Node { return slices.Clone(c.arguments) }

// SingleValueFunctionCallNode calls a function returning a single primitive value.
type SingleValueFunctionCallNode struct {
	singleValue
	call
	returnType edm.TypeReference
}

// NewSingleValueFunctionCallNode creates a call of name with arguments.
func NewSingleValueFunctionCallNode(name string, arguments []Node, returnType edm.TypeReference) *SingleValueFunctionCallNode {
	return &SingleValueFunctionCallNode{call: newCall(name, arguments), returnType: returnType}
}

func (n *SingleValueFunctionCallNode) Kind() Kind                       { return KindSingleValueFunctionCall }
func (n *SingleValueFunctionCallNode) TypeReference() edm.TypeReference { return n.returnType }

// SingleEntityFunctionCallNode calls a function returning a single entity.
type SingleEntityFunctionCallNode struct {
	singleValue
	call
	returnType *edm.EntityTypeReference
	entitySet  *edm.EntitySet
}

// NewSingleEntityFunctionCallNode creates a call of name with arguments
// returning an entity of returnType from entitySet.
func NewSingleEntityFunctionCallNode(name string, arguments []Node, returnType *edm.EntityTypeReference, entitySet *edm.EntitySet) *SingleEntityFunctionCallNode {
	return &SingleEntityFunctionCallNode{call: newCall(name, arguments), returnType: returnType, entitySet: entitySet}
}

func (n *SingleEntityFunctionCallNode) Kind() Kind { return KindSingleEntityFunctionCall }

func (n *SingleEntityFunctionCallNode) TypeReference() edm.TypeReference {
	return entityTypeRef(n.returnType)
}

func (n *SingleEntityFunctionCallNode) EntityTypeReference() *edm.EntityTypeReference {
	return n.returnType
}

func (n *SingleEntityFunctionCallNode) NavigationSource() *edm.EntitySet {
	if n == nil {
		return nil
	}
	return n.entitySet
}

// CollectionFunctionCallNode calls a function returning a collection of primitive values.
type CollectionFunctionCallNode struct {
	collection
	call
	itemType edm.TypeReference
}

// NewCollectionFunctionCallNode creates a call of name with arguments.
func NewCollectionFunctionCallNode(name string, arguments []Node, itemType edm.TypeReference) *CollectionFunctionCallNode {
	return &CollectionFunctionCallNode{call: newCall(name, arguments), itemType: itemType}
}

func (n *CollectionFunctionCallNode) Kind() Kind { return KindCollectionFunctionCall }

func (n *CollectionFunctionCallNode) TypeReference() edm.TypeReference {
	return collectionTypeRef(n.CollectionType())
}

func (n *CollectionFunctionCallNode) ItemType() edm.TypeReference { return n.itemType }

func (n *CollectionFunctionCallNode) CollectionType() *edm.CollectionTypeReference {
	return collectionOf(n.itemType)
}

// EntityCollectionFunctionCallNode calls a function returning a collection of entities.
type EntityCollectionFunctionCallNode struct {
	collection
	call
	itemType  *edm.EntityTypeReference
	entitySet *edm.EntitySet
}

// NewEntityCollectionFunctionCallNode creates a call of name with arguments
// returning entities of itemType from entitySet.
func NewEntityCollectionFunctionCallNode(name string, arguments []Node, itemType *edm.EntityTypeReference, entitySet *edm.EntitySet) *EntityCollectionFunctionCallNode {
	return &EntityCollectionFunctionCallNode{call: newCall(name, arguments), itemType: itemType, entitySet: entitySet}
}

func (n *EntityCollectionFunctionCallNode) Kind() Kind { return KindEntityCollectionFunctionCall }

func (n *EntityCollectionFunctionCallNode) TypeReference() edm.TypeReference {
	return collectionTypeRef(n.CollectionType())
}

func (n *EntityCollectionFunctionCallNode) EntityItemType() *edm.EntityTypeReference { return n.itemType }

func (n *EntityCollectionFunctionCallNode) ItemType() edm.TypeReference {
	return entityTypeRef(n.itemType)
}

func (n *EntityCollectionFunctionCallNode) CollectionType() *edm.CollectionTypeReference {
	return collectionOf(n.ItemType())
}

func (n *EntityCollectionFunctionCallNode) NavigationSource() *edm.EntitySet {
	if n == nil {
		return nil
	}
	return n.entitySet
}
