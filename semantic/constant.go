package semantic

import (
	"slices"

	"github.com/nlstn/go-odata-uriparser/edm"
)

// ConstantNode is a literal value.
type ConstantNode struct {
	singleValue
	value       interface{}
	literalText string
	typeRef     edm.TypeReference
}

// NewConstantNode creates a constant whose type is inferred from the Go
// value. A nil value is the null literal and has no type.
func NewConstantNode(value interface{}) *ConstantNode {
	return NewLiteralConstantNode(value, "")
}

// NewLiteralConstantNode creates a constant remembering the literal text it
// was parsed from.
func NewLiteralConstantNode(value interface{}, literalText string) *ConstantNode {
	n := &ConstantNode{value: value, literalText: literalText}
	if ref, err := edm.TypeOfValue(value); err == nil && ref != nil {
		n.typeRef = ref
	}
	return n
}

// NewTypedConstantNode creates a constant with an explicit type.
func NewTypedConstantNode(value interface{}, literalText string, typeRef edm.TypeReference) *ConstantNode {
	return &ConstantNode{value: value, literalText: literalText, typeRef: typeRef}
}

func (n *ConstantNode) Kind() Kind                       { return KindConstant }
func (n *ConstantNode) TypeReference() edm.TypeReference { return n.typeRef }

// Value returns the constant's Go value; nil for null.
func (n *ConstantNode) Value() interface{} { return n.value }

// LiteralText returns the text the constant was parsed from, if recorded.
func (n *ConstantNode) LiteralText() string { return n.literalText }

// IsNull reports whether the constant is the null literal.
func (n *ConstantNode) IsNull() bool { return n.value == nil }

// CollectionConstantNode is a literal list of values, e.g. the right operand of in.
type CollectionConstantNode struct {
	collection
	items    []*ConstantNode
	itemType edm.TypeReference
}

// NewCollectionConstantNode creates a literal collection of items.
func NewCollectionConstantNode(items []*ConstantNode, itemType edm.TypeReference) *CollectionConstantNode {
	return &CollectionConstantNode{items: slices.Clone(items), itemType: itemType}
}

func (n *CollectionConstantNode) Kind() Kind { return KindCollectionConstant }

func (n *CollectionConstantNode) TypeReference() edm.TypeReference {
	return collectionTypeRef(n.CollectionType())
}

func (n *CollectionConstantNode) ItemType() edm.TypeReference { return n.itemType }

func (n *CollectionConstantNode) CollectionType() *edm.CollectionTypeReference {
	return collectionOf(n.itemType)
}

// Items returns the collection's elements in order.
func (n *CollectionConstantNode) Items() []*ConstantNode { return slices.Clone(n.items) }

// EntitySetNode is the collection of all entities of an entity set, the
// root the implicit range variable ranges over.
type EntitySetNode struct {
	collection
	entitySet *edm.EntitySet
}

// NewEntitySetNode creates a node for entitySet.
func NewEntitySetNode(entitySet *edm.EntitySet) *EntitySetNode {
	return &EntitySetNode{entitySet: entitySet}
}

func (n *EntitySetNode) Kind() Kind { return KindEntitySet }

func (n *EntitySetNode) TypeReference() edm.TypeReference {
	return collectionTypeRef(n.CollectionType())
}

func (n *EntitySetNode) EntityItemType() *edm.EntityTypeReference {
	if n.entitySet == nil || n.entitySet.Type == nil {
		return nil
	}
	return n.entitySet.Type.Reference(false)
}

func (n *EntitySetNode) ItemType() edm.TypeReference {
	return entityTypeRef(n.EntityItemType())
}

func (n *EntitySetNode) CollectionType() *edm.CollectionTypeReference {
	return collectionOf(n.ItemType())
}

func (n *EntitySetNode) NavigationSource() *edm.EntitySet {
	if n == nil {
		return nil
	}
	return n.entitySet
}

// EntitySet returns the entity set.
func (n *EntitySetNode) EntitySet() *edm.EntitySet {
	if n == nil {
		return nil
	}
	return n.entitySet
}
