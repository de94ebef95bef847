package semantic

import "github.com/nlstn/go-odata-uriparser/edm"

// ImplicitRangeVariableName names the range variable ranging over the
// resource a query option is applied to.
const ImplicitRangeVariableName = "$it"

// RangeVariableKind distinguishes entity from non-entity range variables.
type RangeVariableKind int

const (
	RangeVariableEntity RangeVariableKind = iota + 1
	RangeVariableNonentity
)

// RangeVariable is a variable introduced by a query option or lambda and
// ranging over the elements of a collection.
type RangeVariable interface {
	Name() string
	TypeReference() edm.TypeReference
	RangeVariableKind() RangeVariableKind
}

// EntityRangeVariable ranges over a collection of entities.
type EntityRangeVariable struct {
	name       string
	typeRef    *edm.EntityTypeReference
	collection EntityCollectionNode
}

// NewEntityRangeVariable creates a range variable named name over collection.
func NewEntityRangeVariable(name string, typeRef *edm.EntityTypeReference, collection EntityCollectionNode) *EntityRangeVariable {
	return &EntityRangeVariable{name: name, typeRef: typeRef, collection: collection}
}

func (v *EntityRangeVariable) Name() string                         { return v.name }
func (v *EntityRangeVariable) TypeReference() edm.TypeReference     { return entityTypeRef(v.typeRef) }
func (v *EntityRangeVariable) RangeVariableKind() RangeVariableKind { return RangeVariableEntity }

// EntityTypeReference returns the type of the entities the variable ranges over.
func (v *EntityRangeVariable) EntityTypeReference() *edm.EntityTypeReference { return v.typeRef }

// Collection returns the collection the variable ranges over.
func (v *EntityRangeVariable) Collection() EntityCollectionNode { return v.collection }

// NavigationSource returns the entity set of the ranged collection, if known.
func (v *EntityRangeVariable) NavigationSource() *edm.EntitySet {
	if v == nil || v.collection == nil {
		return nil
	}
	return v.collection.NavigationSource()
}

// NonentityRangeVariable ranges over a collection of primitive values.
type NonentityRangeVariable struct {
	name       string
	typeRef    edm.TypeReference
	collection CollectionNode
}

// NewNonentityRangeVariable creates a range variable named name over collection.
func NewNonentityRangeVariable(name string, typeRef edm.TypeReference, collection CollectionNode) *NonentityRangeVariable {
	return &NonentityRangeVariable{name: name, typeRef: typeRef, collection: collection}
}

func (v *NonentityRangeVariable) Name() string                         { return v.name }
func (v *NonentityRangeVariable) TypeReference() edm.TypeReference     { return v.typeRef }
func (v *NonentityRangeVariable) RangeVariableKind() RangeVariableKind { return RangeVariableNonentity }

// Collection returns the collection the variable ranges over.
func (v *NonentityRangeVariable) Collection() CollectionNode { return v.collection }

// EntityRangeVariableReferenceNode refers to an entity range variable in scope.
type EntityRangeVariableReferenceNode struct {
	singleValue
	name          string
	rangeVariable *EntityRangeVariable
}

// NewEntityRangeVariableReferenceNode creates a reference to rangeVariable.
func NewEntityRangeVariableReferenceNode(name string, rangeVariable *EntityRangeVariable) *EntityRangeVariableReferenceNode {
	return &EntityRangeVariableReferenceNode{name: name, rangeVariable: rangeVariable}
}

func (n *EntityRangeVariableReferenceNode) Kind() Kind { return KindEntityRangeVariableReference }

func (n *EntityRangeVariableReferenceNode) TypeReference() edm.TypeReference {
	return entityTypeRef(n.EntityTypeReference())
}

// Name returns the referenced variable name.
func (n *EntityRangeVariableReferenceNode) Name() string { return n.name }

// RangeVariable returns the referenced range variable.
func (n *EntityRangeVariableReferenceNode) RangeVariable() *EntityRangeVariable { return n.rangeVariable }

func (n *EntityRangeVariableReferenceNode) EntityTypeReference() *edm.EntityTypeReference {
	if n.rangeVariable == nil {
		return nil
	}
	return n.rangeVariable.typeRef
}

func (n *EntityRangeVariableReferenceNode) NavigationSource() *edm.EntitySet {
	if n == nil || n.rangeVariable == nil {
		return nil
	}
	return n.rangeVariable.NavigationSource()
}

// NonentityRangeVariableReferenceNode refers to a non-entity range variable in scope.
type NonentityRangeVariableReferenceNode struct {
	singleValue
	name          string
	rangeVariable *NonentityRangeVariable
}

// NewNonentityRangeVariableReferenceNode creates a reference to rangeVariable.
func NewNonentityRangeVariableReferenceNode(name string, rangeVariable *NonentityRangeVariable) *NonentityRangeVariableReferenceNode {
	return &NonentityRangeVariableReferenceNode{name: name, rangeVariable: rangeVariable}
}

func (n *NonentityRangeVariableReferenceNode) Kind() Kind { return KindNonentityRangeVariableReference }

func (n *NonentityRangeVariableReferenceNode) TypeReference() edm.TypeReference {
	if n.rangeVariable == nil {
		return nil
	}
	return n.rangeVariable.typeRef
}

// Name returns the referenced variable name.
func (n *NonentityRangeVariableReferenceNode) Name() string { return n.name }

// RangeVariable returns the referenced range variable.
func (n *NonentityRangeVariableReferenceNode) RangeVariable() *NonentityRangeVariable {
	return n.rangeVariable
}
