package semantic

import "github.com/nlstn/go-odata-uriparser/edm"

// EntityCollectionCastNode narrows a collection of entities to a derived type.
type EntityCollectionCastNode struct {
	collection
	source     EntityCollectionNode
	entityType *edm.EntityType
}

// NewEntityCollectionCastNode creates a cast of source to entityType.
func NewEntityCollectionCastNode(source EntityCollectionNode, entityType *edm.EntityType) *EntityCollectionCastNode {
	return &EntityCollectionCastNode{source: source, entityType: entityType}
}

func (n *EntityCollectionCastNode) Kind() Kind { return KindEntityCollectionCast }

func (n *EntityCollectionCastNode) TypeReference() edm.TypeReference {
	return collectionTypeRef(n.CollectionType())
}

func (n *EntityCollectionCastNode) EntityItemType() *edm.EntityTypeReference {
	if n.entityType == nil {
		return nil
	}
	return n.entityType.Reference(false)
}

func (n *EntityCollectionCastNode) ItemType() edm.TypeReference {
	return entityTypeRef(n.EntityItemType())
}

func (n *EntityCollectionCastNode) CollectionType() *edm.CollectionTypeReference {
	return collectionOf(n.ItemType())
}

func (n *EntityCollectionCastNode) NavigationSource() *edm.EntitySet {
	if n == nil {
		return nil
	}
	return navigationSourceOf(n.source)
}

// Source returns the collection being cast.
func (n *EntityCollectionCastNode) Source() EntityCollectionNode { return n.source }

// EntityType returns the cast target type.
func (n *EntityCollectionCastNode) EntityType() *edm.EntityType { return n.entityType }

// SingleEntityCastNode narrows a single entity to a derived type.
type SingleEntityCastNode struct {
	singleValue
	source     SingleEntityNode
	entityType *edm.EntityType
}

// NewSingleEntityCastNode creates a cast of source to entityType. source may be nil.
func NewSingleEntityCastNode(source SingleEntityNode, entityType *edm.EntityType) *SingleEntityCastNode {
	return &SingleEntityCastNode{source: source, entityType: entityType}
}

func (n *SingleEntityCastNode) Kind() Kind { return KindSingleEntityCast }

func (n *SingleEntityCastNode) TypeReference() edm.TypeReference {
	return entityTypeRef(n.EntityTypeReference())
}

func (n *SingleEntityCastNode) EntityTypeReference() *edm.EntityTypeReference {
	if n.entityType == nil {
		return nil
	}
	return n.entityType.Reference(true)
}

func (n *SingleEntityCastNode) NavigationSource() *edm.EntitySet {
	if n == nil {
		return nil
	}
	return navigationSourceOf(n.source)
}

// Source returns the entity being cast.
func (n *SingleEntityCastNode) Source() SingleEntityNode { return n.source }

// EntityType returns the cast target type.
func (n *SingleEntityCastNode) EntityType() *edm.EntityType { return n.entityType }

// ConvertNode converts a single value to another primitive type, typically
// inserted by the binder for numeric promotion or typed null comparison.
type ConvertNode struct {
	singleValue
	source     SingleValueNode
	targetType edm.TypeReference
}

// NewConvertNode creates a conversion of source to targetType.
func NewConvertNode(source SingleValueNode, targetType edm.TypeReference) *ConvertNode {
	return &ConvertNode{source: source, targetType: targetType}
}

func (n *ConvertNode) Kind() Kind                       { return KindConvert }
func (n *ConvertNode) TypeReference() edm.TypeReference { return n.targetType }

// Source returns the converted value.
func (n *ConvertNode) Source() SingleValueNode { return n.source }
