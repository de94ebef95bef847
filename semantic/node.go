package semantic

import "github.com/nlstn/go-odata-uriparser/edm"

// Node is a bound query expression node.
//
// Nodes are immutable once constructed and own their children; a child may
// be shared between trees but never refers back to its parent. The set of
// implementations is closed: every Node is one of the payload types declared
// in this package, which is what lets Accept dispatch exhaustively.
type Node interface {
	// Kind returns the tag identifying the concrete payload type.
	Kind() Kind

	// TypeReference returns the type of the value the expression produces,
	// or nil when it is not known statically (null literals, open properties).
	TypeReference() edm.TypeReference

	semanticNode()
}

// SingleValueNode is a node producing a single value.
type SingleValueNode interface {
	Node
	singleValueNode()
}

// SingleEntityNode is a node producing a single entity.
type SingleEntityNode interface {
	SingleValueNode

	// EntityTypeReference returns the type of the produced entity.
	EntityTypeReference() *edm.EntityTypeReference

	// NavigationSource returns the entity set the entity belongs to, if known.
	NavigationSource() *edm.EntitySet
}

// CollectionNode is a node producing a collection of values.
type CollectionNode interface {
	Node

	// ItemType returns the type of the collection's elements.
	ItemType() edm.TypeReference

	// CollectionType returns the type of the collection itself.
	CollectionType() *edm.CollectionTypeReference

	collectionNode()
}

// EntityCollectionNode is a node producing a collection of entities.
type EntityCollectionNode interface {
	CollectionNode

	// EntityItemType returns the type of the collection's entities.
	EntityItemType() *edm.EntityTypeReference

	// NavigationSource returns the entity set the entities belong to, if known.
	NavigationSource() *edm.EntitySet
}

type singleValue struct{}

func (singleValue) semanticNode()    {}
func (singleValue) singleValueNode() {}

type collection struct{}

func (collection) semanticNode()   {}
func (collection) collectionNode() {}

// entityTypeRef converts a possibly nil entity reference without producing a
// non-nil interface holding a nil pointer.
func entityTypeRef(ref *edm.EntityTypeReference) edm.TypeReference {
	if ref == nil {
		return nil
	}
	return ref
}

func collectionOf(item edm.TypeReference) *edm.CollectionTypeReference {
	if item == nil {
		return nil
	}
	return edm.CollectionOf(item)
}

func collectionTypeRef(ref *edm.CollectionTypeReference) edm.TypeReference {
	if ref == nil {
		return nil
	}
	return ref
}

// navigationSourceOf returns the entity set of a source node, if it has one.
func navigationSourceOf(n Node) *edm.EntitySet {
	switch src := n.(type) {
	case SingleEntityNode:
		return src.NavigationSource()
	case EntityCollectionNode:
		return src.NavigationSource()
	}
	return nil
}
