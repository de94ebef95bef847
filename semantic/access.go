package semantic

import "github.com/nlstn/go-odata-uriparser/edm"

// SingleValuePropertyAccessNode reads a single-valued structural property.
type SingleValuePropertyAccessNode struct {
	singleValue
	source   SingleValueNode
	property *edm.StructuralProperty
}

// NewSingleValuePropertyAccessNode creates an access of property on source.
func NewSingleValuePropertyAccessNode(source SingleValueNode, property *edm.StructuralProperty) *SingleValuePropertyAccessNode {
	return &SingleValuePropertyAccessNode{source: source, property: property}
}

func (n *SingleValuePropertyAccessNode) Kind() Kind { return KindSingleValuePropertyAccess }

func (n *SingleValuePropertyAccessNode) TypeReference() edm.TypeReference {
	if n.property == nil {
		return nil
	}
	return n.property.Type
}

// Source returns the node the property is read from.
func (n *SingleValuePropertyAccessNode) Source() SingleValueNode { return n.source }

// Property returns the accessed property.
func (n *SingleValuePropertyAccessNode) Property() *edm.StructuralProperty { return n.property }

// CollectionPropertyAccessNode reads a collection-valued structural property.
type CollectionPropertyAccessNode struct {
	collection
	source   SingleValueNode
	property *edm.StructuralProperty
}

// NewCollectionPropertyAccessNode creates an access of property on source.
func NewCollectionPropertyAccessNode(source SingleValueNode, property *edm.StructuralProperty) *CollectionPropertyAccessNode {
	return &CollectionPropertyAccessNode{source: source, property: property}
}

func (n *CollectionPropertyAccessNode) Kind() Kind { return KindCollectionPropertyAccess }

func (n *CollectionPropertyAccessNode) TypeReference() edm.TypeReference {
	return collectionTypeRef(n.CollectionType())
}

func (n *CollectionPropertyAccessNode) CollectionType() *edm.CollectionTypeReference {
	if n.property == nil {
		return nil
	}
	if c := edm.AsCollection(n.property.Type); c != nil {
		return c
	}
	return collectionOf(n.property.Type)
}

func (n *CollectionPropertyAccessNode) ItemType() edm.TypeReference {
	if c := n.CollectionType(); c != nil {
		return c.Elem
	}
	return nil
}

// Source returns the node the property is read from.
func (n *CollectionPropertyAccessNode) Source() SingleValueNode { return n.source }

// Property returns the accessed property.
func (n *CollectionPropertyAccessNode) Property() *edm.StructuralProperty { return n.property }

// SingleValueOpenPropertyAccessNode reads a dynamic property of an open type.
// Only the name is known; the value's type is not.
type SingleValueOpenPropertyAccessNode struct {
	singleValue
	source SingleValueNode
	name   string
}

// NewSingleValueOpenPropertyAccessNode creates an access of the dynamic
// property name on source.
func NewSingleValueOpenPropertyAccessNode(source SingleValueNode, name string) *SingleValueOpenPropertyAccessNode {
	return &SingleValueOpenPropertyAccessNode{source: source, name: name}
}

func (n *SingleValueOpenPropertyAccessNode) Kind() Kind                       { return KindSingleValueOpenPropertyAccess }
func (n *SingleValueOpenPropertyAccessNode) TypeReference() edm.TypeReference { return nil }

// Source returns the node the property is read from.
func (n *SingleValueOpenPropertyAccessNode) Source() SingleValueNode { return n.source }

// Name returns the dynamic property name.
func (n *SingleValueOpenPropertyAccessNode) Name() string { return n.name }

// SingleNavigationNode follows a navigation property to a single entity.
type SingleNavigationNode struct {
	singleValue
	source           SingleEntityNode
	property         *edm.NavigationProperty
	navigationSource *edm.EntitySet
}

// NewSingleNavigationNode creates a navigation from source through property.
// navigationSource is the entity set the target belongs to, if known.
func NewSingleNavigationNode(source SingleEntityNode, property *edm.NavigationProperty, navigationSource *edm.EntitySet) *SingleNavigationNode {
	return &SingleNavigationNode{source: source, property: property, navigationSource: navigationSource}
}

func (n *SingleNavigationNode) Kind() Kind { return KindSingleNavigation }

func (n *SingleNavigationNode) TypeReference() edm.TypeReference {
	return entityTypeRef(n.EntityTypeReference())
}

func (n *SingleNavigationNode) EntityTypeReference() *edm.EntityTypeReference {
	if n.property == nil || n.property.Target == nil {
		return nil
	}
	return n.property.Target.Reference(n.property.Nullable)
}

func (n *SingleNavigationNode) NavigationSource() *edm.EntitySet {
	if n == nil {
		return nil
	}
	return n.navigationSource
}

// Source returns the entity navigated from, or nil when the navigation
// starts at the entity set itself.
func (n *SingleNavigationNode) Source() SingleEntityNode { return n.source }

// NavigationProperty returns the followed navigation property.
func (n *SingleNavigationNode) NavigationProperty() *edm.NavigationProperty { return n.property }

// CollectionNavigationNode follows a navigation property to a collection of entities.
type CollectionNavigationNode struct {
	collection
	source           SingleEntityNode
	property         *edm.NavigationProperty
	navigationSource *edm.EntitySet
}

// NewCollectionNavigationNode creates a navigation from source through property.
// navigationSource is the entity set the targets belong to, if known.
func NewCollectionNavigationNode(source SingleEntityNode, property *edm.NavigationProperty, navigationSource *edm.EntitySet) *CollectionNavigationNode {
	return &CollectionNavigationNode{source: source, property: property, navigationSource: navigationSource}
}

func (n *CollectionNavigationNode) Kind() Kind { return KindCollectionNavigation }

func (n *CollectionNavigationNode) TypeReference() edm.TypeReference {
	return collectionTypeRef(n.CollectionType())
}

func (n *CollectionNavigationNode) EntityItemType() *edm.EntityTypeReference {
	if n.property == nil || n.property.Target == nil {
		return nil
	}
	return n.property.Target.Reference(false)
}

func (n *CollectionNavigationNode) ItemType() edm.TypeReference {
	return entityTypeRef(n.EntityItemType())
}

func (n *CollectionNavigationNode) CollectionType() *edm.CollectionTypeReference {
	return collectionOf(n.ItemType())
}

func (n *CollectionNavigationNode) NavigationSource() *edm.EntitySet {
	if n == nil {
		return nil
	}
	return n.navigationSource
}

// Source returns the entity navigated from, or nil when the navigation
// starts at the entity set itself.
func (n *CollectionNavigationNode) Source() SingleEntityNode { return n.source }

// NavigationProperty returns the followed navigation property.
func (n *CollectionNavigationNode) NavigationProperty() *edm.NavigationProperty { return n.property }
