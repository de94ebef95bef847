package binder

import (
	"strings"

	"github.com/nlstn/go-odata-uriparser/edm"
	"github.com/nlstn/go-odata-uriparser/internal/syntax"
	"github.com/nlstn/go-odata-uriparser/semantic"
)

func (st *state) bindMember(m *syntax.MemberExpr) (semantic.Node, error) {
	if m.Source == nil {
		if v := st.lookup(m.Name); v != nil {
			return reference(v), nil
		}
		return st.bindSegment(reference(st.it), m.Name, m.Pos)
	}

	source, err := st.bind(m.Source)
	if err != nil {
		return nil, err
	}
	return st.bindSegment(source, m.Name, m.Pos)
}

// bindSegment resolves one path segment relative to source: a type cast,
// a structural property, a navigation property or a dynamic property.
func (st *state) bindSegment(source semantic.Node, name string, pos int) (semantic.Node, error) {
	if strings.Contains(name, ".") {
		return st.bindCast(source, name, pos)
	}

	entity, ok := source.(semantic.SingleEntityNode)
	if !ok {
		if _, isCollection := source.(semantic.CollectionNode); isCollection {
			return nil, bindErrorf(pos, "cannot access '%s' on a collection; use any or all", name)
		}
		return nil, bindErrorf(pos, "cannot access '%s' on a non-entity value", name)
	}
	ref := entity.EntityTypeReference()
	if ref == nil || ref.Type == nil {
		return nil, bindErrorf(pos, "cannot access '%s' on a value of unknown type", name)
	}
	entityType := ref.Type

	if prop := entityType.FindProperty(name); prop != nil {
		if edm.AsCollection(prop.Type) != nil {
			return semantic.NewCollectionPropertyAccessNode(entity, prop), nil
		}
		return semantic.NewSingleValuePropertyAccessNode(entity, prop), nil
	}

	if nav := entityType.FindNavigation(name); nav != nil {
		target := entity.NavigationSource().NavigationTarget(nav)
		if nav.Collection {
			return semantic.NewCollectionNavigationNode(entity, nav, target), nil
		}
		return semantic.NewSingleNavigationNode(entity, nav, target), nil
	}

	if entityType.IsOpen() {
		return semantic.NewSingleValueOpenPropertyAccessNode(entity, name), nil
	}

	return nil, bindErrorf(pos, "property '%s' does not exist on %s", name, entityType.FullName())
}

func (st *state) bindCast(source semantic.Node, name string, pos int) (semantic.Node, error) {
	target := st.binder.model.FindEntityType(name)
	if target == nil {
		return nil, bindErrorf(pos, "unknown type '%s'", name)
	}

	switch src := source.(type) {
	case semantic.SingleEntityNode:
		if !related(src.EntityTypeReference(), target) {
			return nil, bindErrorf(pos, "type '%s' is not related to %s", name, src.EntityTypeReference().FullName())
		}
		return semantic.NewSingleEntityCastNode(src, target), nil
	case semantic.EntityCollectionNode:
		if !related(src.EntityItemType(), target) {
			return nil, bindErrorf(pos, "type '%s' is not related to %s", name, src.EntityItemType().FullName())
		}
		return semantic.NewEntityCollectionCastNode(src, target), nil
	}
	return nil, bindErrorf(pos, "type cast to '%s' requires an entity source", name)
}

// related reports whether a value of type ref may be cast to target, either
// down the hierarchy or up to a base type.
func related(ref *edm.EntityTypeReference, target *edm.EntityType) bool {
	if ref == nil || ref.Type == nil {
		return true
	}
	return target.IsAssignableTo(ref.Type) || ref.Type.IsAssignableTo(target)
}
