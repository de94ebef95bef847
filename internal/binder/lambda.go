package binder

import (
	"slices"

	"github.com/nlstn/go-odata-uriparser/edm"
	"github.com/nlstn/go-odata-uriparser/internal/syntax"
	"github.com/nlstn/go-odata-uriparser/semantic"
)

func (st *state) bindLambda(l *syntax.LambdaExpr) (semantic.Node, error) {
	bound, err := st.bind(l.Source)
	if err != nil {
		return nil, err
	}
	source, ok := bound.(semantic.CollectionNode)
	if !ok {
		return nil, bindErrorf(l.Pos, "%s requires a collection", l.Operator)
	}

	if l.Variable == "" {
		if l.Operator == "all" {
			return nil, bindErrorf(l.Pos, "all requires a range variable and a predicate")
		}
		return semantic.NewAnyNode(slices.Clone(st.scope), nil, source, nil), nil
	}

	if st.lookup(l.Variable) != nil {
		return nil, bindErrorf(l.Pos, "range variable '%s' is already defined", l.Variable)
	}

	var current semantic.RangeVariable
	if entities, ok := source.(semantic.EntityCollectionNode); ok {
		current = semantic.NewEntityRangeVariable(l.Variable, entities.EntityItemType(), entities)
	} else {
		current = semantic.NewNonentityRangeVariable(l.Variable, source.ItemType(), source)
	}

	st.push(current)
	defer st.pop()

	body, err := st.bindSingle(l.Body)
	if err != nil {
		return nil, err
	}
	if ref := body.TypeReference(); ref != nil && !edm.IsPrimitiveKind(ref, edm.PrimitiveBoolean) {
		return nil, bindErrorf(l.Body.Position(), "%s predicate must be Edm.Boolean, got %s", l.Operator, ref.FullName())
	}

	scope := slices.Clone(st.scope)
	if l.Operator == "all" {
		return semantic.NewAllNode(scope, current, source, body), nil
	}
	return semantic.NewAnyNode(scope, current, source, body), nil
}
