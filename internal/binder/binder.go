// Package binder resolves parsed query expressions against an entity data
// model, producing semantic trees.
package binder

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nlstn/go-odata-uriparser/edm"
	"github.com/nlstn/go-odata-uriparser/internal/syntax"
	"github.com/nlstn/go-odata-uriparser/semantic"
)

// ErrBind is matched by every error returned from this package.
var ErrBind = errors.New("bind error")

func bindErrorf(pos int, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s at position %d", ErrBind, fmt.Sprintf(format, args...), pos)
}

// Binder binds syntax trees against a model. It holds no per-query state
// and may be shared between goroutines.
type Binder struct {
	model  *edm.Model
	logger *slog.Logger
}

// New creates a binder for model.
func New(model *edm.Model, logger *slog.Logger) *Binder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Binder{model: model, logger: logger}
}

// BindFilter binds a $filter expression applied to set.
func (b *Binder) BindFilter(set *edm.EntitySet, expr syntax.ASTNode) (*semantic.FilterClause, error) {
	st := b.newState(set)

	node, err := st.bindSingle(expr)
	if err != nil {
		return nil, err
	}
	if ref := node.TypeReference(); ref != nil && !edm.IsPrimitiveKind(ref, edm.PrimitiveBoolean) {
		return nil, bindErrorf(expr.Position(), "filter expression must be Edm.Boolean, got %s", ref.FullName())
	}

	b.logger.Debug("Bound filter expression",
		slog.String("entity_set", set.Name),
		slog.String("kind", node.Kind().String()))

	return semantic.NewFilterClause(node, st.it), nil
}

// BindOrderBy binds the items of an $orderby expression applied to set.
func (b *Binder) BindOrderBy(set *edm.EntitySet, items []syntax.OrderByItem) (*semantic.OrderByClause, error) {
	st := b.newState(set)

	bound := make([]semantic.OrderByItem, 0, len(items))
	for _, item := range items {
		node, err := st.bindSingle(item.Expr)
		if err != nil {
			return nil, err
		}
		if _, ok := node.(semantic.SingleEntityNode); ok {
			return nil, bindErrorf(item.Expr.Position(), "cannot order by an entity")
		}
		direction := semantic.Ascending
		if item.Descending {
			direction = semantic.Descending
		}
		bound = append(bound, semantic.OrderByItem{Expression: node, Direction: direction})
	}

	b.logger.Debug("Bound orderby expression",
		slog.String("entity_set", set.Name),
		slog.Int("items", len(bound)))

	return semantic.NewOrderByClause(bound, st.it), nil
}

// state carries the range variables in scope while binding one expression.
type state struct {
	binder *Binder
	it     *semantic.EntityRangeVariable
	scope  []semantic.RangeVariable
}

func (b *Binder) newState(set *edm.EntitySet) *state {
	it := semantic.NewEntityRangeVariable(semantic.ImplicitRangeVariableName, set.Type.Reference(false), semantic.NewEntitySetNode(set))
	return &state{binder: b, it: it, scope: []semantic.RangeVariable{it}}
}

func (st *state) lookup(name string) semantic.RangeVariable {
	for i := len(st.scope) - 1; i >= 0; i-- {
		if st.scope[i].Name() == name {
			return st.scope[i]
		}
	}
	return nil
}

func (st *state) push(v semantic.RangeVariable) { st.scope = append(st.scope, v) }
func (st *state) pop()                          { st.scope = st.scope[:len(st.scope)-1] }

func reference(v semantic.RangeVariable) semantic.SingleValueNode {
	switch rv := v.(type) {
	case *semantic.EntityRangeVariable:
		return semantic.NewEntityRangeVariableReferenceNode(rv.Name(), rv)
	case *semantic.NonentityRangeVariable:
		return semantic.NewNonentityRangeVariableReferenceNode(rv.Name(), rv)
	}
	return nil
}

func (st *state) bind(node syntax.ASTNode) (semantic.Node, error) {
	switch n := node.(type) {
	case *syntax.GroupExpr:
		return st.bind(n.Expr)
	case *syntax.LiteralExpr:
		return bindLiteral(n), nil
	case *syntax.MemberExpr:
		return st.bindMember(n)
	case *syntax.LambdaExpr:
		return st.bindLambda(n)
	case *syntax.FunctionCallExpr:
		return st.bindCall(n)
	case *syntax.BinaryExpr:
		return st.bindBinary(n.Operator, n.Left, n.Right, n.Pos)
	case *syntax.ComparisonExpr:
		if n.Operator == "in" {
			return st.bindIn(n)
		}
		return st.bindBinary(n.Operator, n.Left, n.Right, n.Pos)
	case *syntax.UnaryExpr:
		return st.bindUnary(n)
	case *syntax.CollectionExpr:
		return nil, bindErrorf(n.Pos, "a parenthesized list is only allowed after in")
	case nil:
		return nil, fmt.Errorf("%w: missing expression", ErrBind)
	}
	return nil, bindErrorf(node.Position(), "unsupported expression %T", node)
}

func (st *state) bindSingle(node syntax.ASTNode) (semantic.SingleValueNode, error) {
	bound, err := st.bind(node)
	if err != nil {
		return nil, err
	}
	single, ok := bound.(semantic.SingleValueNode)
	if !ok {
		return nil, bindErrorf(node.Position(), "expected a single value, got a collection")
	}
	return single, nil
}

func bindLiteral(lit *syntax.LiteralExpr) *semantic.ConstantNode {
	if lit.Kind == syntax.LiteralDate {
		return semantic.NewTypedConstantNode(lit.Value, lit.Text, edm.Primitive(edm.PrimitiveDate, false))
	}
	return semantic.NewLiteralConstantNode(lit.Value, lit.Text)
}
