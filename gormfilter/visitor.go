package gormfilter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nlstn/go-odata-uriparser/edm"
	"github.com/nlstn/go-odata-uriparser/semantic"
)

// fragment is a piece of SQL and the arguments of its placeholders, in
// order of appearance.
type fragment struct {
	sql  string
	args []interface{}
}

func raw(sql string) fragment { return fragment{sql: sql} }

// scope is what a range variable stands for inside the statement being
// built: an addressable entity row or a scalar value expression.
type scope struct {
	entity *entityPath
	value  string
}

// sqlVisitor renders value expressions. One visitor is used per clause;
// it tracks range variables in scope and hands out subquery aliases.
type sqlVisitor struct {
	semantic.DefaultVisitor[fragment]
	dialect string
	scopes  map[semantic.RangeVariable]scope
	aliases int
}

func newSQLVisitor(dialect string, it semantic.RangeVariable) (*sqlVisitor, error) {
	root, err := rootTable(it)
	if err != nil {
		return nil, err
	}
	v := &sqlVisitor{
		dialect: dialect,
		scopes:  make(map[semantic.RangeVariable]scope),
	}
	v.scopes[it] = scope{entity: &entityPath{alias: quoteIdent(root.Table), entity: root}}
	return v, nil
}

func (v *sqlVisitor) visit(n semantic.Node) (fragment, error) {
	return semantic.Accept[fragment](n, v)
}

func (v *sqlVisitor) nextAlias(prefix string) string {
	v.aliases++
	return quoteIdent(prefix + strconv.Itoa(v.aliases))
}

func (v *sqlVisitor) postgres() bool { return v.dialect == DialectPostgres }

func (v *sqlVisitor) coalesceFalse(sql string) string {
	if v.postgres() {
		return "COALESCE((" + sql + "), FALSE)"
	}
	return "IFNULL((" + sql + "), 0)"
}

func (v *sqlVisitor) VisitConstant(n *semantic.ConstantNode) (fragment, error) {
	if n.IsNull() {
		return raw("NULL"), nil
	}
	return fragment{sql: "?", args: []interface{}{n.Value()}}, nil
}

func (v *sqlVisitor) VisitCollectionConstant(n *semantic.CollectionConstantNode) (fragment, error) {
	items := n.Items()
	if len(items) == 0 {
		return raw("(NULL)"), nil
	}
	marks := make([]string, 0, len(items))
	var args []interface{}
	for _, item := range items {
		f, err := v.visit(item)
		if err != nil {
			return fragment{}, err
		}
		marks = append(marks, f.sql)
		args = append(args, f.args...)
	}
	return fragment{sql: "(" + strings.Join(marks, ", ") + ")", args: args}, nil
}

func (v *sqlVisitor) VisitConvert(n *semantic.ConvertNode) (fragment, error) {
	return v.visit(n.Source())
}

func (v *sqlVisitor) VisitSingleValuePropertyAccess(n *semantic.SingleValuePropertyAccessNode) (fragment, error) {
	source, ok := n.Source().(semantic.SingleEntityNode)
	if !ok {
		return fragment{}, fmt.Errorf("%w: property %s of a non-entity value", ErrUnsupported, n.Property().Name)
	}
	path, err := v.entity(source)
	if err != nil {
		return fragment{}, err
	}
	return raw(path.column(n.Property().Column)), nil
}

func (v *sqlVisitor) VisitNonentityRangeVariableReference(n *semantic.NonentityRangeVariableReferenceNode) (fragment, error) {
	s, ok := v.scopes[n.RangeVariable()]
	if !ok || s.value == "" {
		return fragment{}, fmt.Errorf("%w: range variable %s is not in scope", ErrUnsupported, n.Name())
	}
	return raw(s.value), nil
}

var binarySQL = map[semantic.BinaryOperatorKind]string{
	semantic.BinaryOr:                 "OR",
	semantic.BinaryAnd:                "AND",
	semantic.BinaryEqual:              "=",
	semantic.BinaryNotEqual:           "<>",
	semantic.BinaryGreaterThan:        ">",
	semantic.BinaryGreaterThanOrEqual: ">=",
	semantic.BinaryLessThan:           "<",
	semantic.BinaryLessThanOrEqual:    "<=",
	semantic.BinaryAdd:                "+",
	semantic.BinarySubtract:           "-",
	semantic.BinaryMultiply:           "*",
	semantic.BinaryDivide:             "/",
	semantic.BinaryModulo:             "%",
}

func (v *sqlVisitor) VisitBinaryOperator(n *semantic.BinaryOperatorNode) (fragment, error) {
	op := n.OperatorKind()
	if op == semantic.BinaryHas {
		return fragment{}, fmt.Errorf("%w: has operator", ErrUnsupported)
	}
	if op == semantic.BinaryEqual || op == semantic.BinaryNotEqual {
		if f, ok, err := v.nullComparison(n); ok || err != nil {
			return f, err
		}
	}

	left, err := v.visit(n.Left())
	if err != nil {
		return fragment{}, err
	}
	right, err := v.visit(n.Right())
	if err != nil {
		return fragment{}, err
	}

	args := joinArgs([]fragment{left, right})
	if op == semantic.BinaryModulo && v.postgres() {
		return fragment{sql: "MOD(" + left.sql + ", " + right.sql + ")", args: args}, nil
	}
	return fragment{sql: "(" + left.sql + " " + binarySQL[op] + " " + right.sql + ")", args: args}, nil
}

// nullComparison handles eq/ne against null, which SQL spells IS NULL, and
// comparisons of entities, which are only meaningful against null.
func (v *sqlVisitor) nullComparison(n *semantic.BinaryOperatorNode) (fragment, bool, error) {
	operand := n.Left()
	switch {
	case isNull(n.Right()):
	case isNull(n.Left()):
		operand = n.Right()
	default:
		if edm.AsEntity(n.Left().TypeReference()) != nil {
			return fragment{}, true, fmt.Errorf("%w: entity comparison other than with null", ErrUnsupported)
		}
		return fragment{}, false, nil
	}
	negate := n.OperatorKind() == semantic.BinaryNotEqual

	if entity, ok := operand.(semantic.SingleEntityNode); ok {
		path, err := v.entity(entity)
		if err != nil {
			return fragment{}, true, err
		}
		if len(path.hops) == 0 {
			return fragment{}, true, fmt.Errorf("%w: range variable compared with null", ErrUnsupported)
		}
		exists := "EXISTS (" + path.subquery("1") + ")"
		if !negate {
			exists = "NOT " + exists
		}
		return raw(exists), true, nil
	}

	f, err := v.visit(operand)
	if err != nil {
		return fragment{}, true, err
	}
	if negate {
		f.sql += " IS NOT NULL"
	} else {
		f.sql += " IS NULL"
	}
	return f, true, nil
}

func isNull(n semantic.Node) bool {
	c, ok := n.(*semantic.ConstantNode)
	return ok && c.IsNull()
}

func (v *sqlVisitor) VisitUnaryOperator(n *semantic.UnaryOperatorNode) (fragment, error) {
	f, err := v.visit(n.Operand())
	if err != nil {
		return fragment{}, err
	}
	if n.OperatorKind() == semantic.UnaryNot {
		f.sql = "NOT (" + f.sql + ")"
	} else {
		f.sql = "-(" + f.sql + ")"
	}
	return f, nil
}

func (v *sqlVisitor) VisitIn(n *semantic.InNode) (fragment, error) {
	left, err := v.visit(n.Left())
	if err != nil {
		return fragment{}, err
	}

	if list, ok := n.Right().(*semantic.CollectionConstantNode); ok {
		if len(list.Items()) == 0 {
			return raw("1 = 0"), nil
		}
		right, err := v.visit(list)
		if err != nil {
			return fragment{}, err
		}
		return fragment{sql: left.sql + " IN " + right.sql, args: joinArgs([]fragment{left, right})}, nil
	}

	src, err := v.lambdaSource(n.Right())
	if err != nil {
		return fragment{}, err
	}
	if src.values == "" {
		return fragment{}, fmt.Errorf("%w: in over an entity collection", ErrUnsupported)
	}
	return fragment{sql: left.sql + " IN (SELECT " + src.values + " FROM " + src.from + ")", args: left.args}, nil
}

func (v *sqlVisitor) VisitAny(n *semantic.AnyNode) (fragment, error) {
	return v.lambda(n.Source(), n.CurrentRangeVariable(), n.Body(), false)
}

func (v *sqlVisitor) VisitAll(n *semantic.AllNode) (fragment, error) {
	return v.lambda(n.Source(), n.CurrentRangeVariable(), n.Body(), true)
}

// lambda renders any as EXISTS over the source rows matching the body and
// all as the absence of rows failing it. A body that evaluates to NULL for a
// row fails all.
func (v *sqlVisitor) lambda(source semantic.CollectionNode, variable semantic.RangeVariable, body semantic.SingleValueNode, all bool) (fragment, error) {
	src, err := v.lambdaSource(source)
	if err != nil {
		return fragment{}, err
	}
	if body == nil {
		return raw("EXISTS (" + src.query() + ")"), nil
	}

	v.scopes[variable] = src.scope
	defer delete(v.scopes, variable)

	f, err := v.visit(body)
	if err != nil {
		return fragment{}, err
	}
	if all {
		f.sql = "NOT EXISTS (" + src.query("NOT ("+v.coalesceFalse(f.sql)+")") + ")"
		return f, nil
	}
	f.sql = "EXISTS (" + src.query(f.sql) + ")"
	return f, nil
}
