// Package printer renders semantic trees back to OData expression text and
// to indented debug dumps.
//
// Print produces text that parses back to an equivalent tree: parentheses
// are emitted only where operator precedence requires them, and members of
// the implicit $it range variable are written as bare property names.
package printer

import (
	"strings"

	"github.com/nlstn/go-odata-uriparser/semantic"
)

// Binding strength of rendered expressions, weakest first.
const (
	precOr = iota + 1
	precAnd
	precNot
	precComparison
	precAdditive
	precMultiplicative
	precUnary
	precPrimary
)

const implicitVariable = "$it"

// rendered is an expression together with the precedence of its outermost
// operator.
type rendered struct {
	text string
	prec int
}

// Print renders n as OData expression text.
func Print(n semantic.Node) (string, error) {
	r, err := semantic.Accept[rendered](n, textVisitor{})
	if err != nil {
		return "", err
	}
	return r.text, nil
}

// PrintFilter renders the expression of a $filter clause.
func PrintFilter(c *semantic.FilterClause) (string, error) {
	return Print(c.Expression())
}

// PrintOrderBy renders an $orderby clause. Descending items carry the desc
// keyword; ascending items are written without a direction.
func PrintOrderBy(c *semantic.OrderByClause) (string, error) {
	items := c.Items()
	parts := make([]string, 0, len(items))
	for _, item := range items {
		text, err := Print(item.Expression)
		if err != nil {
			return "", err
		}
		if item.Direction == semantic.Descending {
			text += " desc"
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, ","), nil
}

// textVisitor renders every node kind.
type textVisitor struct {
	semantic.DefaultVisitor[rendered]
}

func primary(text string) rendered { return rendered{text: text, prec: precPrimary} }

func (v textVisitor) visit(n semantic.Node) (rendered, error) {
	return semantic.Accept[rendered](n, v)
}

// operand renders n, parenthesizing it when it binds looser than min.
func (v textVisitor) operand(n semantic.Node, min int) (string, error) {
	r, err := v.visit(n)
	if err != nil {
		return "", err
	}
	if r.prec < min {
		return "(" + r.text + ")", nil
	}
	return r.text, nil
}

// path renders segment appended to source. Segments of the implicit range
// variable are written bare.
func (v textVisitor) path(source semantic.Node, segment string) (rendered, error) {
	if isImplicit(source) {
		return primary(segment), nil
	}
	prefix, err := v.operand(source, precPrimary)
	if err != nil {
		return rendered{}, err
	}
	return primary(prefix + "/" + segment), nil
}

func isImplicit(n semantic.Node) bool {
	ref, ok := n.(*semantic.EntityRangeVariableReferenceNode)
	return ok && ref.Name() == implicitVariable
}

func (v textVisitor) VisitAll(n *semantic.AllNode) (rendered, error) {
	return v.lambda("all", n.Source(), n.CurrentRangeVariable(), n.Body())
}

func (v textVisitor) VisitAny(n *semantic.AnyNode) (rendered, error) {
	return v.lambda("any", n.Source(), n.CurrentRangeVariable(), n.Body())
}

func (v textVisitor) lambda(operator string, source semantic.CollectionNode, variable semantic.RangeVariable, body semantic.SingleValueNode) (rendered, error) {
	inner := ""
	if variable != nil && body != nil {
		b, err := v.visit(body)
		if err != nil {
			return rendered{}, err
		}
		inner = variable.Name() + ":" + b.text
	}
	return v.path(source, operator+"("+inner+")")
}

func (v textVisitor) VisitBinaryOperator(n *semantic.BinaryOperatorNode) (rendered, error) {
	op := n.OperatorKind()
	var prec, leftMin, rightMin int
	switch {
	case op == semantic.BinaryOr:
		prec, leftMin, rightMin = precOr, precOr, precAnd
	case op == semantic.BinaryAnd:
		prec, leftMin, rightMin = precAnd, precAnd, precNot
	case op == semantic.BinaryAdd || op == semantic.BinarySubtract:
		prec, leftMin, rightMin = precAdditive, precAdditive, precMultiplicative
	case op.IsArithmetic():
		prec, leftMin, rightMin = precMultiplicative, precMultiplicative, precUnary
	default:
		// comparisons and has do not chain
		prec, leftMin, rightMin = precComparison, precAdditive, precAdditive
	}

	left, err := v.operand(n.Left(), leftMin)
	if err != nil {
		return rendered{}, err
	}
	right, err := v.operand(n.Right(), rightMin)
	if err != nil {
		return rendered{}, err
	}
	return rendered{text: left + " " + op.String() + " " + right, prec: prec}, nil
}

func (v textVisitor) VisitUnaryOperator(n *semantic.UnaryOperatorNode) (rendered, error) {
	if n.OperatorKind() == semantic.UnaryNot {
		operand, err := v.operand(n.Operand(), precNot)
		if err != nil {
			return rendered{}, err
		}
		return rendered{text: "not " + operand, prec: precNot}, nil
	}

	operand, err := v.operand(n.Operand(), precUnary)
	if err != nil {
		return rendered{}, err
	}
	// "--1" would read as a single negative literal
	if strings.HasPrefix(operand, "-") {
		operand = "(" + operand + ")"
	}
	return rendered{text: "-" + operand, prec: precUnary}, nil
}

func (v textVisitor) VisitIn(n *semantic.InNode) (rendered, error) {
	left, err := v.operand(n.Left(), precAdditive)
	if err != nil {
		return rendered{}, err
	}
	right, err := v.visit(n.Right())
	if err != nil {
		return rendered{}, err
	}
	return rendered{text: left + " in " + right.text, prec: precComparison}, nil
}

func (v textVisitor) VisitCollectionConstant(n *semantic.CollectionConstantNode) (rendered, error) {
	items := n.Items()
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, constantText(item))
	}
	return primary("(" + strings.Join(parts, ",") + ")"), nil
}

func (v textVisitor) VisitConstant(n *semantic.ConstantNode) (rendered, error) {
	text := constantText(n)
	if strings.HasPrefix(text, "-") {
		return rendered{text: text, prec: precUnary}, nil
	}
	return primary(text), nil
}

// VisitConvert renders the converted value; conversions are implicit in
// the text form.
func (v textVisitor) VisitConvert(n *semantic.ConvertNode) (rendered, error) {
	return v.visit(n.Source())
}

func (v textVisitor) VisitSingleValuePropertyAccess(n *semantic.SingleValuePropertyAccessNode) (rendered, error) {
	return v.path(n.Source(), n.Property().Name)
}

func (v textVisitor) VisitCollectionPropertyAccess(n *semantic.CollectionPropertyAccessNode) (rendered, error) {
	return v.path(n.Source(), n.Property().Name)
}

func (v textVisitor) VisitSingleValueOpenPropertyAccess(n *semantic.SingleValueOpenPropertyAccessNode) (rendered, error) {
	return v.path(n.Source(), n.Name())
}

func (v textVisitor) VisitSingleNavigation(n *semantic.SingleNavigationNode) (rendered, error) {
	return v.path(n.Source(), n.NavigationProperty().Name)
}

func (v textVisitor) VisitCollectionNavigation(n *semantic.CollectionNavigationNode) (rendered, error) {
	return v.path(n.Source(), n.NavigationProperty().Name)
}

func (v textVisitor) VisitSingleEntityCast(n *semantic.SingleEntityCastNode) (rendered, error) {
	return v.path(n.Source(), n.EntityType().FullName())
}

func (v textVisitor) VisitEntityCollectionCast(n *semantic.EntityCollectionCastNode) (rendered, error) {
	return v.path(n.Source(), n.EntityType().FullName())
}

func (v textVisitor) VisitEntityRangeVariableReference(n *semantic.EntityRangeVariableReferenceNode) (rendered, error) {
	return primary(n.Name()), nil
}

func (v textVisitor) VisitNonentityRangeVariableReference(n *semantic.NonentityRangeVariableReferenceNode) (rendered, error) {
	return primary(n.Name()), nil
}

func (v textVisitor) VisitEntitySet(n *semantic.EntitySetNode) (rendered, error) {
	return primary(n.EntitySet().Name), nil
}

func (v textVisitor) VisitSingleValueFunctionCall(n *semantic.SingleValueFunctionCallNode) (rendered, error) {
	args := n.Arguments()
	if name := n.Name(); name == "cast" || name == "isof" {
		return v.typeCall(name, args)
	}
	return v.call(n.Name(), args)
}

func (v textVisitor) VisitSingleEntityFunctionCall(n *semantic.SingleEntityFunctionCallNode) (rendered, error) {
	return v.call(n.Name(), n.Arguments())
}

func (v textVisitor) VisitCollectionFunctionCall(n *semantic.CollectionFunctionCallNode) (rendered, error) {
	return v.call(n.Name(), n.Arguments())
}

func (v textVisitor) VisitEntityCollectionFunctionCall(n *semantic.EntityCollectionFunctionCallNode) (rendered, error) {
	return v.call(n.Name(), n.Arguments())
}

func (v textVisitor) call(name string, args []semantic.Node) (rendered, error) {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		r, err := v.visit(arg)
		if err != nil {
			return rendered{}, err
		}
		parts = append(parts, r.text)
	}
	return primary(name + "(" + strings.Join(parts, ",") + ")"), nil
}

// typeCall renders cast and isof, whose last argument is a type name and
// whose value argument is omitted when it is the implicit range variable.
func (v textVisitor) typeCall(name string, args []semantic.Node) (rendered, error) {
	if len(args) != 2 {
		return v.call(name, args)
	}
	typeName, ok := args[1].(*semantic.ConstantNode)
	if !ok {
		return v.call(name, args)
	}
	qualified, _ := typeName.Value().(string)
	if isImplicit(args[0]) {
		return primary(name + "(" + qualified + ")"), nil
	}
	value, err := v.visit(args[0])
	if err != nil {
		return rendered{}, err
	}
	return primary(name + "(" + value.text + "," + qualified + ")"), nil
}
