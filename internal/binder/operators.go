package binder

import (
	"github.com/nlstn/go-odata-uriparser/edm"
	"github.com/nlstn/go-odata-uriparser/internal/syntax"
	"github.com/nlstn/go-odata-uriparser/semantic"
)

func (st *state) bindBinary(keyword string, leftExpr, rightExpr syntax.ASTNode, pos int) (semantic.Node, error) {
	op, ok := semantic.BinaryOperatorKindFromKeyword(keyword)
	if !ok {
		return nil, bindErrorf(pos, "unknown operator '%s'", keyword)
	}

	left, err := st.bindSingle(leftExpr)
	if err != nil {
		return nil, err
	}
	right, err := st.bindSingle(rightExpr)
	if err != nil {
		return nil, err
	}

	switch {
	case op.IsLogical():
		for _, operand := range []semantic.SingleValueNode{left, right} {
			if ref := operand.TypeReference(); ref != nil && !edm.IsPrimitiveKind(ref, edm.PrimitiveBoolean) {
				return nil, bindErrorf(pos, "operands of '%s' must be Edm.Boolean, got %s", keyword, ref.FullName())
			}
		}
	case op.IsArithmetic():
		for _, operand := range []semantic.SingleValueNode{left, right} {
			if ref := operand.TypeReference(); ref != nil && !isArithmeticOperand(ref) {
				return nil, bindErrorf(pos, "operands of '%s' must be numeric or temporal, got %s", keyword, ref.FullName())
			}
		}
		left, right = promote(left, right)
	case op == semantic.BinaryHas:
	default:
		left, right, err = alignComparison(left, right, pos)
		if err != nil {
			return nil, err
		}
		if _, isEntity := left.(semantic.SingleEntityNode); isEntity && op != semantic.BinaryEqual && op != semantic.BinaryNotEqual {
			return nil, bindErrorf(pos, "entities only support eq and ne")
		}
	}

	return semantic.NewBinaryOperatorNode(op, left, right), nil
}

func (st *state) bindUnary(u *syntax.UnaryExpr) (semantic.Node, error) {
	operand, err := st.bindSingle(u.Operand)
	if err != nil {
		return nil, err
	}
	ref := operand.TypeReference()

	if u.Operator == "not" {
		if ref != nil && !edm.IsPrimitiveKind(ref, edm.PrimitiveBoolean) {
			return nil, bindErrorf(u.Pos, "operand of 'not' must be Edm.Boolean, got %s", ref.FullName())
		}
		return semantic.NewUnaryOperatorNode(semantic.UnaryNot, operand), nil
	}

	if ref != nil && !isNumeric(ref) && !edm.IsPrimitiveKind(ref, edm.PrimitiveDuration) {
		return nil, bindErrorf(u.Pos, "operand of '-' must be numeric, got %s", ref.FullName())
	}
	return semantic.NewUnaryOperatorNode(semantic.UnaryNegate, operand), nil
}

func (st *state) bindIn(c *syntax.ComparisonExpr) (semantic.Node, error) {
	left, err := st.bindSingle(c.Left)
	if err != nil {
		return nil, err
	}

	list, ok := c.Right.(*syntax.CollectionExpr)
	if !ok {
		bound, err := st.bind(c.Right)
		if err != nil {
			return nil, err
		}
		right, ok := bound.(semantic.CollectionNode)
		if !ok {
			return nil, bindErrorf(c.Pos, "right operand of 'in' must be a collection")
		}
		return semantic.NewInNode(left, right), nil
	}

	itemType := left.TypeReference()
	items := make([]*semantic.ConstantNode, 0, len(list.Values))
	for _, value := range list.Values {
		lit, ok := value.(*syntax.LiteralExpr)
		if !ok {
			return nil, bindErrorf(value.Position(), "'in' lists may only contain literals")
		}
		item, err := retype(bindLiteral(lit), itemType, lit.Pos)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if itemType == nil && len(items) > 0 {
		itemType = items[0].TypeReference()
	}
	return semantic.NewInNode(left, semantic.NewCollectionConstantNode(items, itemType)), nil
}

func isNumeric(ref edm.TypeReference) bool {
	p := edm.AsPrimitive(ref)
	return p != nil && edm.IsNumeric(p.Kind)
}

func isArithmeticOperand(ref edm.TypeReference) bool {
	return isNumeric(ref) || edm.IsPrimitiveKind(ref,
		edm.PrimitiveDate, edm.PrimitiveDateTimeOffset, edm.PrimitiveDuration, edm.PrimitiveTimeOfDay)
}

// promote widens numeric operands to a common kind. Other operands are
// returned unchanged.
func promote(left, right semantic.SingleValueNode) (semantic.SingleValueNode, semantic.SingleValueNode) {
	l, r := edm.AsPrimitive(left.TypeReference()), edm.AsPrimitive(right.TypeReference())
	if l == nil || r == nil {
		return left, right
	}
	kind, ok := edm.PromoteNumeric(l.Kind, r.Kind)
	if !ok {
		return left, right
	}
	return widen(left, kind), widen(right, kind)
}

// widen converts node to kind, keeping nullability. Constants are retyped
// in place instead of being wrapped in a conversion.
func widen(node semantic.SingleValueNode, kind edm.PrimitiveKind) semantic.SingleValueNode {
	ref := edm.AsPrimitive(node.TypeReference())
	if ref == nil || ref.Kind == kind {
		return node
	}
	target := edm.Primitive(kind, ref.Nullable)
	if c, ok := node.(*semantic.ConstantNode); ok {
		return semantic.NewTypedConstantNode(c.Value(), c.LiteralText(), target)
	}
	return semantic.NewConvertNode(node, target)
}

// alignComparison checks that two operands can be compared and aligns their
// types. An untyped null takes the type of the other operand.
func alignComparison(left, right semantic.SingleValueNode, pos int) (semantic.SingleValueNode, semantic.SingleValueNode, error) {
	lt, rt := left.TypeReference(), right.TypeReference()

	switch {
	case lt == nil && rt == nil:
		return left, right, nil
	case lt == nil:
		return nullOf(left, rt), right, nil
	case rt == nil:
		return left, nullOf(right, lt), nil
	}

	if le, re := edm.AsEntity(lt), edm.AsEntity(rt); le != nil || re != nil {
		if le == nil || re == nil {
			return nil, nil, bindErrorf(pos, "cannot compare %s with %s", lt.FullName(), rt.FullName())
		}
		return left, right, nil
	}

	lp, rp := edm.AsPrimitive(lt), edm.AsPrimitive(rt)
	if lp == nil || rp == nil {
		return nil, nil, bindErrorf(pos, "cannot compare %s with %s", lt.FullName(), rt.FullName())
	}
	if lp.Kind == rp.Kind {
		return left, right, nil
	}
	if _, ok := edm.PromoteNumeric(lp.Kind, rp.Kind); ok {
		l, r := promote(left, right)
		return l, r, nil
	}
	// A date may be compared with a timestamp; the date is widened to midnight UTC.
	if lp.Kind == edm.PrimitiveDate && rp.Kind == edm.PrimitiveDateTimeOffset {
		return widen(left, edm.PrimitiveDateTimeOffset), right, nil
	}
	if lp.Kind == edm.PrimitiveDateTimeOffset && rp.Kind == edm.PrimitiveDate {
		return left, widen(right, edm.PrimitiveDateTimeOffset), nil
	}
	return nil, nil, bindErrorf(pos, "cannot compare %s with %s", lt.FullName(), rt.FullName())
}

// nullOf gives an untyped null constant a nullable version of ref.
func nullOf(node semantic.SingleValueNode, ref edm.TypeReference) semantic.SingleValueNode {
	c, ok := node.(*semantic.ConstantNode)
	if !ok || !c.IsNull() {
		return node
	}
	if p := edm.AsPrimitive(ref); p != nil {
		return semantic.NewTypedConstantNode(nil, c.LiteralText(), edm.Primitive(p.Kind, true))
	}
	if e := edm.AsEntity(ref); e != nil {
		return semantic.NewTypedConstantNode(nil, c.LiteralText(), e.Type.Reference(true))
	}
	return node
}

// retype converts a literal to the type it is compared against.
func retype(c *semantic.ConstantNode, target edm.TypeReference, pos int) (*semantic.ConstantNode, error) {
	tp := edm.AsPrimitive(target)
	if tp == nil {
		return c, nil
	}
	if c.IsNull() {
		return semantic.NewTypedConstantNode(nil, c.LiteralText(), edm.Primitive(tp.Kind, true)), nil
	}
	cp := edm.AsPrimitive(c.TypeReference())
	if cp == nil || cp.Kind == tp.Kind {
		return c, nil
	}
	if (edm.IsNumeric(cp.Kind) && edm.IsNumeric(tp.Kind)) ||
		(cp.Kind == edm.PrimitiveDate && tp.Kind == edm.PrimitiveDateTimeOffset) {
		return semantic.NewTypedConstantNode(c.Value(), c.LiteralText(), edm.Primitive(tp.Kind, false)), nil
	}
	return nil, bindErrorf(pos, "literal %s is not compatible with %s", c.LiteralText(), tp.FullName())
}
