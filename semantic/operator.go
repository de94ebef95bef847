package semantic

import "github.com/nlstn/go-odata-uriparser/edm"

// BinaryOperatorKind identifies a binary operator.
type BinaryOperatorKind int

const (
	BinaryOr BinaryOperatorKind = iota + 1
	BinaryAnd
	BinaryEqual
	BinaryNotEqual
	BinaryGreaterThan
	BinaryGreaterThanOrEqual
	BinaryLessThan
	BinaryLessThanOrEqual
	BinaryAdd
	BinarySubtract
	BinaryMultiply
	BinaryDivide
	BinaryModulo
	BinaryHas
)

var binaryOperatorNames = map[BinaryOperatorKind]string{
	BinaryOr:                 "or",
	BinaryAnd:                "and",
	BinaryEqual:              "eq",
	BinaryNotEqual:           "ne",
	BinaryGreaterThan:        "gt",
	BinaryGreaterThanOrEqual: "ge",
	BinaryLessThan:           "lt",
	BinaryLessThanOrEqual:    "le",
	BinaryAdd:                "add",
	BinarySubtract:           "sub",
	BinaryMultiply:           "mul",
	BinaryDivide:             "div",
	BinaryModulo:             "mod",
	BinaryHas:                "has",
}

// String returns the URL keyword of the operator (e.g., "eq").
func (k BinaryOperatorKind) String() string {
	if name, ok := binaryOperatorNames[k]; ok {
		return name
	}
	return "unknown"
}

// BinaryOperatorKindFromKeyword resolves a URL operator keyword.
func BinaryOperatorKindFromKeyword(keyword string) (BinaryOperatorKind, bool) {
	for k, name := range binaryOperatorNames {
		if name == keyword {
			return k, true
		}
	}
	return 0, false
}

// IsLogical reports whether k is and/or.
func (k BinaryOperatorKind) IsLogical() bool {
	return k == BinaryOr || k == BinaryAnd
}

// IsComparison reports whether k is a relational or equality operator.
func (k BinaryOperatorKind) IsComparison() bool {
	return k >= BinaryEqual && k <= BinaryLessThanOrEqual
}

// IsArithmetic reports whether k is an arithmetic operator.
func (k BinaryOperatorKind) IsArithmetic() bool {
	return k >= BinaryAdd && k <= BinaryModulo
}

// UnaryOperatorKind identifies a unary operator.
type UnaryOperatorKind int

const (
	UnaryNegate UnaryOperatorKind = iota + 1
	UnaryNot
)

// String returns the URL form of the operator.
func (k UnaryOperatorKind) String() string {
	switch k {
	case UnaryNegate:
		return "-"
	case UnaryNot:
		return "not"
	}
	return "unknown"
}

// BinaryOperatorNode applies a binary operator to two operands.
type BinaryOperatorNode struct {
	singleValue
	operator BinaryOperatorKind
	left     SingleValueNode
	right    SingleValueNode
	typeRef  edm.TypeReference
}

// NewBinaryOperatorNode creates a binary operator node. The result type is
// Edm.Boolean for logical, comparison and has operators and the left
// operand's type otherwise. Operand compatibility is not checked.
func NewBinaryOperatorNode(operator BinaryOperatorKind, left, right SingleValueNode) *BinaryOperatorNode {
	n := &BinaryOperatorNode{operator: operator, left: left, right: right}
	var leftType edm.TypeReference
	if left != nil {
		leftType = left.TypeReference()
	}
	if operator.IsLogical() || operator.IsComparison() || operator == BinaryHas {
		nullable := leftType == nil || leftType.IsNullable()
		n.typeRef = edm.Boolean(nullable)
	} else {
		n.typeRef = leftType
	}
	return n
}

func (n *BinaryOperatorNode) Kind() Kind                       { return KindBinaryOperator }
func (n *BinaryOperatorNode) TypeReference() edm.TypeReference { return n.typeRef }

// OperatorKind returns the operator.
func (n *BinaryOperatorNode) OperatorKind() BinaryOperatorKind { return n.operator }

// Left returns the left operand.
func (n *BinaryOperatorNode) Left() SingleValueNode { return n.left }

// Right returns the right operand.
func (n *BinaryOperatorNode) Right() SingleValueNode { return n.right }

// UnaryOperatorNode applies a unary operator to an operand.
type UnaryOperatorNode struct {
	singleValue
	operator UnaryOperatorKind
	operand  SingleValueNode
}

// NewUnaryOperatorNode creates a unary operator node.
func NewUnaryOperatorNode(operator UnaryOperatorKind, operand SingleValueNode) *UnaryOperatorNode {
	return &UnaryOperatorNode{operator: operator, operand: operand}
}

func (n *UnaryOperatorNode) Kind() Kind { return KindUnaryOperator }

func (n *UnaryOperatorNode) TypeReference() edm.TypeReference {
	var operandType edm.TypeReference
	if n.operand != nil {
		operandType = n.operand.TypeReference()
	}
	if n.operator == UnaryNot {
		return edm.Boolean(operandType == nil || operandType.IsNullable())
	}
	return operandType
}

// OperatorKind returns the operator.
func (n *UnaryOperatorNode) OperatorKind() UnaryOperatorKind { return n.operator }

// Operand returns the operand.
func (n *UnaryOperatorNode) Operand() SingleValueNode { return n.operand }

// InNode tests whether Left is an element of Right.
type InNode struct {
	singleValue
	left  SingleValueNode
	right CollectionNode
}

// NewInNode creates an in node.
func NewInNode(left SingleValueNode, right CollectionNode) *InNode {
	return &InNode{left: left, right: right}
}

func (n *InNode) Kind() Kind                       { return KindIn }
func (n *InNode) TypeReference() edm.TypeReference { return edm.Boolean(false) }

// Left returns the tested value.
func (n *InNode) Left() SingleValueNode { return n.left }

// Right returns the collection searched.
func (n *InNode) Right() CollectionNode { return n.right }
