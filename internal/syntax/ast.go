package syntax

// ASTNode represents a node in the abstract syntax tree
type ASTNode interface {
	Position() int
	astNode()
}

// LiteralKind classifies a literal by its lexical form.
type LiteralKind int

const (
	LiteralNull LiteralKind = iota
	LiteralBoolean
	LiteralInt32
	LiteralInt64
	LiteralDecimal
	LiteralDouble
	LiteralSingle
	LiteralString
	LiteralGuid
	LiteralDate
	LiteralDateTimeOffset
)

// LiteralExpr represents a literal value. Value holds the parsed Go value:
// bool, int32, int64, decimal.Decimal, float64, float32, string, uuid.UUID
// or time.Time; nil for null.
type LiteralExpr struct {
	Kind  LiteralKind
	Value interface{}
	Text  string
	Pos   int
}

// MemberExpr represents one segment of a path. Source is nil for the first
// segment. A qualified Name (containing '.') is a type cast segment.
type MemberExpr struct {
	Source ASTNode
	Name   string
	Pos    int
}

// LambdaExpr represents Source/any(v: Body) or Source/all(v: Body).
// Variable and Body are empty for the parameterless any().
type LambdaExpr struct {
	Source   ASTNode
	Operator string
	Variable string
	Body     ASTNode
	Pos      int
}

// FunctionCallExpr represents a function call (e.g., contains(Name, 'text'))
type FunctionCallExpr struct {
	Function string
	Args     []ASTNode
	Pos      int
}

// BinaryExpr represents a logical or arithmetic expression (e.g., A and B)
type BinaryExpr struct {
	Left     ASTNode
	Operator string
	Right    ASTNode
	Pos      int
}

// ComparisonExpr represents a comparison (e.g., Price gt 100, Name in ('a','b'))
type ComparisonExpr struct {
	Left     ASTNode
	Operator string
	Right    ASTNode
	Pos      int
}

// UnaryExpr represents not X or -X
type UnaryExpr struct {
	Operator string
	Operand  ASTNode
	Pos      int
}

// CollectionExpr represents a parenthesized list, the right side of in
type CollectionExpr struct {
	Values []ASTNode
	Pos    int
}

// GroupExpr represents a grouped expression (parentheses)
type GroupExpr struct {
	Expr ASTNode
	Pos  int
}

func (e *LiteralExpr) Position() int      { return e.Pos }
func (e *MemberExpr) Position() int       { return e.Pos }
func (e *LambdaExpr) Position() int       { return e.Pos }
func (e *FunctionCallExpr) Position() int { return e.Pos }
func (e *BinaryExpr) Position() int       { return e.Pos }
func (e *ComparisonExpr) Position() int   { return e.Pos }
func (e *UnaryExpr) Position() int        { return e.Pos }
func (e *CollectionExpr) Position() int   { return e.Pos }
func (e *GroupExpr) Position() int        { return e.Pos }

func (e *LiteralExpr) astNode()      {}
func (e *MemberExpr) astNode()       {}
func (e *LambdaExpr) astNode()       {}
func (e *FunctionCallExpr) astNode() {}
func (e *BinaryExpr) astNode()       {}
func (e *ComparisonExpr) astNode()   {}
func (e *UnaryExpr) astNode()        {}
func (e *CollectionExpr) astNode()   {}
func (e *GroupExpr) astNode()        {}

// OrderByItem is one sort key of an $orderby expression.
type OrderByItem struct {
	Expr       ASTNode
	Descending bool
}
