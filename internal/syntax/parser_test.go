package syntax

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// sexpr renders an AST compactly so tests can compare whole trees.
func sexpr(node ASTNode) string {
	switch n := node.(type) {
	case nil:
		return "<nil>"
	case *LiteralExpr:
		return n.Text
	case *MemberExpr:
		if n.Source == nil {
			return n.Name
		}
		return sexpr(n.Source) + "/" + n.Name
	case *LambdaExpr:
		if n.Variable == "" {
			return fmt.Sprintf("%s/%s()", sexpr(n.Source), n.Operator)
		}
		return fmt.Sprintf("%s/%s(%s: %s)", sexpr(n.Source), n.Operator, n.Variable, sexpr(n.Body))
	case *FunctionCallExpr:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = sexpr(a)
		}
		return n.Function + "(" + strings.Join(args, ", ") + ")"
	case *BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", n.Operator, sexpr(n.Left), sexpr(n.Right))
	case *ComparisonExpr:
		return fmt.Sprintf("(%s %s %s)", n.Operator, sexpr(n.Left), sexpr(n.Right))
	case *UnaryExpr:
		return fmt.Sprintf("(%s %s)", n.Operator, sexpr(n.Operand))
	case *CollectionExpr:
		values := make([]string, len(n.Values))
		for i, v := range n.Values {
			values[i] = sexpr(v)
		}
		return "[" + strings.Join(values, " ") + "]"
	case *GroupExpr:
		return sexpr(n.Expr)
	}
	return fmt.Sprintf("%T", node)
}

func TestParseFilterStructure(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Price gt 100", "(gt Price 100)"},
		{"A eq 1 or B eq 2 and C eq 3", "(or (eq A 1) (and (eq B 2) (eq C 3)))"},
		{"(A eq 1 or B eq 2) and C eq 3", "(and (or (eq A 1) (eq B 2)) (eq C 3))"},
		{"not Active and Price lt 5", "(and (not Active) (lt Price 5))"},
		{"not Price lt 5", "(not (lt Price 5))"},
		{"Price add 1 mul 2 gt 3", "(gt (add Price (mul 1 2)) 3)"},
		{"Price sub Tax sub 1 eq 0", "(eq (sub (sub Price Tax) 1) 0)"},
		{"-Price lt -5", "(lt (- Price) -5)"},
		{"Category/Name eq 'Food'", "(eq Category/Name 'Food')"},
		{"Shop.Employee/Salary gt 10", "(gt Shop.Employee/Salary 10)"},
		{"contains(tolower(Name), 'milk')", "contains(tolower(Name), 'milk')"},
		{"Tags/any(t: t eq 'x')", "Tags/any(t: (eq t 'x'))"},
		{"Tags/any()", "Tags/any()"},
		{"Orders/all(o: o/Items/any(i: i/Qty gt o/Min))", "Orders/all(o: o/Items/any(i: (gt i/Qty o/Min)))"},
		{"Name in ('a', 'b')", "(in Name ['a' 'b'])"},
		{"Name in ()", "(in Name [])"},
		{"Flags has 4", "(has Flags 4)"},
		{"now() gt 2024-01-01T00:00:00Z", "(gt now() 2024-01-01T00:00:00Z)"},
		{"Shop.BestSeller()/Name eq 'x'", "(eq Shop.BestSeller()/Name 'x')"},
		{"$it/Name eq 'x'", "(eq $it/Name 'x')"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ast, err := ParseFilter(tt.input, 0)
			if err != nil {
				t.Fatalf("ParseFilter() error = %v", err)
			}
			if got := sexpr(ast); got != tt.want {
				t.Errorf("ParseFilter() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseLiteralValues(t *testing.T) {
	tests := []struct {
		input string
		kind  LiteralKind
		value interface{}
	}{
		{"42", LiteralInt32, int32(42)},
		{"-42", LiteralInt32, int32(-42)},
		{"3000000000", LiteralInt64, int64(3000000000)},
		{"42L", LiteralInt64, int64(42)},
		{"1.5", LiteralDouble, 1.5},
		{"1.5D", LiteralDouble, 1.5},
		{"1.5F", LiteralSingle, float32(1.5)},
		{"'text'", LiteralString, "text"},
		{"true", LiteralBoolean, true},
		{"null", LiteralNull, nil},
		{"INF", LiteralDouble, math.Inf(1)},
		{"-INF", LiteralDouble, math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ast, err := ParseFilter(tt.input, 0)
			if err != nil {
				t.Fatalf("ParseFilter() error = %v", err)
			}
			lit, ok := ast.(*LiteralExpr)
			if !ok {
				t.Fatalf("got %T, want *LiteralExpr", ast)
			}
			if lit.Kind != tt.kind {
				t.Errorf("kind = %d, want %d", lit.Kind, tt.kind)
			}
			if lit.Value != tt.value {
				t.Errorf("value = %#v, want %#v", lit.Value, tt.value)
			}
		})
	}
}

func TestParseNotANumber(t *testing.T) {
	ast, err := ParseFilter("Price ne NaN and Price lt INF and Price gt -INF", 0)
	if err != nil {
		t.Fatalf("ParseFilter() error = %v", err)
	}
	if got, want := sexpr(ast), "(and (and (ne Price NaN) (lt Price INF)) (gt Price -INF))"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	lit, err := ParseFilter("NaN", 0)
	if err != nil {
		t.Fatalf("ParseFilter() error = %v", err)
	}
	if v, ok := lit.(*LiteralExpr).Value.(float64); !ok || !math.IsNaN(v) {
		t.Errorf("NaN value = %#v", lit.(*LiteralExpr).Value)
	}

	// INF only as a whole word
	ast, err = ParseFilter("INFO eq 1", 0)
	if err != nil {
		t.Fatalf("ParseFilter() error = %v", err)
	}
	if got := sexpr(ast); got != "(eq INFO 1)" {
		t.Errorf("got %s", got)
	}
}

func TestParseTypedLiterals(t *testing.T) {
	ast, err := ParseFilter("19.99M", 0)
	if err != nil {
		t.Fatalf("ParseFilter() error = %v", err)
	}
	if d, ok := ast.(*LiteralExpr).Value.(decimal.Decimal); !ok || !d.Equal(decimal.RequireFromString("19.99")) {
		t.Errorf("decimal literal = %#v", ast.(*LiteralExpr).Value)
	}

	ast, err = ParseFilter("01234567-89ab-cdef-0123-456789abcdef", 0)
	if err != nil {
		t.Fatalf("ParseFilter() error = %v", err)
	}
	if id, ok := ast.(*LiteralExpr).Value.(uuid.UUID); !ok || id.String() != "01234567-89ab-cdef-0123-456789abcdef" {
		t.Errorf("guid literal = %#v", ast.(*LiteralExpr).Value)
	}

	ast, err = ParseFilter("2024-02-29", 0)
	if err != nil {
		t.Fatalf("ParseFilter() error = %v", err)
	}
	lit := ast.(*LiteralExpr)
	if d, ok := lit.Value.(time.Time); !ok || lit.Kind != LiteralDate || d.Day() != 29 {
		t.Errorf("date literal = %#v", lit.Value)
	}
}

func TestParseOrderBy(t *testing.T) {
	items, err := ParseOrderBy("Name, Price desc, Category/Name asc", 0)
	if err != nil {
		t.Fatalf("ParseOrderBy() error = %v", err)
	}
	want := []struct {
		expr string
		desc bool
	}{
		{"Name", false},
		{"Price", true},
		{"Category/Name", false},
	}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i, item := range items {
		if got := sexpr(item.Expr); got != want[i].expr || item.Descending != want[i].desc {
			t.Errorf("item %d = %s desc=%v, want %s desc=%v", i, got, item.Descending, want[i].expr, want[i].desc)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		orderBy bool
	}{
		{name: "empty", input: ""},
		{name: "whitespace", input: "   "},
		{name: "dangling operator", input: "Price gt"},
		{name: "unbalanced paren", input: "(Price gt 1"},
		{name: "trailing token", input: "Price gt 1 2"},
		{name: "lambda without colon", input: "Tags/any(t t eq 'a')"},
		{name: "slash without segment", input: "Tags/"},
		{name: "in without list", input: "Name in 'a'"},
		{name: "unclosed call", input: "contains(Name, 'a'"},
		{name: "bad direction", input: "Name sideways", orderBy: true},
		{name: "missing comma", input: "Name desc Price", orderBy: true},
		{name: "empty orderby", input: "", orderBy: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.orderBy {
				_, err = ParseOrderBy(tt.input, 0)
			} else {
				_, err = ParseFilter(tt.input, 0)
			}
			if !errors.Is(err, ErrSyntax) {
				t.Errorf("error = %v, want ErrSyntax", err)
			}
		})
	}
}

func TestParseMaxDepth(t *testing.T) {
	deep := strings.Repeat("(", 20) + "A" + strings.Repeat(")", 20)

	if _, err := ParseFilter(deep, 0); err != nil {
		t.Fatalf("default depth rejected 20 levels: %v", err)
	}

	_, err := ParseFilter(deep, 10)
	if !errors.Is(err, ErrMaxDepth) {
		t.Fatalf("error = %v, want ErrMaxDepth", err)
	}
	if !errors.Is(err, ErrSyntax) {
		t.Errorf("depth error should also match ErrSyntax")
	}

	negations := strings.Repeat("not ", 100) + "A"
	if _, err := ParseFilter(negations, 0); !errors.Is(err, ErrMaxDepth) {
		t.Errorf("error = %v, want ErrMaxDepth for 100 nested nots", err)
	}
}
