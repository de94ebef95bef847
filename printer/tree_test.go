package printer_test

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlstn/go-odata-uriparser/printer"
)

func assertGolden(t *testing.T, name, got string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(got))
}

func TestTreeWithTypes(t *testing.T) {
	p := newParser(t)
	clause := parseFilter(t, p, "Products", "Price gt 10 and Tags/any(t: t eq 'new')")

	got, err := printer.Tree(clause.Expression(), printer.WithTypes())
	require.NoError(t, err)
	assertGolden(t, "tree_typed", got)
}

func TestTreeLambdaAndIn(t *testing.T) {
	p := newParser(t)
	clause := parseFilter(t, p, "Products", "Category/Products/all(p: p/Price lt 100) or not (Name in ('a', 'b'))")

	got, err := printer.Tree(clause.Expression())
	require.NoError(t, err)
	assertGolden(t, "tree_lambda_in", got)
}

func TestTreeOptions(t *testing.T) {
	p := newParser(t)
	clause := parseFilter(t, p, "Products", "Stock gt 1")

	bracket := func(a ...interface{}) string { return "[" + a[0].(string) + "]" }
	got, err := printer.Tree(clause.Expression(),
		printer.WithIndent("\t"),
		printer.WithTypes(),
		printer.WithStyles(bracket, nil),
	)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "[BinaryOperator] gt : Edm.Boolean", lines[0])
	assert.Equal(t, "\t[SingleValuePropertyAccess] Stock : Edm.Int32", lines[1])
	assert.Equal(t, "\t\t[EntityRangeVariableReference] $it : Shop.Product", lines[2])
	assert.Equal(t, "\t[Constant] 1 : Edm.Int32", lines[3])
}
