package binder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlstn/go-odata-uriparser/edm"
	"github.com/nlstn/go-odata-uriparser/internal/syntax"
	"github.com/nlstn/go-odata-uriparser/semantic"
)

type Category struct {
	ID       uint `gorm:"primaryKey"`
	Name     string
	Products []Product `gorm:"foreignKey:CategoryID"`
}

type Product struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"not null"`
	Price      float64
	Stock      int32
	CategoryID *uint
	Category   *Category `gorm:"foreignKey:CategoryID"`
	Tags       []string  `gorm:"serializer:json"`
	CreatedAt  time.Time
}

type Person struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

type Employee struct {
	Person
	Salary float64
}

type fixture struct {
	model      *edm.Model
	binder     *Binder
	products   *edm.EntitySet
	categories *edm.EntitySet
	people     *edm.EntitySet
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	model, err := edm.NewBuilder("Shop").
		EntitySet("Products", &Product{}).
		EntitySet("Categories", &Category{}).
		EntitySet("People", &Person{}, edm.OpenType()).
		EntityType(&Employee{}, edm.BaseType(&Person{})).
		Build()
	require.NoError(t, err)

	product := model.FindEntityType("Shop.Product")
	require.NotNil(t, product)

	require.NoError(t, model.AddFunction(&edm.Function{Name: "BestSeller", ReturnType: product.Reference(true)}))
	require.NoError(t, model.AddFunction(&edm.Function{
		Name:       "TopProducts",
		Parameters: []edm.Parameter{{Name: "n", Type: edm.Int32(false)}},
		ReturnType: edm.CollectionOf(product.Reference(false)),
	}))
	require.NoError(t, model.AddFunction(&edm.Function{
		Name:       "Discount",
		Parameters: []edm.Parameter{{Name: "price", Type: edm.Double(false)}},
		ReturnType: edm.Double(false),
	}))
	require.NoError(t, model.AddFunction(&edm.Function{Name: "Keywords", ReturnType: edm.CollectionOf(edm.String(false))}))

	return &fixture{
		model:      model,
		binder:     New(model, nil),
		products:   model.FindEntitySet("Products"),
		categories: model.FindEntitySet("Categories"),
		people:     model.FindEntitySet("People"),
	}
}

func (f *fixture) filter(t *testing.T, set *edm.EntitySet, text string) semantic.SingleValueNode {
	t.Helper()
	ast, err := syntax.ParseFilter(text, 0)
	require.NoError(t, err)
	clause, err := f.binder.BindFilter(set, ast)
	require.NoError(t, err)
	return clause.Expression()
}

func (f *fixture) filterErr(t *testing.T, set *edm.EntitySet, text string) error {
	t.Helper()
	ast, err := syntax.ParseFilter(text, 0)
	require.NoError(t, err)
	_, err = f.binder.BindFilter(set, ast)
	return err
}

func TestBindFilterClause(t *testing.T) {
	f := newFixture(t)
	ast, err := syntax.ParseFilter("Price gt 100", 0)
	require.NoError(t, err)

	clause, err := f.binder.BindFilter(f.products, ast)
	require.NoError(t, err)

	assert.Equal(t, semantic.ImplicitRangeVariableName, clause.RangeVariable().Name())
	assert.Equal(t, "Shop.Product", clause.ItemType().FullName())

	cmp, ok := clause.Expression().(*semantic.BinaryOperatorNode)
	require.True(t, ok)
	assert.Equal(t, semantic.BinaryGreaterThan, cmp.OperatorKind())

	price, ok := cmp.Left().(*semantic.SingleValuePropertyAccessNode)
	require.True(t, ok)
	assert.Equal(t, "Price", price.Property().Name)
	it, ok := price.Source().(*semantic.EntityRangeVariableReferenceNode)
	require.True(t, ok)
	assert.Same(t, clause.RangeVariable(), it.RangeVariable())

	hundred, ok := cmp.Right().(*semantic.ConstantNode)
	require.True(t, ok)
	assert.Equal(t, int32(100), hundred.Value())
	assert.Equal(t, "Edm.Double", hundred.TypeReference().FullName(), "integer literal is widened to the property type")
}

func TestBindArithmeticPromotion(t *testing.T) {
	f := newFixture(t)
	expr := f.filter(t, f.products, "Stock add 1.5 gt 2")

	cmp := expr.(*semantic.BinaryOperatorNode)
	add, ok := cmp.Left().(*semantic.BinaryOperatorNode)
	require.True(t, ok)
	assert.Equal(t, semantic.BinaryAdd, add.OperatorKind())
	assert.Equal(t, "Edm.Double", add.TypeReference().FullName())

	convert, ok := add.Left().(*semantic.ConvertNode)
	require.True(t, ok, "Int32 property is converted to Double")
	assert.Equal(t, semantic.KindSingleValuePropertyAccess, convert.Source().Kind())
}

func TestBindNullComparisons(t *testing.T) {
	f := newFixture(t)

	cmp := f.filter(t, f.products, "Name eq null").(*semantic.BinaryOperatorNode)
	null := cmp.Right().(*semantic.ConstantNode)
	assert.True(t, null.IsNull())
	require.NotNil(t, null.TypeReference())
	assert.Equal(t, "Edm.String", null.TypeReference().FullName())
	assert.True(t, null.TypeReference().IsNullable())

	cmp = f.filter(t, f.products, "Category ne null").(*semantic.BinaryOperatorNode)
	nav, ok := cmp.Left().(*semantic.SingleNavigationNode)
	require.True(t, ok)
	assert.Same(t, f.categories, nav.NavigationSource())
	assert.Equal(t, "Shop.Category", cmp.Right().TypeReference().FullName())
}

func TestBindNavigationPath(t *testing.T) {
	f := newFixture(t)
	cmp := f.filter(t, f.products, "Category/Name eq 'Food'").(*semantic.BinaryOperatorNode)

	name, ok := cmp.Left().(*semantic.SingleValuePropertyAccessNode)
	require.True(t, ok)
	nav, ok := name.Source().(*semantic.SingleNavigationNode)
	require.True(t, ok)
	assert.Equal(t, "Category", nav.NavigationProperty().Name)
	assert.Equal(t, semantic.KindEntityRangeVariableReference, nav.Source().Kind())
}

func TestBindLambdaOverNavigation(t *testing.T) {
	f := newFixture(t)
	anyNode, ok := f.filter(t, f.categories, "Products/any(p: p/Price gt 5)").(*semantic.AnyNode)
	require.True(t, ok)

	source, ok := anyNode.Source().(*semantic.CollectionNavigationNode)
	require.True(t, ok)
	assert.Same(t, f.products, source.NavigationSource())

	current, ok := anyNode.CurrentRangeVariable().(*semantic.EntityRangeVariable)
	require.True(t, ok)
	assert.Equal(t, "p", current.Name())
	assert.Equal(t, "Shop.Product", current.TypeReference().FullName())

	vars := anyNode.RangeVariables()
	require.Len(t, vars, 2)
	assert.Equal(t, "$it", vars[0].Name())
	assert.Equal(t, "p", vars[1].Name())

	price := anyNode.Body().(*semantic.BinaryOperatorNode).Left().(*semantic.SingleValuePropertyAccessNode)
	ref, ok := price.Source().(*semantic.EntityRangeVariableReferenceNode)
	require.True(t, ok)
	assert.Equal(t, "p", ref.Name())
}

func TestBindLambdaOverPrimitiveCollection(t *testing.T) {
	f := newFixture(t)

	anyNode := f.filter(t, f.products, "Tags/any(t: t eq 'x')").(*semantic.AnyNode)
	assert.Equal(t, semantic.KindCollectionPropertyAccess, anyNode.Source().Kind())
	_, ok := anyNode.CurrentRangeVariable().(*semantic.NonentityRangeVariable)
	assert.True(t, ok)
	left := anyNode.Body().(*semantic.BinaryOperatorNode).Left()
	assert.Equal(t, semantic.KindNonentityRangeVariableReference, left.Kind())
	assert.Equal(t, "Edm.String", left.TypeReference().FullName())

	bare := f.filter(t, f.products, "Tags/any()").(*semantic.AnyNode)
	assert.Nil(t, bare.Body())
	assert.Nil(t, bare.CurrentRangeVariable())

	all := f.filter(t, f.products, "Tags/all(t: t ne '')")
	assert.Equal(t, semantic.KindAll, all.Kind())
}

func TestBindNestedLambdas(t *testing.T) {
	f := newFixture(t)
	outer := f.filter(t, f.categories, "Products/any(p: p/Tags/any(t: t eq p/Name))").(*semantic.AnyNode)
	inner, ok := outer.Body().(*semantic.AnyNode)
	require.True(t, ok)

	vars := inner.RangeVariables()
	require.Len(t, vars, 3)
	assert.Equal(t, []string{"$it", "p", "t"}, []string{vars[0].Name(), vars[1].Name(), vars[2].Name()})

	name := inner.Body().(*semantic.BinaryOperatorNode).Right().(*semantic.SingleValuePropertyAccessNode)
	assert.Equal(t, "p", name.Source().(*semantic.EntityRangeVariableReferenceNode).Name())
}

func TestBindTypeCasts(t *testing.T) {
	f := newFixture(t)

	cmp := f.filter(t, f.people, "Shop.Employee/Salary gt 10").(*semantic.BinaryOperatorNode)
	salary := cmp.Left().(*semantic.SingleValuePropertyAccessNode)
	cast, ok := salary.Source().(*semantic.SingleEntityCastNode)
	require.True(t, ok)
	assert.Equal(t, "Shop.Employee", cast.EntityType().FullName())
	assert.Same(t, f.people, cast.NavigationSource())

	isof := f.filter(t, f.people, "isof(Shop.Employee)").(*semantic.SingleValueFunctionCallNode)
	assert.Equal(t, "isof", isof.Name())
	require.Len(t, isof.Arguments(), 2)
	assert.Equal(t, semantic.KindEntityRangeVariableReference, isof.Arguments()[0].Kind())

	asString := f.filter(t, f.products, "cast(Price, Edm.String) eq '1'").(*semantic.BinaryOperatorNode)
	fn := asString.Left().(*semantic.SingleValueFunctionCallNode)
	assert.Equal(t, "cast", fn.Name())
	assert.Equal(t, "Edm.String", fn.TypeReference().FullName())
}

func TestBindOpenProperty(t *testing.T) {
	f := newFixture(t)
	cmp := f.filter(t, f.people, "Nickname eq 'Bob'").(*semantic.BinaryOperatorNode)
	open, ok := cmp.Left().(*semantic.SingleValueOpenPropertyAccessNode)
	require.True(t, ok)
	assert.Equal(t, "Nickname", open.Name())
	assert.Nil(t, open.TypeReference())
}

func TestBindIn(t *testing.T) {
	f := newFixture(t)

	in := f.filter(t, f.products, "Price in (1, 2.5, null)").(*semantic.InNode)
	list, ok := in.Right().(*semantic.CollectionConstantNode)
	require.True(t, ok)
	items := list.Items()
	require.Len(t, items, 3)
	for _, item := range items {
		assert.Equal(t, "Edm.Double", item.TypeReference().FullName())
	}
	assert.Equal(t, int32(1), items[0].Value())
	assert.True(t, items[2].IsNull())
	assert.Equal(t, "Edm.Double", list.ItemType().FullName())

	empty := f.filter(t, f.products, "Name in ()").(*semantic.InNode)
	assert.Empty(t, empty.Right().(*semantic.CollectionConstantNode).Items())
}

func TestBindBuiltinFunctions(t *testing.T) {
	f := newFixture(t)

	contains := f.filter(t, f.products, "contains(tolower(Name), 'milk')").(*semantic.SingleValueFunctionCallNode)
	assert.Equal(t, "contains", contains.Name())
	assert.Equal(t, "Edm.Boolean", contains.TypeReference().FullName())
	lower := contains.Arguments()[0].(*semantic.SingleValueFunctionCallNode)
	assert.Equal(t, "tolower", lower.Name())

	cmp := f.filter(t, f.products, "year(CreatedAt) eq 2024").(*semantic.BinaryOperatorNode)
	assert.Equal(t, "Edm.Int32", cmp.Left().TypeReference().FullName())

	cmp = f.filter(t, f.products, "round(Price) ge 3").(*semantic.BinaryOperatorNode)
	assert.Equal(t, "Edm.Double", cmp.Left().TypeReference().FullName())

	cmp = f.filter(t, f.products, "CreatedAt lt 2024-06-01").(*semantic.BinaryOperatorNode)
	assert.Equal(t, "Edm.DateTimeOffset", cmp.Right().TypeReference().FullName(), "date literal widens to a timestamp")

	has := f.filter(t, f.products, "has(Stock, 4)").(*semantic.BinaryOperatorNode)
	assert.Equal(t, semantic.BinaryHas, has.OperatorKind())
}

func TestBindModelFunctions(t *testing.T) {
	f := newFixture(t)

	cmp := f.filter(t, f.products, "Shop.BestSeller()/Name eq 'x'").(*semantic.BinaryOperatorNode)
	name := cmp.Left().(*semantic.SingleValuePropertyAccessNode)
	best, ok := name.Source().(*semantic.SingleEntityFunctionCallNode)
	require.True(t, ok)
	assert.Equal(t, "Shop.BestSeller", best.Name())
	assert.Same(t, f.products, best.NavigationSource())

	top := f.filter(t, f.categories, "Shop.TopProducts(3)/any(p: p/Price gt 1)").(*semantic.AnyNode)
	entities, ok := top.Source().(*semantic.EntityCollectionFunctionCallNode)
	require.True(t, ok)
	assert.Same(t, f.products, entities.NavigationSource())
	assert.Equal(t, semantic.KindEntityRangeVariableReference,
		top.Body().(*semantic.BinaryOperatorNode).Left().(*semantic.SingleValuePropertyAccessNode).Source().Kind())

	keywords := f.filter(t, f.products, "Shop.Keywords()/any(k: k eq 'a')").(*semantic.AnyNode)
	assert.Equal(t, semantic.KindCollectionFunctionCall, keywords.Source().Kind())

	discount := f.filter(t, f.products, "Shop.Discount(Stock) gt 1").(*semantic.BinaryOperatorNode)
	call := discount.Left().(*semantic.SingleValueFunctionCallNode)
	assert.Equal(t, semantic.KindConvert, call.Arguments()[0].Kind(), "Int32 argument widens to the Double parameter")
}

func TestBindUnary(t *testing.T) {
	f := newFixture(t)

	not := f.filter(t, f.products, "not contains(Name, 'a')").(*semantic.UnaryOperatorNode)
	assert.Equal(t, semantic.UnaryNot, not.OperatorKind())

	cmp := f.filter(t, f.products, "-Price lt 0").(*semantic.BinaryOperatorNode)
	negate := cmp.Left().(*semantic.UnaryOperatorNode)
	assert.Equal(t, semantic.UnaryNegate, negate.OperatorKind())
	assert.Equal(t, "Edm.Double", negate.TypeReference().FullName())
}

func TestBindFilterErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		set   *edm.EntitySet
		input string
	}{
		{"unknown property", f.products, "Missing eq 1"},
		{"string compared with number", f.products, "Name gt 1"},
		{"and with non-boolean", f.products, "Price and true"},
		{"non-boolean filter", f.products, "Name"},
		{"collection as value", f.products, "Tags eq 'x'"},
		{"non-boolean lambda body", f.products, "Tags/any(t: t)"},
		{"lambda variable shadows $it", f.products, "Tags/any($it: true)"},
		{"lambda over single entity", f.products, "Category/any(c: true)"},
		{"unknown function", f.products, "frobnicate(Name)"},
		{"unknown model function", f.products, "Shop.Nope() eq 1"},
		{"wrong model function arity", f.products, "Shop.Discount() gt 1"},
		{"unknown cast type", f.products, "Shop.Missing/Name eq 'a'"},
		{"unrelated cast type", f.products, "Shop.Category/Name eq 'a'"},
		{"ordering entities", f.products, "Category gt null"},
		{"not on number", f.products, "not Price"},
		{"negate string", f.products, "-Name eq 'a'"},
		{"in list with property", f.products, "Name in (Name)"},
		{"in list type mismatch", f.products, "Name in (1)"},
		{"length of number", f.products, "length(Price) eq 1"},
		{"too many arguments", f.products, "tolower(Name, Name) eq 'a'"},
		{"property on collection", f.categories, "Products/Name eq 'a'"},
		{"property on primitive", f.products, "Name/Length eq 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.filterErr(t, tt.set, tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBind)
		})
	}
}

func TestBindOrderBy(t *testing.T) {
	f := newFixture(t)
	items, err := syntax.ParseOrderBy("Name desc, Category/Name", 0)
	require.NoError(t, err)

	clause, err := f.binder.BindOrderBy(f.products, items)
	require.NoError(t, err)
	require.Len(t, clause.Items(), 2)
	assert.Equal(t, semantic.Descending, clause.Items()[0].Direction)
	assert.Equal(t, semantic.Ascending, clause.Items()[1].Direction)
	assert.Equal(t, semantic.KindSingleValuePropertyAccess, clause.Items()[1].Expression.Kind())
	assert.Equal(t, "$it", clause.RangeVariable().Name())

	for _, input := range []string{"Category", "Tags", "Missing"} {
		items, err := syntax.ParseOrderBy(input, 0)
		require.NoError(t, err)
		_, err = f.binder.BindOrderBy(f.products, items)
		assert.ErrorIs(t, err, ErrBind, input)
	}
}

func TestBinderIsReusable(t *testing.T) {
	f := newFixture(t)
	ast, err := syntax.ParseFilter("Tags/any(t: t eq 'a')", 0)
	require.NoError(t, err)

	first, err := f.binder.BindFilter(f.products, ast)
	require.NoError(t, err)
	second, err := f.binder.BindFilter(f.products, ast)
	require.NoError(t, err)

	assert.NotSame(t, first.RangeVariable(), second.RangeVariable(), "each bind gets its own range variables")
	assert.Len(t, second.Expression().(*semantic.AnyNode).RangeVariables(), 2)
}
