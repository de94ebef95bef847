package edm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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
	CategoryID *uint
	Category   *Category `gorm:"foreignKey:CategoryID"`
	Tags       []string  `gorm:"serializer:json"`
	Secret     string    `odata:"-"`
}

type Person struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

type Employee struct {
	Person
	Salary float64
}

type NoKey struct {
	Name string
}

func buildTestModel(t *testing.T) *Model {
	t.Helper()
	model, err := NewBuilder("Shop").
		EntitySet("Products", &Product{}).
		EntitySet("Categories", &Category{}).
		Build()
	require.NoError(t, err)
	return model
}

func TestBuilderStructuralProperties(t *testing.T) {
	model := buildTestModel(t)

	products := model.FindEntitySet("Products")
	require.NotNil(t, products)
	product := products.Type
	assert.Equal(t, "Shop.Product", product.FullName())
	assert.Equal(t, []string{"ID"}, product.Keys)
	assert.Equal(t, "id", product.KeyColumn())

	tests := []struct {
		name     string
		wantType string
		nullable bool
		column   string
	}{
		{"ID", "Edm.Int64", false, "id"},
		{"Name", "Edm.String", false, "name"},
		{"Price", "Edm.Double", true, "price"},
		{"CategoryID", "Edm.Int64", true, "category_id"},
		{"Tags", "Collection(Edm.String)", false, "tags"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prop := product.FindProperty(tt.name)
			require.NotNil(t, prop)
			assert.Equal(t, tt.wantType, prop.Type.FullName())
			assert.Equal(t, tt.nullable, prop.Type.IsNullable())
			assert.Equal(t, tt.column, prop.Column)
		})
	}

	assert.Nil(t, product.FindProperty("Secret"), "odata:\"-\" fields are excluded")
}

func TestBuilderNavigationProperties(t *testing.T) {
	model := buildTestModel(t)
	products := model.FindEntitySet("Products")
	categories := model.FindEntitySet("Categories")
	require.NotNil(t, products)
	require.NotNil(t, categories)

	category := products.Type.FindNavigation("Category")
	require.NotNil(t, category)
	assert.False(t, category.Collection)
	assert.True(t, category.Nullable)
	assert.Same(t, categories.Type, category.Target)
	assert.Equal(t, "category_id", category.SourceColumn)
	assert.Equal(t, "id", category.TargetColumn)
	assert.Same(t, categories, products.NavigationTarget(category))

	productsNav := categories.Type.FindNavigation("Products")
	require.NotNil(t, productsNav)
	assert.True(t, productsNav.Collection)
	assert.Same(t, products.Type, productsNav.Target)
	assert.Equal(t, "id", productsNav.SourceColumn)
	assert.Equal(t, "category_id", productsNav.TargetColumn)
	assert.Same(t, products, categories.NavigationTarget(productsNav))
}

func TestBuilderDerivedAndOpenTypes(t *testing.T) {
	model, err := NewBuilder("HR").
		EntitySet("People", &Person{}, OpenType()).
		EntityType(&Employee{}, BaseType(&Person{})).
		Build()
	require.NoError(t, err)

	person := model.FindEntityType("Person")
	employee := model.FindEntityType("HR.Employee")
	require.NotNil(t, person)
	require.NotNil(t, employee)

	assert.Same(t, person, employee.BaseType)
	assert.True(t, employee.IsAssignableTo(person))
	assert.False(t, person.IsAssignableTo(employee))
	assert.True(t, person.IsOpen())
	assert.True(t, employee.IsOpen(), "open base makes derived type open")
	assert.NotNil(t, employee.FindProperty("Salary"))
	assert.NotNil(t, employee.FindProperty("Name"))
	assert.Same(t, model.FindEntitySet("People"), model.EntitySetFor(person))
}

func TestBuilderRejectsTypeWithoutKey(t *testing.T) {
	_, err := NewBuilder("Test").EntitySet("Things", &NoKey{}).Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, errNoKey)
}

func TestModelRejectsDuplicates(t *testing.T) {
	model := NewModel("Test")
	thing := &EntityType{Name: "Thing", Keys: []string{"ID"}}
	require.NoError(t, model.AddEntityType(thing))
	assert.ErrorIs(t, model.AddEntityType(&EntityType{Name: "Thing"}), errDuplicateEntityType)

	require.NoError(t, model.AddEntitySet(NewEntitySet("Things", thing)))
	assert.ErrorIs(t, model.AddEntitySet(NewEntitySet("Things", thing)), errDuplicateEntitySet)

	assert.ErrorIs(t, model.AddFunction(&Function{Name: "f"}), errInvalidFunction)
}

func TestModelFunctions(t *testing.T) {
	model := NewModel("Test")
	require.NoError(t, model.AddFunction(&Function{Name: "Top", ReturnType: Int32(false)}))
	require.NoError(t, model.AddFunction(&Function{
		Name:       "Top",
		Parameters: []Parameter{{Name: "n", Type: Int32(false)}},
		ReturnType: Int32(false),
	}))

	assert.Len(t, model.FindFunctions("Test.Top"), 2)
	assert.Empty(t, model.FindFunctions("Top"))
}
