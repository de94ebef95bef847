package gormfilter_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	uriparser "github.com/nlstn/go-odata-uriparser"
	"github.com/nlstn/go-odata-uriparser/edm"
	"github.com/nlstn/go-odata-uriparser/gormfilter"
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

func newParser(t *testing.T) *uriparser.Parser {
	t.Helper()
	model, err := edm.NewBuilder("Shop").
		EntitySet("Products", &Product{}).
		EntitySet("Categories", &Category{}).
		EntitySet("People", &Person{}, edm.OpenType()).
		EntityType(&Employee{}, edm.BaseType(&Person{})).
		Build()
	require.NoError(t, err)

	product := model.FindEntityType("Shop.Product")
	require.NoError(t, model.AddFunction(&edm.Function{Name: "BestSeller", ReturnType: product.Reference(true)}))
	return uriparser.NewParser(model)
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Category{}, &Product{}))

	books := Category{ID: 1, Name: "Books"}
	games := Category{ID: 2, Name: "Games"}
	require.NoError(t, db.Create([]*Category{&books, &games}).Error)

	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	products := []*Product{
		{ID: 1, Name: "Go Book", Price: 30, Stock: 5, CategoryID: &books.ID, Tags: []string{"new", "paper"}, CreatedAt: day(2024, 1, 10)},
		{ID: 2, Name: "Rust Book", Price: 45.5, Stock: 0, CategoryID: &books.ID, Tags: []string{"paper"}, CreatedAt: day(2023, 6, 1)},
		{ID: 3, Name: "Chess", Price: 20, Stock: 12, CategoryID: &games.ID, Tags: []string{}, CreatedAt: day(2024, 3, 5)},
		{ID: 4, Name: "Loose_Item", Price: 5, Stock: 1, Tags: []string{"new"}, CreatedAt: day(2022, 12, 31)},
	}
	require.NoError(t, db.Create(products).Error)
	return db
}

func names(products []Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func TestApplyFilter(t *testing.T) {
	db := setupDB(t)
	p := newParser(t)

	tests := []struct {
		filter string
		want   []string
	}{
		{"Price gt 25", []string{"Go Book", "Rust Book"}},
		{"Category/Name eq 'Books'", []string{"Go Book", "Rust Book"}},
		{"Category eq null", []string{"Loose_Item"}},
		{"Category ne null and Stock gt 0", []string{"Go Book", "Chess"}},
		{"Tags/any(t: t eq 'new')", []string{"Go Book", "Loose_Item"}},
		{"Tags/any()", []string{"Go Book", "Rust Book", "Loose_Item"}},
		{"Tags/all(t: t eq 'paper')", []string{"Rust Book", "Chess"}},
		{"contains(Name, '_')", []string{"Loose_Item"}},
		{"startswith(Name, 'Go')", []string{"Go Book"}},
		{"endswith(Name, 'Book')", []string{"Go Book", "Rust Book"}},
		{"Name in ('Chess', 'Go Book')", []string{"Go Book", "Chess"}},
		{"Price add 5 ge 35", []string{"Go Book", "Rust Book"}},
		{"Stock mod 2 eq 1", []string{"Go Book", "Loose_Item"}},
		{"Price div 2 gt 20", []string{"Rust Book"}},
		{"-Price lt -40", []string{"Rust Book"}},
		{"not (Price lt 10)", []string{"Go Book", "Rust Book", "Chess"}},
		{"year(CreatedAt) eq 2024", []string{"Go Book", "Chess"}},
		{"CreatedAt lt 2023-01-01", []string{"Loose_Item"}},
		{"length(Name) eq 5", []string{"Chess"}},
		{"tolower(Name) eq 'chess'", []string{"Chess"}},
		{"indexof(Name, 'Book') eq 3", []string{"Go Book"}},
		{"substring(Name, 5) eq 'Book'", []string{"Rust Book"}},
		{"concat(Name, '!') eq 'Chess!'", []string{"Chess"}},
		{"round(Price) eq 46", []string{"Rust Book"}},
		{"floor(Price) eq 45", []string{"Rust Book"}},
		{"ceiling(Price) eq 46", []string{"Rust Book"}},
		{"contains(Name, Category/Name)", []string{}},
		{"Category/Products/any(p: p/Stock eq 0)", []string{"Go Book", "Rust Book"}},
		{"Category/Products/all(p: p/Price gt 10)", []string{"Go Book", "Rust Book", "Chess", "Loose_Item"}},
		{"Tags/any(t: t eq Category/Name) or Stock eq 12", []string{"Chess"}},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			filter, err := p.ParseFilter(context.Background(), "Products", tt.filter)
			require.NoError(t, err)

			query, err := gormfilter.Apply(db.Model(&Product{}), filter)
			require.NoError(t, err)

			var got []Product
			require.NoError(t, query.Order("id").Find(&got).Error)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestApplyFilterFromCategories(t *testing.T) {
	db := setupDB(t)
	p := newParser(t)

	filter, err := p.ParseFilter(context.Background(), "Categories", "Products/any(p: p/Tags/any(t: t eq 'new') and p/Stock gt 1)")
	require.NoError(t, err)

	query, err := gormfilter.Apply(db.Model(&Category{}), filter)
	require.NoError(t, err)

	var got []Category
	require.NoError(t, query.Order("id").Find(&got).Error)
	require.Len(t, got, 1)
	assert.Equal(t, "Books", got[0].Name)
}

func TestApplyFilterAllWithNullElements(t *testing.T) {
	db := setupDB(t)
	p := newParser(t)
	require.NoError(t, db.Exec(`UPDATE products SET tags = '["paper",null]' WHERE id = 2`).Error)

	filter, err := p.ParseFilter(context.Background(), "Products", "Tags/all(t: t eq 'paper')")
	require.NoError(t, err)

	query, err := gormfilter.Apply(db.Model(&Product{}), filter)
	require.NoError(t, err)

	var got []Product
	require.NoError(t, query.Order("id").Find(&got).Error)
	assert.Equal(t, []string{"Chess"}, names(got))
}

func TestApplyOrderBy(t *testing.T) {
	db := setupDB(t)
	p := newParser(t)

	orderBy, err := p.ParseOrderBy(context.Background(), "Products", "Category/Name desc, Price")
	require.NoError(t, err)

	query, err := gormfilter.ApplyOrderBy(db.Model(&Product{}), orderBy)
	require.NoError(t, err)

	var got []Product
	require.NoError(t, query.Find(&got).Error)
	assert.Equal(t, []string{"Chess", "Go Book", "Rust Book", "Loose_Item"}, names(got))
}

func TestApplyNilClauses(t *testing.T) {
	db := setupDB(t)

	query, err := gormfilter.Apply(db.Model(&Product{}), nil)
	require.NoError(t, err)
	query, err = gormfilter.ApplyOrderBy(query, nil)
	require.NoError(t, err)

	var count int64
	require.NoError(t, query.Count(&count).Error)
	assert.Equal(t, int64(4), count)
}

func TestWhereSQL(t *testing.T) {
	p := newParser(t)
	tr := gormfilter.New()

	tests := []struct {
		dialect string
		filter  string
		sql     string
		args    []interface{}
	}{
		{
			gormfilter.DialectSQLite,
			"Category/Name eq 'Books'",
			`((SELECT "n1"."name" FROM "categories" AS "n1" WHERE "n1"."id" = "products"."category_id") = ?)`,
			[]interface{}{"Books"},
		},
		{
			gormfilter.DialectSQLite,
			"Category eq null",
			`NOT EXISTS (SELECT 1 FROM "categories" AS "n1" WHERE "n1"."id" = "products"."category_id")`,
			nil,
		},
		{
			gormfilter.DialectSQLite,
			"Tags/any(t: t eq 'new')",
			`EXISTS (SELECT 1 FROM json_each("products"."tags") AS "j1" WHERE ("j1"."value" = ?))`,
			[]interface{}{"new"},
		},
		{
			gormfilter.DialectPostgres,
			"Tags/any(t: t eq 'new')",
			`EXISTS (SELECT 1 FROM jsonb_array_elements_text(("products"."tags")::jsonb) AS "j1"(value) WHERE ("j1"."value" = ?))`,
			[]interface{}{"new"},
		},
		{
			gormfilter.DialectSQLite,
			"Tags/all(t: t eq 'new')",
			`NOT EXISTS (SELECT 1 FROM json_each("products"."tags") AS "j1" WHERE NOT (IFNULL((("j1"."value" = ?)), 0)))`,
			[]interface{}{"new"},
		},
		{
			gormfilter.DialectPostgres,
			"Tags/all(t: t eq 'new')",
			`NOT EXISTS (SELECT 1 FROM jsonb_array_elements_text(("products"."tags")::jsonb) AS "j1"(value) WHERE NOT (COALESCE((("j1"."value" = ?)), FALSE)))`,
			[]interface{}{"new"},
		},
		{
			gormfilter.DialectPostgres,
			"Stock mod 2 eq 1",
			`(MOD("products"."stock", ?) = ?)`,
			[]interface{}{int32(2), int32(1)},
		},
		{
			gormfilter.DialectPostgres,
			"year(CreatedAt) eq 2024",
			`((EXTRACT(YEAR FROM "products"."created_at")::INT) = ?)`,
			[]interface{}{int32(2024)},
		},
		{
			gormfilter.DialectSQLite,
			"contains(Name, '50%')",
			`"products"."name" LIKE ? ESCAPE '\'`,
			[]interface{}{`%50\%%`},
		},
		{
			gormfilter.DialectSQLite,
			"Stock eq null or Name ne null",
			`("products"."stock" IS NULL OR "products"."name" IS NOT NULL)`,
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.dialect+" "+tt.filter, func(t *testing.T) {
			filter, err := p.ParseFilter(context.Background(), "Products", tt.filter)
			require.NoError(t, err)

			sql, args, err := tr.Where(tt.dialect, filter)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, sql)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestWhereUnsupported(t *testing.T) {
	p := newParser(t)
	tr := gormfilter.New()

	tests := []struct {
		set    string
		filter string
		kind   semantic.Kind
	}{
		{"People", "Nickname eq 'x'", semantic.KindSingleValueOpenPropertyAccess},
		{"People", "Shop.Employee/Salary gt 1", semantic.KindSingleEntityCast},
		{"Products", "Shop.BestSeller()/Name eq 'x'", semantic.KindSingleEntityFunctionCall},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			filter, err := p.ParseFilter(context.Background(), tt.set, tt.filter)
			require.NoError(t, err)

			_, _, err = tr.Where(gormfilter.DialectSQLite, filter)
			require.ErrorIs(t, err, semantic.ErrNotImplemented)
			kind, ok := semantic.NotImplementedKind(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, kind)
		})
	}

	filter, err := p.ParseFilter(context.Background(), "People", "isof(Shop.Employee)")
	require.NoError(t, err)
	_, _, err = tr.Where(gormfilter.DialectSQLite, filter)
	assert.ErrorIs(t, err, gormfilter.ErrUnsupported)
	assert.NotErrorIs(t, err, semantic.ErrNotImplemented)
}

func TestPostgresDryRun(t *testing.T) {
	db, err := gorm.Open(postgres.Open("host=localhost user=odata dbname=odata sslmode=disable"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	p := newParser(t)
	filter, err := p.ParseFilter(context.Background(), "Products", "Tags/any(t: t eq 'new') and Price gt 10")
	require.NoError(t, err)
	orderBy, err := p.ParseOrderBy(context.Background(), "Products", "Name desc")
	require.NoError(t, err)

	query, err := gormfilter.Apply(db.Model(&Product{}), filter)
	require.NoError(t, err)
	query, err = gormfilter.ApplyOrderBy(query, orderBy)
	require.NoError(t, err)

	var products []Product
	stmt := query.Find(&products).Statement
	sql := stmt.SQL.String()
	assert.Contains(t, sql, "jsonb_array_elements_text")
	assert.Contains(t, sql, "$1")
	assert.Contains(t, sql, `ORDER BY "products"."name" DESC`)
	assert.Equal(t, []interface{}{"new", int32(10)}, stmt.Vars[:2])
}

func TestTranslatorObservability(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tr := gormfilter.New(
		gormfilter.WithLogger(logger),
		gormfilter.WithTracerProvider(tracenoop.NewTracerProvider()),
		gormfilter.WithMeterProvider(noop.NewMeterProvider()),
	)

	db := setupDB(t)
	p := newParser(t)
	filter, err := p.ParseFilter(context.Background(), "Products", "Price gt 1")
	require.NoError(t, err)

	_, err = tr.Apply(db.Model(&Product{}).WithContext(context.Background()), filter)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Translated clause")
	assert.Contains(t, buf.String(), "odata.entity_set=Products")
}
