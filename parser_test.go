package uriparser

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/nlstn/go-odata-uriparser/edm"
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
	CategoryID *uint
	Category   *Category `gorm:"foreignKey:CategoryID"`
	Tags       []string  `gorm:"serializer:json"`
}

func testModel(t *testing.T) *edm.Model {
	t.Helper()
	model, err := edm.NewBuilder("Shop").
		EntitySet("Products", &Product{}).
		EntitySet("Categories", &Category{}).
		Build()
	require.NoError(t, err)
	return model
}

func TestParseFilter(t *testing.T) {
	p := NewParser(testModel(t))

	filter, err := p.ParseFilter(context.Background(), "Products", "Price gt 10 and Tags/any(t: t eq 'new')")
	require.NoError(t, err)

	and, ok := filter.Expression().(*semantic.BinaryOperatorNode)
	require.True(t, ok)
	assert.Equal(t, semantic.BinaryAnd, and.OperatorKind())
	assert.Equal(t, semantic.KindAny, and.Right().Kind())
	assert.Equal(t, "Shop.Product", filter.ItemType().FullName())
}

func TestParseOrderBy(t *testing.T) {
	p := NewParser(testModel(t))

	orderBy, err := p.ParseOrderBy(context.Background(), "Products", "Category/Name, Price desc")
	require.NoError(t, err)
	require.Len(t, orderBy.Items(), 2)
	assert.Equal(t, semantic.KindSingleValuePropertyAccess, orderBy.Items()[0].Expression.Kind())
	assert.Equal(t, semantic.Descending, orderBy.Items()[1].Direction)
}

func TestParseErrors(t *testing.T) {
	p := NewParser(testModel(t))
	ctx := context.Background()

	_, err := p.ParseFilter(ctx, "Nope", "Price gt 1")
	assert.ErrorIs(t, err, ErrEntitySetNotFound)

	_, err = p.ParseFilter(ctx, "Products", "Price gt")
	assert.ErrorIs(t, err, ErrInvalidSyntax)
	assert.NotErrorIs(t, err, ErrInvalidQuery)

	_, err = p.ParseFilter(ctx, "Products", "Weight gt 1")
	assert.ErrorIs(t, err, ErrInvalidQuery)
	assert.NotErrorIs(t, err, ErrInvalidSyntax)
	assert.Contains(t, err.Error(), "Weight")

	_, err = p.ParseOrderBy(ctx, "Products", "Category")
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = p.ParseOrderBy(ctx, "Products", "Name sideways")
	assert.ErrorIs(t, err, ErrInvalidSyntax)
}

func TestParseMaxDepth(t *testing.T) {
	deep := strings.Repeat("(", 10) + "Price gt 1" + strings.Repeat(")", 10)

	_, err := NewParser(testModel(t)).ParseFilter(context.Background(), "Products", deep)
	require.NoError(t, err)

	_, err = NewParser(testModel(t), WithMaxDepth(5)).ParseFilter(context.Background(), "Products", deep)
	assert.ErrorIs(t, err, ErrInvalidSyntax)
}

func TestParseCachesTrees(t *testing.T) {
	ctx := context.Background()

	p := NewParser(testModel(t))
	first, err := p.ParseFilter(ctx, "Products", "Name eq 'a'")
	require.NoError(t, err)
	second, err := p.ParseFilter(ctx, "Products", "Name eq 'a'")
	require.NoError(t, err)
	assert.Same(t, first, second)

	other, err := p.ParseFilter(ctx, "Categories", "Name eq 'a'")
	require.NoError(t, err)
	assert.NotSame(t, first, other, "cache keys include the entity set")

	uncached := NewParser(testModel(t), WithCacheSize(0))
	first, err = uncached.ParseFilter(ctx, "Products", "Name eq 'a'")
	require.NoError(t, err)
	second, err = uncached.ParseFilter(ctx, "Products", "Name eq 'a'")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestParseErrorsAreNotCached(t *testing.T) {
	p := NewParser(testModel(t))
	for i := 0; i < 2; i++ {
		_, err := p.ParseFilter(context.Background(), "Products", "Weight gt 1")
		assert.ErrorIs(t, err, ErrInvalidQuery)
	}
	assert.Equal(t, 0, p.cache.len())
}

func TestParseQuery(t *testing.T) {
	p := NewParser(testModel(t))
	ctx := context.Background()

	q, err := p.ParseQuery(ctx, "Products", url.Values{
		"$filter":  {"Price lt 5"},
		"$orderby": {"Name"},
		"$top":     {"10"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Products", q.EntitySet.Name)
	require.NotNil(t, q.Filter)
	require.NotNil(t, q.OrderBy)

	q, err = p.ParseQuery(ctx, "Products", url.Values{"filter": {"Price lt 5"}})
	require.NoError(t, err)
	assert.NotNil(t, q.Filter, "options without '$' are accepted")
	assert.Nil(t, q.OrderBy)

	_, err = p.ParseQuery(ctx, "Products", url.Values{"$filter": {"Price lt 5", "Price gt 1"}})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = p.ParseQuery(ctx, "Products", url.Values{"$filter": {"Price lt 5"}, "filter": {"Price gt 1"}})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = p.ParseQuery(ctx, "Missing", url.Values{})
	assert.ErrorIs(t, err, ErrEntitySetNotFound)
}

func TestParserConcurrentUse(t *testing.T) {
	p := NewParser(testModel(t), WithCacheSize(4))
	filters := []string{
		"Price gt 1",
		"Name eq 'a'",
		"Tags/any(t: t eq 'x')",
		"Category/Name ne null",
		"Price add 1 lt 10",
		"not contains(Name, 'z')",
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16*len(filters))
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, f := range filters {
				if _, err := p.ParseFilter(context.Background(), "Products", f); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestParserWithObservability(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p := NewParser(testModel(t),
		WithLogger(logger),
		WithTracerProvider(tracenoop.NewTracerProvider()),
		WithMeterProvider(noop.NewMeterProvider()),
		WithQueryTextTracing(),
	)

	_, err := p.ParseFilter(context.Background(), "Products", "Price gt 1")
	require.NoError(t, err)
	_, err = p.ParseFilter(context.Background(), "Products", "Price gt")
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "Parsed query option")
	assert.Contains(t, out, "Rejected query option")
	assert.Contains(t, out, "odata.entity_set=Products")
}

func TestNotImplementedIsDistinct(t *testing.T) {
	err := &semantic.NotImplementedError{Kind: semantic.KindAll}
	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.False(t, errors.Is(err, ErrInvalidQuery))
	assert.False(t, errors.Is(err, ErrInvalidSyntax))
}
