// Package gormfilter translates bound $filter and $orderby clauses into SQL
// conditions applied to GORM queries.
//
// Navigation properties become correlated subqueries, any/all become EXISTS
// subqueries and collection-valued properties stored as JSON are expanded
// with json_each (SQLite) or jsonb_array_elements_text (PostgreSQL). Node
// kinds without a SQL meaning, such as open properties, type casts and
// entity-valued function calls, fail with semantic.ErrNotImplemented.
package gormfilter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nlstn/go-odata-uriparser/edm"
	"github.com/nlstn/go-odata-uriparser/internal/observability"
	"github.com/nlstn/go-odata-uriparser/semantic"
)

// Dialects with dedicated SQL. Any other dialect is translated as SQLite.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// ErrUnsupported is returned for constructs the translator recognizes but
// cannot express in SQL, such as isof or model functions.
var ErrUnsupported = errors.New("gormfilter: unsupported expression")

// Option configures a Translator.
type Option func(*Translator)

// WithLogger sets the logger used for debug output. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithTracerProvider enables tracing of translations.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(t *Translator) {
		t.obsOpts = append(t.obsOpts, observability.WithTracerProvider(tp))
	}
}

// WithMeterProvider enables translation metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(t *Translator) {
		t.obsOpts = append(t.obsOpts, observability.WithMeterProvider(mp))
	}
}

// Translator converts semantic clauses to SQL. It holds no per-query state
// and is safe for concurrent use.
type Translator struct {
	logger  *slog.Logger
	obsOpts []observability.Option
	obs     *observability.Config
}

// New creates a Translator.
func New(opts ...Option) *Translator {
	t := &Translator{logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	t.obs = observability.NewConfig(t.obsOpts...)
	return t
}

var defaultTranslator = New()

// Apply adds the filter's condition to db using a default Translator.
func Apply(db *gorm.DB, filter *semantic.FilterClause) (*gorm.DB, error) {
	return defaultTranslator.Apply(db, filter)
}

// ApplyOrderBy adds the ordering to db using a default Translator.
func ApplyOrderBy(db *gorm.DB, orderBy *semantic.OrderByClause) (*gorm.DB, error) {
	return defaultTranslator.ApplyOrderBy(db, orderBy)
}

// Apply adds the filter's condition to db. A nil filter leaves db unchanged.
func (t *Translator) Apply(db *gorm.DB, filter *semantic.FilterClause) (*gorm.DB, error) {
	if filter == nil {
		return db, nil
	}
	dialect := Dialect(db)
	var where string
	var args []interface{}
	err := t.instrument(db, filter.RangeVariable(), dialect, func() (err error) {
		where, args, err = t.Where(dialect, filter)
		return err
	})
	if err != nil {
		return db, err
	}
	return db.Where(where, args...), nil
}

// ApplyOrderBy adds the ordering to db. A nil clause leaves db unchanged.
func (t *Translator) ApplyOrderBy(db *gorm.DB, orderBy *semantic.OrderByClause) (*gorm.DB, error) {
	if orderBy == nil || len(orderBy.Items()) == 0 {
		return db, nil
	}
	dialect := Dialect(db)
	var expr clause.Expr
	err := t.instrument(db, orderBy.RangeVariable(), dialect, func() (err error) {
		expr.SQL, expr.Vars, err = t.OrderBy(dialect, orderBy)
		return err
	})
	if err != nil {
		return db, err
	}
	expr.WithoutParentheses = true
	return db.Clauses(clause.OrderBy{Expression: expr}), nil
}

// Where returns the SQL condition and its arguments for filter.
func (t *Translator) Where(dialect string, filter *semantic.FilterClause) (string, []interface{}, error) {
	v, err := newSQLVisitor(dialect, filter.RangeVariable())
	if err != nil {
		return "", nil, err
	}
	f, err := v.visit(filter.Expression())
	if err != nil {
		return "", nil, err
	}
	return f.sql, f.args, nil
}

// OrderBy returns the comma separated ORDER BY list for orderBy.
func (t *Translator) OrderBy(dialect string, orderBy *semantic.OrderByClause) (string, []interface{}, error) {
	v, err := newSQLVisitor(dialect, orderBy.RangeVariable())
	if err != nil {
		return "", nil, err
	}

	items := orderBy.Items()
	parts := make([]string, 0, len(items))
	var args []interface{}
	for _, item := range items {
		f, err := v.visit(item.Expression)
		if err != nil {
			return "", nil, err
		}
		if item.Direction == semantic.Descending {
			f.sql += " DESC"
		}
		parts = append(parts, f.sql)
		args = append(args, f.args...)
	}
	return strings.Join(parts, ", "), args, nil
}

// instrument runs translate inside a translate span and records its
// duration and outcome.
func (t *Translator) instrument(db *gorm.DB, it semantic.RangeVariable, dialect string, translate func() error) error {
	ctx := context.Background()
	if db.Statement != nil && db.Statement.Context != nil {
		ctx = db.Statement.Context
	}
	entitySet := rangeSetName(it)

	start := time.Now()
	ctx, span := t.obs.Tracer().StartTranslate(ctx, entitySet, dialect)
	defer span.End()
	timing := observability.StartServerTimingWithDesc(ctx, "translate", "Translate to "+dialect)
	defer timing.Stop()

	err := translate()
	duration := time.Since(start)
	logger := observability.LoggerWithTrace(ctx, t.logger)
	if err != nil {
		t.obs.Tracer().RecordError(span, err)
		logger.Debug("Translation failed",
			slog.String(observability.LogFieldEntitySet, entitySet),
			slog.String(observability.LogFieldError, err.Error()))
		return err
	}

	t.obs.Metrics().RecordTranslate(ctx, dialect, duration)
	logger.Debug("Translated clause",
		slog.String(observability.LogFieldEntitySet, entitySet),
		slog.String("dialect", dialect),
		slog.Float64(observability.LogFieldDuration, float64(duration.Microseconds())/1000))
	return nil
}

// Dialect returns the dialect name of db's dialector.
func Dialect(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return DialectSQLite
	}
	return db.Dialector.Name()
}

func rangeSetName(it semantic.RangeVariable) string {
	if e, ok := it.(*semantic.EntityRangeVariable); ok {
		if set := e.NavigationSource(); set != nil {
			return set.Name
		}
	}
	return ""
}

// rootTable returns the table of the entities a clause's range variable
// iterates over.
func rootTable(it semantic.RangeVariable) (*edm.EntityType, error) {
	e, ok := it.(*semantic.EntityRangeVariable)
	if !ok || e.EntityTypeReference() == nil || e.EntityTypeReference().Type == nil {
		return nil, fmt.Errorf("%w: clause does not range over entities", ErrUnsupported)
	}
	t := e.EntityTypeReference().Type
	if set := e.NavigationSource(); set != nil && set.Type != nil {
		t = set.Type
	}
	if t.Table == "" {
		return nil, fmt.Errorf("%w: entity type %s has no table", ErrUnsupported, t.FullName())
	}
	return t, nil
}
