package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the parser metric instruments.
type Metrics struct {
	parseDuration     metric.Float64Histogram
	parseCount        metric.Int64Counter
	cacheHits         metric.Int64Counter
	translateDuration metric.Float64Histogram
	dbQueryDuration   metric.Float64Histogram
	errorCount        metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with the given MeterProvider.
func NewMetrics(mp metric.MeterProvider) *Metrics {
	meter := mp.Meter(MeterName)
	m := &Metrics{}

	// Instrument creation only fails on invalid parameters; fall back to an
	// undescribed instrument so recording never has to nil-check.
	var err error

	m.parseDuration, err = meter.Float64Histogram(
		"odata.query.parse.duration",
		metric.WithDescription("Duration of parsing and binding a query option in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.parseDuration, _ = meter.Float64Histogram("odata.query.parse.duration")
	}

	m.parseCount, err = meter.Int64Counter(
		"odata.query.parse.count",
		metric.WithDescription("Total number of parsed query options"),
		metric.WithUnit("{option}"),
	)
	if err != nil {
		m.parseCount, _ = meter.Int64Counter("odata.query.parse.count")
	}

	m.cacheHits, err = meter.Int64Counter(
		"odata.query.cache.hits",
		metric.WithDescription("Number of query options served from the parse cache"),
		metric.WithUnit("{option}"),
	)
	if err != nil {
		m.cacheHits, _ = meter.Int64Counter("odata.query.cache.hits")
	}

	m.translateDuration, err = meter.Float64Histogram(
		"odata.query.translate.duration",
		metric.WithDescription("Duration of translating a semantic tree to SQL in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.translateDuration, _ = meter.Float64Histogram("odata.query.translate.duration")
	}

	m.dbQueryDuration, err = meter.Float64Histogram(
		"odata.db.query.duration",
		metric.WithDescription("Duration of database queries in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.dbQueryDuration, _ = meter.Float64Histogram("odata.db.query.duration")
	}

	m.errorCount, err = meter.Int64Counter(
		"odata.query.errors",
		metric.WithDescription("Total number of rejected query options"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.errorCount, _ = meter.Int64Counter("odata.query.errors")
	}

	return m
}

// RecordParse records a completed parse of one query option.
func (m *Metrics) RecordParse(ctx context.Context, entitySet, option string, duration time.Duration, cacheHit bool) {
	attrs := metric.WithAttributes(EntitySetAttr(entitySet), QueryOptionAttr(option))
	m.parseDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	m.parseCount.Add(ctx, 1, attrs)
	if cacheHit {
		m.cacheHits.Add(ctx, 1, attrs)
	}
}

// RecordTranslate records the translation of a tree to SQL.
func (m *Metrics) RecordTranslate(ctx context.Context, dialect string, duration time.Duration) {
	m.translateDuration.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(DialectAttr(dialect)))
}

// RecordDBQuery records metrics for a database query.
func (m *Metrics) RecordDBQuery(ctx context.Context, operation string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("db.operation", operation))
	m.dbQueryDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// RecordError records a rejected query option.
func (m *Metrics) RecordError(ctx context.Context, entitySet, option, errorType string) {
	attrs := metric.WithAttributes(
		EntitySetAttr(entitySet),
		QueryOptionAttr(option),
		ErrorTypeAttr(errorType),
	)
	m.errorCount.Add(ctx, 1, attrs)
}
