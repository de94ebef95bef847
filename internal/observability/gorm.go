package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	gormSpanKey             = "uriparser:gorm:span"
	gormStartTimeKey        = "uriparser:gorm:start"
	gormTimingStartKey      = "uriparser:gorm:timing_start"
	gormTimingCallbacksName = "uriparser_server_timing"
)

// RegisterGORMCallbacks registers GORM callbacks tracing the read queries
// produced from translated filters. It does nothing unless a tracer provider
// is configured and detailed database tracing is enabled.
func RegisterGORMCallbacks(db *gorm.DB, cfg *Config) error {
	if cfg == nil || cfg.TracerProvider == nil || !cfg.EnableDetailedDBTracing {
		return nil
	}

	tracer := cfg.Tracer()

	if err := db.Callback().Query().Before("gorm:query").Register("uriparser:before_query", beforeQuery(tracer, "db.query")); err != nil {
		return err
	}
	if err := db.Callback().Query().After("gorm:query").Register("uriparser:after_query", afterQuery(tracer, cfg, "SELECT")); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("uriparser:before_row", beforeQuery(tracer, "db.row")); err != nil {
		return err
	}
	if err := db.Callback().Row().After("gorm:row").Register("uriparser:after_row", afterQuery(tracer, cfg, "ROW")); err != nil {
		return err
	}
	return nil
}

// RegisterServerTimingCallbacks registers GORM callbacks adding database
// time to the request's DBTimeAccumulator, reported as the "db" metric of
// the Server-Timing header. It is independent of tracing.
func RegisterServerTimingCallbacks(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register(gormTimingCallbacksName+":before_query", beforeTiming); err != nil {
		return err
	}
	if err := db.Callback().Query().After("gorm:query").Register(gormTimingCallbacksName+":after_query", afterTiming); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register(gormTimingCallbacksName+":before_row", beforeTiming); err != nil {
		return err
	}
	if err := db.Callback().Row().After("gorm:row").Register(gormTimingCallbacksName+":after_row", afterTiming); err != nil {
		return err
	}
	return nil
}

func beforeTiming(db *gorm.DB) {
	db.InstanceSet(gormTimingStartKey, time.Now())
}

func afterTiming(db *gorm.DB) {
	startTimeVal, ok := db.InstanceGet(gormTimingStartKey)
	if !ok {
		return
	}
	startTime, ok := startTimeVal.(time.Time)
	if !ok {
		return
	}
	if db.Statement != nil && db.Statement.Context != nil {
		AddDBTime(db.Statement.Context, time.Since(startTime))
	}
}

func beforeQuery(tracer *Tracer, spanName string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, span := tracer.StartSpan(ctx, spanName, attribute.String("db.system", db.Dialector.Name()))
		db.Statement.Context = ctx
		db.InstanceSet(gormSpanKey, span)
		db.InstanceSet(gormStartTimeKey, time.Now())
	}
}

func afterQuery(tracer *Tracer, cfg *Config, operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		spanVal, ok := db.InstanceGet(gormSpanKey)
		if !ok {
			return
		}
		span, ok := spanVal.(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		if db.Statement != nil {
			if table := db.Statement.Table; table != "" {
				span.SetAttributes(attribute.String("db.sql.table", table))
			}
			span.SetAttributes(attribute.Int64("db.rows_affected", db.RowsAffected))
		}
		tracer.RecordError(span, db.Error)

		if startTimeVal, ok := db.InstanceGet(gormStartTimeKey); ok {
			if startTime, ok := startTimeVal.(time.Time); ok {
				cfg.Metrics().RecordDBQuery(db.Statement.Context, operation, time.Since(startTime))
			}
		}
	}
}
