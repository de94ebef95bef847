// Package observability provides OpenTelemetry-based instrumentation for
// query parsing and translation.
//
// All observability features are opt-in. When not configured, no-op
// implementations are used.
package observability

import "go.opentelemetry.io/otel/attribute"

// Instrumentation identity constants
const (
	// TracerName is the instrumentation name for tracing.
	TracerName = "github.com/nlstn/go-odata-uriparser"
	// MeterName is the instrumentation name for metrics.
	MeterName = "github.com/nlstn/go-odata-uriparser"
)

// Semantic attribute keys following OpenTelemetry conventions.
const (
	AttrEntitySet   = "odata.entity_set"
	AttrQueryOption = "odata.query.option"
	AttrQueryText   = "odata.query.text"
	AttrCacheHit    = "odata.query.cache_hit"
	AttrNodeKind    = "odata.node.kind"
	AttrDialect     = "db.system"
	AttrErrorType   = "error.type"
)

// Query options that can be parsed.
const (
	OptionFilter  = "$filter"
	OptionOrderBy = "$orderby"
)

// Error types for the error.type attribute.
const (
	ErrorTypeSyntax      = "syntax"
	ErrorTypeBind        = "bind"
	ErrorTypeUnsupported = "unsupported"
	ErrorTypeNotFound    = "not_found"
)

// Log field keys for structured logging with trace context.
const (
	LogFieldEntitySet = "odata.entity_set"
	LogFieldOption    = "odata.query.option"
	LogFieldTraceID   = "trace_id"
	LogFieldSpanID    = "span_id"
	LogFieldDuration  = "duration_ms"
	LogFieldError     = "error"
)

// EntitySetAttr creates an attribute for the entity set name.
func EntitySetAttr(name string) attribute.KeyValue {
	return attribute.String(AttrEntitySet, name)
}

// QueryOptionAttr creates an attribute for the query option being parsed.
func QueryOptionAttr(option string) attribute.KeyValue {
	return attribute.String(AttrQueryOption, option)
}

// QueryTextAttr creates an attribute for the raw query option text.
func QueryTextAttr(text string) attribute.KeyValue {
	return attribute.String(AttrQueryText, text)
}

// CacheHitAttr creates an attribute recording whether a parse was served from cache.
func CacheHitAttr(hit bool) attribute.KeyValue {
	return attribute.Bool(AttrCacheHit, hit)
}

// NodeKindAttr creates an attribute for the kind of a semantic node.
func NodeKindAttr(kind string) attribute.KeyValue {
	return attribute.String(AttrNodeKind, kind)
}

// DialectAttr creates an attribute for the SQL dialect.
func DialectAttr(dialect string) attribute.KeyValue {
	return attribute.String(AttrDialect, dialect)
}

// ErrorTypeAttr creates an attribute for a classified error.
func ErrorTypeAttr(errorType string) attribute.KeyValue {
	return attribute.String(AttrErrorType, errorType)
}
