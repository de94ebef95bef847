package uriparser

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/nlstn/go-odata-uriparser/internal/observability"
)

// Option configures a Parser.
type Option func(*config)

type config struct {
	logger    *slog.Logger
	maxDepth  int
	cacheSize int
	obsOpts   []observability.Option
}

// WithLogger sets the logger used for debug output. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxDepth bounds the nesting depth of parsed expressions. Values below
// one select the default depth.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// WithCacheSize sets how many bound clauses are cached. Zero disables caching.
func WithCacheSize(size int) Option {
	return func(c *config) {
		c.cacheSize = size
	}
}

// WithTracerProvider enables tracing of parse operations.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) {
		c.obsOpts = append(c.obsOpts, observability.WithTracerProvider(tp))
	}
}

// WithMeterProvider enables parse metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) {
		c.obsOpts = append(c.obsOpts, observability.WithMeterProvider(mp))
	}
}

// WithQueryTextTracing records raw query option text on parse spans.
func WithQueryTextTracing() Option {
	return func(c *config) {
		c.obsOpts = append(c.obsOpts, observability.WithQueryTextTracing())
	}
}
