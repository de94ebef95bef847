package observability

import (
	"net/http"

	servertiming "github.com/mitchellh/go-server-timing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPMiddleware returns an HTTP middleware that instruments requests with
// tracing and, when enabled, the Server-Timing header.
func HTTPMiddleware(cfg *Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		h := next
		if cfg.ServerTimingEnabled() {
			h = servertiming.Middleware(h, nil)
		}
		if cfg == nil || cfg.TracerProvider == nil {
			return h
		}
		return otelhttp.NewHandler(h, "odata.http",
			otelhttp.WithTracerProvider(cfg.TracerProvider),
			otelhttp.WithMeterProvider(cfg.MeterProvider),
		)
	}
}
