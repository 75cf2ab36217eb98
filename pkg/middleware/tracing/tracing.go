// Package tracing starts an OpenTelemetry server span for every request.
package tracing

import (
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/HarshaM0211/jira-software/pkg/middleware/metrics"
	"github.com/HarshaM0211/jira-software/pkg/middleware/requestid"
	"github.com/HarshaM0211/jira-software/pkg/server/router"
)

// Config holds configuration for the tracing middleware.
type Config struct {
	// TracerName identifies the tracer, "http-server" when empty.
	TracerName string

	// Provider defaults to the global tracer provider.
	Provider trace.TracerProvider

	// Propagator defaults to the global text map propagator.
	Propagator propagation.TextMapPropagator

	// SpanNameFormatter formats the span name from the request.
	// If nil, defaults to "HTTP {method} {normalized path}".
	SpanNameFormatter func(router.Context) string

	// ExcludedPathPrefixes disables tracing for matching path prefixes.
	ExcludedPathPrefixes []string
}

// Tracing creates middleware that extracts the remote trace context, starts
// a server span around the handler and stores it in the request context so
// port and cache spans become its children.
func Tracing(cfg Config) router.MiddlewareFunc {
	if cfg.TracerName == "" {
		cfg.TracerName = "http-server"
	}
	if cfg.Provider == nil {
		cfg.Provider = otel.GetTracerProvider()
	}
	if cfg.Propagator == nil {
		cfg.Propagator = otel.GetTextMapPropagator()
	}
	if cfg.SpanNameFormatter == nil {
		cfg.SpanNameFormatter = defaultSpanNameFormatter
	}
	tracer := cfg.Provider.Tracer(cfg.TracerName)

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			req := c.Request()
			if excluded(req.URL.Path, cfg.ExcludedPathPrefixes) {
				return next(c)
			}

			ctx := cfg.Propagator.Extract(req.Context(), propagation.HeaderCarrier(req.Header))
			ctx, span := tracer.Start(ctx, cfg.SpanNameFormatter(c),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPMethod(req.Method),
					semconv.HTTPTarget(req.URL.RequestURI()),
					semconv.HTTPRoute(metrics.NormalizePath(req.URL.Path)),
					attribute.String("http.user_agent", req.UserAgent()),
				),
			)
			defer span.End()

			if requestID := requestid.GetRequestID(req.Context()); requestID != "" {
				span.SetAttributes(attribute.String("request.id", requestID))
			}

			c.SetRequest(req.WithContext(ctx))
			err := next(c)

			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return err
			}
			status := c.Response().Status()
			span.SetAttributes(semconv.HTTPStatusCode(status))
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
			}
			return nil
		}
	}
}

func excluded(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func defaultSpanNameFormatter(c router.Context) string {
	return fmt.Sprintf("HTTP %s %s", c.Request().Method, metrics.NormalizePath(c.Request().URL.Path))
}
