package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanOperation names a traced operation.
type SpanOperation string

// Persistence port operations.
const (
	SpanOperationRead     SpanOperation = "port.read"
	SpanOperationReadAll  SpanOperation = "port.read_all"
	SpanOperationSave     SpanOperation = "port.save"
	SpanOperationSaveAll  SpanOperation = "port.save_all"
	SpanOperationUpdate   SpanOperation = "port.update"
	SpanOperationPurge    SpanOperation = "port.purge"
	SpanOperationPurgeAll SpanOperation = "port.purge_all"
	SpanOperationCount    SpanOperation = "port.count"
	SpanOperationSearch   SpanOperation = "port.search"
)

// Cache operations.
const (
	SpanOperationCacheGet SpanOperation = "cache.get"
	SpanOperationCacheSet SpanOperation = "cache.set"
	SpanOperationCacheDel SpanOperation = "cache.delete"
)

// Short returns the operation without its namespace, e.g. "read".
func (o SpanOperation) Short() string {
	s := string(o)
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s[i+1:]
		}
	}
	return s
}

// StartPortSpan starts a client span named "PORT <operation> <entity>".
func StartPortSpan(ctx context.Context, entity string, operation SpanOperation, opts ...PortSpanOption) (context.Context, trace.Span) {
	spanOpts := &portSpanOptions{
		attributes: []attribute.KeyValue{
			attribute.String("port.operation", string(operation)),
			attribute.String("port.entity", entity),
		},
	}
	for _, opt := range opts {
		opt(spanOpts)
	}

	ctx, span := otel.Tracer("repository").Start(ctx,
		fmt.Sprintf("PORT %s %s", operation, entity),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(spanOpts.attributes...)
	return ctx, span
}

// PortSpanOption configures a port span.
type PortSpanOption func(*portSpanOptions)

type portSpanOptions struct {
	attributes []attribute.KeyValue
}

// WithBackend sets the storage backend, e.g. "postgres" or "mongodb".
func WithBackend(backend string) PortSpanOption {
	return func(opts *portSpanOptions) {
		opts.attributes = append(opts.attributes, attribute.String("db.system", backend))
	}
}

// WithEntityID records the key the operation targets.
func WithEntityID(id any) PortSpanOption {
	return func(opts *portSpanOptions) {
		opts.attributes = append(opts.attributes, attribute.String("port.entity_id", fmt.Sprint(id)))
	}
}

// WithBatchSize records the number of keys or entities in a batch call.
func WithBatchSize(n int) PortSpanOption {
	return func(opts *portSpanOptions) {
		opts.attributes = append(opts.attributes, attribute.Int("port.batch_size", n))
	}
}

// WithCriteriaCount records the number of search criteria.
func WithCriteriaCount(n int) PortSpanOption {
	return func(opts *portSpanOptions) {
		opts.attributes = append(opts.attributes, attribute.Int("port.criteria", n))
	}
}

// StartCacheSpan starts a client span for a cache operation.
func StartCacheSpan(ctx context.Context, operation SpanOperation, opts ...CacheSpanOption) (context.Context, trace.Span) {
	spanOpts := &cacheSpanOptions{
		attributes: []attribute.KeyValue{
			attribute.String("cache.operation", string(operation)),
		},
	}
	for _, opt := range opts {
		opt(spanOpts)
	}

	spanName := fmt.Sprintf("CACHE %s", operation)
	if spanOpts.key != "" {
		spanName = fmt.Sprintf("CACHE %s %s", operation, spanOpts.key)
	}

	ctx, span := otel.Tracer("cache").Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(spanOpts.attributes...)
	return ctx, span
}

// CacheSpanOption configures a cache span.
type CacheSpanOption func(*cacheSpanOptions)

type cacheSpanOptions struct {
	key        string
	attributes []attribute.KeyValue
}

// WithCacheSystem sets the cache system, e.g. "redis".
func WithCacheSystem(system string) CacheSpanOption {
	return func(opts *cacheSpanOptions) {
		opts.attributes = append(opts.attributes, attribute.String("cache.system", system))
	}
}

func WithCacheKey(key string) CacheSpanOption {
	return func(opts *cacheSpanOptions) {
		opts.key = key
		opts.attributes = append(opts.attributes, attribute.String("cache.key", key))
	}
}

// RecordError marks the span failed when err is non-nil.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// RecordSuccess sets the span status to OK.
func RecordSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}
