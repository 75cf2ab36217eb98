package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func attrs(kvs []attribute.KeyValue) map[string]string {
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}

func TestStartPortSpan(t *testing.T) {
	recorder := setupTestTracer(t)

	tests := []struct {
		name      string
		operation SpanOperation
		opts      []PortSpanOption
		wantName  string
		wantAttrs map[string]string
	}{
		{
			name:      "read with id",
			operation: SpanOperationRead,
			opts:      []PortSpanOption{WithEntityID(int64(42)), WithBackend("postgres")},
			wantName:  "PORT port.read project",
			wantAttrs: map[string]string{
				"port.operation": "port.read",
				"port.entity":    "project",
				"port.entity_id": "42",
				"db.system":      "postgres",
			},
		},
		{
			name:      "search",
			operation: SpanOperationSearch,
			opts:      []PortSpanOption{WithCriteriaCount(3)},
			wantName:  "PORT port.search project",
			wantAttrs: map[string]string{"port.criteria": "3"},
		},
		{
			name:      "batch save",
			operation: SpanOperationSaveAll,
			opts:      []PortSpanOption{WithBatchSize(25)},
			wantName:  "PORT port.save_all project",
			wantAttrs: map[string]string{"port.batch_size": "25"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder.Reset()
			_, span := StartPortSpan(context.Background(), "project", tt.operation, tt.opts...)
			span.End()

			spans := recorder.Ended()
			if len(spans) != 1 {
				t.Fatalf("expected 1 span, got %d", len(spans))
			}
			if spans[0].Name() != tt.wantName {
				t.Errorf("name = %q, want %q", spans[0].Name(), tt.wantName)
			}
			if spans[0].SpanKind() != trace.SpanKindClient {
				t.Errorf("kind = %v, want client", spans[0].SpanKind())
			}
			got := attrs(spans[0].Attributes())
			for k, v := range tt.wantAttrs {
				if got[k] != v {
					t.Errorf("attribute %s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestStartCacheSpan(t *testing.T) {
	recorder := setupTestTracer(t)

	_, span := StartCacheSpan(context.Background(), SpanOperationCacheGet,
		WithCacheSystem("redis"), WithCacheKey("project:1"))
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "CACHE cache.get project:1" {
		t.Errorf("name = %q", spans[0].Name())
	}
	got := attrs(spans[0].Attributes())
	if got["cache.key"] != "project:1" || got["cache.system"] != "redis" {
		t.Errorf("attributes = %v", got)
	}
}

func TestRecordErrorAndSuccess(t *testing.T) {
	recorder := setupTestTracer(t)
	tracer := otel.Tracer("test")

	_, failed := tracer.Start(context.Background(), "failed")
	RecordError(failed, errors.New("boom"))
	failed.End()

	_, ok := tracer.Start(context.Background(), "ok")
	RecordError(ok, nil)
	RecordSuccess(ok)
	ok.End()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Error || spans[0].Status().Description != "boom" {
		t.Errorf("failed status = %+v", spans[0].Status())
	}
	if len(spans[0].Events()) == 0 {
		t.Error("expected recorded error event")
	}
	if spans[1].Status().Code != codes.Ok {
		t.Errorf("ok status = %+v", spans[1].Status())
	}
}

func TestSpanOperation_Short(t *testing.T) {
	if got := SpanOperationPurgeAll.Short(); got != "purge_all" {
		t.Errorf("Short() = %q", got)
	}
	if got := SpanOperation("plain").Short(); got != "plain" {
		t.Errorf("Short() = %q", got)
	}
}
