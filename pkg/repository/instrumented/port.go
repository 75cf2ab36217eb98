// Package instrumented decorates a persistence port with Prometheus metrics
// and OpenTelemetry spans.
package instrumented

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/HarshaM0211/jira-software/pkg/observability/metrics"
	"github.com/HarshaM0211/jira-software/pkg/observability/tracing"
	"github.com/HarshaM0211/jira-software/pkg/query"
	"github.com/HarshaM0211/jira-software/pkg/repository"
)

// Port records one span and one latency observation per call. ErrNotFound
// is a normal outcome and is not counted as an error.
type Port[K comparable, E any] struct {
	inner   repository.Port[K, E]
	entity  string
	backend string
}

// NewPort wraps inner. entity labels metrics and spans; backend is recorded
// as db.system.
func NewPort[K comparable, E any](inner repository.Port[K, E], entity, backend string) *Port[K, E] {
	return &Port[K, E]{inner: inner, entity: entity, backend: backend}
}

func (p *Port[K, E]) start(ctx context.Context, op tracing.SpanOperation, opts ...tracing.PortSpanOption) (context.Context, func(error)) {
	opts = append(opts, tracing.WithBackend(p.backend))
	ctx, span := tracing.StartPortSpan(ctx, p.entity, op, opts...)
	started := time.Now()
	return ctx, func(err error) {
		p.finish(span, op, started, err)
	}
}

func (p *Port[K, E]) finish(span trace.Span, op tracing.SpanOperation, started time.Time, err error) {
	failed := err != nil && !errors.Is(err, repository.ErrNotFound)
	metrics.RecordPortOperation(p.entity, op.Short(), time.Since(started), failed)
	if failed {
		tracing.RecordError(span, err)
	} else {
		tracing.RecordSuccess(span)
	}
	span.End()
}

func (p *Port[K, E]) Save(ctx context.Context, entity *E) (id K, err error) {
	ctx, done := p.start(ctx, tracing.SpanOperationSave)
	defer func() { done(err) }()
	return p.inner.Save(ctx, entity)
}

func (p *Port[K, E]) SaveAll(ctx context.Context, entities []*E) (ids []K, err error) {
	ctx, done := p.start(ctx, tracing.SpanOperationSaveAll, tracing.WithBatchSize(len(entities)))
	defer func() { done(err) }()
	return p.inner.SaveAll(ctx, entities)
}

func (p *Port[K, E]) Read(ctx context.Context, id K) (entity *E, err error) {
	ctx, done := p.start(ctx, tracing.SpanOperationRead, tracing.WithEntityID(id))
	defer func() { done(err) }()
	return p.inner.Read(ctx, id)
}

func (p *Port[K, E]) ReadAll(ctx context.Context, ids []K) (entities map[K]*E, err error) {
	ctx, done := p.start(ctx, tracing.SpanOperationReadAll, tracing.WithBatchSize(len(ids)))
	defer func() { done(err) }()
	return p.inner.ReadAll(ctx, ids)
}

func (p *Port[K, E]) Update(ctx context.Context, id K, entity *E) (err error) {
	ctx, done := p.start(ctx, tracing.SpanOperationUpdate, tracing.WithEntityID(id))
	defer func() { done(err) }()
	return p.inner.Update(ctx, id, entity)
}

func (p *Port[K, E]) Purge(ctx context.Context, id K) (err error) {
	ctx, done := p.start(ctx, tracing.SpanOperationPurge, tracing.WithEntityID(id))
	defer func() { done(err) }()
	return p.inner.Purge(ctx, id)
}

func (p *Port[K, E]) PurgeAll(ctx context.Context, ids []K) (err error) {
	ctx, done := p.start(ctx, tracing.SpanOperationPurgeAll, tracing.WithBatchSize(len(ids)))
	defer func() { done(err) }()
	return p.inner.PurgeAll(ctx, ids)
}

func (p *Port[K, E]) Count(ctx context.Context) (n int64, err error) {
	ctx, done := p.start(ctx, tracing.SpanOperationCount)
	defer func() { done(err) }()
	return p.inner.Count(ctx)
}

func (p *Port[K, E]) CountMatching(ctx context.Context, criteria []query.Criteria) (n int64, err error) {
	ctx, done := p.start(ctx, tracing.SpanOperationCount, tracing.WithCriteriaCount(len(criteria)))
	defer func() { done(err) }()
	return p.inner.CountMatching(ctx, criteria)
}

func (p *Port[K, E]) Search(ctx context.Context, criteria []query.Criteria, orderBy query.OrderBy, page query.Page) (entities []*E, err error) {
	ctx, done := p.start(ctx, tracing.SpanOperationSearch, tracing.WithCriteriaCount(len(criteria)))
	defer func() { done(err) }()
	return p.inner.Search(ctx, criteria, orderBy, page)
}
