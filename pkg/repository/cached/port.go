// Package cached decorates a persistence port with a read-through cache.
//
// Cosa fa: serve Read dalla cache (JSON con TTL) e invalida la chiave su
// Update, Purge e PurgeAll.
// Cosa NON fa: non mette in cache ricerche, conteggi o ReadAll; un errore
// della cache non fa mai fallire l'operazione sul port.
// Esempio minimo: port := cached.NewPort[int64, Project](inner, redisAdapter, "project", time.Minute, log)
package cached

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/HarshaM0211/jira-software/pkg/observability/logger"
	"github.com/HarshaM0211/jira-software/pkg/observability/tracing"
	"github.com/HarshaM0211/jira-software/pkg/repository"
	redisstore "github.com/HarshaM0211/jira-software/pkg/store/redis"
)

// generationTTL bounds the life of a per-key generation counter. It must
// exceed the duration of any read-through fill.
const generationTTL = 24 * time.Hour

// Cache is the byte cache the decorator needs. store/redis.Adapter
// implements it; Get must return redisstore.ErrCacheMiss on a miss.
//
// Every entry key has a generation counter. Writers bump it, and a
// read-through fill is stored only if the counter did not move while the
// entity was loaded, so a fill racing an Update or Purge never caches the
// older entity.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Generation(ctx context.Context, key string) (int64, error)
	SetIfGeneration(ctx context.Context, key string, value []byte, ttl time.Duration, genKey string, gen int64) (bool, error)
	BumpGenerations(ctx context.Context, genTTL time.Duration, genKeys []string, keys ...string) error
}

// Port is a read-through caching repository.Port.
type Port[K comparable, E any] struct {
	repository.Port[K, E]
	cache  Cache
	prefix string
	ttl    time.Duration
	logger logger.Logger
}

// NewPort wraps inner. Entries are stored as "<prefix>:<id>" and their
// generation counters as "<prefix>:<id>:gen".
func NewPort[K comparable, E any](inner repository.Port[K, E], cache Cache, prefix string, ttl time.Duration, log logger.Logger) *Port[K, E] {
	if log == nil {
		log = logger.NewNop()
	}
	return &Port[K, E]{Port: inner, cache: cache, prefix: prefix, ttl: ttl, logger: log}
}

// Read returns the cached entity or loads and caches it.
func (p *Port[K, E]) Read(ctx context.Context, id K) (*E, error) {
	key := p.key(id)
	raw, err := p.get(ctx, key)
	switch {
	case err == nil:
		var entity E
		if err := json.Unmarshal(raw, &entity); err == nil {
			return &entity, nil
		}
		p.logger.Warn("dropping undecodable cache entry", "key", key)
	case !errors.Is(err, redisstore.ErrCacheMiss):
		p.logger.Warn("cache read failed", "key", key, "error", err)
	}

	// The generation is taken before loading so that any write committed
	// after this point invalidates the fill.
	gen, genErr := p.cache.Generation(ctx, generationKey(key))
	if genErr != nil {
		p.logger.Warn("cache generation read failed", "key", key, "error", genErr)
	}

	entity, err := p.Port.Read(ctx, id)
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		return entity, nil
	}
	if raw, err := json.Marshal(entity); err != nil {
		p.logger.Warn("failed to encode entity for cache", "key", key, "error", err)
	} else {
		p.fill(ctx, key, raw, gen)
	}
	return entity, nil
}

// Update delegates and always invalidates the cached entry, also when the
// update was rejected as stale.
func (p *Port[K, E]) Update(ctx context.Context, id K, entity *E) error {
	err := p.Port.Update(ctx, id, entity)
	p.invalidate(ctx, id)
	return err
}

func (p *Port[K, E]) Purge(ctx context.Context, id K) error {
	if err := p.Port.Purge(ctx, id); err != nil {
		return err
	}
	p.invalidate(ctx, id)
	return nil
}

func (p *Port[K, E]) PurgeAll(ctx context.Context, ids []K) error {
	if err := p.Port.PurgeAll(ctx, ids); err != nil {
		return err
	}
	p.invalidate(ctx, repository.UniqueKeys(ids)...)
	return nil
}

func (p *Port[K, E]) key(id K) string {
	return fmt.Sprintf("%s:%v", p.prefix, id)
}

func generationKey(key string) string {
	return key + ":gen"
}

func (p *Port[K, E]) get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := tracing.StartCacheSpan(ctx, tracing.SpanOperationCacheGet,
		tracing.WithCacheSystem("redis"), tracing.WithCacheKey(key))
	defer span.End()

	raw, err := p.cache.Get(ctx, key)
	span.SetAttributes(attribute.Bool("cache.hit", err == nil))
	if err != nil && !errors.Is(err, redisstore.ErrCacheMiss) {
		tracing.RecordError(span, err)
	}
	return raw, err
}

func (p *Port[K, E]) fill(ctx context.Context, key string, raw []byte, gen int64) {
	ctx, span := tracing.StartCacheSpan(ctx, tracing.SpanOperationCacheSet,
		tracing.WithCacheSystem("redis"), tracing.WithCacheKey(key))
	defer span.End()

	stored, err := p.cache.SetIfGeneration(ctx, key, raw, p.ttl, generationKey(key), gen)
	if err != nil {
		tracing.RecordError(span, err)
		p.logger.Warn("cache write failed", "key", key, "error", err)
		return
	}
	span.SetAttributes(attribute.Bool("cache.stored", stored))
	if !stored {
		p.logger.Debug("skipped cache fill after concurrent write", "key", key)
	}
}

func (p *Port[K, E]) invalidate(ctx context.Context, ids ...K) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	genKeys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = p.key(id)
		genKeys[i] = generationKey(keys[i])
	}

	ctx, span := tracing.StartCacheSpan(ctx, tracing.SpanOperationCacheDel, tracing.WithCacheSystem("redis"))
	defer span.End()

	if err := p.cache.BumpGenerations(ctx, generationTTL, genKeys, keys...); err != nil {
		tracing.RecordError(span, err)
		p.logger.Warn("cache invalidation failed", "keys", keys, "error", err)
	}
}
