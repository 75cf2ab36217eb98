package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/HarshaM0211/jira-software/pkg/observability/logger"
)

// ErrCacheMiss is returned by Get when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

// Adapter provides Redis cache connectivity with connection pooling
type Adapter struct {
	client *redis.Client
	logger logger.Logger
	config Config
}

// Config holds Redis connection configuration
type Config struct {
	URL              string
	MaxConns         int
	OperationTimeout time.Duration
}

// NewAdapter creates a new Redis adapter with connection pooling
func NewAdapter(cfg Config, log logger.Logger) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("redis URL is required")
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	if cfg.MaxConns > 0 {
		opts.PoolSize = cfg.MaxConns
	}
	opts.DialTimeout = 5 * time.Second
	if cfg.OperationTimeout > 0 {
		opts.ReadTimeout = cfg.OperationTimeout
		opts.WriteTimeout = cfg.OperationTimeout
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info("Redis connection established",
		"max_conns", cfg.MaxConns,
		"operation_timeout", cfg.OperationTimeout,
	)

	return NewAdapterFromClient(client, cfg, log), nil
}

// NewAdapterFromClient wraps an existing client without pinging it.
func NewAdapterFromClient(client *redis.Client, cfg Config, log logger.Logger) *Adapter {
	return &Adapter{client: client, logger: log, config: cfg}
}

// Client returns the underlying *redis.Client for direct access when needed
func (a *Adapter) Client() *redis.Client {
	return a.client
}

// Ping verifies the Redis connection is alive
func (a *Adapter) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}

// Get retrieves a value by key. A missing key yields ErrCacheMiss.
func (a *Adapter) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := a.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return val, nil
}

// SetWithTTL stores a value with expiration. A ttl of zero keeps it forever.
func (a *Adapter) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := a.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s with TTL: %w", key, err)
	}
	return nil
}

// Delete removes keys from Redis
func (a *Adapter) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := a.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}

var errGenerationMoved = errors.New("generation moved")

// Generation returns the counter stored at key, zero when it does not exist.
func (a *Adapter) Generation(ctx context.Context, key string) (int64, error) {
	gen, err := a.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read generation %s: %w", key, err)
	}
	return gen, nil
}

// SetIfGeneration stores value at key only while the counter at genKey
// still holds gen. The check and the write run in one WATCH transaction, so
// a concurrent BumpGenerations makes the write a no-op. It reports whether
// the value was stored.
func (a *Adapter) SetIfGeneration(ctx context.Context, key string, value []byte, ttl time.Duration, genKey string, gen int64) (bool, error) {
	err := a.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if errors.Is(err, redis.Nil) {
			current = 0
		} else if err != nil {
			return err
		}
		if current != gen {
			return errGenerationMoved
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, value, ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errGenerationMoved), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, fmt.Errorf("failed to set key %s at generation %d: %w", key, gen, err)
	}
}

// BumpGenerations increments every counter in genKeys, refreshing their
// expiry to genTTL, and deletes keys, all in one MULTI/EXEC block.
func (a *Adapter) BumpGenerations(ctx context.Context, genTTL time.Duration, genKeys []string, keys ...string) error {
	if len(genKeys) == 0 && len(keys) == 0 {
		return nil
	}
	_, err := a.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, genKey := range genKeys {
			pipe.Incr(ctx, genKey)
			if genTTL > 0 {
				pipe.Expire(ctx, genKey, genTTL)
			}
		}
		if len(keys) > 0 {
			pipe.Del(ctx, keys...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to bump generations: %w", err)
	}
	return nil
}

// HealthCheck verifies the Redis connection is healthy with a timeout
func (a *Adapter) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := a.client.Ping(ctx).Err(); err != nil {
		a.logger.Error("Redis health check failed", "error", err)
		return fmt.Errorf("redis health check failed: %w", err)
	}

	return nil
}

// Close gracefully closes the Redis connection
func (a *Adapter) Close() error {
	a.logger.Info("closing Redis connection")

	if err := a.client.Close(); err != nil {
		a.logger.Error("failed to close Redis connection", "error", err)
		return fmt.Errorf("failed to close redis connection: %w", err)
	}

	a.logger.Info("Redis connection closed successfully")
	return nil
}
