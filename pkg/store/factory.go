package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/HarshaM0211/jira-software/pkg/config"
	"github.com/HarshaM0211/jira-software/pkg/observability/logger"
	"github.com/HarshaM0211/jira-software/pkg/store/dynamodb"
	"github.com/HarshaM0211/jira-software/pkg/store/mongodb"
	"github.com/HarshaM0211/jira-software/pkg/store/redis"
	"github.com/HarshaM0211/jira-software/pkg/store/sqldb"
)

// Backend is the connected persistence backend selected by database.type.
// Exactly one of SQL, Mongo and Dynamo is set, or none for the memory type.
type Backend struct {
	Type        string
	TablePrefix string
	SQL         *sqldb.Adapter
	Mongo       *mongodb.Adapter
	Dynamo      *dynamodb.Adapter
}

var _ Adapter = (*Backend)(nil)

func (b *Backend) adapter() Adapter {
	switch {
	case b.SQL != nil:
		return b.SQL
	case b.Mongo != nil:
		return b.Mongo
	case b.Dynamo != nil:
		return b.Dynamo
	}
	return nil
}

// HealthCheck checks the underlying adapter. The memory backend is always healthy.
func (b *Backend) HealthCheck(ctx context.Context) error {
	if a := b.adapter(); a != nil {
		return a.HealthCheck(ctx)
	}
	return nil
}

// Close closes the underlying adapter.
func (b *Backend) Close() error {
	if a := b.adapter(); a != nil {
		return a.Close()
	}
	return nil
}

// Table returns the prefixed table or collection name for an entity.
func (b *Backend) Table(name string) string {
	return b.TablePrefix + name
}

// Cosa fa: seleziona e inizializza l'adapter di persistenza in base alla config.
// Cosa NON fa: non gestisce fallback tra provider diversi né applica migrazioni.
// Esempio minimo: backend, err := store.NewRepositoryBackend(cfg.Database, log)
func NewRepositoryBackend(cfg config.DatabaseConfig, log logger.Logger) (*Backend, error) {
	backend := &Backend{
		Type:        strings.ToLower(strings.TrimSpace(cfg.Type)),
		TablePrefix: cfg.TablePrefix,
	}

	var err error
	switch backend.Type {
	case config.DatabaseTypeMemory:
	case config.DatabaseTypePostgres, config.DatabaseTypeMySQL, config.DatabaseTypeSQLite:
		backend.SQL, err = sqldb.NewAdapter(sqldb.Config{
			Driver:          backend.Type,
			URL:             cfg.URL,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.ConnMaxIdleTime,
			QueryTimeout:    cfg.QueryTimeout,
		}, log)
	case config.DatabaseTypeMongoDB:
		backend.Mongo, err = mongodb.NewAdapter(mongodb.Config{
			URL:              cfg.URL,
			Database:         cfg.DatabaseName,
			ConnectTimeout:   cfg.ConnectTimeout,
			OperationTimeout: cfg.QueryTimeout,
		}, log)
	case config.DatabaseTypeDynamoDB:
		backend.Dynamo, err = dynamodb.NewAdapter(dynamodb.Config{
			Region:           cfg.Region,
			Endpoint:         cfg.Endpoint,
			AccessKeyID:      cfg.AccessKeyID,
			SecretAccessKey:  cfg.SecretAccessKey,
			SessionToken:     cfg.SessionToken,
			OperationTimeout: cfg.QueryTimeout,
		}, log)
	default:
		return nil, fmt.Errorf("unsupported database.type %q (supported: memory, postgres, mysql, sqlite, mongodb, dynamodb)", cfg.Type)
	}
	if err != nil {
		return nil, err
	}
	return backend, nil
}

// NewCache connects the entity cache, or returns nil when caching is off.
func NewCache(cfg config.CacheConfig, log logger.Logger) (*redis.Adapter, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "", config.CacheTypeNone:
		return nil, nil
	case config.CacheTypeRedis:
		return redis.NewAdapter(redis.Config{
			URL:              cfg.URL,
			MaxConns:         cfg.MaxConns,
			OperationTimeout: cfg.OperationTimeout,
		}, log)
	default:
		return nil, fmt.Errorf("unsupported cache.type %q (supported: none, redis)", cfg.Type)
	}
}
