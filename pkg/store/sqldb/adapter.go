// Package sqldb provides a pooled database/sql adapter for PostgreSQL, MySQL
// and SQLite, with transactions carried through the context.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	"github.com/HarshaM0211/jira-software/pkg/observability/logger"
)

// Adapter provides relational database connectivity with connection pooling
type Adapter struct {
	db     *sql.DB
	driver string
	logger logger.Logger
	config Config
}

// Config holds SQL connection configuration
type Config struct {
	// Driver is one of postgres, mysql or sqlite.
	Driver          string
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	// QueryTimeout bounds statements executed through ExecContext when the
	// caller context has no deadline.
	QueryTimeout time.Duration
}

// Cosa fa: apre il pool, lo configura e verifica la connessione con un ping.
// Cosa NON fa: non esegue migrazioni schema né provisioning database.
// Esempio minimo: adapter, err := sqldb.NewAdapter(cfg, log)
func NewAdapter(cfg Config, log logger.Logger) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}
	driver, err := driverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connection established",
		"driver", driver,
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns,
		"conn_max_lifetime", cfg.ConnMaxLifetime,
		"conn_max_idle_time", cfg.ConnMaxIdleTime,
	)

	return NewAdapterFromDB(db, cfg, log), nil
}

// NewAdapterFromDB wraps an already opened pool.
func NewAdapterFromDB(db *sql.DB, cfg Config, log logger.Logger) *Adapter {
	driver, err := driverName(cfg.Driver)
	if err != nil {
		driver = cfg.Driver
	}
	return &Adapter{db: db, driver: driver, logger: log, config: cfg}
}

func driverName(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql":
		return "postgres", nil
	case "mysql", "mariadb":
		return "mysql", nil
	case "sqlite", "sqlite3":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported sql driver %q (supported: postgres, mysql, sqlite)", name)
	}
}

// DB returns the underlying *sql.DB for direct access when needed
func (a *Adapter) DB() *sql.DB {
	return a.db
}

// Driver returns the normalized database/sql driver name.
func (a *Adapter) Driver() string {
	return a.driver
}

// Ping verifies the database connection is alive
func (a *Adapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// HealthCheck verifies the database connection is healthy with a timeout
func (a *Adapter) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := a.db.PingContext(ctx); err != nil {
		a.logger.Error("database health check failed", "driver", a.driver, "error", err)
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// Close gracefully closes the database connection
func (a *Adapter) Close() error {
	a.logger.Info("closing database connection", "driver", a.driver)

	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database connection", "error", err)
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	a.logger.Info("database connection closed successfully")
	return nil
}

type contextKey string

const txContextKey contextKey = "sql_tx"

// GetTx extracts a transaction from the context, if present
// This allows nested operations to use the same transaction
func GetTx(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txContextKey).(*sql.Tx)
	return tx, ok
}

// Cosa fa: esegue fn in transazione con commit/rollback automatici.
// Cosa NON fa: non gestisce retry applicativi su deadlock o timeout.
// Una transazione gia presente nel contesto viene riusata.
// Esempio minimo: err := adapter.WithTransaction(ctx, func(txCtx context.Context) error { return nil })
func (a *Adapter) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := GetTx(ctx); ok {
		return fn(ctx)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				a.logger.Error("failed to rollback transaction after panic",
					"panic", p,
					"rollback_error", rbErr,
				)
			}
			panic(p)
		}
	}()

	txCtx := context.WithValue(ctx, txContextKey, tx)

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			a.logger.Error("failed to rollback transaction",
				"original_error", err,
				"rollback_error", rbErr,
			)
			return fmt.Errorf("failed to rollback transaction: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ExecContext executes a statement with the transaction from context if available
// Otherwise uses the regular database connection
func (a *Adapter) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	queryCtx, cancel := a.withQueryTimeout(ctx)
	defer cancel()
	if tx, ok := GetTx(ctx); ok {
		return tx.ExecContext(queryCtx, query, args...)
	}
	return a.db.ExecContext(queryCtx, query, args...)
}

// QueryContext executes a query with the transaction from context if available.
// The returned rows outlive this call, so only the caller deadline applies.
func (a *Adapter) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if tx, ok := GetTx(ctx); ok {
		return tx.QueryContext(ctx, query, args...)
	}
	return a.db.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a query that returns a single row with the
// transaction from context if available.
func (a *Adapter) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	if tx, ok := GetTx(ctx); ok {
		return tx.QueryRowContext(ctx, query, args...)
	}
	return a.db.QueryRowContext(ctx, query, args...)
}

func (a *Adapter) withQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.QueryTimeout <= 0 {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.config.QueryTimeout)
}
