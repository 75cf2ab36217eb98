package config

import "time"

// Database type constants
const (
	// DatabaseTypeMemory keeps entities in process; nothing survives a restart
	DatabaseTypeMemory = "memory"
	// DatabaseTypePostgres represents PostgreSQL database
	DatabaseTypePostgres = "postgres"
	// DatabaseTypeMySQL represents MySQL database
	DatabaseTypeMySQL = "mysql"
	// DatabaseTypeSQLite represents an embedded SQLite database
	DatabaseTypeSQLite = "sqlite"
	// DatabaseTypeMongoDB represents MongoDB database
	DatabaseTypeMongoDB = "mongodb"
	// DatabaseTypeDynamoDB represents AWS DynamoDB
	DatabaseTypeDynamoDB = "dynamodb"
)

// Cache type constants
const (
	CacheTypeNone  = "none"
	CacheTypeRedis = "redis"
)

// Router type constants
const (
	RouterTypeGorilla = "gorilla"
	RouterTypeGin     = "gin"
)

// Config is the root configuration of the jira service
type Config struct {
	RouterType    string `mapstructure:"router_type"`
	Service       ServiceConfig
	HTTP          HTTPConfig
	Database      DatabaseConfig
	Cache         CacheConfig
	Pagination    PaginationConfig
	Observability ObservabilityConfig
	Migrations    MigrationsConfig
}

// ServiceConfig configures service identity metadata.
type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// HTTPConfig configures the API server
type HTTPConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxRequestSize  int64         `mapstructure:"max_request_size"`
}

// DatabaseConfig configures the persistence backend
type DatabaseConfig struct {
	Type            string        `mapstructure:"type"` // memory, postgres, mysql, sqlite, mongodb, dynamodb
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
	DatabaseName    string        `mapstructure:"database_name"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	// TablePrefix is prepended to DynamoDB table and MongoDB collection names.
	TablePrefix     string `mapstructure:"table_prefix"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SessionToken    string `mapstructure:"session_token"`
}

// IsSQL reports whether the backend goes through database/sql.
func (d DatabaseConfig) IsSQL() bool {
	switch d.Type {
	case DatabaseTypePostgres, DatabaseTypeMySQL, DatabaseTypeSQLite:
		return true
	}
	return false
}

// CacheConfig configures the read-through entity cache
type CacheConfig struct {
	Type             string        `mapstructure:"type"` // none, redis
	URL              string        `mapstructure:"url"`
	MaxConns         int           `mapstructure:"max_conns"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
	TTL              time.Duration `mapstructure:"ttl"`
}

// PaginationConfig bounds page sizes accepted by search endpoints
type PaginationConfig struct {
	DefaultSize int `mapstructure:"default_size"`
	MaxSize     int `mapstructure:"max_size"`
}

// ObservabilityConfig configures logging, metrics, and tracing
type ObservabilityConfig struct {
	LogLevel          string  `mapstructure:"log_level"`
	LogFormat         string  `mapstructure:"log_format"` // json, text
	ServiceName       string  `mapstructure:"service_name"`
	MetricsEnabled    bool    `mapstructure:"metrics_enabled"`
	MetricsPath       string  `mapstructure:"metrics_path"`
	TracingEnabled    bool    `mapstructure:"tracing_enabled"`
	TracingSampleRate float64 `mapstructure:"tracing_sample_rate"`
	TracingEndpoint   string  `mapstructure:"tracing_endpoint"`
	TracingInsecure   bool    `mapstructure:"tracing_insecure"`
}

// MigrationsConfig configures SQL schema migrations
type MigrationsConfig struct {
	// AutoApply runs pending migrations when the server starts.
	AutoApply bool   `mapstructure:"auto_apply"`
	Table     string `mapstructure:"table"`
}

// DefaultConfig returns the configuration used when neither file nor
// environment set a value.
func DefaultConfig() *Config {
	return &Config{
		RouterType: RouterTypeGorilla,
		Service: ServiceConfig{
			Name:        "jira-software",
			Environment: "development",
		},
		HTTP: HTTPConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxRequestSize:  1 << 20,
		},
		Database: DatabaseConfig{
			Type:            DatabaseTypeMemory,
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			QueryTimeout:    10 * time.Second,
			ConnectTimeout:  5 * time.Second,
		},
		Cache: CacheConfig{
			Type:             CacheTypeNone,
			MaxConns:         10,
			OperationTimeout: 2 * time.Second,
			TTL:              5 * time.Minute,
		},
		Pagination: PaginationConfig{
			DefaultSize: 20,
			MaxSize:     100,
		},
		Observability: ObservabilityConfig{
			LogLevel:          "info",
			LogFormat:         "json",
			MetricsEnabled:    true,
			MetricsPath:       "/metrics",
			TracingSampleRate: 0.1,
			TracingEndpoint:   "localhost:4317",
		},
		Migrations: MigrationsConfig{
			Table: "schema_migrations",
		},
	}
}
