package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultEnvPrefix prefixes every environment variable read by the loader.
const DefaultEnvPrefix = "JIRA"

// Loader defines the interface for loading configuration
type Loader interface {
	Load() (*Config, error)
	Validate(*Config) error
}

// ViperLoader implements Loader using Viper for configuration management
type ViperLoader struct {
	configFile string
	envPrefix  string
	flags      *pflag.FlagSet
}

// NewViperLoader creates a new ViperLoader
// configFile: path to configuration file (optional, can be empty)
// envPrefix: prefix for environment variables (e.g., "JIRA")
func NewViperLoader(configFile, envPrefix string) *ViperLoader {
	return &ViperLoader{
		configFile: configFile,
		envPrefix:  envPrefix,
	}
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"port":          "http.port",
	"router":        "router_type",
	"database-type": "database.type",
	"database-url":  "database.url",
	"log-level":     "observability.log_level",
	"log-format":    "observability.log_format",
}

// WithFlags lets explicitly set command line flags override every other
// source. Only flags named in flagKeys are considered.
func (l *ViperLoader) WithFlags(flags *pflag.FlagSet) *ViperLoader {
	if l == nil {
		return l
	}
	l.flags = flags
	return l
}

// Load loads configuration with precedence: flags > ENV > file > defaults
func (l *ViperLoader) Load() (*Config, error) {
	v, err := l.newViper()
	if err != nil {
		return nil, err
	}
	return l.unmarshal(v)
}

func (l *ViperLoader) newViper() (*viper.Viper, error) {
	v := viper.New()
	l.setDefaults(v, DefaultConfig())

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
	}
	return v, nil
}

func (l *ViperLoader) unmarshal(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(l.envPrefix)
	l.bindLegacyEnvVars()
	l.bindEnvVars(v)
	if err := l.bindFlags(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := l.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (l *ViperLoader) bindFlags(v *viper.Viper) error {
	if l.flags == nil {
		return nil
	}
	for name, key := range flagKeys {
		flag := l.flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// bindEnvVars explicitly binds environment variables for nested structs
func (l *ViperLoader) bindEnvVars(v *viper.Viper) {
	v.BindEnv("router_type", l.prefixedEnv("ROUTER_TYPE"))
	v.BindEnv("service.name", l.prefixedEnv("SERVICE_NAME"))
	v.BindEnv("service.environment", l.prefixedEnv("SERVICE_ENVIRONMENT"), l.prefixedEnv("ENVIRONMENT"))

	// HTTP
	v.BindEnv("http.port", l.prefixedEnv("HTTP_PORT"))
	v.BindEnv("http.read_timeout", l.prefixedEnv("HTTP_READ_TIMEOUT"))
	v.BindEnv("http.write_timeout", l.prefixedEnv("HTTP_WRITE_TIMEOUT"))
	v.BindEnv("http.idle_timeout", l.prefixedEnv("HTTP_IDLE_TIMEOUT"))
	v.BindEnv("http.shutdown_timeout", l.prefixedEnv("HTTP_SHUTDOWN_TIMEOUT"))
	v.BindEnv("http.max_request_size", l.prefixedEnv("HTTP_MAX_REQUEST_SIZE"))

	// Database
	v.BindEnv("database.type", l.prefixedEnv("DB_TYPE"))
	v.BindEnv("database.url", l.prefixedEnv("DB_URL"))
	v.BindEnv("database.max_open_conns", l.prefixedEnv("DB_MAX_OPEN_CONNS"))
	v.BindEnv("database.max_idle_conns", l.prefixedEnv("DB_MAX_IDLE_CONNS"))
	v.BindEnv("database.conn_max_lifetime", l.prefixedEnv("DB_CONN_MAX_LIFETIME"))
	v.BindEnv("database.conn_max_idle_time", l.prefixedEnv("DB_CONN_MAX_IDLE_TIME"))
	v.BindEnv("database.query_timeout", l.prefixedEnv("DB_QUERY_TIMEOUT"))
	v.BindEnv("database.database_name", l.prefixedEnv("DB_DATABASE_NAME"))
	v.BindEnv("database.connect_timeout", l.prefixedEnv("DB_CONNECT_TIMEOUT"))
	v.BindEnv("database.table_prefix", l.prefixedEnv("DB_TABLE_PREFIX"))
	v.BindEnv("database.region", l.prefixedEnv("DB_REGION"))
	v.BindEnv("database.endpoint", l.prefixedEnv("DB_ENDPOINT"))
	v.BindEnv("database.access_key_id", l.prefixedEnv("DB_ACCESS_KEY_ID"))
	v.BindEnv("database.secret_access_key", l.prefixedEnv("DB_SECRET_ACCESS_KEY"))
	v.BindEnv("database.session_token", l.prefixedEnv("DB_SESSION_TOKEN"))

	// Cache
	v.BindEnv("cache.type", l.prefixedEnv("CACHE_TYPE"))
	v.BindEnv("cache.url", l.prefixedEnv("CACHE_URL"))
	v.BindEnv("cache.max_conns", l.prefixedEnv("CACHE_MAX_CONNS"))
	v.BindEnv("cache.operation_timeout", l.prefixedEnv("CACHE_OPERATION_TIMEOUT"))
	v.BindEnv("cache.ttl", l.prefixedEnv("CACHE_TTL"))

	// Pagination
	v.BindEnv("pagination.default_size", l.prefixedEnv("PAGINATION_DEFAULT_SIZE"))
	v.BindEnv("pagination.max_size", l.prefixedEnv("PAGINATION_MAX_SIZE"))

	// Observability
	v.BindEnv("observability.log_level", l.prefixedEnv("LOG_LEVEL"))
	v.BindEnv("observability.log_format", l.prefixedEnv("LOG_FORMAT"))
	v.BindEnv("observability.service_name", l.prefixedEnv("OBSERVABILITY_SERVICE_NAME"))
	v.BindEnv("observability.metrics_enabled", l.prefixedEnv("METRICS_ENABLED"))
	v.BindEnv("observability.metrics_path", l.prefixedEnv("METRICS_PATH"))
	v.BindEnv("observability.tracing_enabled", l.prefixedEnv("TRACING_ENABLED"))
	v.BindEnv("observability.tracing_sample_rate", l.prefixedEnv("TRACING_SAMPLE_RATE"))
	v.BindEnv("observability.tracing_endpoint", l.prefixedEnv("TRACING_ENDPOINT"))
	v.BindEnv("observability.tracing_insecure", l.prefixedEnv("TRACING_INSECURE"))

	// Migrations
	v.BindEnv("migrations.auto_apply", l.prefixedEnv("MIGRATIONS_AUTO_APPLY"))
	v.BindEnv("migrations.table", l.prefixedEnv("MIGRATIONS_TABLE"))
}

// bindLegacyEnvVars maps the long DATABASE_* names to the abbreviated DB_*
// names when the abbreviated ones are absent.
func (l *ViperLoader) bindLegacyEnvVars() {
	for _, suffix := range []string{
		"TYPE", "URL", "MAX_OPEN_CONNS", "MAX_IDLE_CONNS", "QUERY_TIMEOUT",
		"DATABASE_NAME", "REGION", "ENDPOINT",
	} {
		abbrevEnv := l.prefixedEnv("DB_" + suffix)
		if _, hasAbbrev := os.LookupEnv(abbrevEnv); hasAbbrev {
			continue
		}
		if legacyValue, hasLegacy := os.LookupEnv(l.prefixedEnv("DATABASE_" + suffix)); hasLegacy {
			_ = os.Setenv(abbrevEnv, legacyValue)
		}
	}
}

func (l *ViperLoader) prefixedEnv(suffix string) string {
	prefix := strings.TrimSpace(l.envPrefix)
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	return fmt.Sprintf("%s_%s", strings.ToUpper(prefix), suffix)
}

// setDefaults sets default values in Viper from the default config
func (l *ViperLoader) setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("router_type", cfg.RouterType)
	v.SetDefault("service.name", cfg.Service.Name)
	v.SetDefault("service.environment", cfg.Service.Environment)

	// HTTP defaults
	v.SetDefault("http.port", cfg.HTTP.Port)
	v.SetDefault("http.read_timeout", cfg.HTTP.ReadTimeout)
	v.SetDefault("http.write_timeout", cfg.HTTP.WriteTimeout)
	v.SetDefault("http.idle_timeout", cfg.HTTP.IdleTimeout)
	v.SetDefault("http.shutdown_timeout", cfg.HTTP.ShutdownTimeout)
	v.SetDefault("http.max_request_size", cfg.HTTP.MaxRequestSize)

	// Database defaults
	v.SetDefault("database.type", cfg.Database.Type)
	v.SetDefault("database.url", cfg.Database.URL)
	v.SetDefault("database.max_open_conns", cfg.Database.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", cfg.Database.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", cfg.Database.ConnMaxLifetime)
	v.SetDefault("database.conn_max_idle_time", cfg.Database.ConnMaxIdleTime)
	v.SetDefault("database.query_timeout", cfg.Database.QueryTimeout)
	v.SetDefault("database.database_name", cfg.Database.DatabaseName)
	v.SetDefault("database.connect_timeout", cfg.Database.ConnectTimeout)
	v.SetDefault("database.table_prefix", cfg.Database.TablePrefix)
	v.SetDefault("database.region", cfg.Database.Region)
	v.SetDefault("database.endpoint", cfg.Database.Endpoint)
	v.SetDefault("database.access_key_id", cfg.Database.AccessKeyID)
	v.SetDefault("database.secret_access_key", cfg.Database.SecretAccessKey)
	v.SetDefault("database.session_token", cfg.Database.SessionToken)

	// Cache defaults
	v.SetDefault("cache.type", cfg.Cache.Type)
	v.SetDefault("cache.url", cfg.Cache.URL)
	v.SetDefault("cache.max_conns", cfg.Cache.MaxConns)
	v.SetDefault("cache.operation_timeout", cfg.Cache.OperationTimeout)
	v.SetDefault("cache.ttl", cfg.Cache.TTL)

	// Pagination defaults
	v.SetDefault("pagination.default_size", cfg.Pagination.DefaultSize)
	v.SetDefault("pagination.max_size", cfg.Pagination.MaxSize)

	// Observability defaults
	v.SetDefault("observability.log_level", cfg.Observability.LogLevel)
	v.SetDefault("observability.log_format", cfg.Observability.LogFormat)
	v.SetDefault("observability.service_name", cfg.Observability.ServiceName)
	v.SetDefault("observability.metrics_enabled", cfg.Observability.MetricsEnabled)
	v.SetDefault("observability.metrics_path", cfg.Observability.MetricsPath)
	v.SetDefault("observability.tracing_enabled", cfg.Observability.TracingEnabled)
	v.SetDefault("observability.tracing_sample_rate", cfg.Observability.TracingSampleRate)
	v.SetDefault("observability.tracing_endpoint", cfg.Observability.TracingEndpoint)
	v.SetDefault("observability.tracing_insecure", cfg.Observability.TracingInsecure)

	// Migrations defaults
	v.SetDefault("migrations.auto_apply", cfg.Migrations.AutoApply)
	v.SetDefault("migrations.table", cfg.Migrations.Table)
}

// Validate normalizes cfg and reports every invalid setting at once.
func (l *ViperLoader) Validate(cfg *Config) error {
	cfg.RouterType = strings.ToLower(strings.TrimSpace(cfg.RouterType))
	cfg.Database.Type = strings.ToLower(strings.TrimSpace(cfg.Database.Type))
	cfg.Cache.Type = strings.ToLower(strings.TrimSpace(cfg.Cache.Type))
	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.Service.Name
	}
	return cfg.Validate()
}

// contains checks if a string slice contains a specific string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
