package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	validRouterTypes   = []string{RouterTypeGorilla, RouterTypeGin}
	validDatabaseTypes = []string{
		DatabaseTypeMemory, DatabaseTypePostgres, DatabaseTypeMySQL,
		DatabaseTypeSQLite, DatabaseTypeMongoDB, DatabaseTypeDynamoDB,
	}
	validCacheTypes = []string{"", CacheTypeNone, CacheTypeRedis}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"json", "text"}
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if !contains(validRouterTypes, c.RouterType) {
		errs = append(errs, fmt.Errorf("invalid router_type: %s (must be one of: %v)", c.RouterType, validRouterTypes))
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port))
	}

	switch {
	case !contains(validDatabaseTypes, c.Database.Type):
		errs = append(errs, fmt.Errorf("invalid database.type: %s (must be one of: %v)", c.Database.Type, validDatabaseTypes))
	case c.Database.IsSQL() || c.Database.Type == DatabaseTypeMongoDB:
		if c.Database.URL == "" {
			errs = append(errs, fmt.Errorf("database.url is required for %s", c.Database.Type))
		}
		if c.Database.Type == DatabaseTypeMongoDB && c.Database.DatabaseName == "" {
			errs = append(errs, errors.New("database.database_name is required for MongoDB"))
		}
	case c.Database.Type == DatabaseTypeDynamoDB:
		if c.Database.Region == "" {
			errs = append(errs, errors.New("database.region is required for DynamoDB"))
		}
	}

	if !contains(validCacheTypes, c.Cache.Type) {
		errs = append(errs, fmt.Errorf("invalid cache.type: %s (must be one of: %v)", c.Cache.Type, validCacheTypes[1:]))
	}
	if c.Cache.Type == CacheTypeRedis {
		if c.Cache.URL == "" {
			errs = append(errs, errors.New("cache.url is required when cache.type is redis"))
		}
		if c.Cache.TTL <= 0 {
			errs = append(errs, errors.New("cache.ttl must be greater than 0 when cache.type is redis"))
		}
	}

	if c.Pagination.DefaultSize <= 0 {
		errs = append(errs, errors.New("pagination.default_size must be greater than 0"))
	}
	if c.Pagination.MaxSize > 0 && c.Pagination.DefaultSize > c.Pagination.MaxSize {
		errs = append(errs, fmt.Errorf("pagination.default_size (%d) exceeds pagination.max_size (%d)",
			c.Pagination.DefaultSize, c.Pagination.MaxSize))
	}

	if !contains(validLogLevels, strings.ToLower(c.Observability.LogLevel)) {
		errs = append(errs, fmt.Errorf("invalid observability.log_level: %s (must be one of: %v)", c.Observability.LogLevel, validLogLevels))
	}
	if !contains(validLogFormats, strings.ToLower(c.Observability.LogFormat)) {
		errs = append(errs, fmt.Errorf("invalid observability.log_format: %s (must be one of: %v)", c.Observability.LogFormat, validLogFormats))
	}
	if c.Observability.TracingEnabled {
		if c.Observability.TracingEndpoint == "" {
			errs = append(errs, errors.New("observability.tracing_endpoint is required when tracing is enabled"))
		}
		if c.Observability.TracingSampleRate < 0 || c.Observability.TracingSampleRate > 1 {
			errs = append(errs, errors.New("observability.tracing_sample_rate must be between 0 and 1"))
		}
	}

	if c.Migrations.AutoApply && !c.Database.IsSQL() {
		errs = append(errs, fmt.Errorf("migrations.auto_apply requires a SQL database, got %s", c.Database.Type))
	}

	return errors.Join(errs...)
}

// String returns the full configuration as a formatted string
func (c *Config) String() string {
	return formatStruct(reflect.ValueOf(c).Elem(), reflect.Value{}, "")
}

// Redacted returns the configuration with secrets masked.
// Pass the secrets Config returned by LoadWithSecrets() to mask those values.
func (c *Config) Redacted(secrets *Config) string {
	if secrets == nil {
		return c.String()
	}
	return formatStruct(reflect.ValueOf(c).Elem(), reflect.ValueOf(secrets).Elem(), "")
}

// formatStruct renders v as indented YAML-like text. Leaf fields whose
// counterpart in mask is set print as "***".
func formatStruct(v, mask reflect.Value, prefix string) string {
	var sb strings.Builder
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		value := v.Field(i)
		if !value.CanInterface() {
			continue
		}
		var maskValue reflect.Value
		if mask.IsValid() {
			maskValue = mask.Field(i)
		}

		name := field.Name
		if tag := field.Tag.Get("mapstructure"); tag != "" && tag != "-" {
			name = tag
		} else {
			name = strings.ToLower(name)
		}

		if value.Kind() == reflect.Struct {
			fmt.Fprintf(&sb, "%s%s:\n", prefix, name)
			sb.WriteString(formatStruct(value, maskValue, prefix+"  "))
			continue
		}
		display := value.Interface()
		if shouldRedact(maskValue) {
			display = "***"
		}
		fmt.Fprintf(&sb, "%s%s: %v\n", prefix, name, display)
	}

	return sb.String()
}

func shouldRedact(v reflect.Value) bool {
	if !v.IsValid() {
		return false
	}
	return !v.IsZero()
}
