// Package logging writes one access log entry per request.
package logging

import (
	"net/http"
	"strings"
	"time"

	"github.com/HarshaM0211/jira-software/pkg/observability/logger"
	"github.com/HarshaM0211/jira-software/pkg/server/router"
)

// Log field name constants
const (
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatus     = "status"
	FieldDurationMS = "duration_ms"
	FieldRemoteAddr = "remote_addr"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
)

// Config configures request logging middleware behavior.
type Config struct {
	Enabled bool
	// LogStart adds a debug entry before the handler runs.
	LogStart bool
	// ExcludedPathPrefixes are not logged at all.
	ExcludedPathPrefixes []string
}

// DefaultConfig logs everything but the health and metrics probes.
func DefaultConfig() Config {
	return Config{
		Enabled:              true,
		ExcludedPathPrefixes: []string{"/health", "/metrics"},
	}
}

// Logging creates middleware with default configuration.
func Logging(log logger.Logger) router.MiddlewareFunc {
	return WithConfig(log, DefaultConfig())
}

// WithConfig creates request logging middleware with custom configuration.
//
// Cosa fa: registra metodo, path, status e durata di ogni richiesta con il
// request_id del contesto; 5xx e errori a livello error, 4xx a warn, il resto a info.
// Cosa NON fa: non registra body né header di autenticazione.
// Esempio minimo: r.Use(requestid.RequestID(), logging.Logging(log))
func WithConfig(log logger.Logger, cfg Config) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			req := c.Request()
			if !cfg.Enabled || excluded(req.URL.Path, cfg.ExcludedPathPrefixes) {
				return next(c)
			}

			reqLog := log.WithContext(req.Context())
			if cfg.LogStart {
				reqLog.Debug("request started", FieldMethod, req.Method, FieldPath, req.URL.Path)
			}

			start := time.Now()
			err := next(c)

			status := c.Response().Status()
			if err != nil && !c.Response().Written() {
				status = http.StatusInternalServerError
			}
			fields := []any{
				FieldMethod, req.Method,
				FieldPath, req.URL.Path,
				FieldStatus, status,
				FieldDurationMS, time.Since(start).Milliseconds(),
				FieldRemoteAddr, req.RemoteAddr,
			}
			if req.URL.RawQuery != "" {
				fields = append(fields, FieldQuery, req.URL.RawQuery)
			}
			if ua := req.UserAgent(); ua != "" {
				fields = append(fields, FieldUserAgent, ua)
			}

			switch {
			case err != nil:
				reqLog.Error("request failed", append(fields, FieldError, err)...)
			case status >= http.StatusInternalServerError:
				reqLog.Error("request completed", fields...)
			case status >= http.StatusBadRequest:
				reqLog.Warn("request completed", fields...)
			default:
				reqLog.Info("request completed", fields...)
			}
			return err
		}
	}
}

func excluded(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix = strings.TrimSpace(prefix); prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
