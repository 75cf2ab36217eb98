// Package requestid assigns every request an identifier that is echoed in
// the X-Request-ID response header and carried by request-scoped loggers.
package requestid

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/HarshaM0211/jira-software/pkg/observability/logger"
	"github.com/HarshaM0211/jira-software/pkg/server/router"
)

// RequestIDHeader is the HTTP header name for request ID.
const RequestIDHeader = "X-Request-ID"

// ContextKey is the router.Context key holding the request ID.
const ContextKey = "request_id"

// maxLength bounds client supplied IDs; longer values are replaced.
const maxLength = 128

// RequestID creates middleware that keeps a client supplied X-Request-ID or
// generates a UUID, then stores it in the request context through
// logger.WithRequestID and in the response header.
func RequestID() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			requestID := strings.TrimSpace(c.Request().Header.Get(RequestIDHeader))
			if requestID == "" || len(requestID) > maxLength {
				requestID = uuid.New().String()
			}

			c.Set(ContextKey, requestID)
			c.Response().Header().Set(RequestIDHeader, requestID)
			c.SetRequest(c.Request().WithContext(logger.WithRequestID(c.Request().Context(), requestID)))

			return next(c)
		}
	}
}

// GetRequestID extracts the request ID from a context.
// Returns empty string if no request ID is found.
func GetRequestID(ctx context.Context) string {
	return logger.RequestID(ctx)
}
