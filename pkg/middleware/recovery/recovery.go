// Package recovery turns handler panics into 500 error responses.
package recovery

import (
	"fmt"
	"runtime/debug"

	"github.com/HarshaM0211/jira-software/pkg/apperror"
	"github.com/HarshaM0211/jira-software/pkg/controller"
	"github.com/HarshaM0211/jira-software/pkg/observability/logger"
	"github.com/HarshaM0211/jira-software/pkg/server/router"
)

// Recovery creates middleware that recovers from panics in HTTP handlers.
// The panic is logged with its stack trace and, unless the handler already
// wrote a response, answered with the standard internal error body.
func Recovery(log logger.Logger) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				ctx := c.Request().Context()
				log.WithContext(ctx).Error("panic recovered",
					"method", c.Request().Method,
					"path", c.Request().URL.Path,
					"panic", r,
					"stack", string(debug.Stack()),
				)

				if c.Response().Written() {
					return
				}
				if writeErr := controller.Error(c, apperror.Internal("handler panicked", fmt.Errorf("panic: %v", r))); writeErr != nil {
					log.WithContext(ctx).Error("failed to send error response", "error", writeErr)
				}
				err = nil
			}()

			return next(c)
		}
	}
}
