// Package requestsize caps request bodies at the configured HTTP max request size.
package requestsize

import (
	"errors"
	"net/http"

	"github.com/HarshaM0211/jira-software/pkg/apperror"
	"github.com/HarshaM0211/jira-software/pkg/controller"
	"github.com/HarshaM0211/jira-software/pkg/server/router"
)

// Middleware enforces a maximum request body size in bytes.
// A non-positive maxBytes disables the middleware.
func Middleware(maxBytes int64) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			if maxBytes <= 0 {
				return next(c)
			}

			req := c.Request()
			if req == nil || req.Body == nil || req.Body == http.NoBody {
				return next(c)
			}

			// Fail fast when Content-Length is declared and exceeds the limit.
			if req.ContentLength > maxBytes {
				return controller.Error(c, apperror.TooLarge(maxBytes, nil))
			}

			req.Body = http.MaxBytesReader(c.Response(), req.Body, maxBytes)
			c.SetRequest(req)

			err := next(c)
			var maxBytesErr *http.MaxBytesError
			if err != nil && errors.As(err, &maxBytesErr) && !c.Response().Written() {
				return controller.Error(c, apperror.TooLarge(maxBytes, err))
			}
			return err
		}
	}
}
