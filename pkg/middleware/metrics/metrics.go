// Package metrics records Prometheus HTTP metrics for every request.
package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HarshaM0211/jira-software/pkg/observability/metrics"
	"github.com/HarshaM0211/jira-software/pkg/server/router"
)

// IDPlaceholder replaces entity keys in the path label.
const IDPlaceholder = ":id"

// Metrics creates middleware that records Prometheus metrics for HTTP requests:
// the duration histogram and the request counter by method, path and status,
// plus the in-flight gauge. Numeric and UUID path segments are collapsed to
// IDPlaceholder so that /projects/1 and /projects/2 share a series.
func Metrics() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			metrics.IncrementInFlight()
			defer metrics.DecrementInFlight()

			start := time.Now()
			err := next(c)

			status := c.Response().Status()
			if err != nil && !c.Response().Written() {
				status = http.StatusInternalServerError
			}
			metrics.RecordHTTPMetrics(c.Request().Method, NormalizePath(c.Request().URL.Path), status, time.Since(start))

			return err
		}
	}
}

// NormalizePath collapses entity keys in path to IDPlaceholder.
func NormalizePath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if isKey(segment) {
			segments[i] = IDPlaceholder
		}
	}
	return strings.Join(segments, "/")
}

func isKey(segment string) bool {
	if segment == "" {
		return false
	}
	if strings.Trim(segment, "0123456789") == "" {
		return true
	}
	_, err := uuid.Parse(segment)
	return err == nil && len(segment) == 36
}
