package health

import (
	"net/http"

	"github.com/HarshaM0211/jira-software/pkg/server/router"
)

// Handler serves the aggregated result: 200 when healthy or degraded, 503
// when any component is unhealthy.
func Handler(registry *Registry) router.HandlerFunc {
	return func(c router.Context) error {
		result := registry.Check(c.Request().Context())
		if !result.IsHealthy() {
			return c.JSON(http.StatusServiceUnavailable, result)
		}
		return c.JSON(http.StatusOK, result)
	}
}
