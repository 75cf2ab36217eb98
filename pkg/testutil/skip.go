// Package testutil holds helpers shared by the container-backed tests.
package testutil

import (
	"os"
	"testing"
)

// IntegrationEnv opts into container-backed tests on CI.
const IntegrationEnv = "INTEGRATION_TESTS"

// RequireIntegration skips t in short mode, and on CI unless
// INTEGRATION_TESTS is set. Local runs start containers by default.
func RequireIntegration(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if os.Getenv(IntegrationEnv) == "" && os.Getenv("CI") != "" {
		t.Skipf("skipping integration test (set %s=1 to run)", IntegrationEnv)
	}
}
