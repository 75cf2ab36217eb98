package project

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/HarshaM0211/jira-software/pkg/config"
	"github.com/HarshaM0211/jira-software/pkg/migrate"
	"github.com/HarshaM0211/jira-software/pkg/observability/logger"
	"github.com/HarshaM0211/jira-software/pkg/store"
	"github.com/HarshaM0211/jira-software/pkg/testutil"
)

func TestServiceOnPostgres(t *testing.T) {
	testutil.RequireIntegration(t)
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("jira"),
		postgres.WithUsername("jira"),
		postgres.WithPassword("jira"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("cannot start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pg); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	url, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	backend, err := store.NewRepositoryBackend(config.DatabaseConfig{
		Type:         config.DatabaseTypePostgres,
		URL:          url,
		MaxOpenConns: 5,
		QueryTimeout: 10 * time.Second,
	}, logger.NewNop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })

	if _, err := migrate.ApplyPending(ctx, backend.SQL.DB(), backend.SQL.Driver(), MigrationSource); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	deps := memoryDeps()
	deps.Backend = backend
	svc, err := NewService(deps)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	exerciseService(t, svc)
}
