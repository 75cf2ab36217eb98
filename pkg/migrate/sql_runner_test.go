package migrate

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/HarshaM0211/jira-software/pkg/repository"
)

func sqliteSource(dialect repository.Dialect) (Source, error) {
	if dialect != repository.SQLite {
		return Source{}, errors.New("only sqlite scripts in this test")
	}
	return Source{Files: projectScripts(), Dir: "migrations"}, nil
}

func TestRunWithDBRejectsMissingInputs(t *testing.T) {
	db := openSQLite(t)
	tests := []struct {
		name string
		run  func() error
	}{
		{"nil db", func() error {
			return RunWithDB(context.Background(), nil, "sqlite", sqliteSource, Command{Action: ActionUp}, defaultOptions())
		}},
		{"nil source", func() error {
			return RunWithDB(context.Background(), db, "sqlite", nil, Command{Action: ActionUp}, defaultOptions())
		}},
		{"unknown driver", func() error {
			return RunWithDB(context.Background(), db, "oracle", sqliteSource, Command{Action: ActionUp}, defaultOptions())
		}},
		{"source error", func() error {
			return RunWithDB(context.Background(), db, "postgres", sqliteSource, Command{Action: ActionUp}, defaultOptions())
		}},
		{"unknown subcommand", func() error {
			return RunWithDB(context.Background(), db, "sqlite", sqliteSource, Command{Action: "redo"}, defaultOptions())
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRunWithDBAppliesAndReverts(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	if err := RunWithDB(ctx, db, "sqlite3", sqliteSource, Command{Action: ActionUp}, defaultOptions()); err != nil {
		t.Fatalf("up: %v", err)
	}
	if err := RunWithDB(ctx, db, "sqlite3", sqliteSource, Command{Action: ActionStatus}, defaultOptions()); err != nil {
		t.Fatalf("status: %v", err)
	}
	if err := RunWithDB(ctx, db, "sqlite3", sqliteSource, Command{Action: ActionDown, Steps: 2}, defaultOptions()); err != nil {
		t.Fatalf("down: %v", err)
	}

	var rows int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+DefaultTable).Scan(&rows); err != nil {
		t.Fatalf("count versions: %v", err)
	}
	if rows != 0 {
		t.Fatalf("versions left = %d, want 0", rows)
	}
}

func TestApplyPending(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	applied, err := ApplyPending(ctx, db, "sqlite", sqliteSource, WithTable("auto_migrations"))
	if err != nil {
		t.Fatalf("ApplyPending: %v", err)
	}
	if applied != 2 {
		t.Fatalf("applied = %d, want 2", applied)
	}
	applied, err = ApplyPending(ctx, db, "sqlite", sqliteSource, WithTable("auto_migrations"))
	if err != nil || applied != 0 {
		t.Fatalf("second ApplyPending = %d, %v; want 0, nil", applied, err)
	}

	if _, err := ApplyPending(ctx, nil, "sqlite", sqliteSource); err == nil {
		t.Fatal("expected error for nil db")
	}
	if _, err := ApplyPending(ctx, db, "sqlite", func(repository.Dialect) (Source, error) {
		return Source{Files: fstest.MapFS{}, Dir: "missing"}, nil
	}); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
