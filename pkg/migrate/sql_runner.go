package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/HarshaM0211/jira-software/pkg/repository"
)

// Source locates the migration scripts of one dialect.
type Source struct {
	Files fs.FS
	Dir   string
}

// SourceFunc resolves the scripts for a dialect, e.g. a per-dialect
// subdirectory of an embedded filesystem.
type SourceFunc func(dialect repository.Dialect) (Source, error)

// RunWithDB builds a SQLManager over an open handle and executes cmd.
func RunWithDB(ctx context.Context, db *sql.DB, driver string, sources SourceFunc, cmd Command, opts Options, managerOpts ...ManagerOption) error {
	if db == nil {
		return fmt.Errorf("database handle is required")
	}
	if sources == nil {
		return fmt.Errorf("migration source is required")
	}

	dialect, err := repository.DialectFor(driver)
	if err != nil {
		return err
	}
	source, err := sources(dialect)
	if err != nil {
		return err
	}

	manager, err := NewSQLManager(db, dialect, source.Files, source.Dir, managerOpts...)
	if err != nil {
		return err
	}
	if opts.Path == "" {
		opts.Path = source.Dir
	}
	return Execute(ctx, cmd, opts, manager.Operations())
}

// ApplyPending runs every pending migration and returns the applied count.
// The serve command uses it when migrations.auto_apply is set.
func ApplyPending(ctx context.Context, db *sql.DB, driver string, sources SourceFunc, managerOpts ...ManagerOption) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("database handle is required")
	}
	if sources == nil {
		return 0, fmt.Errorf("migration source is required")
	}
	dialect, err := repository.DialectFor(driver)
	if err != nil {
		return 0, err
	}
	source, err := sources(dialect)
	if err != nil {
		return 0, err
	}
	manager, err := NewSQLManager(db, dialect, source.Files, source.Dir, managerOpts...)
	if err != nil {
		return 0, err
	}
	return manager.Up(ctx)
}
