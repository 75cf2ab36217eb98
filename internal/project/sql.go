package project

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/HarshaM0211/jira-software/pkg/migrate"
	"github.com/HarshaM0211/jira-software/pkg/repository"
)

// Table is the SQL table, MongoDB collection and DynamoDB table name before
// the configured prefix.
const Table = "projects"

//go:embed migrations
var migrations embed.FS

// MigrationSource returns the embedded scripts for dialect.
func MigrationSource(dialect repository.Dialect) (migrate.Source, error) {
	switch dialect {
	case repository.Postgres, repository.MySQL, repository.SQLite:
		return migrate.Source{Files: migrations, Dir: "migrations/" + dialect.Name()}, nil
	}
	return migrate.Source{}, fmt.Errorf("no project migrations for dialect %q", dialect.Name())
}

// SQLMapper maps projects to rows of the projects table.
type SQLMapper struct {
	repository.ColumnMap
}

var _ repository.EntityMapper[int64, Project] = SQLMapper{}

// NewSQLMapper returns the mapper for the schema in migrations/.
func NewSQLMapper() SQLMapper {
	return SQLMapper{ColumnMap: repository.ColumnMap{
		PropertyID:        "id",
		PropertyKey:       "project_key",
		PropertyName:      "name",
		PropertyType:      "project_type",
		PropertyLead:      "lead_account",
		PropertyActive:    "active",
		PropertyCreatedAt: "created_at",
		PropertyUpdatedAt: "updated_at",
	}}
}

// Columns implements repository.EntityMapper.
func (SQLMapper) Columns() []string {
	return []string{"project_key", "name", "project_type", "lead_account", "active", "created_at", "updated_at", "version"}
}

// ToRow implements repository.EntityMapper.
func (SQLMapper) ToRow(p *Project) ([]interface{}, error) {
	return []interface{}{p.Key, p.Name, string(p.Type), p.Lead, p.Active, p.CreatedAt.UTC(), p.UpdatedAt.UTC(), p.Version}, nil
}

// FromRow implements repository.EntityMapper.
func (SQLMapper) FromRow(rows *sql.Rows) (*Project, error) {
	var (
		p           Project
		projectType string
	)
	if err := rows.Scan(&p.ID, &p.Key, &p.Name, &projectType, &p.Lead, &p.Active, &p.CreatedAt, &p.UpdatedAt, &p.Version); err != nil {
		return nil, err
	}
	p.Type = Type(projectType)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

// GetID implements repository.Identity.
func (SQLMapper) GetID(p *Project) int64 { return p.ID }

// SetID implements repository.Identity.
func (SQLMapper) SetID(p *Project, id int64) { p.ID = id }
