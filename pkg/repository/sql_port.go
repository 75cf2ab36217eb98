package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/HarshaM0211/jira-software/pkg/apperror"
	"github.com/HarshaM0211/jira-software/pkg/i18n"
	"github.com/HarshaM0211/jira-software/pkg/query"
)

// SQLExecutor defines the interface for executing SQL queries.
// This can be a *sql.DB, *sql.Tx, or any adapter that provides these methods.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// EntityMapper defines how to map between entities and database rows.
type EntityMapper[K comparable, E any] interface {
	Identity[K, E]

	// Columns lists the non-key columns, in the order ToRow returns values.
	Columns() []string

	// ToRow returns the values of Columns() for entity.
	ToRow(entity *E) ([]interface{}, error)

	// FromRow scans a row selected as (key column, Columns()...) into an entity.
	FromRow(rows *sql.Rows) (*E, error)

	// Column resolves a criteria or order property to a column name.
	Column(property string) (string, bool)
}

// SQLPort is a Port over a relational database.
//
// Keys are assigned by the database (RETURNING or LastInsertId) unless a
// KeyGenerator is configured. Without an explicit order, results are sorted
// by key ascending so pages are stable.
type SQLPort[K comparable, E any] struct {
	executor      SQLExecutor
	dialect       Dialect
	tableName     string
	idColumn      string
	versionColumn string
	mapper        EntityMapper[K, E]
	tx            TransactionManager
	keys          KeyGenerator[K]
}

// NewSQLPort creates a SQL persistence port for one table.
func NewSQLPort[K comparable, E any](
	executor SQLExecutor,
	dialect Dialect,
	tableName string,
	idColumn string,
	mapper EntityMapper[K, E],
) *SQLPort[K, E] {
	return &SQLPort[K, E]{
		executor:      executor,
		dialect:       dialect,
		tableName:     tableName,
		idColumn:      idColumn,
		versionColumn: "version",
		mapper:        mapper,
		tx:            noTransaction{},
	}
}

// WithTransactions runs batch writes inside transactions of tm.
func (r *SQLPort[K, E]) WithTransactions(tm TransactionManager) *SQLPort[K, E] {
	if tm != nil {
		r.tx = tm
	}
	return r
}

// WithKeyGenerator makes the port assign keys itself instead of the database.
func (r *SQLPort[K, E]) WithKeyGenerator(keys KeyGenerator[K]) *SQLPort[K, E] {
	r.keys = keys
	return r
}

// WithVersionColumn overrides the optimistic locking column (default "version").
func (r *SQLPort[K, E]) WithVersionColumn(column string) *SQLPort[K, E] {
	r.versionColumn = column
	return r
}

// Save inserts entity and stores the assigned key on it.
func (r *SQLPort[K, E]) Save(ctx context.Context, entity *E) (K, error) {
	var zero K
	if entity == nil {
		return zero, errors.New("entity cannot be nil")
	}

	values, err := r.mapper.ToRow(entity)
	if err != nil {
		return zero, fmt.Errorf("failed to map entity to row: %w", err)
	}
	columns := r.mapper.Columns()

	if r.keys != nil {
		id := r.keys()
		columns = append([]string{r.idColumn}, columns...)
		values = append([]interface{}{id}, values...)
		stmt, bound := r.insertSQL(columns, values)
		if _, err := r.executor.ExecContext(ctx, stmt, bound...); err != nil {
			return zero, fmt.Errorf("failed to create entity: %w", err)
		}
		r.mapper.SetID(entity, id)
		return id, nil
	}

	stmt, bound := r.insertSQL(columns, values)

	var id K
	if r.dialect.returning {
		stmt += " RETURNING " + r.idColumn
		if err := r.executor.QueryRowContext(ctx, stmt, bound...).Scan(&id); err != nil {
			return zero, fmt.Errorf("failed to create entity: %w", err)
		}
	} else {
		result, err := r.executor.ExecContext(ctx, stmt, bound...)
		if err != nil {
			return zero, fmt.Errorf("failed to create entity: %w", err)
		}
		lastID, err := result.LastInsertId()
		if err != nil {
			return zero, fmt.Errorf("failed to read generated key: %w", err)
		}
		if id, err = keyFromInt64[K](lastID); err != nil {
			return zero, err
		}
	}

	r.mapper.SetID(entity, id)
	return id, nil
}

// SaveAll inserts entities in one transaction when a TransactionManager is set.
func (r *SQLPort[K, E]) SaveAll(ctx context.Context, entities []*E) ([]K, error) {
	ids := make([]K, 0, len(entities))
	err := r.tx.WithTransaction(ctx, func(ctx context.Context) error {
		for i, entity := range entities {
			id, err := r.Save(ctx, entity)
			if err != nil {
				return fmt.Errorf("save entity %d of %d: %w", i+1, len(entities), err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Read retrieves an entity by its key.
func (r *SQLPort[K, E]) Read(ctx context.Context, id K) (*E, error) {
	a := &args{dialect: r.dialect}
	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		r.selectList(), r.tableName, r.idColumn, a.add(id))

	entities, err := r.query(ctx, stmt, a.values)
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, ErrNotFound
	}
	return entities[0], nil
}

// ReadAll retrieves the entities whose keys exist.
func (r *SQLPort[K, E]) ReadAll(ctx context.Context, ids []K) (map[K]*E, error) {
	ids = UniqueKeys(ids)
	out := make(map[K]*E, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	a := &args{dialect: r.dialect}
	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s IN (%s)",
		r.selectList(), r.tableName, r.idColumn, a.list(toInterfaces(ids)))

	entities, err := r.query(ctx, stmt, a.values)
	if err != nil {
		return nil, err
	}
	for _, entity := range entities {
		out[r.mapper.GetID(entity)] = entity
	}
	return out, nil
}

// Update writes entity under id. Versioned entities are updated only when
// their version matches the stored one.
func (r *SQLPort[K, E]) Update(ctx context.Context, id K, entity *E) error {
	if entity == nil {
		return errors.New("entity cannot be nil")
	}
	r.mapper.SetID(entity, id)

	values, err := r.mapper.ToRow(entity)
	if err != nil {
		return fmt.Errorf("failed to map entity to row: %w", err)
	}
	columns := r.mapper.Columns()

	versioned, isVersioned := asVersioned(entity)
	var currentVersion int64
	if isVersioned {
		currentVersion = versioned.GetVersion()
		for i, col := range columns {
			if col == r.versionColumn {
				values[i] = currentVersion + 1
			}
		}
	}

	a := &args{dialect: r.dialect}
	setClauses := make([]string, len(columns))
	for i, col := range columns {
		setClauses[i] = fmt.Sprintf("%s = %s", col, a.add(values[i]))
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		r.tableName, strings.Join(setClauses, ", "), r.idColumn, a.add(id))
	if isVersioned {
		stmt += fmt.Sprintf(" AND %s = %s", r.versionColumn, a.add(currentVersion))
	}

	result, err := r.executor.ExecContext(ctx, stmt, a.values...)
	if err != nil {
		return fmt.Errorf("failed to update entity: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if err := r.explainNoRows(ctx, id, isVersioned, currentVersion); err != nil {
			return err
		}
	}

	if isVersioned {
		versioned.SetVersion(currentVersion + 1)
	}
	return nil
}

// explainNoRows tells a missing row apart from a stale version. MySQL also
// reports zero affected rows for an update that changes nothing, which is not
// an error.
func (r *SQLPort[K, E]) explainNoRows(ctx context.Context, id K, versioned bool, expected int64) error {
	a := &args{dialect: r.dialect}
	if !versioned {
		stmt := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = %s", r.tableName, r.idColumn, a.add(id))
		var count int64
		if err := r.executor.QueryRowContext(ctx, stmt, a.values...).Scan(&count); err != nil {
			return fmt.Errorf("failed to check entity existence: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return nil
	}

	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s", r.versionColumn, r.tableName, r.idColumn, a.add(id))
	var actual int64
	err := r.executor.QueryRowContext(ctx, stmt, a.values...).Scan(&actual)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check entity version: %w", err)
	}
	if actual != expected {
		return NewOptimisticLockError(id, expected, actual)
	}
	return nil
}

// Purge deletes the row for id, if any.
func (r *SQLPort[K, E]) Purge(ctx context.Context, id K) error {
	a := &args{dialect: r.dialect}
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = %s", r.tableName, r.idColumn, a.add(id))
	if _, err := r.executor.ExecContext(ctx, stmt, a.values...); err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}
	return nil
}

// PurgeAll deletes the rows for ids with a single statement.
func (r *SQLPort[K, E]) PurgeAll(ctx context.Context, ids []K) error {
	ids = UniqueKeys(ids)
	if len(ids) == 0 {
		return nil
	}
	a := &args{dialect: r.dialect}
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)", r.tableName, r.idColumn, a.list(toInterfaces(ids)))
	if _, err := r.executor.ExecContext(ctx, stmt, a.values...); err != nil {
		return fmt.Errorf("failed to delete entities: %w", err)
	}
	return nil
}

// Count returns the number of rows in the table.
func (r *SQLPort[K, E]) Count(ctx context.Context) (int64, error) {
	return r.CountMatching(ctx, nil)
}

// CountMatching returns the number of rows matching every criteria.
func (r *SQLPort[K, E]) CountMatching(ctx context.Context, criteria []query.Criteria) (int64, error) {
	a := &args{dialect: r.dialect}
	where, err := r.where(a, criteria)
	if err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", r.tableName, where)

	var count int64
	if err := r.executor.QueryRowContext(ctx, stmt, a.values...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entities: %w", err)
	}
	return count, nil
}

// Search retrieves a page of rows matching every criteria.
func (r *SQLPort[K, E]) Search(ctx context.Context, criteria []query.Criteria, orderBy query.OrderBy, page query.Page) ([]*E, error) {
	a := &args{dialect: r.dialect}
	where, err := r.where(a, criteria)
	if err != nil {
		return nil, err
	}
	order, err := r.orderBy(orderBy)
	if err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf("SELECT %s FROM %s%s%s", r.selectList(), r.tableName, where, order)
	if !page.IsZero() {
		stmt += fmt.Sprintf(" LIMIT %s OFFSET %s", a.add(page.Limit()), a.add(page.Offset()))
	}
	return r.query(ctx, stmt, a.values)
}

func (r *SQLPort[K, E]) query(ctx context.Context, stmt string, values []interface{}) ([]*E, error) {
	rows, err := r.executor.QueryContext(ctx, stmt, values...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	entities := []*E{}
	for rows.Next() {
		entity, err := r.mapper.FromRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return entities, nil
}

// where renders the conjunction of criteria, binding values through a.
func (r *SQLPort[K, E]) where(a *args, criteria []query.Criteria) (string, error) {
	if len(criteria) == 0 {
		return "", nil
	}
	if err := query.Validate(criteria); err != nil {
		return "", err
	}

	clauses := make([]string, 0, len(criteria))
	for _, c := range criteria {
		column, err := r.column(c.Property())
		if err != nil {
			return "", err
		}
		switch c := c.(type) {
		case query.Equals:
			if _, textual := c.Value().(string); textual && c.IgnoreCase() {
				clauses = append(clauses, fmt.Sprintf("LOWER(%s) = LOWER(%s)", column, a.add(c.Value())))
			} else {
				clauses = append(clauses, fmt.Sprintf("%s = %s", column, a.add(c.Value())))
			}
		case query.Min:
			clauses = append(clauses, fmt.Sprintf("%s >= %s", column, a.add(c.Value())))
		case query.Max:
			clauses = append(clauses, fmt.Sprintf("%s <= %s", column, a.add(c.Value())))
		default:
			return "", fmt.Errorf("unsupported criteria %T", c)
		}
	}
	return " WHERE " + strings.Join(clauses, " AND "), nil
}

func (r *SQLPort[K, E]) orderBy(o query.OrderBy) (string, error) {
	if o.IsEmpty() {
		return fmt.Sprintf(" ORDER BY %s ASC", r.idColumn), nil
	}
	direction := "DESC"
	if o.Ascending() {
		direction = "ASC"
	}
	parts := make([]string, 0, len(o.Properties())+1)
	for _, p := range o.Properties() {
		column, err := r.column(p)
		if err != nil {
			return "", err
		}
		parts = append(parts, column+" "+direction)
	}
	parts = append(parts, r.idColumn+" ASC")
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

func (r *SQLPort[K, E]) column(property string) (string, error) {
	if column, ok := r.mapper.Column(property); ok {
		return column, nil
	}
	return "", apperror.ValidationWithCode(apperror.CodeUnknownProperty,
		fmt.Sprintf("unknown search property %s", property), i18n.Params{"property": property}, nil)
}

func (r *SQLPort[K, E]) selectList() string {
	return strings.Join(append([]string{r.idColumn}, r.mapper.Columns()...), ", ")
}

func (r *SQLPort[K, E]) insertSQL(columns []string, values []interface{}) (string, []interface{}) {
	a := &args{dialect: r.dialect}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", r.tableName, strings.Join(columns, ", "), a.list(values))
	return stmt, a.values
}

// ColumnMap is a ready-made property to column table for EntityMapper.Column.
type ColumnMap map[string]string

// Column implements the lookup half of EntityMapper.
func (m ColumnMap) Column(property string) (string, bool) {
	column, ok := m[property]
	return column, ok
}

func keyFromInt64[K comparable](v int64) (K, error) {
	var id K
	switch p := any(&id).(type) {
	case *int64:
		*p = v
	case *int:
		*p = int(v)
	case *int32:
		*p = int32(v)
	case *uint64:
		*p = uint64(v)
	default:
		return id, fmt.Errorf("generated key %d cannot be stored in key type %T", v, id)
	}
	return id, nil
}

func toInterfaces[K any](ids []K) []interface{} {
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
