package repository

import (
	"fmt"
	"strings"
)

// Dialect captures the SQL differences between supported drivers.
type Dialect struct {
	name      string
	numbered  bool
	returning bool
}

// Supported dialects.
var (
	// Postgres uses $n placeholders and INSERT ... RETURNING.
	Postgres = Dialect{name: "postgres", numbered: true, returning: true}
	// MySQL uses ? placeholders and LastInsertId.
	MySQL = Dialect{name: "mysql"}
	// SQLite uses ? placeholders and INSERT ... RETURNING (SQLite >= 3.35).
	SQLite = Dialect{name: "sqlite", returning: true}
)

// DialectFor resolves a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "mysql", "mariadb":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported sql dialect %q", driver)
	}
}

// Name returns the dialect name.
func (d Dialect) Name() string { return d.name }

// Placeholder returns the bind marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d.numbered {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// args accumulates bind arguments and renders their placeholders.
type args struct {
	dialect Dialect
	values  []interface{}
}

func (a *args) add(v interface{}) string {
	a.values = append(a.values, v)
	return a.dialect.Placeholder(len(a.values))
}

func (a *args) list(vs []interface{}) string {
	marks := make([]string, len(vs))
	for i, v := range vs {
		marks[i] = a.add(v)
	}
	return strings.Join(marks, ", ")
}
