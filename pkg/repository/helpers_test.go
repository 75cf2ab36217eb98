package repository

import (
	"testing"

	"github.com/HarshaM0211/jira-software/pkg/query"
)

func mustEquals(t *testing.T, name string, value any, ignoreCase bool) query.Equals {
	t.Helper()
	c, err := query.NewEqualsIgnoreCase(name, value, ignoreCase)
	if err != nil {
		t.Fatalf("equals %s: %v", name, err)
	}
	return c
}

func mustMin(t *testing.T, name string, value any) query.Min {
	t.Helper()
	c, err := query.NewMin(name, value)
	if err != nil {
		t.Fatalf("min %s: %v", name, err)
	}
	return c
}

func mustMax(t *testing.T, name string, value any) query.Max {
	t.Helper()
	c, err := query.NewMax(name, value)
	if err != nil {
		t.Fatalf("max %s: %v", name, err)
	}
	return c
}

func mustOrderBy(t *testing.T, ascending bool, properties ...string) query.OrderBy {
	t.Helper()
	o, err := query.NewOrderBy(ascending, properties...)
	if err != nil {
		t.Fatalf("order by %v: %v", properties, err)
	}
	return o
}
