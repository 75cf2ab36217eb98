package query

import (
	"errors"
	"testing"
	"time"
)

type projectType string

func mustEquals(t *testing.T, name string, value any, ignoreCase bool) Equals {
	t.Helper()
	c, err := NewEqualsIgnoreCase(name, value, ignoreCase)
	if err != nil {
		t.Fatalf("NewEqualsIgnoreCase() error = %v", err)
	}
	return c
}

func TestMatch(t *testing.T) {
	jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	minAge, _ := NewMin("age", 18)
	maxAge, _ := NewMax("age", 65.5)
	since, _ := NewMin("created_at", jan)

	tests := []struct {
		name    string
		c       Criteria
		actual  any
		want    bool
		wantErr bool
	}{
		{"equals string", mustEquals(t, "name", "JIRA", false), "JIRA", true, false},
		{"equals is case sensitive", mustEquals(t, "name", "jira", false), "JIRA", false, false},
		{"equals ignore case", mustEquals(t, "name", "jira", true), "JIRA", true, false},
		{"named string type", mustEquals(t, "type", "software", false), projectType("software"), true, false},
		{"ints across kinds", mustEquals(t, "id", int64(7), false), int32(7), true, false},
		{"bool", mustEquals(t, "active", true, false), true, true, false},
		{"min inclusive", minAge, 18, true, false},
		{"min below", minAge, uint8(17), false, false},
		{"max float vs int", maxAge, 65, true, false},
		{"max above", maxAge, 66, false, false},
		{"time bound", since, feb, true, false},
		{"pointer actual", minAge, func() *int { v := 20; return &v }(), true, false},
		{"missing actual", minAge, nil, false, false},
		{"mixed families", mustEquals(t, "id", "7", false), 7, false, true},
		{"ignore case on numbers falls back to compare", mustEquals(t, "id", 7, true), 7, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Match(tt.c, tt.actual)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Match() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrIncomparable) {
				t.Errorf("Match() error = %v, want ErrIncomparable", err)
			}
			if got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchAll(t *testing.T) {
	entity := map[string]any{"name": "Jira", "age": 30}
	lookup := func(p string) (any, bool) {
		v, ok := entity[p]
		return v, ok
	}
	minAge, _ := NewMin("age", 18)
	maxAge, _ := NewMax("age", 25)

	ok, err := MatchAll([]Criteria{mustEquals(t, "name", "jira", true), minAge}, lookup)
	if err != nil || !ok {
		t.Errorf("MatchAll(all true) = %v, %v", ok, err)
	}
	ok, err = MatchAll([]Criteria{minAge, maxAge}, lookup)
	if err != nil || ok {
		t.Errorf("MatchAll(one false) = %v, %v", ok, err)
	}
	ok, err = MatchAll([]Criteria{mustEquals(t, "lead", "bob", false)}, lookup)
	if err != nil || ok {
		t.Errorf("MatchAll(missing property) = %v, %v", ok, err)
	}
	ok, err = MatchAll(nil, lookup)
	if err != nil || !ok {
		t.Errorf("MatchAll(nil) = %v, %v", ok, err)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b any
		want int
	}{
		{1, 2, -1},
		{uint64(5), int8(5), 0},
		{2.5, 2, 1},
		{"a", "b", -1},
		{false, true, -1},
		{true, true, 0},
	}
	for _, tt := range tests {
		got, err := Compare(tt.a, tt.b)
		if err != nil || got != tt.want {
			t.Errorf("Compare(%v, %v) = %d, %v, want %d", tt.a, tt.b, got, err, tt.want)
		}
	}

	if _, err := Compare(time.Now(), "now"); !errors.Is(err, ErrIncomparable) {
		t.Errorf("Compare(time, string) error = %v", err)
	}
	if _, err := Compare(nil, 1); !errors.Is(err, ErrIncomparable) {
		t.Errorf("Compare(nil, 1) error = %v", err)
	}
}
