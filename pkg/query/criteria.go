// Package query provides the filter and sort vocabulary shared by services and
// persistence ports, plus a typed view over raw request parameters.
//
// A search is always the logical AND of its criteria. There is no negation,
// OR or nesting: callers needing OR semantics issue multiple searches.
package query

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/HarshaM0211/jira-software/pkg/apperror"
	"github.com/HarshaM0211/jira-software/pkg/i18n"
)

// Criteria is a single property-level filter condition. The variant set is
// closed: Equals, Min and Max are the only implementations.
type Criteria interface {
	// Property returns the trimmed, non-blank property name.
	Property() string
	// Value returns the non-nil comparison value.
	Value() any
	String() string

	criteria()
}

type property struct {
	name  string
	value any
}

func (p property) Property() string { return p.name }
func (p property) Value() any       { return p.value }
func (property) criteria()          {}

// Equals matches properties equal to the value. IgnoreCase only applies to
// textual values.
type Equals struct {
	property
	ignoreCase bool
}

// IgnoreCase reports whether textual comparison is case-insensitive.
func (e Equals) IgnoreCase() bool { return e.ignoreCase }

func (e Equals) String() string {
	if e.ignoreCase {
		return fmt.Sprintf("%s ~= %s", e.name, formatValue(e.value))
	}
	return fmt.Sprintf("%s = %s", e.name, formatValue(e.value))
}

// Min matches properties greater than or equal to the value.
type Min struct {
	property
}

func (m Min) String() string {
	return fmt.Sprintf("%s >= %s", m.name, formatValue(m.value))
}

// Max matches properties less than or equal to the value.
type Max struct {
	property
}

func (m Max) String() string {
	return fmt.Sprintf("%s <= %s", m.name, formatValue(m.value))
}

// NewEquals builds a case-sensitive equality criteria.
func NewEquals(name string, value any) (Equals, error) {
	return NewEqualsIgnoreCase(name, value, false)
}

// NewEqualsIgnoreCase builds an equality criteria with explicit case handling.
func NewEqualsIgnoreCase(name string, value any, ignoreCase bool) (Equals, error) {
	p, err := newProperty(name, value)
	if err != nil {
		return Equals{}, err
	}
	return Equals{property: p, ignoreCase: ignoreCase}, nil
}

// NewMin builds an inclusive lower bound.
func NewMin(name string, value any) (Min, error) {
	p, err := newProperty(name, value)
	if err != nil {
		return Min{}, err
	}
	return Min{property: p}, nil
}

// NewMax builds an inclusive upper bound.
func NewMax(name string, value any) (Max, error) {
	p, err := newProperty(name, value)
	if err != nil {
		return Max{}, err
	}
	return Max{property: p}, nil
}

// Validate checks every criteria carries a non-blank property and a non-nil
// value. Criteria built through the constructors always pass; zero values do not.
func Validate(criteria []Criteria) error {
	for i, c := range criteria {
		if c == nil {
			return apperror.ValidationWithCode(apperror.CodeNilValue,
				fmt.Sprintf("criteria at index %d is nil", i), i18n.Params{"property": fmt.Sprintf("#%d", i)}, nil)
		}
		if _, err := newProperty(c.Property(), c.Value()); err != nil {
			return err
		}
	}
	return nil
}

func newProperty(name string, value any) (property, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return property{}, apperror.ValidationWithCode(apperror.CodeBlankProperty,
			"criteria property must not be blank", nil, nil)
	}
	if isNil(value) {
		return property{}, apperror.ValidationWithCode(apperror.CodeNilValue,
			fmt.Sprintf("criteria value for %s must not be null", trimmed), i18n.Params{"property": trimmed}, nil)
	}
	return property{name: trimmed, value: value}, nil
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func formatValue(value any) string {
	if s, ok := value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(value)
}
