package query

import (
	"strings"

	"github.com/HarshaM0211/jira-software/pkg/apperror"
)

// OrderBy is a sort specification. The zero value sorts descending on no
// explicit property, which means "backend default order".
type OrderBy struct {
	ascending  bool
	properties []string
}

// NewOrderBy builds a sort specification. Properties are trimmed; a blank
// property is rejected. Passing no properties yields the backend default.
func NewOrderBy(ascending bool, properties ...string) (OrderBy, error) {
	cleaned := make([]string, 0, len(properties))
	for _, p := range properties {
		p = strings.TrimSpace(p)
		if p == "" {
			return OrderBy{}, apperror.ValidationWithCode(apperror.CodeBlankProperty,
				"order by property must not be blank", nil, nil)
		}
		cleaned = append(cleaned, p)
	}
	return OrderBy{ascending: ascending, properties: cleaned}, nil
}

// DefaultOrderBy sorts descending on the given properties.
func DefaultOrderBy(properties ...string) (OrderBy, error) {
	return NewOrderBy(false, properties...)
}

// Ascending reports the sort direction. Defaults to false.
func (o OrderBy) Ascending() bool { return o.ascending }

// Properties returns a copy of the sort properties in priority order. Never nil.
func (o OrderBy) Properties() []string {
	out := make([]string, len(o.properties))
	copy(out, o.properties)
	return out
}

// IsEmpty reports whether the backend default order applies.
func (o OrderBy) IsEmpty() bool { return len(o.properties) == 0 }

func (o OrderBy) String() string {
	if o.IsEmpty() {
		return "default"
	}
	direction := "desc"
	if o.ascending {
		direction = "asc"
	}
	return strings.Join(o.properties, ",") + " " + direction
}
