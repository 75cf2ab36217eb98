package project

import (
	"fmt"
	"strings"
	"time"

	"github.com/HarshaM0211/jira-software/pkg/apperror"
	"github.com/HarshaM0211/jira-software/pkg/query"
)

// Search parameters beyond the shared q, active, type, sort and order.
const (
	ParamLead        = "lead"
	ParamCreatedFrom = "created_from"
	ParamCreatedTo   = "created_to"
)

var sortable = map[string]bool{
	PropertyID:        true,
	PropertyKey:       true,
	PropertyName:      true,
	PropertyType:      true,
	PropertyLead:      true,
	PropertyCreatedAt: true,
	PropertyUpdatedAt: true,
}

// SearchQuery turns request parameters into project criteria.
//
//	q             key, case-insensitive
//	active        true|false
//	type          software|business|service_desk
//	lead          exact lead
//	created_from  dd-MM-yyyy, inclusive
//	created_to    dd-MM-yyyy, inclusive through the end of that day
//	sort, order   property and asc|desc (desc when omitted)
type SearchQuery struct {
	params query.SearchQuery
}

var _ query.Filter = SearchQuery{}

// NewSearchQuery wraps params.
func NewSearchQuery(params query.SearchQuery) SearchQuery {
	return SearchQuery{params: params}
}

// NewFilter is the controller.FilterFunc for projects. It evaluates the
// criteria and order up front so bad parameters fail before the search runs.
func NewFilter(params query.SearchQuery) (query.Filter, error) {
	sq := NewSearchQuery(params)
	criteria, err := sq.Criteria()
	if err != nil {
		return nil, err
	}
	order, err := sq.order()
	if err != nil {
		return nil, err
	}
	return query.All(criteria...).SortedBy(order), nil
}

// Criteria implements query.Filter.
func (s SearchQuery) Criteria() ([]query.Criteria, error) {
	var criteria []query.Criteria
	add := func(c query.Criteria, err error) error {
		if err != nil {
			return err
		}
		criteria = append(criteria, c)
		return nil
	}

	if text := s.params.FreeText(); text != "" {
		if err := add(query.NewEqualsIgnoreCase(PropertyKey, text, true)); err != nil {
			return nil, err
		}
	}

	active, ok, err := s.params.Bool(query.KeyActive)
	if err != nil {
		return nil, err
	}
	if ok {
		if err := add(query.NewEquals(PropertyActive, active)); err != nil {
			return nil, err
		}
	}

	if raw, ok := s.params.GetFirst(query.KeyType); ok {
		t := Type(strings.ToLower(raw))
		if !t.Valid() {
			return nil, apperror.Validation(fmt.Sprintf("unknown project type %q", raw),
				map[string]interface{}{"parameter": query.KeyType})
		}
		if err := add(query.NewEquals(PropertyType, string(t))); err != nil {
			return nil, err
		}
	}

	if lead, ok := s.params.GetFirst(ParamLead); ok {
		if err := add(query.NewEquals(PropertyLead, lead)); err != nil {
			return nil, err
		}
	}

	from, hasFrom, err := s.params.Date(ParamCreatedFrom)
	if err != nil {
		return nil, err
	}
	to, hasTo, err := s.params.Date(ParamCreatedTo)
	if err != nil {
		return nil, err
	}
	if hasFrom && hasTo && to.Before(from) {
		return nil, apperror.Validation("created_to must not be before created_from",
			map[string]interface{}{"parameter": ParamCreatedTo})
	}
	if hasFrom {
		if err := add(query.NewMin(PropertyCreatedAt, from)); err != nil {
			return nil, err
		}
	}
	if hasTo {
		endOfDay := to.Add(24*time.Hour - time.Millisecond)
		if err := add(query.NewMax(PropertyCreatedAt, endOfDay)); err != nil {
			return nil, err
		}
	}
	return criteria, nil
}

// OrderBy implements query.Filter. Invalid sort parameters yield the
// backend default; NewFilter reports them instead.
func (s SearchQuery) OrderBy() query.OrderBy {
	order, err := s.order()
	if err != nil {
		return query.OrderBy{}
	}
	return order
}

func (s SearchQuery) order() (query.OrderBy, error) {
	property, ok := s.params.GetFirst(query.KeySort)
	if !ok {
		return query.OrderBy{}, nil
	}
	property = strings.ToLower(property)
	if !sortable[property] {
		return query.OrderBy{}, apperror.Validation(fmt.Sprintf("cannot sort by %q", property),
			map[string]interface{}{"parameter": query.KeySort})
	}

	ascending := false
	if direction, ok := s.params.GetFirst(query.KeyOrder); ok {
		switch strings.ToLower(direction) {
		case "asc":
			ascending = true
		case "desc":
		default:
			return query.OrderBy{}, apperror.Validation(fmt.Sprintf("order must be asc or desc, got %q", direction),
				map[string]interface{}{"parameter": query.KeyOrder})
		}
	}
	return query.NewOrderBy(ascending, property)
}
