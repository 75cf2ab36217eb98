package query

// Filter is what searches and counts consume. Domain search queries implement
// it by turning their SearchQuery values into criteria.
type Filter interface {
	Criteria() ([]Criteria, error)
	OrderBy() OrderBy
}

// Conjunction is a fixed list of criteria combined with AND.
type Conjunction struct {
	criteria []Criteria
	order    OrderBy
}

// All returns a Filter matching entities satisfying every criteria. With no
// criteria it matches everything.
func All(criteria ...Criteria) Conjunction {
	return Conjunction{criteria: append([]Criteria(nil), criteria...)}
}

// SortedBy returns a copy of c with the given order.
func (c Conjunction) SortedBy(order OrderBy) Conjunction {
	c.order = order
	return c
}

// Criteria implements Filter.
func (c Conjunction) Criteria() ([]Criteria, error) {
	return append([]Criteria(nil), c.criteria...), nil
}

// OrderBy implements Filter.
func (c Conjunction) OrderBy() OrderBy {
	return c.order
}
