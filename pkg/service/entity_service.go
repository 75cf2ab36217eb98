// Package service implements the generic entity service layer: a read and
// search contract returning DTO projections, and an orchestration service
// that creates, merges and purges entities through a persistence port.
package service

import (
	"context"

	"github.com/HarshaM0211/jira-software/pkg/query"
)

// EntityService is the read and search contract exposed to handlers.
// Page numbers are 1-based.
type EntityService[K comparable, D any] interface {
	// Read looks an entity up; absence is a NotFound lookup, not an error.
	Read(ctx context.Context, id K) (Lookup[D], error)
	// ReadRequired fails with a not-found AppError when the entity is absent.
	ReadRequired(ctx context.Context, id K) (D, error)
	// ReadMany returns the entities that exist. Missing ids are absent from
	// the result and duplicates collapse.
	ReadMany(ctx context.Context, ids []K) (map[K]D, error)
	Count(ctx context.Context) (int64, error)
	// ReadPage returns one page in the default order. A page past the end is
	// empty.
	ReadPage(ctx context.Context, pageNo, pageSize int) ([]D, error)
	CountSearch(ctx context.Context, filter query.Filter) (int64, error)
	Search(ctx context.Context, filter query.Filter, pageNo, pageSize int) ([]D, error)
	SearchPage(ctx context.Context, filter query.Filter, pageNo, pageSize int) (PageResult[D], error)
}

// Lookup is the outcome of a non-strict read.
type Lookup[D any] struct {
	value D
	found bool
}

// Found wraps a present value.
func Found[D any](value D) Lookup[D] {
	return Lookup[D]{value: value, found: true}
}

// NotFound is the empty lookup.
func NotFound[D any]() Lookup[D] {
	return Lookup[D]{}
}

// Get returns the value and whether it was found.
func (l Lookup[D]) Get() (D, bool) {
	return l.value, l.found
}

// IsFound reports whether the lookup holds a value.
func (l Lookup[D]) IsFound() bool {
	return l.found
}

// OrElse returns the value, or fallback when absent.
func (l Lookup[D]) OrElse(fallback D) D {
	if l.found {
		return l.value
	}
	return fallback
}

// PageResult is a page of DTOs plus the totals handlers render.
type PageResult[D any] struct {
	Items      []D   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalPages int   `json:"total_pages"`
}

func newPageResult[D any](items []D, total int64, page query.Page) PageResult[D] {
	pages := 0
	if page.Size > 0 {
		pages = int((total + int64(page.Size) - 1) / int64(page.Size))
	}
	return PageResult[D]{
		Items:      items,
		Total:      total,
		Page:       page.No,
		Size:       page.Size,
		TotalPages: pages,
	}
}
