package query

import (
	"fmt"
	"math"

	"github.com/HarshaM0211/jira-software/pkg/apperror"
	"github.com/HarshaM0211/jira-software/pkg/i18n"
)

// Page addresses a slice of an ordered result. Page numbers are 1-based.
// The zero value means "unpaged": ports return every result.
type Page struct {
	No   int
	Size int
}

// NewPage validates and builds a page. No must be >= 1 and Size >= 1.
func NewPage(no, size int) (Page, error) {
	p := Page{No: no, Size: size}
	if err := p.Validate(0); err != nil {
		return Page{}, err
	}
	return p, nil
}

// Validate checks the page bounds. maxSize <= 0 disables the upper bound.
func (p Page) Validate(maxSize int) error {
	if p.No >= 1 && p.Size >= 1 && (maxSize <= 0 || p.Size <= maxSize) {
		return nil
	}
	limit := "unbounded"
	if maxSize > 0 {
		limit = fmt.Sprint(maxSize)
	}
	return apperror.ValidationWithCode(apperror.CodeInvalidPage,
		fmt.Sprintf("invalid page %d of size %d (size limit %s)", p.No, p.Size, limit),
		i18n.Params{"max": limit}, nil)
}

// IsZero reports whether the page is unpaged.
func (p Page) IsZero() bool {
	return p.No == 0 && p.Size == 0
}

// Offset returns the number of results to skip. Offsets that do not fit in
// an int saturate at math.MaxInt, which every port treats as past the end.
func (p Page) Offset() int {
	if p.No <= 0 || p.Size <= 0 {
		return 0
	}
	if p.No-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.No - 1) * p.Size
}

// Limit returns the maximum number of results.
func (p Page) Limit() int {
	return p.Size
}

// Slice returns the bounds of the page within a result of length n, clamped so
// that a page past the end yields an empty range.
func (p Page) Slice(n int) (start, end int) {
	if p.IsZero() {
		return 0, n
	}
	if n <= 0 {
		return 0, 0
	}
	start = p.Offset()
	if start > n {
		start = n
	}
	end = n
	if p.Size < n-start {
		end = start + p.Size
	}
	return start, end
}

// PageFromQuery reads "page" and "size", falling back to page 1 and
// defaultSize, and rejects sizes above maxSize.
func PageFromQuery(q SearchQuery, defaultSize, maxSize int) (Page, error) {
	no, ok, err := q.Int(KeyPage)
	if err != nil {
		return Page{}, err
	}
	if !ok {
		no = 1
	}
	size, ok, err := q.Int(KeySize)
	if err != nil {
		return Page{}, err
	}
	if !ok {
		size = int64(defaultSize)
	}
	p := Page{No: int(no), Size: int(size)}
	if err := p.Validate(maxSize); err != nil {
		return Page{}, err
	}
	return p, nil
}
