package query

import (
	"math"
	"testing"

	"github.com/HarshaM0211/jira-software/pkg/apperror"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		no, size   int
		wantErr    bool
		wantOffset int
	}{
		{1, 10, false, 0},
		{3, 20, false, 40},
		{0, 10, true, 0},
		{1, 0, true, 0},
		{-1, 5, true, 0},
	}
	for _, tt := range tests {
		p, err := NewPage(tt.no, tt.size)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewPage(%d, %d) error = %v, wantErr %v", tt.no, tt.size, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			if !apperror.IsValidation(err) {
				t.Errorf("NewPage(%d, %d) error = %v, want validation error", tt.no, tt.size, err)
			}
			continue
		}
		if p.Offset() != tt.wantOffset || p.Limit() != tt.size {
			t.Errorf("NewPage(%d, %d) offset = %d, limit = %d", tt.no, tt.size, p.Offset(), p.Limit())
		}
	}
}

func TestPageFromQuery(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string][]string
		want    Page
		wantErr bool
	}{
		{"defaults", nil, Page{No: 1, Size: 20}, false},
		{"explicit", map[string][]string{"page": {"3"}, "size": {"5"}}, Page{No: 3, Size: 5}, false},
		{"too large", map[string][]string{"size": {"500"}}, Page{}, true},
		{"not a number", map[string][]string{"page": {"two"}}, Page{}, true},
		{"zero page", map[string][]string{"page": {"0"}}, Page{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PageFromQuery(NewSearchQuery(tt.params), 20, 100)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PageFromQuery() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("PageFromQuery() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestProperty_PageSliceStaysInBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("slice is within [0, n] and at most Size long", prop.ForAll(
		func(no, size, n int) bool {
			start, end := Page{No: no, Size: size}.Slice(n)
			return start >= 0 && start <= end && end <= n && end-start <= size
		},
		gen.OneGenOf(gen.IntRange(1, 50), gen.IntRange(1, math.MaxInt)),
		gen.OneGenOf(gen.IntRange(1, 50), gen.IntRange(1, math.MaxInt)),
		gen.IntRange(0, 500),
	))

	properties.Property("page past the end is empty", prop.ForAll(
		func(size, n int) bool {
			pageNo := n/size + 2
			start, end := Page{No: pageNo, Size: size}.Slice(n)
			return start == end
		},
		gen.IntRange(1, 50),
		gen.IntRange(0, 500),
	))

	properties.TestingRun(t)
}

func TestPage_OffsetSaturates(t *testing.T) {
	tests := []struct {
		name string
		page Page
		want int
	}{
		{"past the end", Page{No: 3, Size: 5}, 10},
		{"exact fit", Page{No: math.MaxInt/2 + 1, Size: 2}, math.MaxInt - 1},
		{"overflowing page", Page{No: math.MaxInt/2 + 2, Size: 2}, math.MaxInt},
		{"huge size", Page{No: 3, Size: math.MaxInt}, math.MaxInt},
		{"last page", Page{No: math.MaxInt, Size: math.MaxInt}, math.MaxInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.page.Offset(); got != tt.want {
				t.Errorf("Offset() = %d, want %d", got, tt.want)
			}
			if start, end := tt.page.Slice(7); start != 7 || end != 7 {
				t.Errorf("Slice(7) = %d, %d, want 7, 7", start, end)
			}
		})
	}
}

func TestPage_ValidatedHugePageIsEmpty(t *testing.T) {
	q := NewSearchQuery(map[string][]string{"page": {"4611686018427387905"}, "size": {"2"}})
	p, err := PageFromQuery(q, 20, 100)
	if err != nil {
		t.Fatalf("PageFromQuery() error = %v", err)
	}
	if p.Offset() < 0 {
		t.Fatalf("Offset() = %d, want non-negative", p.Offset())
	}
	if start, end := p.Slice(3); start != 3 || end != 3 {
		t.Errorf("Slice(3) = %d, %d, want 3, 3", start, end)
	}
}

func TestPage_ZeroIsUnpaged(t *testing.T) {
	var p Page
	if !p.IsZero() {
		t.Fatal("zero page must be unpaged")
	}
	if start, end := p.Slice(7); start != 0 || end != 7 {
		t.Errorf("Slice() = %d, %d, want 0, 7", start, end)
	}
}
