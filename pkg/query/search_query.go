package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/HarshaM0211/jira-software/pkg/apperror"
	"github.com/HarshaM0211/jira-software/pkg/i18n"
)

// Reserved parameter names and formats.
const (
	// DateLayout is the dd-MM-yyyy layout used by date-valued parameters.
	DateLayout = "02-01-2006"

	KeyQuery  = "q"
	KeyActive = "active"
	KeyType   = "type"
	KeyPage   = "page"
	KeySize   = "size"
	KeySort   = "sort"
	KeyOrder  = "order"
)

// SearchQuery is an immutable typed view over a multi-valued parameter map,
// usually a decoded URL query string. It only extracts values; turning them
// into Criteria is left to domain search queries.
type SearchQuery struct {
	params   url.Values
	freeText string
}

// NewSearchQuery copies params. A nil map yields an empty query.
func NewSearchQuery(params map[string][]string) SearchQuery {
	copied := make(url.Values, len(params))
	for key, values := range params {
		copied[key] = append([]string(nil), values...)
	}
	q := SearchQuery{params: copied}
	q.freeText, _ = q.GetFirst(KeyQuery)
	return q
}

// FreeText returns the trimmed first value under "q", or "".
func (q SearchQuery) FreeText() string {
	return q.freeText
}

// Has reports whether key carries at least one non-blank value.
func (q SearchQuery) Has(key string) bool {
	return len(q.GetList(key)) > 0
}

// GetFirst returns the trimmed first value under key. It reports false when the
// key is absent, its list is empty or the first entry is blank, even if later
// entries are not.
func (q SearchQuery) GetFirst(key string) (string, bool) {
	values := q.params[key]
	if len(values) == 0 {
		return "", false
	}
	first := strings.TrimSpace(values[0])
	if first == "" {
		return "", false
	}
	return first, true
}

// GetList returns every non-blank value under key, trimmed, in original order.
// The result is never nil.
func (q SearchQuery) GetList(key string) []string {
	out := []string{}
	for _, v := range q.params[key] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Params returns a copy of the underlying parameters.
func (q SearchQuery) Params() url.Values {
	copied := make(url.Values, len(q.params))
	for key, values := range q.params {
		copied[key] = append([]string(nil), values...)
	}
	return copied
}

// Bool parses the first value under key with strconv.ParseBool.
func (q SearchQuery) Bool(key string) (bool, bool, error) {
	return GetFirstAs(q, key, strconv.ParseBool)
}

// Int parses the first value under key as a base-10 int64.
func (q SearchQuery) Int(key string) (int64, bool, error) {
	return GetFirstAs(q, key, func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

// Date parses the first value under key with DateLayout.
func (q SearchQuery) Date(key string) (time.Time, bool, error) {
	return GetFirstAs(q, key, ParseDate)
}

// GetFirstAs applies transform to the first value under key. Transform failures
// are returned as validation errors wrapping the original error.
func GetFirstAs[T any](q SearchQuery, key string, transform func(string) (T, error)) (T, bool, error) {
	var zero T
	raw, ok := q.GetFirst(key)
	if !ok {
		return zero, false, nil
	}
	v, err := transform(raw)
	if err != nil {
		return zero, false, invalidParameter(key, raw, err)
	}
	return v, true, nil
}

// GetListAs applies transform to every non-blank value under key, stopping at
// the first failure.
func GetListAs[T any](q SearchQuery, key string, transform func(string) (T, error)) ([]T, error) {
	raw := q.GetList(key)
	out := make([]T, 0, len(raw))
	for _, s := range raw {
		v, err := transform(s)
		if err != nil {
			return nil, invalidParameter(key, s, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseDate parses a dd-MM-yyyy date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// FormatDate renders t as dd-MM-yyyy.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func invalidParameter(key, raw string, cause error) error {
	return apperror.ValidationWithCode(apperror.CodeInvalidParameter,
		fmt.Sprintf("invalid value %q for parameter %s", raw, key),
		i18n.Params{"key": key}, cause)
}
