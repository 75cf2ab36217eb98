package query

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
)

// ErrIncomparable is returned when two values have no common ordering.
var ErrIncomparable = errors.New("values are not comparable")

// Match evaluates c against the actual property value. A nil actual value
// (missing property) never matches. It is the single evaluation function used
// by ports that filter in process.
func Match(c Criteria, actual any) (bool, error) {
	if c == nil {
		return false, errors.New("nil criteria")
	}
	if isNil(actual) {
		return false, nil
	}

	switch c := c.(type) {
	case Equals:
		if c.ignoreCase {
			a, aok := asString(actual)
			b, bok := asString(c.value)
			if aok && bok {
				return strings.EqualFold(a, b), nil
			}
		}
		cmp, err := Compare(actual, c.value)
		if err != nil {
			return false, fmt.Errorf("%s: %w", c, err)
		}
		return cmp == 0, nil
	case Min:
		cmp, err := Compare(actual, c.value)
		if err != nil {
			return false, fmt.Errorf("%s: %w", c, err)
		}
		return cmp >= 0, nil
	case Max:
		cmp, err := Compare(actual, c.value)
		if err != nil {
			return false, fmt.Errorf("%s: %w", c, err)
		}
		return cmp <= 0, nil
	default:
		return false, fmt.Errorf("unsupported criteria %T", c)
	}
}

// MatchAll reports whether every criteria matches. lookup returns the value of
// a property and whether it exists.
func MatchAll(criteria []Criteria, lookup func(property string) (any, bool)) (bool, error) {
	for _, c := range criteria {
		actual, ok := lookup(c.Property())
		if !ok {
			return false, nil
		}
		matched, err := Match(c, actual)
		if err != nil || !matched {
			return false, err
		}
	}
	return true, nil
}

// Compare orders two values of the same family: numbers (any Go numeric kind),
// strings (including named string types), booleans (false < true) and
// time.Time. Pointers are dereferenced. Mixed families yield ErrIncomparable.
func Compare(a, b any) (int, error) {
	a, b = deref(a), deref(b)
	if a == nil || b == nil {
		return 0, ErrIncomparable
	}

	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		if !ok {
			return 0, fmt.Errorf("%w: %T and %T", ErrIncomparable, a, b)
		}
		return ta.Compare(tb), nil
	}

	if sa, ok := asString(a); ok {
		sb, ok := asString(b)
		if !ok {
			return 0, fmt.Errorf("%w: %T and %T", ErrIncomparable, a, b)
		}
		return strings.Compare(sa, sb), nil
	}

	if ba, ok := asBool(a); ok {
		bb, ok := asBool(b)
		if !ok {
			return 0, fmt.Errorf("%w: %T and %T", ErrIncomparable, a, b)
		}
		switch {
		case ba == bb:
			return 0, nil
		case !ba:
			return -1, nil
		default:
			return 1, nil
		}
	}

	na, aok := asNumber(a)
	nb, bok := asNumber(b)
	if !aok || !bok {
		return 0, fmt.Errorf("%w: %T and %T", ErrIncomparable, a, b)
	}
	return na.compare(nb), nil
}

type number struct {
	isInt bool
	i     int64
	f     float64
}

func (n number) compare(o number) int {
	if n.isInt && o.isInt {
		switch {
		case n.i < o.i:
			return -1
		case n.i > o.i:
			return 1
		}
		return 0
	}
	a, b := n.float(), o.float()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (n number) float() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

func asNumber(v any) (number, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number{isInt: true, i: rv.Int()}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return number{f: float64(u)}, true
		}
		return number{isInt: true, i: int64(u)}, true
	case reflect.Float32, reflect.Float64:
		return number{f: rv.Float()}, true
	}
	return number{}, false
}

func asString(v any) (string, bool) {
	rv := reflect.ValueOf(deref(v))
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

func asBool(v any) (bool, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Bool {
		return rv.Bool(), true
	}
	return false, false
}

func deref(v any) any {
	for v != nil {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer {
			return v
		}
		if rv.IsNil() {
			return nil
		}
		v = rv.Elem().Interface()
	}
	return nil
}
