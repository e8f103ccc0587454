package table

import (
	"github.com/spf13/cast"
)

// Equals reports whether row i equals the given runtime value. The value is
// converted to the column's kind before comparing; inconvertible values and
// null rows never match.
func (c *Column) Equals(i int, v any) bool {
	if c.Null(i) {
		return false
	}
	switch c.kind {
	case Float, Int:
		want, err := cast.ToFloat64E(v)
		if err != nil {
			return false
		}
		got, _ := c.Number(i)
		return got == want
	case String:
		want, err := cast.ToStringE(v)
		if err != nil {
			return false
		}
		return c.strs[i] == want
	case Bool:
		want, err := cast.ToBoolE(v)
		if err != nil {
			return false
		}
		return c.bools[i] == want
	case Time:
		want, err := cast.ToTimeE(v)
		if err != nil {
			return false
		}
		return c.times[i].Equal(want)
	default:
		return false
	}
}

// Compare orders row i against the given runtime value, returning -1, 0, or
// 1. The second return is false when the row is null, the value cannot be
// converted, or the column kind has no ordering.
func (c *Column) Compare(i int, v any) (int, bool) {
	if c.Null(i) {
		return 0, false
	}
	switch c.kind {
	case Float, Int:
		want, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, false
		}
		got, _ := c.Number(i)
		switch {
		case got < want:
			return -1, true
		case got > want:
			return 1, true
		default:
			return 0, true
		}
	case String:
		want, err := cast.ToStringE(v)
		if err != nil {
			return 0, false
		}
		switch {
		case c.strs[i] < want:
			return -1, true
		case c.strs[i] > want:
			return 1, true
		default:
			return 0, true
		}
	case Time:
		want, err := cast.ToTimeE(v)
		if err != nil {
			return 0, false
		}
		switch {
		case c.times[i].Before(want):
			return -1, true
		case c.times[i].After(want):
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}

// In reports whether row i equals any of the given values.
func (c *Column) In(i int, vals []any) bool {
	for _, v := range vals {
		if c.Equals(i, v) {
			return true
		}
	}
	return false
}
