package table

import (
	"math"
	"time"
)

// Kind is the storage type of a column.
type Kind int

const (
	Float Kind = iota
	Int
	String
	Bool
	Time
)

// String returns the kind name used in logs and error messages.
func (k Kind) String() string {
	switch k {
	case Float:
		return "float"
	case Int:
		return "int"
	case String:
		return "string"
	case Bool:
		return "bool"
	case Time:
		return "time"
	default:
		return "unknown"
	}
}

// Column is a typed vector with a validity mask. Exactly one of the value
// slices is populated, matching the kind.
type Column struct {
	name   string
	kind   Kind
	floats []float64
	ints   []int64
	strs   []string
	bools  []bool
	times  []time.Time
	valid  []bool
}

// NewFloat builds a float column. NaN values are stored as nulls. A nil
// valid mask marks every non-NaN value valid.
func NewFloat(name string, vals []float64, valid []bool) *Column {
	v := normalizeMask(valid, len(vals))
	for i, f := range vals {
		if math.IsNaN(f) {
			v[i] = false
		}
	}
	return &Column{name: name, kind: Float, floats: vals, valid: v}
}

// NewInt builds an int column. A nil valid mask marks every value valid.
func NewInt(name string, vals []int64, valid []bool) *Column {
	return &Column{name: name, kind: Int, ints: vals, valid: normalizeMask(valid, len(vals))}
}

// NewString builds a string column. A nil valid mask marks every value valid.
func NewString(name string, vals []string, valid []bool) *Column {
	return &Column{name: name, kind: String, strs: vals, valid: normalizeMask(valid, len(vals))}
}

// NewBool builds a bool column. A nil valid mask marks every value valid.
func NewBool(name string, vals []bool, valid []bool) *Column {
	return &Column{name: name, kind: Bool, bools: vals, valid: normalizeMask(valid, len(vals))}
}

// NewTime builds a time column. Zero times are stored as nulls when the mask
// is nil.
func NewTime(name string, vals []time.Time, valid []bool) *Column {
	v := valid
	if v == nil {
		v = make([]bool, len(vals))
		for i, t := range vals {
			v[i] = !t.IsZero()
		}
	}
	return &Column{name: name, kind: Time, times: vals, valid: v}
}

func normalizeMask(valid []bool, n int) []bool {
	if valid != nil {
		return valid
	}
	v := make([]bool, n)
	for i := range v {
		v[i] = true
	}
	return v
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Kind returns the storage type.
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of rows.
func (c *Column) Len() int { return len(c.valid) }

// Null reports whether row i holds no value.
func (c *Column) Null(i int) bool { return !c.valid[i] }

// SetNull clears the value at row i.
func (c *Column) SetNull(i int) { c.valid[i] = false }

// NullCount returns the number of null rows.
func (c *Column) NullCount() int {
	n := 0
	for _, ok := range c.valid {
		if !ok {
			n++
		}
	}
	return n
}

// IsNumeric reports whether the column holds float or int values.
func (c *Column) IsNumeric() bool { return c.kind == Float || c.kind == Int }

// FloatAt returns the value at row i for float columns.
func (c *Column) FloatAt(i int) float64 { return c.floats[i] }

// IntAt returns the value at row i for int columns.
func (c *Column) IntAt(i int) int64 { return c.ints[i] }

// StringAt returns the value at row i for string columns.
func (c *Column) StringAt(i int) string { return c.strs[i] }

// BoolAt returns the value at row i for bool columns.
func (c *Column) BoolAt(i int) bool { return c.bools[i] }

// TimeAt returns the value at row i for time columns.
func (c *Column) TimeAt(i int) time.Time { return c.times[i] }

// SetFloat stores v at row i and marks it valid.
func (c *Column) SetFloat(i int, v float64) {
	if math.IsNaN(v) {
		c.valid[i] = false
		return
	}
	c.floats[i] = v
	c.valid[i] = true
}

// SetInt stores v at row i and marks it valid.
func (c *Column) SetInt(i int, v int64) {
	c.ints[i] = v
	c.valid[i] = true
}

// SetString stores v at row i and marks it valid.
func (c *Column) SetString(i int, v string) {
	c.strs[i] = v
	c.valid[i] = true
}

// SetBool stores v at row i and marks it valid.
func (c *Column) SetBool(i int, v bool) {
	c.bools[i] = v
	c.valid[i] = true
}

// SetTime stores v at row i and marks it valid.
func (c *Column) SetTime(i int, v time.Time) {
	c.times[i] = v
	c.valid[i] = true
}

// Number returns row i as a float64 for numeric columns. The second return
// is false when the row is null or the column is not numeric.
func (c *Column) Number(i int) (float64, bool) {
	if !c.valid[i] {
		return 0, false
	}
	switch c.kind {
	case Float:
		return c.floats[i], true
	case Int:
		return float64(c.ints[i]), true
	default:
		return 0, false
	}
}

// Value returns row i as an untyped value, nil when null.
func (c *Column) Value(i int) any {
	if !c.valid[i] {
		return nil
	}
	switch c.kind {
	case Float:
		return c.floats[i]
	case Int:
		return c.ints[i]
	case String:
		return c.strs[i]
	case Bool:
		return c.bools[i]
	case Time:
		return c.times[i]
	default:
		return nil
	}
}

// NonNullFloats collects the valid numeric values in row order.
func (c *Column) NonNullFloats() []float64 {
	out := make([]float64, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if v, ok := c.Number(i); ok {
			out = append(out, v)
		}
	}
	return out
}

// Clone returns a deep copy.
func (c *Column) Clone() *Column {
	dup := &Column{name: c.name, kind: c.kind, valid: append([]bool(nil), c.valid...)}
	switch c.kind {
	case Float:
		dup.floats = append([]float64(nil), c.floats...)
	case Int:
		dup.ints = append([]int64(nil), c.ints...)
	case String:
		dup.strs = append([]string(nil), c.strs...)
	case Bool:
		dup.bools = append([]bool(nil), c.bools...)
	case Time:
		dup.times = append([]time.Time(nil), c.times...)
	}
	return dup
}

// filter returns a copy keeping only rows where mask is true.
func (c *Column) filter(mask []bool) *Column {
	kept := 0
	for _, keep := range mask {
		if keep {
			kept++
		}
	}
	dup := &Column{name: c.name, kind: c.kind, valid: make([]bool, 0, kept)}
	switch c.kind {
	case Float:
		dup.floats = make([]float64, 0, kept)
	case Int:
		dup.ints = make([]int64, 0, kept)
	case String:
		dup.strs = make([]string, 0, kept)
	case Bool:
		dup.bools = make([]bool, 0, kept)
	case Time:
		dup.times = make([]time.Time, 0, kept)
	}
	for i, keep := range mask {
		if !keep {
			continue
		}
		dup.valid = append(dup.valid, c.valid[i])
		switch c.kind {
		case Float:
			dup.floats = append(dup.floats, c.floats[i])
		case Int:
			dup.ints = append(dup.ints, c.ints[i])
		case String:
			dup.strs = append(dup.strs, c.strs[i])
		case Bool:
			dup.bools = append(dup.bools, c.bools[i])
		case Time:
			dup.times = append(dup.times, c.times[i])
		}
	}
	return dup
}
