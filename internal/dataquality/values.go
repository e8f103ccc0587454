package dataquality

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/sells-group/dashspec-cli/internal/table"
)

// setterFor returns a function that writes the given value, cast to the
// column's kind, at a row index. A nil value yields a setter that nulls the
// row.
func setterFor(col *table.Column, value any) (func(int), error) {
	if value == nil {
		return col.SetNull, nil
	}
	switch col.Kind() {
	case table.Float:
		v, err := cast.ToFloat64E(value)
		if err != nil {
			return nil, err
		}
		return func(i int) { col.SetFloat(i, v) }, nil
	case table.Int:
		v, err := cast.ToInt64E(value)
		if err != nil {
			return nil, err
		}
		return func(i int) { col.SetInt(i, v) }, nil
	case table.String:
		v, err := cast.ToStringE(value)
		if err != nil {
			return nil, err
		}
		return func(i int) { col.SetString(i, v) }, nil
	case table.Bool:
		v, err := cast.ToBoolE(value)
		if err != nil {
			return nil, err
		}
		return func(i int) { col.SetBool(i, v) }, nil
	case table.Time:
		v, err := cast.ToTimeE(value)
		if err != nil {
			return nil, err
		}
		return func(i int) { col.SetTime(i, v) }, nil
	default:
		return nil, fmt.Errorf("unsupported column kind %s", col.Kind())
	}
}

// rowKey builds a composite key for row i over the given columns. Nulls
// form their own key group, so two null rows compare equal the way
// duplicate detection expects.
func rowKey(cols []*table.Column, i int) string {
	var b strings.Builder
	for ci, col := range cols {
		if ci > 0 {
			b.WriteByte(0x1f)
		}
		if col.Null(i) {
			b.WriteString("\x00null")
			continue
		}
		switch col.Kind() {
		case table.Float:
			b.WriteString(strconv.FormatFloat(col.FloatAt(i), 'g', -1, 64))
		case table.Int:
			b.WriteString(strconv.FormatInt(col.IntAt(i), 10))
		case table.String:
			b.WriteString(col.StringAt(i))
		case table.Bool:
			b.WriteString(strconv.FormatBool(col.BoolAt(i)))
		case table.Time:
			b.WriteString(strconv.FormatInt(col.TimeAt(i).UnixNano(), 10))
		}
	}
	return b.String()
}
