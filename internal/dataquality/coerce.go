package dataquality

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/sells-group/dashspec-cli/internal/model"
	"github.com/sells-group/dashspec-cli/internal/table"
)

// datetimeLayouts are tried in order when a coercion rule omits its format.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// applyCoercion casts rule fields to their target types. A field that fails
// to convert is logged and skipped; the phase never aborts.
func applyCoercion(t *table.Table, sec *model.CoercionSection) (*table.Table, delta) {
	var d delta

	for _, rule := range sec.Rules {
		onError := rule.OnError
		if onError == "" {
			onError = "coerce"
		}
		for _, field := range rule.Fields {
			col := t.Column(field)
			if col == nil {
				continue
			}

			converted, changed, err := coerceColumn(col, rule.TargetType, rule.Format, onError)
			if err != nil {
				zap.L().Warn("dataquality: coercion failed",
					zap.String("field", field),
					zap.String("target_type", rule.TargetType),
					zap.Error(err),
				)
				continue
			}
			if err := t.SetColumn(converted); err != nil {
				zap.L().Warn("dataquality: coercion failed", zap.String("field", field), zap.Error(err))
				continue
			}
			// A field already in its target type converts nothing and
			// produces no report entry.
			if changed > 0 {
				d.log("coercion", field, changed, fmt.Sprintf("Converted to %s", rule.TargetType))
			}
		}
	}

	return t, d
}

// coerceColumn builds a new column of the target type and counts the values
// it actually converted: cross-kind casts, values nulled on failure, and
// nulls zeroed by an integer target. Same-kind passthroughs do not count.
// With onError "coerce", unparseable values become null (zero for integer
// targets, which also absorb pre-existing nulls); with "skip" the first
// failure abandons the field.
func coerceColumn(col *table.Column, targetType, format, onError string) (*table.Column, int, error) {
	n := col.Len()
	changed := 0

	switch targetType {
	case model.CoerceInteger:
		vals := make([]int64, n)
		for i := 0; i < n; i++ {
			v, err := toInt64(col, i)
			if err != nil {
				if onError == "skip" {
					return nil, 0, err
				}
				v = 0
			}
			if err != nil || col.Kind() != table.Int {
				changed++
			}
			vals[i] = v
		}
		return table.NewInt(col.Name(), vals, nil), changed, nil

	case model.CoerceFloat:
		vals := make([]float64, n)
		valid := make([]bool, n)
		for i := 0; i < n; i++ {
			if col.Null(i) {
				continue
			}
			v, err := cast.ToFloat64E(col.Value(i))
			if err != nil {
				if onError == "skip" {
					return nil, 0, err
				}
				changed++
				continue
			}
			if col.Kind() != table.Float {
				changed++
			}
			vals[i] = v
			valid[i] = true
		}
		return table.NewFloat(col.Name(), vals, valid), changed, nil

	case model.CoerceDatetime:
		vals := make([]time.Time, n)
		valid := make([]bool, n)
		for i := 0; i < n; i++ {
			if col.Null(i) {
				continue
			}
			v, err := toTime(col, i, format)
			if err != nil {
				if onError == "skip" {
					return nil, 0, err
				}
				changed++
				continue
			}
			if col.Kind() != table.Time {
				changed++
			}
			vals[i] = v
			valid[i] = true
		}
		return table.NewTime(col.Name(), vals, valid), changed, nil

	case model.CoerceString:
		vals := make([]string, n)
		valid := make([]bool, n)
		for i := 0; i < n; i++ {
			if col.Null(i) {
				continue
			}
			if col.Kind() != table.String {
				changed++
			}
			vals[i] = cast.ToString(col.Value(i))
			valid[i] = true
		}
		return table.NewString(col.Name(), vals, valid), changed, nil

	default:
		return nil, 0, fmt.Errorf("unknown target type %q", targetType)
	}
}

func toInt64(col *table.Column, i int) (int64, error) {
	if col.Null(i) {
		return 0, fmt.Errorf("null value")
	}
	switch col.Kind() {
	case table.Float:
		return int64(col.FloatAt(i)), nil
	case table.Int:
		return col.IntAt(i), nil
	case table.String:
		// Accept "42.0" the way a loose numeric parse would.
		if v, err := strconv.ParseInt(col.StringAt(i), 10, 64); err == nil {
			return v, nil
		}
		f, err := strconv.ParseFloat(col.StringAt(i), 64)
		if err != nil {
			return 0, err
		}
		return int64(f), nil
	default:
		return cast.ToInt64E(col.Value(i))
	}
}

func toTime(col *table.Column, i int, format string) (time.Time, error) {
	if col.Kind() == table.Time {
		return col.TimeAt(i), nil
	}
	s := cast.ToString(col.Value(i))
	if format != "" {
		return time.Parse(format, s)
	}
	for _, layout := range datetimeLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			return v, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable datetime %q", s)
}
