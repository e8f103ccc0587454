package dataquality

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/dashspec-cli/internal/model"
	"github.com/sells-group/dashspec-cli/internal/table"
)

// handleMissingValues applies missing-value rules field by field. Rules on
// absent fields are skipped; drop_rows shrinks the table for every rule that
// follows it.
func handleMissingValues(t *table.Table, sec *model.MissingSection) (*table.Table, delta) {
	var d delta

	for _, rule := range sec.Rules {
		for _, field := range rule.Fields {
			col := t.Column(field)
			if col == nil {
				continue
			}
			missingBefore := col.NullCount()

			switch rule.Action {
			case model.MissingDropRows:
				mask := make([]bool, t.NumRows())
				for i := range mask {
					mask[i] = !col.Null(i)
				}
				filtered, err := t.Filter(mask)
				if err != nil {
					zap.L().Warn("dataquality: drop_rows failed", zap.String("field", field), zap.Error(err))
					continue
				}
				t = filtered
				d.log("missing_values", field, missingBefore, fmt.Sprintf("Dropped %d rows", missingBefore))

			case model.MissingFillForward:
				filled := fillDirectional(col, rule.Limit, false)
				d.filled += filled
				d.log("missing_values", field, filled, fmt.Sprintf("Forward filled %d values", filled))

			case model.MissingFillBackward:
				filled := fillDirectional(col, rule.Limit, true)
				d.filled += filled
				d.log("missing_values", field, filled, fmt.Sprintf("Backward filled %d values", filled))

			case model.MissingFillValue:
				if err := fillConstant(col, rule.Value); err != nil {
					zap.L().Warn("dataquality: fill_value failed", zap.String("field", field), zap.Error(err))
					continue
				}
				d.filled += missingBefore
				d.log("missing_values", field, missingBefore, fmt.Sprintf("Filled with %v", rule.Value))

			case model.MissingInterpolate:
				if !col.IsNumeric() {
					zap.L().Warn("dataquality: interpolate requires a numeric field",
						zap.String("field", field),
						zap.String("kind", col.Kind().String()),
					)
					continue
				}
				filled := interpolateLinear(col)
				d.filled += filled
				d.log("missing_values", field, filled, fmt.Sprintf("Interpolated %d values", filled))

			case model.MissingFlag:
				flags := make([]bool, t.NumRows())
				for i := range flags {
					flags[i] = col.Null(i)
				}
				if err := t.SetColumn(table.NewBool(field+"_missing_flag", flags, nil)); err != nil {
					zap.L().Warn("dataquality: flag failed", zap.String("field", field), zap.Error(err))
					continue
				}
				d.log("missing_values", field, missingBefore, fmt.Sprintf("Flagged %d missing values", missingBefore))

			default:
				zap.L().Warn("dataquality: unknown missing-value action",
					zap.String("field", field),
					zap.String("action", rule.Action),
				)
			}
		}
	}

	return t, d
}

// fillDirectional propagates the nearest valid value forward (or backward
// when reverse is true), filling at most limit consecutive nulls per run;
// zero means unlimited. Returns the number of values filled.
func fillDirectional(col *table.Column, limit int, reverse bool) int {
	n := col.Len()
	filled := 0
	run := 0
	lastValid := -1

	idx := func(i int) int {
		if reverse {
			return n - 1 - i
		}
		return i
	}

	for i := 0; i < n; i++ {
		j := idx(i)
		if !col.Null(j) {
			lastValid = j
			run = 0
			continue
		}
		if lastValid < 0 {
			continue
		}
		run++
		if limit > 0 && run > limit {
			continue
		}
		copyValue(col, j, lastValid)
		filled++
	}
	return filled
}

// copyValue copies the value at row src into row dst of the same column.
func copyValue(col *table.Column, dst, src int) {
	switch col.Kind() {
	case table.Float:
		col.SetFloat(dst, col.FloatAt(src))
	case table.Int:
		col.SetInt(dst, col.IntAt(src))
	case table.String:
		col.SetString(dst, col.StringAt(src))
	case table.Bool:
		col.SetBool(dst, col.BoolAt(src))
	case table.Time:
		col.SetTime(dst, col.TimeAt(src))
	}
}

// fillConstant fills every null with the given value cast to the column's
// kind.
func fillConstant(col *table.Column, value any) error {
	set, err := setterFor(col, value)
	if err != nil {
		return err
	}
	for i := 0; i < col.Len(); i++ {
		if col.Null(i) {
			set(i)
		}
	}
	return nil
}

// interpolateLinear fills interior nulls between two valid values by linear
// interpolation and trailing nulls with the last valid value; leading nulls
// stay null. Integer columns truncate the interpolated value.
func interpolateLinear(col *table.Column) int {
	n := col.Len()
	filled := 0
	prev := -1

	setNumber := func(i int, v float64) {
		if col.Kind() == table.Int {
			col.SetInt(i, int64(v))
		} else {
			col.SetFloat(i, v)
		}
	}

	for i := 0; i < n; i++ {
		if !col.Null(i) {
			prev = i
			continue
		}
		if prev < 0 {
			continue
		}
		// Find the next valid value.
		next := -1
		for j := i + 1; j < n; j++ {
			if !col.Null(j) {
				next = j
				break
			}
		}
		prevVal, _ := col.Number(prev)
		if next < 0 {
			setNumber(i, prevVal)
			filled++
			continue
		}
		nextVal, _ := col.Number(next)
		frac := float64(i-prev) / float64(next-prev)
		setNumber(i, prevVal+frac*(nextVal-prevVal))
		filled++
	}
	return filled
}
