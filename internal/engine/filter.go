package engine

import (
	"github.com/sells-group/dashspec-cli/internal/model"
	"github.com/sells-group/dashspec-cli/internal/table"
)

// applyPageFilter narrows the table by one runtime filter input. Range and
// date_range filters expect a two-element [min, max] and keep both bounds
// inclusively; select and multiselect switch between scalar equality and set
// membership on the shape of the input. Slider and unknown filter types are
// display-only and pass the table through unchanged. A malformed range value
// is ignored rather than fatal.
func applyPageFilter(t *table.Table, f model.Filter, value any) (*table.Table, error) {
	col := t.Column(f.Field)
	if col == nil {
		return nil, execErrorf(ErrMissingField, "filter %q references field %q not present in data", f.ID, f.Field)
	}

	switch f.Type {
	case model.FilterRange, model.FilterDateRange:
		bounds, ok := asPair(value)
		if !ok {
			return t, nil
		}
		return filterRows(t, func(i int) bool {
			lo, okLo := col.Compare(i, bounds[0])
			hi, okHi := col.Compare(i, bounds[1])
			return okLo && okHi && lo >= 0 && hi <= 0
		})

	case model.FilterSelect, model.FilterMultiSelect:
		if vals, ok := asList(value); ok {
			return filterRows(t, func(i int) bool { return col.In(i, vals) })
		}
		return filterRows(t, func(i int) bool { return col.Equals(i, value) })

	default:
		return t, nil
	}
}

// applyMetricFilter narrows the table by a metric's own sub-filter.
func applyMetricFilter(t *table.Table, mf *model.MetricFilter) (*table.Table, error) {
	col := t.Column(mf.Field)
	if col == nil {
		return nil, execErrorf(ErrMissingField, "metric filter references field %q not present in data", mf.Field)
	}

	switch mf.Operator {
	case "eq":
		return filterRows(t, func(i int) bool { return col.Equals(i, mf.Value) })
	case "ne":
		// A null is not equal to anything, so ne keeps null rows.
		return filterRows(t, func(i int) bool { return !col.Equals(i, mf.Value) })
	case "gt":
		return filterRows(t, func(i int) bool { c, ok := col.Compare(i, mf.Value); return ok && c > 0 })
	case "gte":
		return filterRows(t, func(i int) bool { c, ok := col.Compare(i, mf.Value); return ok && c >= 0 })
	case "lt":
		return filterRows(t, func(i int) bool { c, ok := col.Compare(i, mf.Value); return ok && c < 0 })
	case "lte":
		return filterRows(t, func(i int) bool { c, ok := col.Compare(i, mf.Value); return ok && c <= 0 })
	case "in":
		vals, ok := asList(mf.Value)
		if !ok {
			return nil, execErrorf(ErrInvalidValue, "in operator on field %q requires a list value", mf.Field)
		}
		return filterRows(t, func(i int) bool { return col.In(i, vals) })
	case "not_in":
		vals, ok := asList(mf.Value)
		if !ok {
			return nil, execErrorf(ErrInvalidValue, "not_in operator on field %q requires a list value", mf.Field)
		}
		// A null is not a member of any set, so not_in keeps null rows.
		return filterRows(t, func(i int) bool { return !col.In(i, vals) })
	default:
		return nil, execErrorf(ErrInvalidValue, "unknown metric filter operator %q", mf.Operator)
	}
}

func filterRows(t *table.Table, pred func(int) bool) (*table.Table, error) {
	mask := make([]bool, t.NumRows())
	for i := range mask {
		mask[i] = pred(i)
	}
	return t.Filter(mask)
}

func asList(v any) ([]any, bool) {
	vals, ok := v.([]any)
	return vals, ok
}

func asPair(v any) ([]any, bool) {
	vals, ok := v.([]any)
	if !ok || len(vals) != 2 {
		return nil, false
	}
	return vals, true
}
