package engine

import (
	"math"

	"github.com/sells-group/dashspec-cli/internal/model"
	"github.com/sells-group/dashspec-cli/internal/table"
)

// aggFunc computes one aggregation over a column. A nil result is the "no
// value" sentinel.
type aggFunc func(col *table.Column) (any, error)

// aggregations is the closed dispatch table from aggregation kind to
// handler. Unknown kinds yield the sentinel rather than an error.
var aggregations = map[string]aggFunc{
	model.AggCount:       aggCount,
	model.AggCountUnique: aggCountUnique,
	model.AggSum:         aggSum,
	model.AggMean:        aggMean,
	model.AggMedian:      aggMedian,
	model.AggMin:         aggMin,
	model.AggMax:         aggMax,
	model.AggStd:         aggStd,
}

// aggregate computes the named aggregation with null-aware semantics.
// Float results are rounded to 3 decimal places; NaN never escapes.
func aggregate(col *table.Column, kind string) (any, error) {
	fn, ok := aggregations[kind]
	if !ok {
		return nil, nil
	}
	v, err := fn(col)
	if err != nil {
		return nil, err
	}
	if f, ok := v.(float64); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, nil
		}
		return math.Round(f*1000) / 1000, nil
	}
	return v, nil
}

func aggCount(col *table.Column) (any, error) {
	return col.Len() - col.NullCount(), nil
}

func aggCountUnique(col *table.Column) (any, error) {
	seen := make(map[any]struct{})
	for i := 0; i < col.Len(); i++ {
		if !col.Null(i) {
			seen[col.Value(i)] = struct{}{}
		}
	}
	return len(seen), nil
}

func aggSum(col *table.Column) (any, error) {
	vals, err := numericValues(col, model.AggSum)
	if err != nil {
		return nil, err
	}
	// The sum of an all-null column is zero, not the sentinel.
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum, nil
}

func aggMean(col *table.Column) (any, error) {
	vals, err := numericValues(col, model.AggMean)
	if err != nil {
		return nil, err
	}
	m, ok := table.Mean(vals)
	if !ok {
		return nil, nil
	}
	return m, nil
}

func aggMedian(col *table.Column) (any, error) {
	vals, err := numericValues(col, model.AggMedian)
	if err != nil {
		return nil, err
	}
	m, ok := table.Quantile(vals, 0.5)
	if !ok {
		return nil, nil
	}
	return m, nil
}

func aggStd(col *table.Column) (any, error) {
	vals, err := numericValues(col, model.AggStd)
	if err != nil {
		return nil, err
	}
	s, ok := table.StdDev(vals)
	if !ok {
		return nil, nil
	}
	return s, nil
}

func aggMin(col *table.Column) (any, error) { return extremum(col, true) }

func aggMax(col *table.Column) (any, error) { return extremum(col, false) }

// extremum handles numeric, string, and time columns the way an order-aware
// aggregation should; booleans have no useful ordering here.
func extremum(col *table.Column, min bool) (any, error) {
	best := -1
	for i := 0; i < col.Len(); i++ {
		if col.Null(i) {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		cmp, ok := col.Compare(i, col.Value(best))
		if !ok {
			return nil, execErrorf(ErrTypeMismatch, "field %q (%s) has no ordering", col.Name(), col.Kind())
		}
		if (min && cmp < 0) || (!min && cmp > 0) {
			best = i
		}
	}
	if best < 0 {
		return nil, nil
	}
	if col.IsNumeric() {
		v, _ := col.Number(best)
		return v, nil
	}
	return col.Value(best), nil
}

func numericValues(col *table.Column, kind string) ([]float64, error) {
	if !col.IsNumeric() {
		return nil, execErrorf(ErrTypeMismatch, "aggregation %q requires a numeric field, %q is %s", kind, col.Name(), col.Kind())
	}
	return col.NonNullFloats(), nil
}
