package dataquality

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/sells-group/dashspec-cli/internal/model"
	"github.com/sells-group/dashspec-cli/internal/table"
)

// Default detection parameters.
const (
	defaultIQRMultiplier    = 1.5
	defaultZScoreMultiplier = 3.0
	defaultPercentileLower  = 1.0
	defaultPercentileUpper  = 99.0
)

// handleOutliers detects and treats outliers per rule and field. Non-numeric
// fields are skipped silently; detection operates on the non-null values
// only.
func handleOutliers(t *table.Table, sec *model.OutliersSection) (*table.Table, delta) {
	var d delta

	for _, rule := range sec.Rules {
		method := rule.Method
		if method == "" {
			method = model.OutlierIQR
		}
		action := rule.Action
		if action == "" {
			action = model.ActionFlag
		}

		for _, field := range rule.Fields {
			col := t.Column(field)
			if col == nil || !col.IsNumeric() {
				continue
			}

			lower, upper, ok := outlierBounds(col.NonNullFloats(), method, rule)
			if !ok {
				continue
			}

			n := t.NumRows()
			mask := make([]bool, n)
			count := 0
			for i := 0; i < n; i++ {
				if v, valid := col.Number(i); valid && (v < lower || v > upper) {
					mask[i] = true
					count++
				}
			}
			d.outliersDetected += count
			if count == 0 {
				continue
			}

			switch action {
			case model.ActionCap:
				capColumn(col, lower, upper)
				d.outliersCapped += count
				d.log("outliers", field, count, fmt.Sprintf("Capped %d outliers", count))

			case model.ActionDrop:
				keep := make([]bool, n)
				for i := range keep {
					keep[i] = !mask[i]
				}
				filtered, err := t.Filter(keep)
				if err != nil {
					zap.L().Warn("dataquality: outlier drop failed", zap.String("field", field), zap.Error(err))
					continue
				}
				t = filtered
				d.log("outliers", field, count, fmt.Sprintf("Dropped %d outlier rows", count))

			case model.ActionFlag:
				if err := t.SetColumn(table.NewBool(field+"_outlier_flag", mask, nil)); err != nil {
					zap.L().Warn("dataquality: outlier flag failed", zap.String("field", field), zap.Error(err))
					continue
				}
				d.log("outliers", field, count, fmt.Sprintf("Flagged %d outliers", count))

			default:
				zap.L().Warn("dataquality: unknown outlier action", zap.String("action", action))
			}
		}
	}

	return t, d
}

// outlierBounds computes the detection bounds for the non-null values of a
// field. The second run of a capping rule finds nothing: once values are
// clipped inside the bounds, the bounds recomputed from them no longer
// exclude anything.
func outlierBounds(vals []float64, method string, rule model.OutlierRule) (float64, float64, bool) {
	if len(vals) == 0 {
		return 0, 0, false
	}

	switch method {
	case model.OutlierIQR:
		k := defaultIQRMultiplier
		if rule.Threshold != nil {
			k = *rule.Threshold
		}
		q1, _ := table.Quantile(vals, 0.25)
		q3, _ := table.Quantile(vals, 0.75)
		iqr := q3 - q1
		return q1 - k*iqr, q3 + k*iqr, true

	case model.OutlierZScore:
		k := defaultZScoreMultiplier
		if rule.Threshold != nil {
			k = *rule.Threshold
		}
		mean, _ := table.Mean(vals)
		std, ok := table.StdDev(vals)
		if !ok || std == 0 {
			return 0, 0, false
		}
		return mean - k*std, mean + k*std, true

	case model.OutlierPercentile:
		lower := defaultPercentileLower
		if rule.Lower != nil {
			lower = *rule.Lower
		}
		upper := defaultPercentileUpper
		if rule.Upper != nil {
			upper = *rule.Upper
		}
		if lower < 0 || upper > 100 || lower > upper {
			zap.L().Warn("dataquality: percentile bounds out of range, skipping rule",
				zap.Float64("lower", lower),
				zap.Float64("upper", upper),
			)
			return 0, 0, false
		}
		lo, _ := table.Quantile(vals, lower/100)
		hi, _ := table.Quantile(vals, upper/100)
		return lo, hi, true

	default:
		zap.L().Warn("dataquality: unknown outlier method", zap.String("method", method))
		return 0, 0, false
	}
}

// capColumn clips every value into [lower, upper], preserving the column's
// kind. Integer columns truncate the bound.
func capColumn(col *table.Column, lower, upper float64) {
	for i := 0; i < col.Len(); i++ {
		v, ok := col.Number(i)
		if !ok {
			continue
		}
		clipped := math.Min(math.Max(v, lower), upper)
		if clipped == v {
			continue
		}
		if col.Kind() == table.Int {
			col.SetInt(i, int64(clipped))
		} else {
			col.SetFloat(i, clipped)
		}
	}
}
