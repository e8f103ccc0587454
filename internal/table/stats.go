package table

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Quantile returns the p-th quantile (0 <= p <= 1) of vals using linear
// interpolation between the two nearest order statistics: h = (n-1)p, the
// result interpolates between sorted[floor(h)] and sorted[floor(h)+1]. This
// is the convention spreadsheet and dataframe tooling uses, so Quantile(0.5)
// of an even-length slice is the midpoint of the two middle values.
func Quantile(vals []float64, p float64) (float64, bool) {
	if len(vals) == 0 || p < 0 || p > 1 {
		return 0, false
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	h := p * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	if lo+1 >= len(sorted) {
		return sorted[len(sorted)-1], true
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo]), true
}

// Mean returns the arithmetic mean of vals.
func Mean(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	return stat.Mean(vals, nil), true
}

// StdDev returns the sample standard deviation of vals.
func StdDev(vals []float64) (float64, bool) {
	if len(vals) < 2 {
		return 0, false
	}
	return stat.StdDev(vals, nil), true
}
