package dataquality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dashspec-cli/internal/model"
	"github.com/sells-group/dashspec-cli/internal/table"
)

func fp(v float64) *float64 { return &v }

func TestOutliersPercentileCap(t *testing.T) {
	tbl := mustTable(t,
		table.NewFloat("v", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 100, 200}, nil),
	)

	sec := &model.OutliersSection{
		Rules: []model.OutlierRule{{
			Fields: []string{"v"},
			Method: model.OutlierPercentile,
			Action: model.ActionCap,
			Lower:  fp(1),
			Upper:  fp(90),
		}},
	}

	out, d := handleOutliers(tbl, sec)

	assert.Greater(t, d.outliersDetected, 0)
	assert.Equal(t, d.outliersDetected, d.outliersCapped)

	col := out.Column("v")
	for i := 0; i < col.Len(); i++ {
		v := col.FloatAt(i)
		assert.LessOrEqual(t, v, 100.0)
		assert.Less(t, v, 200.0)
		assert.GreaterOrEqual(t, v, 1.0)
	}
}

func TestOutliersPercentileBoundsOutOfRangeSkipsRule(t *testing.T) {
	// Bounds outside [0, 100] slip past structural validation on legacy
	// schema versions; the rule must be skipped, not abort the pass.
	tests := []struct {
		name         string
		lower, upper *float64
	}{
		{"upper above 100", fp(1), fp(150)},
		{"lower below 0", fp(-5), fp(99)},
		{"inverted", fp(90), fp(10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := mustTable(t,
				table.NewFloat("v", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 100}, nil),
			)

			var out *table.Table
			var d delta
			require.NotPanics(t, func() {
				out, d = handleOutliers(tbl, &model.OutliersSection{
					Rules: []model.OutlierRule{{
						Fields: []string{"v"},
						Method: model.OutlierPercentile,
						Action: model.ActionCap,
						Lower:  tt.lower,
						Upper:  tt.upper,
					}},
				})
			})

			assert.Equal(t, 0, d.outliersDetected)
			assert.Equal(t, 100.0, out.Column("v").FloatAt(10))
		})
	}
}

func TestOutliersIQRCapIsIdempotent(t *testing.T) {
	tbl := mustTable(t,
		table.NewFloat("v", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 100}, nil),
	)
	sec := &model.OutliersSection{
		Rules: []model.OutlierRule{{
			Fields: []string{"v"},
			Method: model.OutlierIQR,
			Action: model.ActionCap,
		}},
	}

	out, d1 := handleOutliers(tbl, sec)
	assert.Equal(t, 1, d1.outliersDetected)
	assert.Equal(t, 1, d1.outliersCapped)

	_, d2 := handleOutliers(out, sec)
	assert.Equal(t, 0, d2.outliersDetected)
	assert.Equal(t, 0, d2.outliersCapped)
}

func TestOutliersIQRThresholdOverride(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 20}

	sec := func(k float64) *model.OutliersSection {
		return &model.OutliersSection{
			Rules: []model.OutlierRule{{
				Fields:    []string{"v"},
				Method:    model.OutlierIQR,
				Threshold: fp(k),
			}},
		}
	}

	_, tight := handleOutliers(mustTable(t, table.NewFloat("v", vals, nil)), sec(1.5))
	_, loose := handleOutliers(mustTable(t, table.NewFloat("v", vals, nil)), sec(10))

	assert.Greater(t, tight.outliersDetected, 0)
	assert.Equal(t, 0, loose.outliersDetected)
}

func TestOutliersZScoreConstantColumnNoop(t *testing.T) {
	tbl := mustTable(t, table.NewFloat("v", []float64{5, 5, 5, 5}, nil))

	out, d := handleOutliers(tbl, &model.OutliersSection{
		Rules: []model.OutlierRule{{Fields: []string{"v"}, Method: model.OutlierZScore}},
	})

	assert.Equal(t, 0, d.outliersDetected)
	assert.Nil(t, out.Column("v_outlier_flag"))
}

func TestOutliersZScoreDetects(t *testing.T) {
	vals := make([]float64, 30)
	for i := range vals {
		vals[i] = 10
	}
	vals[0], vals[1] = 9, 11 // give the column nonzero variance
	vals[29] = 1000

	_, d := handleOutliers(mustTable(t, table.NewFloat("v", vals, nil)), &model.OutliersSection{
		Rules: []model.OutlierRule{{Fields: []string{"v"}, Method: model.OutlierZScore}},
	})

	assert.Equal(t, 1, d.outliersDetected)
}

func TestOutliersDrop(t *testing.T) {
	tbl := mustTable(t,
		table.NewFloat("v", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 500}, nil),
	)

	out, d := handleOutliers(tbl, &model.OutliersSection{
		Rules: []model.OutlierRule{{
			Fields: []string{"v"},
			Method: model.OutlierIQR,
			Action: model.ActionDrop,
		}},
	})

	assert.Equal(t, 1, d.outliersDetected)
	assert.Equal(t, 10, out.NumRows())
}

func TestOutliersDefaultActionFlags(t *testing.T) {
	tbl := mustTable(t,
		table.NewFloat("v", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 500}, nil),
	)

	out, d := handleOutliers(tbl, &model.OutliersSection{
		Rules: []model.OutlierRule{{Fields: []string{"v"}}},
	})

	assert.Equal(t, 1, d.outliersDetected)
	flag := out.Column("v_outlier_flag")
	require.NotNil(t, flag)
	assert.True(t, flag.BoolAt(10))
	assert.False(t, flag.BoolAt(0))
}

func TestOutliersSkipsNonNumericFields(t *testing.T) {
	tbl := mustTable(t, table.NewString("s", []string{"a", "b"}, nil))

	out, d := handleOutliers(tbl, &model.OutliersSection{
		Rules: []model.OutlierRule{{Fields: []string{"s"}, Method: model.OutlierPercentile}},
	})

	assert.Equal(t, 0, d.outliersDetected)
	assert.Equal(t, 1, out.NumCols())
}
