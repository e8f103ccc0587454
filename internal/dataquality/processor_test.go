package dataquality

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dashspec-cli/internal/model"
	"github.com/sells-group/dashspec-cli/internal/table"
)

func TestProcessNilRulesIsPlainCopy(t *testing.T) {
	tbl := mustTable(t, table.NewInt("a", []int64{1, 2, 3}, nil))

	out, report := New(nil).Process(tbl)

	assert.NotSame(t, tbl, out)
	assert.Equal(t, 3, out.NumRows())
	assert.Equal(t, 3, report.RowsInitial)
	assert.Equal(t, 3, report.RowsFinal)
	assert.Equal(t, 0, report.RowsDropped)
	assert.Equal(t, 0, report.IssuesDetected)
	require.NotNil(t, report.Details)
	assert.Empty(t, report.Details)
}

func TestProcessFullPipeline(t *testing.T) {
	tbl := mustTable(t,
		table.NewInt("id", []int64{1, 1, 2, 3, 4, 5}, nil),
		table.NewFloat("amount", []float64{10, 10, math.NaN(), 30, 40, 5000}, nil),
	)

	rules := &model.DataQualityRules{
		MissingValues: &model.MissingSection{
			Rules: []model.MissingRule{
				{Fields: []string{"amount"}, Action: model.MissingDropRows},
			},
		},
		Duplicates: &model.DuplicatesSection{Subset: []string{"id"}},
		Outliers: &model.OutliersSection{
			Rules: []model.OutlierRule{
				{Fields: []string{"amount"}, Method: model.OutlierIQR, Action: model.ActionCap},
			},
		},
	}

	out, report := New(rules).Process(tbl)

	// One null row dropped, one duplicate removed.
	assert.Equal(t, 6, report.RowsInitial)
	assert.Equal(t, 4, report.RowsFinal)
	assert.Equal(t, report.RowsInitial-report.RowsFinal, report.RowsDropped)
	assert.Equal(t, 4, out.NumRows())

	assert.Equal(t, 2, report.DuplicatesFound)
	assert.Equal(t, 1, report.DuplicatesRemoved)
	assert.Equal(t, 1, report.OutliersDetected)
	assert.Equal(t, 1, report.OutliersCapped)
	assert.Equal(t,
		report.MissingValuesFilled+report.OutliersDetected+
			report.DuplicatesFound+report.ValidationFailures,
		report.IssuesDetected,
	)
	assert.NotEmpty(t, report.Details)

	// The 5000 outlier was capped in place.
	amount := out.Column("amount")
	for i := 0; i < amount.Len(); i++ {
		assert.Less(t, amount.FloatAt(i), 5000.0)
	}
}

func TestProcessDoesNotMutateInput(t *testing.T) {
	tbl := mustTable(t,
		table.NewFloat("amount", []float64{1, math.NaN(), 3}, nil),
	)

	_, _ = New(&model.DataQualityRules{
		MissingValues: &model.MissingSection{
			Rules: []model.MissingRule{
				{Fields: []string{"amount"}, Action: model.MissingFillValue, Value: 0},
			},
		},
	}).Process(tbl)

	assert.Equal(t, 3, tbl.NumRows())
	assert.True(t, tbl.Column("amount").Null(1))
}

func TestProcessDisabledOutliersSkipped(t *testing.T) {
	off := false
	tbl := mustTable(t,
		table.NewFloat("v", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 500}, nil),
	)

	_, report := New(&model.DataQualityRules{
		Outliers: &model.OutliersSection{
			Enabled: &off,
			Rules:   []model.OutlierRule{{Fields: []string{"v"}}},
		},
	}).Process(tbl)

	assert.Equal(t, 0, report.OutliersDetected)
}
