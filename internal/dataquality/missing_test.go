package dataquality

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dashspec-cli/internal/model"
	"github.com/sells-group/dashspec-cli/internal/table"
)

func missingRule(field, action string) *model.MissingSection {
	return &model.MissingSection{
		Rules: []model.MissingRule{{Fields: []string{field}, Action: action}},
	}
}

func TestMissingDropRows(t *testing.T) {
	tbl := mustTable(t,
		table.NewFloat("v", []float64{1, 2, math.NaN(), 4, math.NaN(), 6}, nil),
	)

	out, d := handleMissingValues(tbl, missingRule("v", model.MissingDropRows))

	assert.Equal(t, 4, out.NumRows())
	assert.Equal(t, 0, out.Column("v").NullCount())
	assert.Equal(t, 0, d.filled)
	require.Len(t, d.details, 1)
	assert.Equal(t, 2, d.details[0].Count)
}

func TestMissingFillForwardWithLimit(t *testing.T) {
	tbl := mustTable(t,
		table.NewFloat("v", []float64{1, math.NaN(), math.NaN(), 4}, nil),
	)

	out, d := handleMissingValues(tbl, &model.MissingSection{
		Rules: []model.MissingRule{
			{Fields: []string{"v"}, Action: model.MissingFillForward, Limit: 1},
		},
	})

	col := out.Column("v")
	assert.Equal(t, 1.0, col.FloatAt(1))
	assert.True(t, col.Null(2))
	assert.Equal(t, 1, d.filled)
}

func TestMissingFillBackward(t *testing.T) {
	tbl := mustTable(t, table.NewFloat("v", []float64{math.NaN(), 2}, nil))

	out, d := handleMissingValues(tbl, missingRule("v", model.MissingFillBackward))

	assert.Equal(t, 2.0, out.Column("v").FloatAt(0))
	assert.Equal(t, 1, d.filled)
}

func TestMissingFillValue(t *testing.T) {
	tbl := mustTable(t,
		table.NewString("region", []string{"east", ""}, []bool{true, false}),
	)

	out, d := handleMissingValues(tbl, &model.MissingSection{
		Rules: []model.MissingRule{
			{Fields: []string{"region"}, Action: model.MissingFillValue, Value: "unknown"},
		},
	})

	assert.Equal(t, "unknown", out.Column("region").StringAt(1))
	assert.Equal(t, 1, d.filled)
}

func TestMissingInterpolate(t *testing.T) {
	tbl := mustTable(t,
		table.NewFloat("v", []float64{math.NaN(), 1, math.NaN(), 3, math.NaN()}, nil),
	)

	out, d := handleMissingValues(tbl, missingRule("v", model.MissingInterpolate))

	col := out.Column("v")
	// Leading nulls stay null, interior interpolates, trailing copies the
	// last valid value.
	assert.True(t, col.Null(0))
	assert.Equal(t, 2.0, col.FloatAt(2))
	assert.Equal(t, 3.0, col.FloatAt(4))
	assert.Equal(t, 2, d.filled)
}

func TestMissingInterpolateRejectsNonNumeric(t *testing.T) {
	tbl := mustTable(t, table.NewString("s", []string{"a", ""}, []bool{true, false}))

	out, d := handleMissingValues(tbl, missingRule("s", model.MissingInterpolate))

	assert.True(t, out.Column("s").Null(1))
	assert.Equal(t, 0, d.filled)
}

func TestMissingFlag(t *testing.T) {
	tbl := mustTable(t, table.NewFloat("v", []float64{1, math.NaN()}, nil))

	out, d := handleMissingValues(tbl, missingRule("v", model.MissingFlag))

	flag := out.Column("v_missing_flag")
	require.NotNil(t, flag)
	assert.False(t, flag.BoolAt(0))
	assert.True(t, flag.BoolAt(1))
	assert.Equal(t, 0, d.filled)
	require.Len(t, d.details, 1)
}

func TestMissingAbsentFieldSkipped(t *testing.T) {
	tbl := mustTable(t, table.NewInt("a", []int64{1}, nil))

	out, d := handleMissingValues(tbl, missingRule("ghost", model.MissingDropRows))

	assert.Equal(t, 1, out.NumRows())
	assert.Empty(t, d.details)
}
