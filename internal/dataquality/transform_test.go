package dataquality

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dashspec-cli/internal/model"
	"github.com/sells-group/dashspec-cli/internal/table"
)

func rankTable(t *testing.T) *table.Table {
	return mustTable(t,
		table.NewString("region", []string{"a", "a", "a", "b", "b"}, nil),
		table.NewFloat("value", []float64{30, 10, 20, 5, math.NaN()}, nil),
	)
}

func TestGroupRankKeepWindow(t *testing.T) {
	out, summary, err := groupRank(rankTable(t), model.Transform{
		Operation: model.OpGroupRank,
		GroupBy:   []string{"region"},
		OrderBy:   "value",
		KeepRanks: []int{1, 2},
	})
	require.NoError(t, err)

	// Group a keeps its two smallest values, group b keeps its only ranked
	// row; the null order_by row is dropped.
	require.Equal(t, 3, out.NumRows())
	vals := map[float64]bool{}
	for i := 0; i < out.NumRows(); i++ {
		vals[out.Column("value").FloatAt(i)] = true
	}
	assert.True(t, vals[10] && vals[20] && vals[5])
	assert.False(t, vals[30])
	assert.Contains(t, summary, "Kept 3 of 5")
}

func TestGroupRankDefaultKeepsAllRanked(t *testing.T) {
	out, _, err := groupRank(rankTable(t), model.Transform{
		Operation: model.OpGroupRank,
		GroupBy:   []string{"region"},
		OrderBy:   "value",
	})
	require.NoError(t, err)
	// Only the null order_by row goes.
	assert.Equal(t, 4, out.NumRows())
}

func TestGroupRankUnboundedTail(t *testing.T) {
	out, _, err := groupRank(rankTable(t), model.Transform{
		Operation: model.OpGroupRank,
		GroupBy:   []string{"region"},
		OrderBy:   "value",
		KeepRanks: []int{2, -1},
	})
	require.NoError(t, err)

	// Group a drops its rank-1 row (value 10); group b has no rank 2.
	require.Equal(t, 2, out.NumRows())
	for i := 0; i < out.NumRows(); i++ {
		assert.NotEqual(t, 10.0, out.Column("value").FloatAt(i))
		assert.NotEqual(t, 5.0, out.Column("value").FloatAt(i))
	}
}

func TestGroupRankErrors(t *testing.T) {
	tests := []struct {
		name string
		tr   model.Transform
	}{
		{"missing group_by", model.Transform{OrderBy: "value"}},
		{"unknown order_by", model.Transform{GroupBy: []string{"region"}, OrderBy: "ghost"}},
		{"unknown group_by", model.Transform{GroupBy: []string{"ghost"}, OrderBy: "value"}},
		{"bad keep_ranks", model.Transform{GroupBy: []string{"region"}, OrderBy: "value", KeepRanks: []int{1, 2, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := groupRank(rankTable(t), tt.tr)
			assert.Error(t, err)
		})
	}
}

func TestConditionalSet(t *testing.T) {
	tbl := mustTable(t,
		table.NewFloat("amount", []float64{50, 150, 250}, nil),
		table.NewString("status", []string{"ok", "ok", "ok"}, nil),
	)

	out, summary, err := conditionalSet(tbl, model.Transform{
		Operation: model.OpConditionalSet,
		Field:     "status",
		Set:       "review",
		When:      &model.Predicate{Field: "amount", Operator: "gt", Value: 100},
	})
	require.NoError(t, err)

	col := out.Column("status")
	assert.Equal(t, "ok", col.StringAt(0))
	assert.Equal(t, "review", col.StringAt(1))
	assert.Equal(t, "review", col.StringAt(2))
	assert.Contains(t, summary, "2 rows")
}

func TestEvalPredicate(t *testing.T) {
	col := table.NewFloat("v", []float64{5, math.NaN()}, nil)

	tests := []struct {
		name string
		row  int
		p    model.Predicate
		want bool
	}{
		{"eq match", 0, model.Predicate{Operator: "eq", Value: 5}, true},
		{"ne match", 0, model.Predicate{Operator: "ne", Value: 6}, true},
		{"ne holds on null", 1, model.Predicate{Operator: "ne", Value: 6}, true},
		{"gt", 0, model.Predicate{Operator: "gt", Value: 4}, true},
		{"gte equal", 0, model.Predicate{Operator: "gte", Value: 5}, true},
		{"lt null is false", 1, model.Predicate{Operator: "lt", Value: 99}, false},
		{"in", 0, model.Predicate{Operator: "in", Value: []any{4, 5}}, true},
		{"not_in", 0, model.Predicate{Operator: "not_in", Value: []any{4, 6}}, true},
		{"not_in holds on null", 1, model.Predicate{Operator: "not_in", Value: []any{4}}, true},
		{"is_null", 1, model.Predicate{Operator: "is_null"}, true},
		{"not_null", 0, model.Predicate{Operator: "not_null"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalPredicate(col, tt.row, tt.p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := evalPredicate(col, 0, model.Predicate{Operator: "in", Value: "not-a-list"})
	assert.Error(t, err)
	_, err = evalPredicate(col, 0, model.Predicate{Operator: "between"})
	assert.Error(t, err)
}

func TestApplyTransformationsSkipsFailures(t *testing.T) {
	tbl := mustTable(t,
		table.NewString("region", []string{"a", "b"}, nil),
		table.NewFloat("value", []float64{1, 2}, nil),
	)

	out, d := applyTransformations(tbl, []model.Transform{
		{Name: "bad", Operation: "no_such_op"},
		{Name: "broken", Operation: model.OpGroupRank}, // missing group_by
		{
			Name:      "keep_top",
			Operation: model.OpGroupRank,
			GroupBy:   []string{"region"},
			OrderBy:   "value",
		},
	})

	// Only the successful transform counts.
	assert.Equal(t, 1, d.transformsApplied)
	require.Len(t, d.details, 1)
	assert.Equal(t, "keep_top", d.details[0].Field)
	assert.Equal(t, 2, out.NumRows())
}

func TestRegisterTransformRejectsDuplicates(t *testing.T) {
	assert.Panics(t, func() {
		RegisterTransform(model.OpGroupRank, groupRank)
	})

	RegisterTransform("test_noop", func(t *table.Table, _ model.Transform) (*table.Table, string, error) {
		return t, "noop", nil
	})
	defer delete(transforms, "test_noop")

	assert.Contains(t, transforms, "test_noop")
}
