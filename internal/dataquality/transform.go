package dataquality

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/dashspec-cli/internal/model"
	"github.com/sells-group/dashspec-cli/internal/table"
)

// TransformFunc applies one named operation to a table and returns the
// resulting table with a human-readable summary of what it did.
type TransformFunc func(t *table.Table, tr model.Transform) (*table.Table, string, error)

// transforms is the closed operation registry. Transforms are data, never
// code: an operation missing from this map is rejected instead of evaluated.
var transforms = map[string]TransformFunc{
	model.OpGroupRank:      groupRank,
	model.OpConditionalSet: conditionalSet,
}

// RegisterTransform adds an operation to the registry. It panics on a
// duplicate name so a bad init is caught at startup.
func RegisterTransform(operation string, fn TransformFunc) {
	if _, exists := transforms[operation]; exists {
		panic(fmt.Sprintf("dataquality: transform %q already registered", operation))
	}
	transforms[operation] = fn
}

// applyTransformations runs the ordered transformation list. A failing
// transform is logged and skipped; only successful applications count.
func applyTransformations(t *table.Table, trs []model.Transform) (*table.Table, delta) {
	var d delta

	for _, tr := range trs {
		fn, ok := transforms[tr.Operation]
		if !ok {
			zap.L().Warn("dataquality: unknown transform operation",
				zap.String("name", tr.Name),
				zap.String("operation", tr.Operation),
			)
			continue
		}

		result, summary, err := fn(t, tr)
		if err != nil {
			zap.L().Warn("dataquality: transform failed",
				zap.String("name", tr.Name),
				zap.String("operation", tr.Operation),
				zap.Error(err),
			)
			continue
		}
		t = result
		d.transformsApplied++
		d.log("transformation", tr.Name, 1, summary)
	}

	return t, d
}

// groupRank ranks rows within each group_by group by order_by ascending
// (ties keep their original order) and keeps the rows whose rank falls in
// the keep_ranks [start, end] window; end -1 means unbounded. Rows with a
// null order_by value are dropped.
func groupRank(t *table.Table, tr model.Transform) (*table.Table, string, error) {
	if len(tr.GroupBy) == 0 {
		return nil, "", fmt.Errorf("group_rank requires group_by")
	}
	orderCol := t.Column(tr.OrderBy)
	if orderCol == nil {
		return nil, "", fmt.Errorf("group_rank order_by field %q not in table", tr.OrderBy)
	}
	var groupCols []*table.Column
	for _, name := range tr.GroupBy {
		col := t.Column(name)
		if col == nil {
			return nil, "", fmt.Errorf("group_rank group_by field %q not in table", name)
		}
		groupCols = append(groupCols, col)
	}

	keepRanks := tr.KeepRanks
	if len(keepRanks) == 0 {
		keepRanks = []int{1, -1}
	}
	if len(keepRanks) != 2 {
		return nil, "", fmt.Errorf("group_rank keep_ranks must be [start, end], got %v", keepRanks)
	}
	start, end := keepRanks[0], keepRanks[1]

	n := t.NumRows()
	groups := make(map[string][]int, n)
	for i := 0; i < n; i++ {
		if orderCol.Null(i) {
			continue
		}
		key := rowKey(groupCols, i)
		groups[key] = append(groups[key], i)
	}

	keep := make([]bool, n)
	kept := 0
	for _, rows := range groups {
		sort.SliceStable(rows, func(a, b int) bool {
			cmp, ok := orderCol.Compare(rows[a], orderCol.Value(rows[b]))
			return ok && cmp < 0
		})
		for rank, row := range rows {
			r := rank + 1
			if r >= start && (end == -1 || r <= end) {
				keep[row] = true
				kept++
			}
		}
	}

	filtered, err := t.Filter(keep)
	if err != nil {
		return nil, "", err
	}
	return filtered, fmt.Sprintf("Kept %d of %d rows by group rank", kept, n), nil
}

// conditionalSet writes the set value into the target field on every row
// where the predicate holds.
func conditionalSet(t *table.Table, tr model.Transform) (*table.Table, string, error) {
	col := t.Column(tr.Field)
	if col == nil {
		return nil, "", fmt.Errorf("conditional_set field %q not in table", tr.Field)
	}
	if tr.When == nil {
		return nil, "", fmt.Errorf("conditional_set requires a when predicate")
	}
	condCol := t.Column(tr.When.Field)
	if condCol == nil {
		return nil, "", fmt.Errorf("conditional_set predicate field %q not in table", tr.When.Field)
	}

	set, err := setterFor(col, tr.Set)
	if err != nil {
		return nil, "", err
	}

	changed := 0
	for i := 0; i < t.NumRows(); i++ {
		ok, err := evalPredicate(condCol, i, *tr.When)
		if err != nil {
			return nil, "", err
		}
		if ok {
			set(i)
			changed++
		}
	}
	return t, fmt.Sprintf("Set %s on %d rows", tr.Field, changed), nil
}

// evalPredicate evaluates a closed-form predicate against row i. Ordering
// operators are false on null rows or inconvertible values; ne and not_in
// hold on null rows, since a null equals nothing and belongs to no set.
func evalPredicate(col *table.Column, i int, p model.Predicate) (bool, error) {
	switch p.Operator {
	case "eq":
		return col.Equals(i, p.Value), nil
	case "ne":
		return !col.Equals(i, p.Value), nil
	case "gt":
		cmp, ok := col.Compare(i, p.Value)
		return ok && cmp > 0, nil
	case "gte":
		cmp, ok := col.Compare(i, p.Value)
		return ok && cmp >= 0, nil
	case "lt":
		cmp, ok := col.Compare(i, p.Value)
		return ok && cmp < 0, nil
	case "lte":
		cmp, ok := col.Compare(i, p.Value)
		return ok && cmp <= 0, nil
	case "in":
		vals, ok := p.Value.([]any)
		if !ok {
			return false, fmt.Errorf("in predicate requires a list value")
		}
		return col.In(i, vals), nil
	case "not_in":
		vals, ok := p.Value.([]any)
		if !ok {
			return false, fmt.Errorf("not_in predicate requires a list value")
		}
		return !col.In(i, vals), nil
	case "is_null":
		return col.Null(i), nil
	case "not_null":
		return !col.Null(i), nil
	default:
		return false, fmt.Errorf("unknown predicate operator %q", p.Operator)
	}
}
