package dataquality

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/dashspec-cli/internal/model"
	"github.com/sells-group/dashspec-cli/internal/table"
)

// applyValidations checks each rule's constraint against its field and
// applies the configured action to the failing rows. Every failing row
// counts toward the report regardless of action.
func applyValidations(t *table.Table, sec *model.ValidationSection) (*table.Table, delta) {
	var d delta

	for _, rule := range sec.Rules {
		col := t.Column(rule.Field)
		if col == nil {
			zap.L().Warn("dataquality: validation field not in table", zap.String("field", rule.Field))
			continue
		}

		invalid, err := invalidMask(t, col, rule)
		if err != nil {
			zap.L().Warn("dataquality: validation rule skipped",
				zap.String("field", rule.Field),
				zap.String("constraint", rule.Constraint),
				zap.Error(err),
			)
			continue
		}

		count := 0
		for _, bad := range invalid {
			if bad {
				count++
			}
		}
		d.validationFailures += count
		if count == 0 {
			continue
		}

		action := rule.Action
		if action == "" {
			action = model.ActionFlag
		}

		switch action {
		case model.ActionDrop:
			keep := make([]bool, len(invalid))
			for i := range keep {
				keep[i] = !invalid[i]
			}
			filtered, err := t.Filter(keep)
			if err != nil {
				zap.L().Warn("dataquality: validation drop failed", zap.String("field", rule.Field), zap.Error(err))
				continue
			}
			t = filtered
			d.log("validation", rule.Field, count,
				fmt.Sprintf("Dropped %d rows failing %s", count, rule.Constraint))

		case model.ActionFlag:
			if err := t.SetColumn(table.NewBool(rule.Field+"_invalid_flag", invalid, nil)); err != nil {
				zap.L().Warn("dataquality: validation flag failed", zap.String("field", rule.Field), zap.Error(err))
				continue
			}
			d.log("validation", rule.Field, count,
				fmt.Sprintf("Flagged %d rows failing %s", count, rule.Constraint))

		case model.ActionCoerce:
			set, err := setterFor(col, rule.Default)
			if err != nil {
				zap.L().Warn("dataquality: validation coerce failed", zap.String("field", rule.Field), zap.Error(err))
				continue
			}
			for i, bad := range invalid {
				if bad {
					set(i)
				}
			}
			d.log("validation", rule.Field, count,
				fmt.Sprintf("Replaced %d rows failing %s", count, rule.Constraint))

		default:
			zap.L().Warn("dataquality: unknown validation action", zap.String("action", action))
		}
	}

	return t, d
}

// invalidMask marks the rows that fail the rule's constraint. Null rows pass
// range checks (not_null exists for that), fail in_set, and form a single
// group under unique.
func invalidMask(t *table.Table, col *table.Column, rule model.ValidationRule) ([]bool, error) {
	n := t.NumRows()
	invalid := make([]bool, n)

	switch rule.Constraint {
	case model.ConstraintRange:
		if !col.IsNumeric() {
			return nil, fmt.Errorf("range constraint on non-numeric field %q", rule.Field)
		}
		for i := 0; i < n; i++ {
			v, ok := col.Number(i)
			if !ok {
				continue
			}
			if rule.Min != nil && v < *rule.Min {
				invalid[i] = true
			}
			if rule.Max != nil && v > *rule.Max {
				invalid[i] = true
			}
		}

	case model.ConstraintInSet:
		if len(rule.Values) == 0 {
			return nil, fmt.Errorf("in_set constraint without values")
		}
		for i := 0; i < n; i++ {
			invalid[i] = !col.In(i, rule.Values)
		}

	case model.ConstraintNotNull:
		for i := 0; i < n; i++ {
			invalid[i] = col.Null(i)
		}

	case model.ConstraintUnique:
		counts := make(map[string]int, n)
		keys := make([]string, n)
		cols := []*table.Column{col}
		for i := 0; i < n; i++ {
			keys[i] = rowKey(cols, i)
			counts[keys[i]]++
		}
		for i := 0; i < n; i++ {
			invalid[i] = counts[keys[i]] > 1
		}

	default:
		return nil, fmt.Errorf("unknown constraint %q", rule.Constraint)
	}

	return invalid, nil
}
