package dataquality

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/dashspec-cli/internal/model"
	"github.com/sells-group/dashspec-cli/internal/table"
)

// handleDuplicates finds rows that collide on the subset columns (all
// columns when no subset is given) and drops or flags them. Every member of
// a duplicate group counts as found; dropping keeps one row per group
// according to the keep policy.
func handleDuplicates(t *table.Table, sec *model.DuplicatesSection) (*table.Table, delta) {
	var d delta

	if !sec.IsEnabled() {
		return t, d
	}

	subset := sec.Subset
	if len(subset) == 0 {
		subset = t.Names()
	}
	var cols []*table.Column
	for _, name := range subset {
		col := t.Column(name)
		if col == nil {
			zap.L().Warn("dataquality: duplicate subset field not in table", zap.String("field", name))
			continue
		}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return t, d
	}

	keep := sec.Keep
	if keep == "" {
		keep = "first"
	}
	action := sec.Action
	if action == "" {
		action = model.ActionDrop
	}

	n := t.NumRows()
	counts := make(map[string]int, n)
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = rowKey(cols, i)
		counts[keys[i]]++
	}

	dupMask := make([]bool, n)
	found := 0
	for i := 0; i < n; i++ {
		if counts[keys[i]] > 1 {
			dupMask[i] = true
			found++
		}
	}
	d.duplicatesFound = found
	if found == 0 {
		return t, d
	}

	label := strings.Join(subset, ",")

	switch action {
	case model.ActionDrop:
		keepMask := make([]bool, n)
		taken := make(map[string]bool, len(counts))
		visit := func(i int) {
			if !dupMask[i] {
				keepMask[i] = true
				return
			}
			if !taken[keys[i]] {
				taken[keys[i]] = true
				keepMask[i] = true
			}
		}
		if keep == "last" {
			for i := n - 1; i >= 0; i-- {
				visit(i)
			}
		} else {
			for i := 0; i < n; i++ {
				visit(i)
			}
		}
		filtered, err := t.Filter(keepMask)
		if err != nil {
			zap.L().Warn("dataquality: duplicate drop failed", zap.Error(err))
			return t, d
		}
		removed := n - filtered.NumRows()
		d.duplicatesRemoved = removed
		d.log("duplicates", label, found, fmt.Sprintf("Removed %d duplicate rows", removed))
		return filtered, d

	case model.ActionFlag:
		if err := t.SetColumn(table.NewBool("_duplicate_flag", dupMask, nil)); err != nil {
			zap.L().Warn("dataquality: duplicate flag failed", zap.Error(err))
			return t, d
		}
		d.log("duplicates", label, found, fmt.Sprintf("Flagged %d duplicate rows", found))
		return t, d

	default:
		zap.L().Warn("dataquality: unknown duplicate action", zap.String("action", action))
		return t, d
	}
}
