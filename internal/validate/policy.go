package validate

import (
	"github.com/sells-group/dashspec-cli/internal/model"
)

// applyPolicy filters violations: suppressed codes are dropped first, then
// the strictness level decides which severities survive. Relaxed keeps only
// critical and error; moderate (the default) drops info; strict keeps
// everything not suppressed. Relative order is preserved.
func applyPolicy(violations []model.Violation, policy *model.ValidationPolicy) []model.Violation {
	strictness := model.StrictnessModerate
	suppress := make(map[string]bool)

	if policy != nil {
		if policy.Strictness != "" {
			strictness = policy.Strictness
		}
		for _, code := range policy.SuppressCodes {
			suppress[code] = true
		}
	}

	out := make([]model.Violation, 0, len(violations))
	for _, v := range violations {
		if suppress[v.Code] {
			continue
		}
		switch strictness {
		case model.StrictnessRelaxed:
			if v.Severity != model.SeverityCritical && v.Severity != model.SeverityError {
				continue
			}
		case model.StrictnessStrict:
			// keep everything
		default:
			if v.Severity == model.SeverityInfo {
				continue
			}
		}
		out = append(out, v)
	}
	return out
}
