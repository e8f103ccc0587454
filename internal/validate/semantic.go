package validate

import (
	"fmt"
	"strings"

	"github.com/sells-group/dashspec-cli/internal/model"
)

// requiredRoles maps each chart type to the semantic roles it cannot render
// without. A role is satisfied by the role map or the legacy "<role>_field"
// key form.
var requiredRoles = map[string][]string{
	"histogram": {"x"},
	"ecdf":      {"x"},
	"kde":       {"x"},
	"pie":       {"x"},
	"boxplot":   {"y"},
	"violin":    {"y"},
	"scatter":   {"x", "y"},
	"hexbin":    {"x", "y"},
	"kde2d":     {"x", "y"},
	"line":      {"x", "y"},
	"bar":       {"x", "y"},
	"heatmap":   {"x", "y"},
}

// discreteTypes are declared column types where percentile outlier
// detection makes no sense.
var discreteTypes = map[string]bool{
	"string":   true,
	"object":   true,
	"category": true,
}

// integerTypes are the declared column types checked by the temporal-field
// heuristic.
var integerTypes = map[string]bool{
	"integer": true,
	"int":     true,
	"int32":   true,
	"int64":   true,
}

// temporalFieldNames is the fixed set of field names treated as discrete
// temporal columns. The heuristic matches these exactly, or names ending in
// _year, _month, _quarter, _day, or _week. It is name-based only and can
// misfire either way.
var temporalFieldNames = map[string]bool{
	"year": true, "month": true, "quarter": true, "day": true,
	"week": true, "hour": true, "minute": true, "second": true,
	"day_of_week": true, "day_of_month": true, "day_of_year": true,
	"week_of_year": true, "hour_of_day": true, "minute_of_hour": true,
}

var temporalSuffixes = []string{"_year", "_month", "_quarter", "_day", "_week"}

func isTemporalName(field string) bool {
	lower := strings.ToLower(field)
	if temporalFieldNames[lower] {
		return true
	}
	for _, suffix := range temporalSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// semantic runs the cross-reference checks: duplicate IDs, metric_card
// references, chart role requirements, and data-quality field references.
// All checks accumulate; none short-circuits another.
func semantic(s *model.Spec) []model.Violation {
	if s.Dashboard == nil {
		return nil
	}

	var out []model.Violation
	d := s.Dashboard

	// Pages, filters, and components share one ID namespace; metrics are
	// scoped to their page. First occurrence wins, every later collision is
	// its own violation.
	seen := make(map[string]bool)

	for pi, page := range d.Pages {
		if seen[page.ID] {
			out = append(out, model.Violation{
				Code:     model.CodeDuplicateID,
				Severity: model.SeverityError,
				Message:  fmt.Sprintf("Duplicate ID %q found in pages", page.ID),
				Path:     fmt.Sprintf("/dashboard/pages/%d/id", pi),
				Repair:   "Rename the page to use a unique ID",
			})
		} else {
			seen[page.ID] = true
		}

		for fi, f := range page.Filters {
			if seen[f.ID] {
				out = append(out, model.Violation{
					Code:     model.CodeDuplicateID,
					Severity: model.SeverityError,
					Message:  fmt.Sprintf("Duplicate ID %q found", f.ID),
					Path:     fmt.Sprintf("/dashboard/pages/%d/filters/%d/id", pi, fi),
					Repair:   "Rename the filter to use a unique ID",
				})
			} else {
				seen[f.ID] = true
			}
		}

		metricIDs := make(map[string]bool)
		for mi, m := range page.Metrics {
			if metricIDs[m.ID] {
				out = append(out, model.Violation{
					Code:     model.CodeDuplicateID,
					Severity: model.SeverityError,
					Message:  fmt.Sprintf("Duplicate metric ID %q", m.ID),
					Path:     fmt.Sprintf("/dashboard/pages/%d/metrics/%d/id", pi, mi),
					Repair:   "Rename the metric to use a unique ID within the page",
				})
			} else {
				metricIDs[m.ID] = true
			}
		}

		if page.Layout == nil {
			continue
		}
		for ci, comp := range page.Layout.Components {
			if seen[comp.ID] {
				out = append(out, model.Violation{
					Code:     model.CodeDuplicateID,
					Severity: model.SeverityError,
					Message:  fmt.Sprintf("Duplicate component ID %q", comp.ID),
					Path:     fmt.Sprintf("/dashboard/pages/%d/layout/components/%d/id", pi, ci),
					Repair:   "Rename the component to use a unique ID",
				})
			} else {
				seen[comp.ID] = true
			}

			if comp.Type == model.ComponentMetricCard && comp.MetricID != "" && !metricIDs[comp.MetricID] {
				out = append(out, model.Violation{
					Code:     model.CodeInvalidReference,
					Severity: model.SeverityCritical,
					Message:  fmt.Sprintf("Reference to metric %q not found", comp.MetricID),
					Path:     fmt.Sprintf("/dashboard/pages/%d/layout/components/%d/metric_id", pi, ci),
					Repair:   fmt.Sprintf("Define a metric with id %q on this page or update the reference", comp.MetricID),
				})
			}

			if comp.Type == model.ComponentVisualization && comp.Visualization != nil {
				out = append(out, checkRoles(comp.Visualization, pi, ci)...)
			}
		}
	}

	out = append(out, checkDataQuality(d)...)
	return out
}

func checkRoles(viz *model.Visualization, pageIdx, compIdx int) []model.Violation {
	roles, ok := requiredRoles[viz.ChartType]
	if !ok {
		return nil
	}

	var out []model.Violation
	for _, role := range roles {
		if _, ok := viz.RoleField(role); ok {
			continue
		}
		out = append(out, model.Violation{
			Code:     model.CodeMissingRequiredRole,
			Severity: model.SeverityError,
			Message:  fmt.Sprintf("Chart type %q requires the %q role", viz.ChartType, role),
			Path:     fmt.Sprintf("/dashboard/pages/%d/layout/components/%d/visualization", pageIdx, compIdx),
			Repair:   fmt.Sprintf("Add 'roles: {%s: \"field_name\"}' or '%s_field: \"field_name\"'", role, role),
		})
	}
	return out
}

// checkDataQuality verifies that every field a DQ rule touches exists in
// the declared column schema, and warns about percentile outlier detection
// on discrete or temporal-looking fields.
func checkDataQuality(d *model.Dashboard) []model.Violation {
	if d.DataSource == nil || d.DataSource.DataQuality == nil || len(d.DataSource.Schema) == 0 {
		return nil
	}

	var out []model.Violation
	schema := d.DataSource.Schema
	dq := d.DataSource.DataQuality

	if dq.Outliers != nil && dq.Outliers.IsEnabled() {
		for ri, rule := range dq.Outliers.Rules {
			// The validator assumes percentile when the method is omitted;
			// the processor defaults to iqr. Both follow the original
			// behavior.
			method := rule.Method
			if method == "" {
				method = model.OutlierPercentile
			}
			path := fmt.Sprintf("/dashboard/data_source/data_quality/outliers/rules/%d", ri)

			for _, field := range rule.Fields {
				fieldType, inSchema := schema[field]
				if !inSchema {
					out = append(out, fieldNotInSchema("outlier", field, path))
					continue
				}
				if method != model.OutlierPercentile {
					continue
				}
				if discreteTypes[fieldType] {
					out = append(out, model.Violation{
						Code:     model.CodeDQInappropriateMethod,
						Severity: model.SeverityWarning,
						Message:  fmt.Sprintf("Percentile outlier detection on categorical field %q (type: %s)", field, fieldType),
						Path:     path,
						Repair:   fmt.Sprintf("Remove %q from outlier detection or use a different method for categorical data", field),
					})
				} else if integerTypes[fieldType] && isTemporalName(field) {
					out = append(out, model.Violation{
						Code:     model.CodeDQQuestionableMethod,
						Severity: model.SeverityWarning,
						Message:  fmt.Sprintf("Percentile outlier detection on discrete temporal field %q may not be appropriate", field),
						Path:     path,
						Repair:   fmt.Sprintf("Consider removing %q from outlier detection - temporal fields typically don't have outliers", field),
					})
				}
			}
		}
	}

	if dq.MissingValues != nil {
		for ri, rule := range dq.MissingValues.Rules {
			path := fmt.Sprintf("/dashboard/data_source/data_quality/missing_values/rules/%d", ri)
			for _, field := range rule.Fields {
				if _, ok := schema[field]; !ok {
					out = append(out, fieldNotInSchema("missing value", field, path))
				}
			}
		}
	}

	if dq.Validation != nil {
		for ri, rule := range dq.Validation.Rules {
			if rule.Field == "" {
				continue
			}
			if _, ok := schema[rule.Field]; !ok {
				path := fmt.Sprintf("/dashboard/data_source/data_quality/validation/rules/%d", ri)
				out = append(out, fieldNotInSchema("validation", rule.Field, path))
			}
		}
	}

	return out
}

func fieldNotInSchema(ruleKind, field, path string) model.Violation {
	return model.Violation{
		Code:     model.CodeDQFieldNotInSchema,
		Severity: model.SeverityError,
		Message:  fmt.Sprintf("Data quality %s rule references field %q not found in schema", ruleKind, field),
		Path:     path,
		Repair:   fmt.Sprintf("Remove %q from the DQ rule or add it to the schema definition", field),
	}
}
