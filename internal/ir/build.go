// Package ir projects a validated specification into the flattened form the
// execution engine consumes. Build is a pure function: no I/O, no
// validation, and the same spec always yields a structurally identical IR.
package ir

import (
	"github.com/sells-group/dashspec-cli/internal/model"
)

// defaultLayoutType is used when a page omits its layout type.
const defaultLayoutType = "single"

// Build flattens a validated spec. Calling it on a spec that failed
// validation is best-effort; callers are expected to validate first.
func Build(s *model.Spec) *model.IR {
	out := &model.IR{
		Version: s.DSLVersion,
		Pages:   []model.IRPage{},
	}
	if out.Version == "" {
		out.Version = "1.0.0"
	}
	if s.Dashboard == nil {
		return out
	}

	out.DashboardID = s.Dashboard.ID
	out.DashboardTitle = s.Dashboard.Title
	if ds := s.Dashboard.DataSource; ds != nil {
		out.DataSourcePath = ds.Path
		out.Schema = ds.Schema
		out.DataQuality = ds.DataQuality
	}

	for _, page := range s.Dashboard.Pages {
		irPage := model.IRPage{
			ID:         page.ID,
			Title:      page.Title,
			Filters:    append([]model.Filter{}, page.Filters...),
			Metrics:    append([]model.Metric{}, page.Metrics...),
			Components: []model.Component{},
			LayoutType: defaultLayoutType,
		}
		if page.Layout != nil {
			irPage.Components = append(irPage.Components, page.Layout.Components...)
			if page.Layout.Type != "" {
				irPage.LayoutType = page.Layout.Type
			}
		}
		out.Pages = append(out.Pages, irPage)
	}

	return out
}
