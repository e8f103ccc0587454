package model

// IR is the flattened, execution-ready projection of a validated spec. It is
// the only structure the execution engine consumes and holds no reference
// back to the spec tree.
type IR struct {
	Version        string            `json:"version"`
	DashboardID    string            `json:"dashboard_id"`
	DashboardTitle string            `json:"dashboard_title"`
	DataSourcePath string            `json:"data_source_path"`
	Schema         map[string]string `json:"schema,omitempty"`
	DataQuality    *DataQualityRules `json:"data_quality,omitempty"`
	Pages          []IRPage          `json:"pages"`
}

// IRPage is one page flattened for execution. Filters, metrics, and
// components preserve spec declaration order.
type IRPage struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Filters    []Filter    `json:"filters"`
	Metrics    []Metric    `json:"metrics"`
	Components []Component `json:"components"`
	LayoutType string      `json:"layout_type"`
}
