// Package model defines the dashboard specification tree, its intermediate
// representation, and the value types shared across the validation and
// execution pipeline. Specs are immutable once parsed; nothing downstream
// mutates them.
package model

// Filter types accepted on a page.
const (
	FilterRange       = "range"
	FilterSlider      = "slider"
	FilterSelect      = "select"
	FilterMultiSelect = "multiselect"
	FilterDateRange   = "date_range"
)

// Component types accepted in a layout.
const (
	ComponentVisualization = "visualization"
	ComponentMetricCard    = "metric_card"
	ComponentText          = "text"
	ComponentDivider       = "divider"
)

// Aggregation kinds accepted on a metric.
const (
	AggCount       = "count"
	AggCountUnique = "count_unique"
	AggSum         = "sum"
	AggMean        = "mean"
	AggMedian      = "median"
	AggMin         = "min"
	AggMax         = "max"
	AggStd         = "std"
)

// Spec is the root of a parsed dashboard specification.
type Spec struct {
	DSLVersion       string            `yaml:"dsl_version" json:"dsl_version"`
	ValidationPolicy *ValidationPolicy `yaml:"validation_policy" json:"validation_policy,omitempty"`
	Dashboard        *Dashboard        `yaml:"dashboard" json:"dashboard"`
}

// Dashboard holds metadata, the data source binding, and the ordered pages.
type Dashboard struct {
	ID          string         `yaml:"id" json:"id"`
	Title       string         `yaml:"title" json:"title"`
	Description string         `yaml:"description" json:"description,omitempty"`
	Metadata    map[string]any `yaml:"metadata" json:"metadata,omitempty"`
	DataSource  *DataSource    `yaml:"data_source" json:"data_source"`
	Pages       []Page         `yaml:"pages" json:"pages"`
}

// DataSource binds the dashboard to a backing columnar file and declares the
// column schema the spec is written against.
type DataSource struct {
	Path        string                    `yaml:"path" json:"path"`
	Schema      map[string]string         `yaml:"schema" json:"schema,omitempty"`
	DataQuality *DataQualityRules         `yaml:"data_quality" json:"data_quality,omitempty"`
	Formatting  map[string]map[string]any `yaml:"formatting" json:"formatting,omitempty"`
	Labels      map[string]string         `yaml:"labels" json:"labels,omitempty"`
}

// Page is one dashboard page: filters, metrics, and a layout.
type Page struct {
	ID      string   `yaml:"id" json:"id"`
	Title   string   `yaml:"title" json:"title"`
	Filters []Filter `yaml:"filters" json:"filters,omitempty"`
	Metrics []Metric `yaml:"metrics" json:"metrics,omitempty"`
	Layout  *Layout  `yaml:"layout" json:"layout,omitempty"`
}

// Filter declares a runtime input bound to a field.
type Filter struct {
	ID      string `yaml:"id" json:"id"`
	Field   string `yaml:"field" json:"field"`
	Type    string `yaml:"type" json:"type"`
	Label   string `yaml:"label" json:"label,omitempty"`
	Default any    `yaml:"default" json:"default,omitempty"`
}

// Metric declares an aggregation over a field, optionally narrowed by a
// sub-filter applied after the page filters.
type Metric struct {
	ID          string        `yaml:"id" json:"id"`
	Field       string        `yaml:"field" json:"field"`
	Aggregation string        `yaml:"aggregation" json:"aggregation"`
	Filter      *MetricFilter `yaml:"filter" json:"filter,omitempty"`
	Format      string        `yaml:"format" json:"format,omitempty"`
	Label       string        `yaml:"label" json:"label,omitempty"`
}

// MetricFilter narrows the rows a metric aggregates over.
type MetricFilter struct {
	Field    string `yaml:"field" json:"field"`
	Operator string `yaml:"operator" json:"operator"`
	Value    any    `yaml:"value" json:"value"`
}

// Layout arranges components on a page.
type Layout struct {
	Type       string      `yaml:"type" json:"type"`
	Components []Component `yaml:"components" json:"components,omitempty"`
}

// Component is one layout element. Visualization components carry a chart
// descriptor; metric cards reference a metric declared on the same page.
type Component struct {
	ID            string         `yaml:"id" json:"id"`
	Type          string         `yaml:"type" json:"type"`
	Title         string         `yaml:"title" json:"title,omitempty"`
	MetricID      string         `yaml:"metric_id" json:"metric_id,omitempty"`
	Content       string         `yaml:"content" json:"content,omitempty"`
	Visualization *Visualization `yaml:"visualization" json:"visualization,omitempty"`
}

// Visualization describes a chart: its type, the role map binding semantic
// slots (x, y, color, ...) to field names, and free-form renderer params.
// Legacy specs bind roles through top-level "<role>_field" keys, which land
// in Extra.
type Visualization struct {
	ChartType string            `yaml:"chart_type" json:"chart_type"`
	Roles     map[string]string `yaml:"roles" json:"roles,omitempty"`
	Params    map[string]any    `yaml:"params" json:"params,omitempty"`
	Extra     map[string]any    `yaml:",inline" json:"-"`
}

// LegacyRoleField returns the field bound to a role through the legacy
// "<role>_field" key form, if present.
func (v *Visualization) LegacyRoleField(role string) (string, bool) {
	if v.Extra == nil {
		return "", false
	}
	raw, ok := v.Extra[role+"_field"]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

// RoleField resolves a role binding, preferring the role map over the legacy
// key form.
func (v *Visualization) RoleField(role string) (string, bool) {
	if f, ok := v.Roles[role]; ok {
		return f, true
	}
	return v.LegacyRoleField(role)
}
