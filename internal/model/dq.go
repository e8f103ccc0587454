package model

// Coercion target types.
const (
	CoerceInteger  = "integer"
	CoerceFloat    = "float"
	CoerceDatetime = "datetime"
	CoerceString   = "string"
)

// Missing-value actions.
const (
	MissingDropRows     = "drop_rows"
	MissingFillForward  = "fill_forward"
	MissingFillBackward = "fill_backward"
	MissingFillValue    = "fill_value"
	MissingInterpolate  = "interpolate"
	MissingFlag         = "flag"
)

// Outlier detection methods.
const (
	OutlierIQR        = "iqr"
	OutlierZScore     = "zscore"
	OutlierPercentile = "percentile"
)

// Actions shared by the outlier and validation phases.
const (
	ActionCap    = "cap"
	ActionDrop   = "drop"
	ActionFlag   = "flag"
	ActionCoerce = "coerce"
)

// Validation constraints.
const (
	ConstraintRange   = "range"
	ConstraintInSet   = "in_set"
	ConstraintNotNull = "not_null"
	ConstraintUnique  = "unique"
)

// DataQualityRules is the declarative rule set attached to a data source.
// Each section is optional; a nil section skips the corresponding phase.
type DataQualityRules struct {
	Coercion        *CoercionSection   `yaml:"coercion" json:"coercion,omitempty"`
	MissingValues   *MissingSection    `yaml:"missing_values" json:"missing_values,omitempty"`
	Duplicates      *DuplicatesSection `yaml:"duplicates" json:"duplicates,omitempty"`
	Outliers        *OutliersSection   `yaml:"outliers" json:"outliers,omitempty"`
	Validation      *ValidationSection `yaml:"validation" json:"validation,omitempty"`
	Transformations []Transform        `yaml:"transformations" json:"transformations,omitempty"`
}

// CoercionSection lists type coercion rules.
type CoercionSection struct {
	Rules []CoercionRule `yaml:"rules" json:"rules"`
}

// CoercionRule casts a set of fields to a target type. OnError "coerce"
// (default) nulls out unparseable values; "skip" leaves the field untouched
// when any value fails to parse.
type CoercionRule struct {
	Fields     []string `yaml:"fields" json:"fields"`
	TargetType string   `yaml:"target_type" json:"target_type"`
	Format     string   `yaml:"format" json:"format,omitempty"`
	OnError    string   `yaml:"on_error" json:"on_error,omitempty"`
}

// MissingSection lists missing-value rules.
type MissingSection struct {
	Rules []MissingRule `yaml:"rules" json:"rules"`
}

// MissingRule handles nulls in a set of fields with a single action.
// Limit bounds the run length for fill_forward/fill_backward; zero means
// unlimited.
type MissingRule struct {
	Fields []string `yaml:"fields" json:"fields"`
	Action string   `yaml:"action" json:"action"`
	Value  any      `yaml:"value" json:"value,omitempty"`
	Limit  int      `yaml:"limit" json:"limit,omitempty"`
}

// DuplicatesSection configures duplicate detection for the whole table.
type DuplicatesSection struct {
	Enabled *bool    `yaml:"enabled" json:"enabled,omitempty"`
	Subset  []string `yaml:"subset" json:"subset,omitempty"`
	Keep    string   `yaml:"keep" json:"keep,omitempty"`
	Action  string   `yaml:"action" json:"action,omitempty"`
}

// IsEnabled defaults to true when the key is absent.
func (d *DuplicatesSection) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// OutliersSection lists outlier rules. The phase only runs when the section
// is present and enabled (absent key defaults to enabled).
type OutliersSection struct {
	Enabled *bool         `yaml:"enabled" json:"enabled,omitempty"`
	Rules   []OutlierRule `yaml:"rules" json:"rules"`
}

// IsEnabled defaults to true when the key is absent.
func (o *OutliersSection) IsEnabled() bool {
	return o.Enabled == nil || *o.Enabled
}

// OutlierRule detects and treats outliers in a set of numeric fields.
// Threshold is the IQR multiplier (default 1.5) or z-score multiplier
// (default 3.0); Lower/Upper are percentile bounds in 0-100 (defaults 1/99).
type OutlierRule struct {
	Fields    []string `yaml:"fields" json:"fields"`
	Method    string   `yaml:"method" json:"method,omitempty"`
	Action    string   `yaml:"action" json:"action,omitempty"`
	Threshold *float64 `yaml:"threshold" json:"threshold,omitempty"`
	Lower     *float64 `yaml:"lower" json:"lower,omitempty"`
	Upper     *float64 `yaml:"upper" json:"upper,omitempty"`
}

// ValidationSection lists row-level validation rules.
type ValidationSection struct {
	Rules []ValidationRule `yaml:"rules" json:"rules"`
}

// ValidationRule checks one constraint on one field. Default is the
// replacement value used by the coerce action (null when absent).
type ValidationRule struct {
	Field      string   `yaml:"field" json:"field"`
	Constraint string   `yaml:"constraint" json:"constraint"`
	Action     string   `yaml:"action" json:"action,omitempty"`
	Min        *float64 `yaml:"min" json:"min,omitempty"`
	Max        *float64 `yaml:"max" json:"max,omitempty"`
	Values     []any    `yaml:"values" json:"values,omitempty"`
	Default    any      `yaml:"default" json:"default,omitempty"`
}

// Transform kinds.
const (
	TransformCustomFilter  = "custom_filter"
	TransformCustomCompute = "custom_compute"

	OpGroupRank      = "group_rank"
	OpConditionalSet = "conditional_set"
)

// Transform is one named entry in the ordered transformations list. The
// operation set is closed: transforms are data, never code, and unknown
// operations fail validation before execution rather than being evaluated.
type Transform struct {
	Name      string `yaml:"name" json:"name,omitempty"`
	Type      string `yaml:"type" json:"type"`
	Operation string `yaml:"operation" json:"operation,omitempty"`

	// group_rank
	GroupBy   []string `yaml:"group_by" json:"group_by,omitempty"`
	OrderBy   string   `yaml:"order_by" json:"order_by,omitempty"`
	KeepRanks []int    `yaml:"keep_ranks" json:"keep_ranks,omitempty"`

	// conditional_set
	Field string     `yaml:"field" json:"field,omitempty"`
	Set   any        `yaml:"set" json:"set,omitempty"`
	When  *Predicate `yaml:"when" json:"when,omitempty"`
}

// Predicate is a single closed-form condition on a field. Operator is one of
// eq, ne, gt, gte, lt, lte, in, not_in, is_null, not_null.
type Predicate struct {
	Field    string `yaml:"field" json:"field"`
	Operator string `yaml:"operator" json:"operator"`
	Value    any    `yaml:"value" json:"value,omitempty"`
}
