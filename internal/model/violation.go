package model

// Severity classifies how serious a spec violation is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityError    Severity = "error"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Violation codes emitted by the validator.
const (
	CodeUnsupportedVersion    = "UNSUPPORTED_VERSION"
	CodeSchemaNotFound        = "SCHEMA_NOT_FOUND"
	CodeSchemaViolation       = "SCHEMA_VIOLATION"
	CodeInvalidSchema         = "INVALID_SCHEMA"
	CodeDuplicateID           = "DUPLICATE_ID"
	CodeInvalidReference      = "INVALID_REFERENCE"
	CodeMissingRequiredRole   = "MISSING_REQUIRED_ROLE"
	CodeDQFieldNotInSchema    = "DQ_FIELD_NOT_IN_SCHEMA"
	CodeDQInappropriateMethod = "DQ_INAPPROPRIATE_METHOD"
	CodeDQQuestionableMethod  = "DQ_QUESTIONABLE_METHOD"
)

// Violation is a single validation finding. Violations are plain values
// accumulated into a list; the validator never panics or returns errors for
// spec problems.
type Violation struct {
	Code     string   `json:"code" yaml:"code"`
	Severity Severity `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
	Path     string   `json:"path" yaml:"path"`
	Repair   string   `json:"repair" yaml:"repair"`
}

// Strictness levels for the validation policy.
const (
	StrictnessRelaxed  = "relaxed"
	StrictnessModerate = "moderate"
	StrictnessStrict   = "strict"
)

// ValidationPolicy controls which violations are reported.
type ValidationPolicy struct {
	Strictness    string   `json:"strictness,omitempty" yaml:"strictness"`
	SuppressCodes []string `json:"suppress_codes,omitempty" yaml:"suppress_codes"`
}

// Blocking reports whether the violation should prevent execution.
func (v Violation) Blocking() bool {
	return v.Severity == SeverityCritical || v.Severity == SeverityError
}

// HasBlocking reports whether any violation in the list is blocking.
func HasBlocking(violations []Violation) bool {
	for _, v := range violations {
		if v.Blocking() {
			return true
		}
	}
	return false
}
