package engine

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrorKind classifies an execution failure so callers can show targeted
// repair guidance instead of a bare message.
type ErrorKind string

const (
	ErrMissingField ErrorKind = "missing_field"
	ErrTypeMismatch ErrorKind = "type_mismatch"
	ErrInvalidValue ErrorKind = "invalid_value"
	ErrMissingFile  ErrorKind = "missing_file"
)

// ExecError is a classified execution failure.
type ExecError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ExecError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ExecError) Unwrap() error { return e.Err }

// RepairHints returns a short ordered list of kind-specific suggestions.
func (e *ExecError) RepairHints() []string {
	switch e.Kind {
	case ErrMissingField:
		return []string{
			"Check that the field name matches the dataset schema exactly",
			"Re-run validation to catch fields missing from the schema",
		}
	case ErrTypeMismatch:
		return []string{
			"Check that the aggregation is compatible with the field's type",
			"Add a coercion rule if the field should be numeric",
		}
	case ErrInvalidValue:
		return []string{
			"Check filter bounds: range filters need a two-element [min, max]",
			"Verify date formats in date_range filter values",
		}
	case ErrMissingFile:
		return []string{
			"Check data_source.path and working directory",
			"Re-run the ETL pipeline if the data file is stale or absent",
		}
	default:
		return nil
	}
}

// execErrorf builds a classified error.
func execErrorf(kind ErrorKind, format string, args ...any) *ExecError {
	return &ExecError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Classify wraps an arbitrary error as an ExecError. Already-classified
// errors pass through; file-not-found becomes missing_file; everything else
// defaults to invalid_value.
func Classify(err error) *ExecError {
	if err == nil {
		return nil
	}
	var ee *ExecError
	if errors.As(err, &ee) {
		return ee
	}
	if errors.Is(err, fs.ErrNotExist) {
		return &ExecError{Kind: ErrMissingFile, Message: "data file not found", Err: err}
	}
	return &ExecError{Kind: ErrInvalidValue, Message: "execution failed", Err: err}
}
