package validate

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/sells-group/dashspec-cli/internal/model"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// schemaFile maps a resolved DSL version to its schema document. Versions
// without a dedicated schema fall back to the legacy document.
func schemaFile(version string) string {
	switch {
	case strings.HasPrefix(version, "1.2"):
		return "schema_v1.2.json"
	case strings.HasPrefix(version, "1.1"):
		return "schema_v1.1.json"
	default:
		return "schema.json"
	}
}

// structural validates the raw document against the versioned schema. The
// second return is false when validation cannot proceed at all (schema
// document missing) and the caller must return the violations as-is.
func structural(raw map[string]any, version string) ([]model.Violation, bool) {
	name := schemaFile(version)

	data, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return []model.Violation{{
			Code:     model.CodeSchemaNotFound,
			Severity: model.SeverityError,
			Message:  fmt.Sprintf("Schema file not found: %s", name),
			Path:     "/",
			Repair:   fmt.Sprintf("Ensure %s is bundled with the binary", name),
		}}, false
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return []model.Violation{invalidSchema(err)}, true
	}
	sch, err := compiler.Compile(name)
	if err != nil {
		return []model.Violation{invalidSchema(err)}, true
	}

	if err := sch.Validate(raw); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return schemaViolations(ve), true
		}
		return []model.Violation{invalidSchema(err)}, true
	}

	return nil, true
}

func invalidSchema(err error) model.Violation {
	return model.Violation{
		Code:     model.CodeInvalidSchema,
		Severity: model.SeverityError,
		Message:  fmt.Sprintf("Invalid schema: %v", err),
		Path:     "/",
		Repair:   "Contact maintainer - bundled schema document is malformed",
	}
}

// schemaViolations flattens a validation error tree into one violation per
// leaf cause, preserving the instance pointer path. Reporting every leaf
// instead of stopping at the first failure is a deliberate improvement over
// validators that bail early.
func schemaViolations(ve *jsonschema.ValidationError) []model.Violation {
	var out []model.Violation
	for _, leaf := range leafCauses(ve) {
		path := leaf.InstanceLocation
		if path == "" {
			path = "/"
		}
		out = append(out, model.Violation{
			Code:     model.CodeSchemaViolation,
			Severity: model.SeverityError,
			Message:  fmt.Sprintf("Schema validation failed: %s", leaf.Message),
			Path:     path,
			Repair:   "Ensure the field conforms to the schema requirements",
		})
	}
	return out
}

func leafCauses(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var leaves []*jsonschema.ValidationError
	for _, c := range ve.Causes {
		leaves = append(leaves, leafCauses(c)...)
	}
	return leaves
}
