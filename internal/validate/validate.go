// Package validate checks dashboard specifications before execution: a
// versioned structural schema pass followed by semantic checks (duplicate
// identifiers, reference resolution, chart role requirements, data-quality
// field references), with a severity policy applied last. Spec problems are
// reported as model.Violation values, never as errors.
package validate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sells-group/dashspec-cli/internal/model"
	"github.com/sells-group/dashspec-cli/internal/spec"
)

// supportedVersions are the accepted major.minor DSL version prefixes.
var supportedVersions = []string{"1.0", "1.1", "1.2", "1.3"}

// defaultVersion is assumed when a spec omits dsl_version.
const defaultVersion = "1.0.0"

// Validate runs the full validation pipeline on a parsed spec. A
// validation_policy declared in the spec takes precedence over the passed
// policy, which acts as the caller's default; both nil means moderate
// strictness. An unsupported DSL version or a missing schema document
// short-circuits: the single resulting violation is returned and no further
// checks run.
func Validate(doc *spec.Document, policy *model.ValidationPolicy) []model.Violation {
	if doc.Spec.ValidationPolicy != nil {
		policy = doc.Spec.ValidationPolicy
	}

	version := doc.Spec.DSLVersion
	if version == "" {
		version = defaultVersion
	}

	if prefix := majorMinor(version); !slices.Contains(supportedVersions, prefix) {
		return []model.Violation{{
			Code:     model.CodeUnsupportedVersion,
			Severity: model.SeverityCritical,
			Message: fmt.Sprintf("DSL version %q is not supported. Supported versions: %s",
				version, strings.Join(supportedVersions, ", ")),
			Path:   "/dsl_version",
			Repair: fmt.Sprintf("Update dsl_version to one of: %s.x", strings.Join(supportedVersions, ", ")),
		}}
	}

	violations, ok := structural(doc.Raw, version)
	if !ok {
		return violations
	}

	violations = append(violations, semantic(doc.Spec)...)

	return applyPolicy(violations, policy)
}

// majorMinor reduces a version string to its major.minor prefix.
func majorMinor(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, ".")
}
