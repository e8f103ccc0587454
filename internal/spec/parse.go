// Package spec parses YAML dashboard specifications into the typed model
// and a raw document tree. The raw tree feeds structural schema validation
// and canonicalization; the typed model feeds semantic validation and the
// IR builder.
package spec

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/dashspec-cli/internal/model"
)

// Document is a parsed specification. Raw and Spec are two views of the
// same source; neither is mutated after parsing.
type Document struct {
	Raw  map[string]any
	Spec *model.Spec
}

// Parse decodes a YAML dashboard specification. The top-level document must
// be a mapping; anything else fails fast with a descriptive error.
func Parse(src []byte) (*Document, error) {
	var raw any
	if err := yaml.Unmarshal(src, &raw); err != nil {
		return nil, eris.Wrap(err, "spec: invalid YAML")
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, eris.New("spec: top-level document must be a mapping")
	}

	var s model.Spec
	if err := yaml.Unmarshal(src, &s); err != nil {
		return nil, eris.Wrap(err, "spec: decode")
	}

	return &Document{Raw: m, Spec: &s}, nil
}

// ParseFile reads and parses a specification file.
func ParseFile(path string) (*Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "spec: read %s", path)
	}
	return Parse(src)
}
