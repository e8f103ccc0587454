package spec

import (
	"bytes"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Canonicalize renders a raw spec tree as deterministic YAML: dsl_version
// first, remaining mapping keys sorted recursively, two-space indent. Two
// semantically identical specs always canonicalize to identical bytes.
func Canonicalize(raw map[string]any) ([]byte, error) {
	node, err := toNode(raw)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, eris.Wrap(err, "spec: canonicalize")
	}
	if err := enc.Close(); err != nil {
		return nil, eris.Wrap(err, "spec: canonicalize")
	}
	return buf.Bytes(), nil
}

func toNode(v any) (*yaml.Node, error) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			if k != "dsl_version" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		if _, ok := val["dsl_version"]; ok {
			keys = append([]string{"dsl_version"}, keys...)
		}

		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range keys {
			child, err := toNode(val[k])
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				child,
			)
		}
		return node, nil

	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range val {
			child, err := toNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil

	default:
		node := &yaml.Node{}
		if err := node.Encode(v); err != nil {
			return nil, eris.Wrap(err, "spec: encode scalar")
		}
		return node, nil
	}
}
