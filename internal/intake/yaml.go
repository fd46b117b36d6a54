package intake

import (
	"encoding/json"
	"fmt"

	"github.com/iwvelando/lead-intake/pkg/affordability"
	"gopkg.in/yaml.v3"
)

// schemaNode is the subset of the schema needed to find string fields.
type schemaNode struct {
	Type       interface{}           `json:"type"`
	Enum       []interface{}         `json:"enum"`
	Properties map[string]schemaNode `json:"properties"`
}

// stringPaths holds the dotted paths whose values must be strings, such
// as "income.type" or "personal.phone".
var stringPaths = mustStringPaths(schemaJSON)

func mustStringPaths(raw []byte) map[string]bool {
	var root schemaNode
	if err := json.Unmarshal(raw, &root); err != nil {
		panic(fmt.Sprintf("intake: invalid embedded schema: %v", err))
	}
	paths := make(map[string]bool)
	collectStringPaths("", root, paths)
	return paths
}

func collectStringPaths(path string, node schemaNode, out map[string]bool) {
	if isStringNode(node) {
		out[path] = true
	}
	for name, child := range node.Properties {
		collectStringPaths(joinPath(path, name), child, out)
	}
}

func isStringNode(node schemaNode) bool {
	if node.Type == "string" {
		return true
	}
	if len(node.Enum) == 0 {
		return false
	}
	for _, v := range node.Enum {
		if _, ok := v.(string); !ok {
			return false
		}
	}
	return true
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// DecodeYAML accepts the application in YAML and then behaves like Decode.
// Plain scalars under string fields keep their source text, so an unquoted
// `type: 1099` or a digits-only phone number stays a string.
func DecodeYAML(data []byte) (affordability.ApplicantRecord, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return affordability.ApplicantRecord{}, &PayloadError{Problems: []string{fmt.Sprintf("malformed YAML: %v", err)}}
	}

	value, err := yamlValue(&doc, "")
	if err != nil {
		return affordability.ApplicantRecord{}, &PayloadError{Problems: []string{err.Error()}}
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return affordability.ApplicantRecord{}, &PayloadError{Problems: []string{err.Error()}}
	}
	return Decode(raw)
}

func yamlValue(n *yaml.Node, path string) (interface{}, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlValue(n.Content[0], path)
	case yaml.AliasNode:
		return yamlValue(n.Alias, path)
	case yaml.MappingNode:
		out := make(map[string]interface{}, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			v, err := yamlValue(n.Content[i+1], joinPath(path, key))
			if err != nil {
				return nil, err
			}
			out[key] = v
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]interface{}, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := yamlValue(item, path)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.ScalarNode:
		if stringPaths[path] && n.ShortTag() != "!!null" {
			return n.Value, nil
		}
		var v interface{}
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("%s: unsupported YAML node", path)
}
