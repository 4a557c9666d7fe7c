// Package annotation implements the `# key: value` metadata blocks that can
// be attached to declarations and resources: a YAML mapping with deep-merge
// extend semantics and typed accessors. Grounded on OAL's annotation.rs,
// using gopkg.in/yaml.v3 in place of serde_yaml.
package annotation

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Annotation is an indexed set of YAML-valued properties.
type Annotation struct {
	Props yaml.Node
}

// Empty returns a zero-value annotation backed by an empty mapping node.
func Empty() Annotation {
	return Annotation{Props: yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

// ParseFrom parses a comma-separated sequence of `key: value` pairs, as
// found inside a source annotation block, into an Annotation.
func ParseFrom(src string) (Annotation, error) {
	var n yaml.Node
	if err := yaml.Unmarshal([]byte("{ "+src+" }"), &n); err != nil {
		return Annotation{}, fmt.Errorf("parsing annotation: %w", err)
	}
	if len(n.Content) == 0 {
		return Empty(), nil
	}
	return Annotation{Props: *n.Content[0]}, nil
}

// Extend merges other into a, consuming it: mappings merge key-by-key
// recursively, sequences concatenate, and anything else is overwritten by
// other's value (right-biased).
func (a *Annotation) Extend(other Annotation) {
	deepExtendValue(&a.Props, other.Props)
}

func deepExtendValue(prev *yaml.Node, other yaml.Node) {
	if prev.Kind == yaml.MappingNode && other.Kind == yaml.MappingNode {
		deepExtendMapping(prev, other)
		return
	}
	if prev.Kind == yaml.SequenceNode && other.Kind == yaml.SequenceNode {
		prev.Content = append(prev.Content, other.Content...)
		return
	}
	*prev = other
}

func deepExtendMapping(prev *yaml.Node, other yaml.Node) {
	for i := 0; i+1 < len(other.Content); i += 2 {
		k, v := other.Content[i], other.Content[i+1]
		if existing := findKey(prev, k.Value); existing != nil {
			deepExtendValue(existing, *v)
		} else {
			prev.Content = append(prev.Content, k, v)
		}
	}
}

func findKey(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func (a Annotation) find(key string) *yaml.Node {
	return findKey(&a.Props, key)
}

// GetStr returns a string-valued property.
func (a Annotation) GetStr(key string) (string, bool) {
	n := a.find(key)
	if n == nil || n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		return "", false
	}
	var s string
	if err := n.Decode(&s); err != nil {
		return "", false
	}
	return s, true
}

// GetBool returns a bool-valued property.
func (a Annotation) GetBool(key string) (bool, bool) {
	n := a.find(key)
	if n == nil {
		return false, false
	}
	var b bool
	if err := n.Decode(&b); err != nil {
		return false, false
	}
	return b, true
}

// GetNum returns a float-valued property.
func (a Annotation) GetNum(key string) (float64, bool) {
	n := a.find(key)
	if n == nil {
		return 0, false
	}
	var f float64
	if err := n.Decode(&f); err != nil {
		return 0, false
	}
	return f, true
}

// GetInt returns an integer-valued property.
func (a Annotation) GetInt(key string) (int64, bool) {
	n := a.find(key)
	if n == nil {
		return 0, false
	}
	var i int64
	if err := n.Decode(&i); err != nil {
		return 0, false
	}
	return i, true
}

// GetEnum returns a sequence-of-strings-valued property, skipping any
// element that is not a plain string.
func (a Annotation) GetEnum(key string) ([]string, bool) {
	n := a.find(key)
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil, false
	}
	var out []string
	for _, item := range n.Content {
		var s string
		if item.Kind == yaml.ScalarNode && item.Decode(&s) == nil {
			out = append(out, s)
		}
	}
	return out, true
}

// GetProps returns a mapping-of-string-to-string-valued property.
func (a Annotation) GetProps(key string) (map[string]string, bool) {
	n := a.find(key)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil, false
	}
	out := make(map[string]string)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var k, v string
		if n.Content[i].Decode(&k) == nil && n.Content[i+1].Decode(&v) == nil {
			out[k] = v
		}
	}
	return out, true
}
