package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/buger/jsonparser"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// Details is an insertion-ordered map of action parameters. The zero value
// is an empty map ready to use. Copies share storage; use Clone before
// mutating a value that someone else holds.
type Details struct {
	keys   []string
	values map[string]string
}

// Pair is one key/value entry of Details.
type Pair struct {
	Key   string
	Value string
}

// NewDetails builds Details from alternating key, value arguments.
// A trailing key without a value is ignored.
func NewDetails(kv ...string) Details {
	var d Details
	for i := 0; i+1 < len(kv); i += 2 {
		d.Set(kv[i], kv[i+1])
	}
	return d
}

// DetailsFromPairs builds Details from pairs in order. A repeated key keeps
// its first position and takes the last value.
func DetailsFromPairs(pairs []Pair) Details {
	var d Details
	for _, p := range pairs {
		d.Set(p.Key, p.Value)
	}
	return d
}

// Set inserts or replaces a value. New keys go to the end.
func (d *Details) Set(key, value string) {
	if d.values == nil {
		d.values = make(map[string]string)
	}
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Get returns the value for key.
func (d Details) Get(key string) (string, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Delete removes key, keeping the order of the remaining keys.
func (d *Details) Delete(key string) {
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	d.keys = slices.DeleteFunc(d.keys, func(k string) bool { return k == key })
}

// Len returns the number of entries.
func (d Details) Len() int {
	return len(d.keys)
}

// IsZero reports whether d has no entries.
func (d Details) IsZero() bool {
	return len(d.keys) == 0
}

// Keys returns the keys in insertion order.
func (d Details) Keys() []string {
	return slices.Clone(d.keys)
}

// Pairs returns the entries in insertion order.
func (d Details) Pairs() []Pair {
	out := make([]Pair, 0, len(d.keys))
	for _, k := range d.keys {
		out = append(out, Pair{Key: k, Value: d.values[k]})
	}
	return out
}

// Map returns an unordered copy.
func (d Details) Map() map[string]string {
	return maps.Clone(d.values)
}

// Clone returns a copy that shares no storage with d.
func (d Details) Clone() Details {
	if len(d.keys) == 0 {
		return Details{}
	}
	return Details{keys: slices.Clone(d.keys), values: maps.Clone(d.values)}
}

// Equal compares entries regardless of order.
func (d Details) Equal(other Details) bool {
	if d.Len() != other.Len() {
		return false
	}
	for k, v := range d.values {
		if ov, ok := other.values[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// SameOrder reports whether both hold the same keys in the same order.
func (d Details) SameOrder(other Details) bool {
	return slices.Equal(d.keys, other.keys)
}

// MarshalJSON writes the entries as a JSON object in insertion order.
// Characters such as & < > are written as typed, not HTML-escaped.
func (d Details) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeString(&buf, d.values[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates each value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// UnmarshalJSON reads a JSON object of string values, keeping source order.
// null decodes to empty. Any non-string value is an error.
func (d *Details) UnmarshalJSON(data []byte) error {
	*d = Details{}
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}

	var out Details
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		if dataType != jsonparser.String {
			return fmt.Errorf("detail %q must be a string, got %v", key, dataType)
		}
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return fmt.Errorf("detail %q is not a valid string: bad escape sequence", key)
		}
		out.Set(string(key), s)
		return nil
	})
	if err != nil {
		return fmt.Errorf("details must be an object of strings: %w", err)
	}
	*d = out
	return nil
}

// MarshalYAML renders the entries as a mapping in insertion order.
func (d Details) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range d.keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: d.values[k]},
		)
	}
	return node, nil
}

// UnmarshalYAML reads a mapping of scalars, keeping source order.
func (d *Details) UnmarshalYAML(node *yaml.Node) error {
	*d = Details{}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("details must be a mapping, got line %d", node.Line)
	}
	var out Details
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("detail %q must be a scalar (line %d)", k.Value, v.Line)
		}
		out.Set(k.Value, v.Value)
	}
	*d = out
	return nil
}

// JSONSchema describes Details as an object of string values.
func (Details) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:                 "object",
		AdditionalProperties: &jsonschema.Schema{Type: "string"},
	}
}
