package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"sort"
)

// Schema is a JSON Schema / OpenAPI schema object as produced by the synthesizer.
//
// A use-site reference node only carries Ref. Stored definitions never carry Ref.
type Schema struct {
	Ref         string
	Title       string
	Description string
	Type        string
	Format      string
	Items       *Schema
	Properties  *SchemaMap
	Required    []string
	Enum        []any

	// Extensions holds any additional keys, e.g. extra definition metadata.
	Extensions map[string]any
}

// knownKeys are the schema keys with a dedicated field. Extensions never override them.
var knownKeys = map[string]bool{
	"$ref": true, "title": true, "description": true, "type": true, "format": true,
	"items": true, "properties": true, "required": true, "enum": true,
}

// IsRef reports whether s is a pure reference node.
func (s *Schema) IsRef() bool {
	return s != nil && s.Ref != ""
}

// Clone returns a deep copy of s.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	c := *s
	c.Items = s.Items.Clone()
	c.Properties = s.Properties.Clone()
	if s.Required != nil {
		c.Required = append([]string(nil), s.Required...)
	}
	if s.Enum != nil {
		c.Enum = cloneValue(s.Enum).([]any)
	}
	if s.Extensions != nil {
		c.Extensions = cloneValue(s.Extensions).(map[string]any)
	}
	return &c
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON encodes known keys in a fixed order followed by sorted extension keys.
func (s *Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}

	w := objectWriter{}
	w.field("$ref", s.Ref, s.Ref != "")
	w.field("title", s.Title, s.Title != "")
	w.field("description", s.Description, s.Description != "")
	w.field("type", s.Type, s.Type != "")
	w.field("format", s.Format, s.Format != "")
	w.field("items", s.Items, s.Items != nil)
	w.field("properties", s.Properties, s.Properties != nil)
	w.field("required", s.Required, len(s.Required) > 0)
	w.field("enum", s.Enum, len(s.Enum) > 0)

	keys := make([]string, 0, len(s.Extensions))
	for k := range s.Extensions {
		if !knownKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		w.field(k, s.Extensions[k], true)
	}

	return w.close()
}

// UnmarshalJSON decodes a schema object. Unknown keys land in Extensions.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = Schema{}
	for key, value := range raw {
		var err error
		switch key {
		case "$ref":
			err = json.Unmarshal(value, &s.Ref)
		case "title":
			err = json.Unmarshal(value, &s.Title)
		case "description":
			err = json.Unmarshal(value, &s.Description)
		case "type":
			err = json.Unmarshal(value, &s.Type)
		case "format":
			err = json.Unmarshal(value, &s.Format)
		case "items":
			err = json.Unmarshal(value, &s.Items)
		case "properties":
			err = json.Unmarshal(value, &s.Properties)
		case "required":
			err = json.Unmarshal(value, &s.Required)
		case "enum":
			err = json.Unmarshal(value, &s.Enum)
		default:
			var v any
			if err = json.Unmarshal(value, &v); err == nil {
				if s.Extensions == nil {
					s.Extensions = make(map[string]any)
				}
				s.Extensions[key] = v
			}
		}
		if err != nil {
			return fmt.Errorf("invalid schema key %q: %w", key, err)
		}
	}
	return nil
}

// SchemaMap is an insertion-ordered map of name to schema. It backs both the
// properties of an object schema and the definitions accumulator.
//
// Overwriting an existing key keeps its original position. The zero value is
// ready to use; a nil *SchemaMap behaves as an empty, read-only map.
type SchemaMap struct {
	keys    []string
	entries map[string]*Schema
}

// Definitions maps definition titles to schemas in first-encountered order.
type Definitions = SchemaMap

// NewSchemaMap creates an empty SchemaMap
func NewSchemaMap() *SchemaMap {
	return &SchemaMap{entries: make(map[string]*Schema)}
}

// NewDefinitions creates an empty definitions accumulator
func NewDefinitions() *Definitions {
	return NewSchemaMap()
}

// Set stores s under key.
func (m *SchemaMap) Set(key string, s *Schema) {
	if m.entries == nil {
		m.entries = make(map[string]*Schema)
	}
	if _, ok := m.entries[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.entries[key] = s
}

// Get returns the schema stored under key.
func (m *SchemaMap) Get(key string) (*Schema, bool) {
	if m == nil {
		return nil, false
	}
	s, ok := m.entries[key]
	return s, ok
}

// Has reports whether key is present.
func (m *SchemaMap) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Len returns the number of entries.
func (m *SchemaMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *SchemaMap) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// All iterates over the entries in insertion order.
func (m *SchemaMap) All() iter.Seq2[string, *Schema] {
	return func(yield func(string, *Schema) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.entries[k]) {
				return
			}
		}
	}
}

// Map returns an unordered copy of the entries.
func (m *SchemaMap) Map() map[string]*Schema {
	out := make(map[string]*Schema, m.Len())
	for k, s := range m.All() {
		out[k] = s
	}
	return out
}

// Clone returns a deep copy of m.
func (m *SchemaMap) Clone() *SchemaMap {
	if m == nil {
		return nil
	}
	c := NewSchemaMap()
	for k, s := range m.All() {
		c.Set(k, s.Clone())
	}
	return c
}

// MarshalJSON encodes the entries as a JSON object in insertion order.
func (m *SchemaMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	w := objectWriter{}
	for k, s := range m.All() {
		w.field(k, s, true)
	}
	return w.close()
}

// UnmarshalJSON decodes a JSON object keeping the document's key order.
func (m *SchemaMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	token, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", token)
	}

	m.keys = nil
	m.entries = make(map[string]*Schema)
	for dec.More() {
		token, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := token.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", token)
		}
		var s *Schema
		if err := dec.Decode(&s); err != nil {
			return fmt.Errorf("invalid schema for %q: %w", key, err)
		}
		m.Set(key, s)
	}

	// closing brace
	_, err = dec.Token()
	return err
}

// objectWriter builds a JSON object with keys in call order.
type objectWriter struct {
	buf bytes.Buffer
	n   int
	err error
}

func (w *objectWriter) field(key string, value any, include bool) {
	if !include || w.err != nil {
		return
	}
	if w.n == 0 {
		w.buf.WriteByte('{')
	} else {
		w.buf.WriteByte(',')
	}
	w.n++

	k, err := json.Marshal(key)
	if err != nil {
		w.err = err
		return
	}
	v, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("failed to encode %q: %w", key, err)
		return
	}
	w.buf.Write(k)
	w.buf.WriteByte(':')
	w.buf.Write(v)
}

func (w *objectWriter) close() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if w.n == 0 {
		return []byte("{}"), nil
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}
