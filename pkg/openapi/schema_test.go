package openapi_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davinci-dev/davinci/pkg/openapi"
)

func TestSchema_MarshalJSONKeyOrder(t *testing.T) {
	properties := openapi.NewSchemaMap()
	properties.Set("zeta", &openapi.Schema{Type: "string"})
	properties.Set("alpha", &openapi.Schema{Type: "number"})

	s := &openapi.Schema{
		Title:      "Customer",
		Type:       "object",
		Properties: properties,
		Required:   []string{"zeta"},
		Extensions: map[string]any{"x-b": 2, "x-a": 1, "title": "ignored"},
	}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t,
		`{"title":"Customer","type":"object","properties":{"zeta":{"type":"string"},"alpha":{"type":"number"}},"required":["zeta"],"x-a":1,"x-b":2}`,
		string(data))
}

func TestSchema_MarshalJSONOmitsEmpty(t *testing.T) {
	tests := []struct {
		name     string
		schema   *openapi.Schema
		expected string
	}{
		{"nil", nil, `null`},
		{"empty", &openapi.Schema{}, `{}`},
		{"reference", &openapi.Schema{Ref: "Customer"}, `{"$ref":"Customer"}`},
		{"empty required", &openapi.Schema{Type: "object", Required: []string{}}, `{"type":"object"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.schema)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(data))
		})
	}
}

func TestSchema_UnmarshalJSON(t *testing.T) {
	input := `{
		"title": "Status",
		"type": "string",
		"enum": ["active", "inactive"],
		"x-internal": true,
		"minLength": 1
	}`

	var s openapi.Schema
	require.NoError(t, json.Unmarshal([]byte(input), &s))

	assert.Equal(t, "Status", s.Title)
	assert.Equal(t, "string", s.Type)
	assert.Equal(t, []any{"active", "inactive"}, s.Enum)
	assert.Equal(t, map[string]any{"x-internal": true, "minLength": float64(1)}, s.Extensions)

	t.Run("invalid key type", func(t *testing.T) {
		var bad openapi.Schema
		err := json.Unmarshal([]byte(`{"type": 5}`), &bad)
		assert.ErrorContains(t, err, `invalid schema key "type"`)
	})
}

func TestSchemaMap_PreservesOrder(t *testing.T) {
	input := `{"Customer":{"type":"object"},"Address":{"type":"object"},"Base":{"type":"object"}}`

	m := openapi.NewSchemaMap()
	require.NoError(t, json.Unmarshal([]byte(input), m))
	assert.Equal(t, []string{"Customer", "Address", "Base"}, m.Keys())

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, input, string(data))
}

func TestSchemaMap_SetKeepsPosition(t *testing.T) {
	m := openapi.NewSchemaMap()
	m.Set("a", &openapi.Schema{Type: "string"})
	m.Set("b", &openapi.Schema{Type: "number"})
	m.Set("a", &openapi.Schema{Type: "boolean"})

	assert.Equal(t, []string{"a", "b"}, m.Keys())
	a, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, "boolean", a.Type)
	assert.Len(t, m.Map(), 2)
}

func TestSchemaMap_NilIsEmpty(t *testing.T) {
	var m *openapi.SchemaMap

	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Has("a"))
	assert.Nil(t, m.Keys())
	assert.Nil(t, m.Clone())
	assert.Empty(t, m.Map())
	for range m.All() {
		t.Fatal("nil map must not yield")
	}

	var zero openapi.SchemaMap
	zero.Set("a", &openapi.Schema{})
	assert.True(t, zero.Has("a"))
}

func TestSchemaMap_UnmarshalRejectsNonObject(t *testing.T) {
	m := openapi.NewSchemaMap()
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), m))
}

func TestSchema_CloneIsDeep(t *testing.T) {
	properties := openapi.NewSchemaMap()
	properties.Set("tags", &openapi.Schema{Type: "array", Items: &openapi.Schema{Type: "string"}})

	original := &openapi.Schema{
		Type:       "object",
		Properties: properties,
		Required:   []string{"tags"},
		Extensions: map[string]any{"example": map[string]any{"tags": []any{"a"}}},
	}

	clone := original.Clone()
	require.Equal(t, original, clone)

	tags, _ := clone.Properties.Get("tags")
	tags.Items.Type = "number"
	clone.Required[0] = "other"
	clone.Extensions["example"].(map[string]any)["tags"] = nil

	originalTags, _ := original.Properties.Get("tags")
	assert.Equal(t, "string", originalTags.Items.Type)
	assert.Equal(t, []string{"tags"}, original.Required)
	assert.Equal(t, []any{"a"}, original.Extensions["example"].(map[string]any)["tags"])
}

func TestDefinitions_RoundTrip(t *testing.T) {
	input := `{
		"Customer": {
			"title": "Customer",
			"type": "object",
			"properties": {
				"firstname": {"type": "string"},
				"phone": {"type": "array", "items": {"$ref": "CustomerPhone"}},
				"since": {"type": "string", "format": "date-time"}
			},
			"required": ["firstname"]
		},
		"CustomerPhone": {"title": "CustomerPhone", "type": "object"}
	}`

	defs := openapi.NewDefinitions()
	require.NoError(t, json.Unmarshal([]byte(input), defs))
	assert.Equal(t, []string{"Customer", "CustomerPhone"}, defs.Keys())

	customerDef, _ := defs.Get("Customer")
	assert.Equal(t, []string{"firstname", "phone", "since"}, customerDef.Properties.Keys())

	data, err := json.Marshal(defs)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(data))
}
