// Package docs assembles OpenAPI documents from synthesized definitions.
package docs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"gopkg.in/yaml.v3"

	"github.com/davinci-dev/davinci/internal/model"
	"github.com/davinci-dev/davinci/pkg/openapi"
)

// ComponentsRefPrefix is the reference form used inside OpenAPI documents.
const ComponentsRefPrefix = "#/components/schemas/"

// NewDocument creates an empty OpenAPI 3.1 document.
func NewDocument(title, version, description string) *huma.OpenAPI {
	return &huma.OpenAPI{
		OpenAPI: "3.1.0",
		Info: &huma.Info{
			Title:       title,
			Version:     version,
			Description: description,
		},
		Paths: map[string]*huma.PathItem{},
		Components: &huma.Components{
			Schemas: NewRegistry(),
		},
	}
}

// MergeDefinitions adds every definition to the document components, replacing
// existing schemas with the same title.
func MergeDefinitions(doc *huma.OpenAPI, defs *openapi.Definitions) {
	if doc.Components == nil {
		doc.Components = &huma.Components{}
	}
	if doc.Components.Schemas == nil {
		doc.Components.Schemas = NewRegistry()
	}

	if registry, ok := doc.Components.Schemas.(*Registry); ok {
		for title, def := range defs.All() {
			registry.Set(title, def)
		}
		return
	}
	schemas := doc.Components.Schemas.Map()
	for title, def := range defs.All() {
		schemas[title] = ToHuma(def)
	}
}

// ToHuma converts a synthesized schema to the huma schema model. Null nodes
// become empty schemas.
func ToHuma(s *openapi.Schema) *huma.Schema {
	if s == nil {
		return &huma.Schema{}
	}

	out := &huma.Schema{
		Ref:         s.Ref,
		Title:       s.Title,
		Description: s.Description,
		Type:        s.Type,
		Format:      s.Format,
		Required:    s.Required,
		Enum:        s.Enum,
	}
	if s.Items != nil {
		out.Items = ToHuma(s.Items)
	}
	if s.Properties.Len() > 0 {
		out.Properties = make(map[string]*huma.Schema, s.Properties.Len())
		for key, p := range s.Properties.All() {
			out.Properties[key] = ToHuma(p)
		}
	}
	if len(s.Extensions) > 0 {
		out.Extensions = make(map[string]any, len(s.Extensions))
		for k, v := range s.Extensions {
			out.Extensions[k] = v
		}
	}
	return out
}

// AddResource adds the CRUD operations of r under its base path. root is the
// synthesized root schema of the resource.
func AddResource(doc *huma.OpenAPI, r model.Resource, root *openapi.Schema) {
	body := ToHuma(root)
	base := "/" + strings.Trim(r.BasePath, "/")
	item := base + "/{id}"
	tags := []string{r.Name}

	idParam := &huma.Param{
		Name:     "id",
		In:       "path",
		Required: true,
		Schema:   &huma.Schema{Type: "string"},
	}
	notFound := &huma.Response{Description: "Not Found"}

	doc.AddOperation(&huma.Operation{
		OperationID: "list-" + r.Name,
		Method:      http.MethodGet,
		Path:        base,
		Summary:     "List " + r.Name,
		Description: r.Description,
		Tags:        tags,
		Responses: map[string]*huma.Response{
			"200": jsonResponse("OK", &huma.Schema{Type: "array", Items: body}),
		},
	})
	doc.AddOperation(&huma.Operation{
		OperationID: "create-" + r.Name,
		Method:      http.MethodPost,
		Path:        base,
		Summary:     "Create " + r.Name,
		Tags:        tags,
		RequestBody: jsonBody(body),
		Responses: map[string]*huma.Response{
			"201": jsonResponse("Created", body),
			"422": {Description: "Unprocessable Entity"},
		},
	})
	doc.AddOperation(&huma.Operation{
		OperationID: "get-" + r.Name,
		Method:      http.MethodGet,
		Path:        item,
		Summary:     "Get " + r.Name,
		Tags:        tags,
		Parameters:  []*huma.Param{idParam},
		Responses: map[string]*huma.Response{
			"200": jsonResponse("OK", body),
			"404": notFound,
		},
	})
	doc.AddOperation(&huma.Operation{
		OperationID: "replace-" + r.Name,
		Method:      http.MethodPut,
		Path:        item,
		Summary:     "Replace " + r.Name,
		Tags:        tags,
		Parameters:  []*huma.Param{idParam},
		RequestBody: jsonBody(body),
		Responses: map[string]*huma.Response{
			"200": jsonResponse("OK", body),
			"404": notFound,
			"422": {Description: "Unprocessable Entity"},
		},
	})
	doc.AddOperation(&huma.Operation{
		OperationID: "delete-" + r.Name,
		Method:      http.MethodDelete,
		Path:        item,
		Summary:     "Delete " + r.Name,
		Tags:        tags,
		Parameters:  []*huma.Param{idParam},
		Responses: map[string]*huma.Response{
			"204": {Description: "No Content"},
			"404": notFound,
		},
	})
}

func jsonBody(s *huma.Schema) *huma.RequestBody {
	return &huma.RequestBody{
		Required: true,
		Content: map[string]*huma.MediaType{
			"application/json": {Schema: s},
		},
	}
}

func jsonResponse(description string, s *huma.Schema) *huma.Response {
	return &huma.Response{
		Description: description,
		Content: map[string]*huma.MediaType{
			"application/json": {Schema: s},
		},
	}
}

var (
	documentKeys = []string{
		"openapi", "info", "jsonSchemaDialect", "servers", "paths",
		"webhooks", "components", "security", "tags", "externalDocs",
	}
	infoKeys = []string{
		"title", "summary", "description", "termsOfService", "contact", "license", "version",
	}
)

// encode renders doc with its top-level and info keys in OpenAPI order.
// Extensions follow, sorted.
func encode(doc *huma.OpenAPI) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode OpenAPI document: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to encode OpenAPI document: %w", err)
	}
	if raw, ok := fields["info"]; ok {
		var info map[string]json.RawMessage
		if err := json.Unmarshal(raw, &info); err == nil {
			if fields["info"], err = orderedObject(info, infoKeys); err != nil {
				return nil, fmt.Errorf("failed to encode OpenAPI document: %w", err)
			}
		}
	}

	data, err = orderedObject(fields, documentKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to encode OpenAPI document: %w", err)
	}
	return data, nil
}

// orderedObject writes fields with keys first in order, then the rest sorted.
func orderedObject(fields map[string]json.RawMessage, order []string) ([]byte, error) {
	var w jsonObject
	for _, key := range order {
		if v, ok := fields[key]; ok {
			w.field(key, v)
		}
	}

	rest := make([]string, 0, len(fields))
	for key := range fields {
		if !slices.Contains(order, key) {
			rest = append(rest, key)
		}
	}
	slices.Sort(rest)
	for _, key := range rest {
		w.field(key, fields[key])
	}
	return w.close()
}

// MarshalJSON renders doc as indented JSON.
func MarshalJSON(doc *huma.OpenAPI) ([]byte, error) {
	data, err := encode(doc)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to indent OpenAPI document: %w", err)
	}
	return buf.Bytes(), nil
}

// MarshalYAML renders doc as block-style YAML, keeping the JSON key order.
func MarshalYAML(doc *huma.OpenAPI) ([]byte, error) {
	data, err := encode(doc)
	if err != nil {
		return nil, err
	}
	return JSONToYAML(data)
}

// JSONToYAML converts a JSON document to block-style YAML, keeping key order.
func JSONToYAML(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	resetStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// resetStyle drops the flow and quoting styles inherited from JSON.
func resetStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		resetStyle(c)
	}
}
