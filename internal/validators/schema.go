package validators

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/davinci-dev/davinci/internal/model"
	"github.com/davinci-dev/davinci/pkg/openapi"
)

// DefinitionsRefPrefix is the reference form the Validator compiles against.
const DefinitionsRefPrefix = "#/definitions/"

const schemaURL = "https://davinci-dev.github.io/schemas/definitions.json"

var (
	// ErrInvalidPayload is returned when a payload is not well-formed JSON
	ErrInvalidPayload = errors.New("invalid JSON payload")
	// ErrInvalidSchema is returned when synthesized definitions do not compile
	ErrInvalidSchema = errors.New("invalid schema")
)

// Validator validates JSON payloads against a synthesized root schema and its
// definitions.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles root together with defs. References in both must use
// DefinitionsRefPrefix.
func NewValidator(root *openapi.Schema, defs *openapi.Definitions) (*Validator, error) {
	doc, err := compose(root, defs)
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	compiler.AssertFormat = true

	if err := compiler.AddResource(schemaURL, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	return &Validator{schema: schema}, nil
}

// compose builds {"definitions": defs, "allOf": [root]}. Unresolvable nodes are
// encoded as null by the synthesizer; they accept anything here.
func compose(root *openapi.Schema, defs *openapi.Definitions) ([]byte, error) {
	normalized := openapi.NewDefinitions()
	for title, def := range defs.All() {
		normalized.Set(title, acceptNull(def))
	}

	doc := map[string]any{"definitions": normalized}
	if root != nil {
		doc["allOf"] = []*openapi.Schema{acceptNull(root)}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}
	return data, nil
}

func acceptNull(s *openapi.Schema) *openapi.Schema {
	if s == nil {
		return &openapi.Schema{}
	}
	c := s.Clone()
	for node := range openapi.Traverse(c, nil) {
		for key, p := range node.Properties.All() {
			if p == nil {
				node.Properties.Set(key, &openapi.Schema{})
			}
		}
	}
	return c
}

// Validate checks payload. Malformed JSON is an error; schema violations are
// reported in the result.
func (v *Validator) Validate(payload []byte) (*model.ValidationResult, error) {
	instance, err := decodePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return v.ValidateValue(instance), nil
}

// decodePayload reads exactly one JSON value, keeping numbers as json.Number.
func decodePayload(payload []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var instance any
	if err := dec.Decode(&instance); err != nil {
		return nil, err
	}
	if err := dec.Decode(new(any)); err != io.EOF {
		return nil, errors.New("unexpected data after top-level value")
	}
	return instance, nil
}

// ValidateValue checks an already decoded JSON value.
func (v *Validator) ValidateValue(instance any) *model.ValidationResult {
	err := v.schema.Validate(instance)
	if err == nil {
		return &model.ValidationResult{Valid: true}
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &model.ValidationResult{
			Errors: []model.ValidationError{{Location: "/", Message: err.Error()}},
		}
	}

	var result model.ValidationResult
	collectLeaves(ve, &result.Errors)
	sort.SliceStable(result.Errors, func(i, j int) bool {
		return result.Errors[i].Location < result.Errors[j].Location
	})
	return &result
}

func collectLeaves(ve *jsonschema.ValidationError, out *[]model.ValidationError) {
	if len(ve.Causes) == 0 {
		location := ve.InstanceLocation
		if location == "" {
			location = "/"
		}
		*out = append(*out, model.ValidationError{Location: location, Message: ve.Message})
		return
	}
	for _, cause := range ve.Causes {
		collectLeaves(cause, out)
	}
}
