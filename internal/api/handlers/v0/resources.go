package v0

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/davinci-dev/davinci/internal/model"
	"github.com/davinci-dev/davinci/internal/service"
	"github.com/davinci-dev/davinci/internal/validators"
)

// ResourceInput identifies a resource by name
type ResourceInput struct {
	Name string `path:"name" doc:"Resource name" example:"customers"`
}

// ValidateInput carries a payload to validate against a resource schema
type ValidateInput struct {
	Name    string `path:"name" doc:"Resource name" example:"customers"`
	RawBody []byte `contentType:"application/json"`
}

// RegisterResourcesEndpoints registers resource and definition endpoints
func RegisterResourcesEndpoints(api huma.API, basePath string, catalog service.CatalogService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-resources",
		Method:      http.MethodGet,
		Path:        basePath + "/resources",
		Summary:     "List resources",
		Description: "List every API resource with the definitions its schema produces",
		Tags:        []string{"resources"},
	}, func(_ context.Context, _ *struct{}) (*Response[model.ResourceList], error) {
		resources := catalog.Resources()
		return &Response[model.ResourceList]{
			Body: model.ResourceList{
				Resources:  resources,
				TotalCount: len(resources),
			},
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-resource",
		Method:      http.MethodGet,
		Path:        basePath + "/resources/{name}",
		Summary:     "Get resource",
		Description: "Get a single API resource",
		Tags:        []string{"resources"},
	}, func(_ context.Context, input *ResourceInput) (*Response[model.ResourceDetail], error) {
		detail, err := catalog.Resource(input.Name)
		if err != nil {
			return nil, toHTTPError(err, "get resource")
		}
		return &Response[model.ResourceDetail]{Body: *detail}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-resource-definitions",
		Method:      http.MethodGet,
		Path:        basePath + "/resources/{name}/definitions",
		Summary:     "Get resource definitions",
		Description: "Synthesize the schema definitions reachable from the resource root",
		Tags:        []string{"resources"},
	}, func(_ context.Context, input *ResourceInput) (*RawResponse, error) {
		defs, err := catalog.Definitions(input.Name)
		if err != nil {
			return nil, toHTTPError(err, "synthesize definitions")
		}
		body, err := json.Marshal(defs)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to encode definitions", err)
		}
		return jsonResponse(body), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "validate-resource",
		Method:      http.MethodPost,
		Path:        basePath + "/resources/{name}/validate",
		Summary:     "Validate payload",
		Description: "Validate a JSON payload against the resource schema",
		Tags:        []string{"resources"},
	}, func(_ context.Context, input *ValidateInput) (*Response[model.ValidationResult], error) {
		result, err := catalog.Validate(input.Name, input.RawBody)
		if err != nil {
			if errors.Is(err, validators.ErrInvalidPayload) {
				return nil, huma.Error400BadRequest("Invalid JSON payload", err)
			}
			return nil, toHTTPError(err, "validate payload")
		}
		return &Response[model.ValidationResult]{Body: *result}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-definition",
		Method:      http.MethodGet,
		Path:        basePath + "/definitions/{title}",
		Summary:     "Get definition",
		Description: "Get a single schema definition by title",
		Tags:        []string{"definitions"},
	}, func(_ context.Context, input *struct {
		Title string `path:"title" doc:"Definition title" example:"Customer"`
	}) (*RawResponse, error) {
		def, err := catalog.Definition(input.Title)
		if err != nil {
			return nil, toHTTPError(err, "get definition")
		}
		body, err := json.Marshal(def)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to encode definition", err)
		}
		return jsonResponse(body), nil
	})
}
