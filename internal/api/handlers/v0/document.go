package v0

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/davinci-dev/davinci/internal/docs"
	"github.com/davinci-dev/davinci/internal/service"
)

// RegisterDocumentEndpoints registers the generated OpenAPI document endpoints
func RegisterDocumentEndpoints(api huma.API, basePath string, catalog service.CatalogService) {
	huma.Register(api, huma.Operation{
		OperationID: "get-openapi-json",
		Method:      http.MethodGet,
		Path:        basePath + "/openapi.json",
		Summary:     "OpenAPI document (JSON)",
		Description: "The OpenAPI document synthesized from every registered resource",
		Tags:        []string{"documents"},
	}, func(_ context.Context, _ *struct{}) (*RawResponse, error) {
		body, err := docs.MarshalJSON(catalog.Document())
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to render document", err)
		}
		return jsonResponse(body), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-openapi-yaml",
		Method:      http.MethodGet,
		Path:        basePath + "/openapi.yaml",
		Summary:     "OpenAPI document (YAML)",
		Description: "The OpenAPI document synthesized from every registered resource",
		Tags:        []string{"documents"},
	}, func(_ context.Context, _ *struct{}) (*RawResponse, error) {
		body, err := docs.MarshalYAML(catalog.Document())
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to render document", err)
		}
		return &RawResponse{ContentType: "application/yaml", Body: body}, nil
	})
}
