// Package v0 contains API handlers for version 0 of the API
package v0

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/davinci-dev/davinci/internal/config"
	"github.com/davinci-dev/davinci/internal/telemetry"
)

// HealthBody represents the health check response body
type HealthBody struct {
	Status  string `json:"status" example:"ok" doc:"Health status"`
	Version string `json:"version,omitempty" doc:"Build version"`
}

// RegisterHealthEndpoint registers the health check endpoint
func RegisterHealthEndpoint(api huma.API, cfg *config.Config, metrics *telemetry.Metrics) {
	huma.Register(api, huma.Operation{
		OperationID: "get-health",
		Method:      http.MethodGet,
		Path:        cfg.APIBasePath + "/health",
		Summary:     "Health check",
		Description: "Check the health status of the API",
		Tags:        []string{"health"},
	}, func(ctx context.Context, _ *struct{}) (*Response[HealthBody], error) {
		if metrics != nil && metrics.Up != nil {
			metrics.Up.Record(ctx, 1, metric.WithAttributes(
				attribute.String("service", telemetry.Namespace),
			))
		}

		return &Response[HealthBody]{
			Body: HealthBody{
				Status:  "ok",
				Version: cfg.Version,
			},
		}, nil
	})
}
