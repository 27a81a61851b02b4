// Package router contains API routing logic
package router

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	v0 "github.com/davinci-dev/davinci/internal/api/handlers/v0"
	"github.com/davinci-dev/davinci/internal/config"
	"github.com/davinci-dev/davinci/internal/service"
	"github.com/davinci-dev/davinci/internal/telemetry"
)

// NewHumaAPI creates a new Huma API on mux with all API versions registered
//
//nolint:ireturn // huma.API is the adapter's public surface
func NewHumaAPI(cfg *config.Config, catalog service.CatalogService, mux *http.ServeMux, metrics *telemetry.Metrics) huma.API {
	humaConfig := huma.DefaultConfig(cfg.DocTitle, cfg.Version)
	humaConfig.Info.Description = "Schema catalog: synthesized definitions, validation and OpenAPI snapshots"

	api := humago.New(mux, humaConfig)

	if metrics != nil {
		api.UseMiddleware(MetricTelemetryMiddleware(metrics,
			WithSkipPaths("/health", "/metrics", "/ping", "/docs"),
		))
		mux.Handle("/metrics", metrics.PrometheusHandler())
	}

	RegisterV0Routes(api, cfg, catalog, metrics)

	swagger := v0.SwaggerHandler(cfg.APIBasePath)
	mux.Handle(cfg.APIBasePath+"/swagger", swagger)
	mux.Handle(cfg.APIBasePath+"/swagger/", swagger)

	return api
}
