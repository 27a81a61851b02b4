package router

import (
	"github.com/danielgtaylor/huma/v2"

	v0 "github.com/davinci-dev/davinci/internal/api/handlers/v0"
	"github.com/davinci-dev/davinci/internal/config"
	"github.com/davinci-dev/davinci/internal/service"
	"github.com/davinci-dev/davinci/internal/telemetry"
)

func RegisterV0Routes(
	api huma.API, cfg *config.Config, catalog service.CatalogService, metrics *telemetry.Metrics,
) {
	v0.RegisterHealthEndpoint(api, cfg, metrics)
	v0.RegisterPingEndpoint(api, cfg.APIBasePath)
	v0.RegisterResourcesEndpoints(api, cfg.APIBasePath, catalog)
	v0.RegisterDocumentEndpoints(api, cfg.APIBasePath, catalog)
	v0.RegisterSnapshotsEndpoints(api, cfg.APIBasePath, catalog)
}
