package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/davinci-dev/davinci/internal/api/router"
	"github.com/davinci-dev/davinci/internal/config"
	"github.com/davinci-dev/davinci/internal/service"
	"github.com/davinci-dev/davinci/internal/telemetry"
)

// Server represents the HTTP server
type Server struct {
	config  *config.Config
	catalog service.CatalogService
	humaAPI huma.API
	server  *http.Server
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, catalog service.CatalogService, metrics *telemetry.Metrics) *Server {
	// Create HTTP mux and Huma API
	mux := http.NewServeMux()

	api := router.NewHumaAPI(cfg, catalog, mux, metrics)

	server := &Server{
		config:  cfg,
		catalog: catalog,
		humaAPI: api,
		server: &http.Server{
			Addr:              cfg.ServerAddress,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	return server
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins listening for incoming HTTP requests
func (s *Server) Start() error {
	log.Printf("HTTP server starting on %s", s.config.ServerAddress)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
