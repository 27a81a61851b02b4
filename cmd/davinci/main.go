package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davinci-dev/davinci/internal/api"
	"github.com/davinci-dev/davinci/internal/config"
	"github.com/davinci-dev/davinci/internal/database"
	"github.com/davinci-dev/davinci/internal/resources"
	"github.com/davinci-dev/davinci/internal/service"
	"github.com/davinci-dev/davinci/internal/telemetry"
	"github.com/davinci-dev/davinci/pkg/reflector"
)

func main() {
	// Parse command line flags
	showVersion := flag.Bool("version", false, "Display version information")
	flag.Parse()

	// Show version information if requested
	if *showVersion {
		log.Printf("davinci v%s\n", Version)
		log.Printf("Git commit: %s\n", GitCommit)
		log.Printf("Build time: %s\n", BuildTime)
		return
	}

	log.Printf("Starting davinci v%s (commit: %s)", Version, GitCommit)

	// Initialize configuration
	cfg := config.NewConfig()

	db, err := openDatabase(cfg)
	if err != nil {
		log.Printf("Failed to open database: %v", err)
		return
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
		} else {
			log.Println("Database connection closed successfully")
		}
	}()

	// Import seed data if seed source is provided
	if cfg.SeedFrom != "" {
		log.Printf("Importing snapshots from %s...", cfg.SeedFrom)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		if err := db.ImportSeed(ctx, cfg.SeedFrom); err != nil {
			log.Printf("Failed to import seed data: %v", err)
		} else {
			log.Println("Data import completed successfully")
		}
		cancel()
	}

	shutdownTelemetry, metrics, err := telemetry.InitMetrics(cfg.Version)
	if err != nil {
		log.Printf("Failed to initialize metrics: %v", err)
		return
	}

	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.Printf("Failed to shutdown telemetry: %v", err)
		}
	}()

	store := reflector.New()
	catalog := service.NewCatalogService(db, store, resources.Register(store),
		service.WithDocumentInfo(cfg.DocTitle, cfg.DocDescription),
		service.WithRefPrefix(cfg.SchemaRefPrefix),
		service.WithMetrics(metrics),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if cfg.SnapshotJobEnabled() {
		job := service.NewSnapshotJob(catalog, &service.SnapshotJobConfig{
			CronSchedule: cfg.SnapshotSchedule,
			Timeout:      service.DefaultSnapshotJobConfig().Timeout,
		})
		if err := job.Start(ctx); err != nil {
			log.Printf("Failed to start snapshot job: %v", err)
			return
		}
		defer func() {
			if err := job.Stop(); err != nil {
				log.Printf("Failed to stop snapshot job: %v", err)
			}
		}()
	}

	// Initialize HTTP server
	server := api.NewServer(cfg, catalog, metrics)

	// Start server in a goroutine so it doesn't block signal handling
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Create context with timeout for shutdown
	sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer scancel()

	// Gracefully shutdown the server
	if err := server.Shutdown(sctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

// openDatabase connects to the backend selected by cfg.DatabaseType
//
//nolint:ireturn // the backend is chosen at runtime
func openDatabase(cfg *config.Config) (database.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.DatabaseType {
	case config.DatabaseTypeMemory:
		return database.NewMemoryDB(), nil
	case config.DatabaseTypePostgreSQL:
		return database.NewPostgreSQL(ctx, cfg.DatabaseURL)
	case config.DatabaseTypeMongoDB:
		return database.NewMongoDB(ctx, cfg.DatabaseURL, cfg.DatabaseName, cfg.CollectionName)
	default:
		return nil, errors.New("invalid database type " + string(cfg.DatabaseType) +
			"; supported types: memory, postgresql, mongodb")
	}
}
