package service

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/davinci-dev/davinci/internal/model"
	"github.com/davinci-dev/davinci/pkg/openapi"
)

var (
	// ErrResourceNotFound is returned for an unknown resource name
	ErrResourceNotFound = errors.New("resource not found")
	// ErrDefinitionNotFound is returned for an unknown definition title
	ErrDefinitionNotFound = errors.New("definition not found")
	// ErrInvalidVersion is returned when a snapshot version is not semantic
	ErrInvalidVersion = errors.New("version must be a semantic version (major.minor.patch)")
	// ErrVersionNotGreater is returned when a snapshot version does not exceed the latest one
	ErrVersionNotGreater = errors.New("version must be greater than the latest published version")
)

// CatalogService defines the interface for schema catalog operations
type CatalogService interface {
	// Resources lists every registered resource with its definition titles
	Resources() []model.ResourceDetail
	// Resource retrieves a single resource by name
	Resource(name string) (*model.ResourceDetail, error)
	// Definitions synthesizes the definitions reachable from a resource root
	Definitions(name string) (*openapi.Definitions, error)
	// Definition retrieves a single definition by title across all resources
	Definition(title string) (*openapi.Schema, error)
	// Document builds the OpenAPI document of the whole catalog
	Document() *huma.OpenAPI
	// Validate checks a JSON payload against a resource schema
	Validate(name string, payload []byte) (*model.ValidationResult, error)
	// PublishSnapshot stores the current document under version; an empty
	// version bumps the patch of the latest snapshot
	PublishSnapshot(ctx context.Context, version string) (*model.Snapshot, error)
	// ListSnapshots lists published snapshots with cursor-based pagination
	ListSnapshots(ctx context.Context, cursor string, limit int) ([]model.SnapshotSummary, string, error)
	// GetSnapshot retrieves a snapshot by ID
	GetSnapshot(ctx context.Context, id string) (*model.Snapshot, error)
	// LatestSnapshot retrieves the latest snapshot
	LatestSnapshot(ctx context.Context) (*model.Snapshot, error)
	// DocumentChanged reports whether the current document differs from the latest snapshot
	DocumentChanged(ctx context.Context) (bool, error)
}
