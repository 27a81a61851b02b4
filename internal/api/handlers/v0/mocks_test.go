package v0_test

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/mock"

	"github.com/davinci-dev/davinci/internal/model"
	"github.com/davinci-dev/davinci/pkg/openapi"
)

// MockCatalogService is a mock implementation of the CatalogService interface
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) Resources() []model.ResourceDetail {
	args := m.Called()
	return args.Get(0).([]model.ResourceDetail)
}

func (m *MockCatalogService) Resource(name string) (*model.ResourceDetail, error) {
	args := m.Called(name)
	detail, _ := args.Get(0).(*model.ResourceDetail)
	return detail, args.Error(1)
}

func (m *MockCatalogService) Definitions(name string) (*openapi.Definitions, error) {
	args := m.Called(name)
	defs, _ := args.Get(0).(*openapi.Definitions)
	return defs, args.Error(1)
}

func (m *MockCatalogService) Definition(title string) (*openapi.Schema, error) {
	args := m.Called(title)
	def, _ := args.Get(0).(*openapi.Schema)
	return def, args.Error(1)
}

func (m *MockCatalogService) Document() *huma.OpenAPI {
	args := m.Called()
	return args.Get(0).(*huma.OpenAPI)
}

func (m *MockCatalogService) Validate(name string, payload []byte) (*model.ValidationResult, error) {
	args := m.Called(name, payload)
	result, _ := args.Get(0).(*model.ValidationResult)
	return result, args.Error(1)
}

func (m *MockCatalogService) PublishSnapshot(ctx context.Context, version string) (*model.Snapshot, error) {
	args := m.Called(ctx, version)
	snapshot, _ := args.Get(0).(*model.Snapshot)
	return snapshot, args.Error(1)
}

func (m *MockCatalogService) ListSnapshots(ctx context.Context, cursor string, limit int) ([]model.SnapshotSummary, string, error) {
	args := m.Called(ctx, cursor, limit)
	snapshots, _ := args.Get(0).([]model.SnapshotSummary)
	return snapshots, args.String(1), args.Error(2)
}

func (m *MockCatalogService) GetSnapshot(ctx context.Context, id string) (*model.Snapshot, error) {
	args := m.Called(ctx, id)
	snapshot, _ := args.Get(0).(*model.Snapshot)
	return snapshot, args.Error(1)
}

func (m *MockCatalogService) LatestSnapshot(ctx context.Context) (*model.Snapshot, error) {
	args := m.Called(ctx)
	snapshot, _ := args.Get(0).(*model.Snapshot)
	return snapshot, args.Error(1)
}

func (m *MockCatalogService) DocumentChanged(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}
