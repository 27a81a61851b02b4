package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davinci-dev/davinci/internal/database"
	"github.com/davinci-dev/davinci/internal/model"
	"github.com/davinci-dev/davinci/internal/resources"
	"github.com/davinci-dev/davinci/internal/service"
	"github.com/davinci-dev/davinci/internal/validators"
	"github.com/davinci-dev/davinci/pkg/reflector"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newCatalog(t *testing.T, db database.Database, only ...string) service.CatalogService {
	t.Helper()
	store := reflector.New()
	list := resources.Register(store)
	if len(only) > 0 {
		var kept []model.Resource
		for _, r := range list {
			for _, name := range only {
				if r.Name == name {
					kept = append(kept, r)
				}
			}
		}
		list = kept
	}
	return service.NewCatalogService(db, store, list,
		service.WithDocumentInfo("Shop API", "Test catalog"),
		service.WithClock(func() time.Time { return fixedNow }),
	)
}

func TestCatalogService_Resources(t *testing.T) {
	catalog := newCatalog(t, database.NewMemoryDB())

	details := catalog.Resources()
	require.Len(t, details, 3)

	assert.Equal(t, "customers", details[0].Name)
	assert.Equal(t, "Customer", details[0].RootTitle)
	assert.Equal(t, []string{"Customer", "CustomerPhone"}, details[0].Definitions)

	assert.Equal(t, "orders", details[1].Name)
	assert.Equal(t, []string{"Order", "Customer", "CustomerPhone", "OrderLine"}, details[1].Definitions)

	assert.Equal(t, "Category", details[2].RootTitle)
	assert.Equal(t, []string{"Category"}, details[2].Definitions)
}

func TestCatalogService_Resource(t *testing.T) {
	catalog := newCatalog(t, database.NewMemoryDB())

	detail, err := catalog.Resource("orders")
	require.NoError(t, err)
	assert.Equal(t, "/orders", detail.BasePath)
	assert.Equal(t, "Order", detail.RootTitle)

	_, err = catalog.Resource("unknown")
	assert.ErrorIs(t, err, service.ErrResourceNotFound)
}

func TestCatalogService_RefPrefix(t *testing.T) {
	store := reflector.New()
	catalog := service.NewCatalogService(database.NewMemoryDB(), store, resources.Register(store),
		service.WithRefPrefix("#/definitions/"))

	detail, err := catalog.Resource("customers")
	require.NoError(t, err)
	assert.Equal(t, "Customer", detail.RootTitle)

	defs, err := catalog.Definitions("customers")
	require.NoError(t, err)
	customer, ok := defs.Get("Customer")
	require.True(t, ok)
	assert.Equal(t, "#/definitions/CustomerPhone", customer.Properties.Map()["phone"].Items.Ref)
}

func TestCatalogService_Definitions(t *testing.T) {
	catalog := newCatalog(t, database.NewMemoryDB())

	defs, err := catalog.Definitions("categories")
	require.NoError(t, err)
	category, ok := defs.Get("Category")
	require.True(t, ok)
	assert.Equal(t, "Category", category.Properties.Map()["parent"].Ref)

	_, err = catalog.Definitions("unknown")
	assert.ErrorIs(t, err, service.ErrResourceNotFound)
}

func TestCatalogService_Definition(t *testing.T) {
	catalog := newCatalog(t, database.NewMemoryDB())

	tests := []struct {
		title string
		err   error
	}{
		{title: "Customer"},
		{title: "OrderLine"},
		{title: "Category"},
		{title: "Address", err: service.ErrDefinitionNotFound},
		{title: "Missing", err: service.ErrDefinitionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			def, err := catalog.Definition(tt.title)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.title, def.Title)
		})
	}
}

func TestCatalogService_Document(t *testing.T) {
	catalog := newCatalog(t, database.NewMemoryDB())

	doc := catalog.Document()
	assert.Equal(t, "3.1.0", doc.OpenAPI)
	assert.Equal(t, "Shop API", doc.Info.Title)
	assert.Equal(t, "Test catalog", doc.Info.Description)
	assert.Len(t, doc.Components.Schemas.Map(), 5)
	assert.Contains(t, doc.Paths, "/customers")
	assert.Contains(t, doc.Paths, "/categories/{id}")
}

func TestCatalogService_Validate(t *testing.T) {
	catalog := newCatalog(t, database.NewMemoryDB())

	tests := []struct {
		name     string
		resource string
		payload  string
		valid    bool
		err      error
	}{
		{
			name:     "valid customer",
			resource: "customers",
			payload:  `{"id":"c1","firstname":"Ada","phone":[{"number":"555"}]}`,
			valid:    true,
		},
		{
			name:     "missing required",
			resource: "customers",
			payload:  `{"id":"c1"}`,
		},
		{
			name:     "bad order status",
			resource: "orders",
			payload:  `{"id":"o1","customer":{"id":"c1","firstname":"Ada"},"status":"lost"}`,
		},
		{
			name:     "unknown resource",
			resource: "unknown",
			payload:  `{}`,
			err:      service.ErrResourceNotFound,
		},
		{
			name:     "malformed payload",
			resource: "customers",
			payload:  `{"id":`,
			err:      validators.ErrInvalidPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := catalog.Validate(tt.resource, []byte(tt.payload))
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				assert.NotEmpty(t, result.Errors)
			}
		})
	}
}

func TestCatalogService_PublishSnapshot(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t, database.NewMemoryDB())

	first, err := catalog.PublishSnapshot(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, service.InitialVersion, first.Version)
	assert.True(t, first.IsLatest)
	assert.Equal(t, fixedNow, first.PublishedAt)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(first.Document, &doc))
	assert.Equal(t, "1.0.0", doc["info"].(map[string]any)["version"])

	second, err := catalog.PublishSnapshot(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", second.Version)
	assert.Greater(t, second.ID, first.ID)

	explicit, err := catalog.PublishSnapshot(ctx, "v2.0.0")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", explicit.Version)

	latest, err := catalog.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, explicit.ID, latest.ID)

	got, err := catalog.GetSnapshot(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, got.IsLatest)
}

func TestCatalogService_PublishSnapshotErrors(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t, database.NewMemoryDB())
	_, err := catalog.PublishSnapshot(ctx, "1.2.0")
	require.NoError(t, err)

	tests := []struct {
		name    string
		version string
		err     error
	}{
		{"not semantic", "latest", service.ErrInvalidVersion},
		{"two parts", "1.3", service.ErrInvalidVersion},
		{"equal", "1.2.0", service.ErrVersionNotGreater},
		{"lower", "1.1.9", service.ErrVersionNotGreater},
		{"prerelease of current", "1.2.0-rc.1", service.ErrVersionNotGreater},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.PublishSnapshot(ctx, tt.version)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestCatalogService_ListSnapshots(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t, database.NewMemoryDB())

	var ids []string
	for range 3 {
		s, err := catalog.PublishSnapshot(ctx, "")
		require.NoError(t, err)
		ids = append(ids, s.ID)
	}

	page, next, err := catalog.ListSnapshots(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[0], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)
	assert.NotEmpty(t, next)

	page, next, err = catalog.ListSnapshots(ctx, next, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[2], page[0].ID)
	assert.True(t, page[0].IsLatest)
	assert.Empty(t, next)

	all, _, err := catalog.ListSnapshots(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCatalogService_GetSnapshotNotFound(t *testing.T) {
	catalog := newCatalog(t, database.NewMemoryDB())

	_, err := catalog.GetSnapshot(context.Background(), "0195a1b2-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, database.ErrNotFound)

	_, err = catalog.LatestSnapshot(context.Background())
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestCatalogService_DocumentChanged(t *testing.T) {
	ctx := context.Background()
	db := database.NewMemoryDB()
	partial := newCatalog(t, db, "customers")

	changed, err := partial.DocumentChanged(ctx)
	require.NoError(t, err)
	assert.True(t, changed, "nothing published yet")

	_, err = partial.PublishSnapshot(ctx, "")
	require.NoError(t, err)

	changed, err = partial.DocumentChanged(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	full := newCatalog(t, db)
	changed, err = full.DocumentChanged(ctx)
	require.NoError(t, err)
	assert.True(t, changed, "new resources change the document")
}
