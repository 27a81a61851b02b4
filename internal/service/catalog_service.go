package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/davinci-dev/davinci/internal/database"
	"github.com/davinci-dev/davinci/internal/docs"
	"github.com/davinci-dev/davinci/internal/model"
	"github.com/davinci-dev/davinci/internal/telemetry"
	"github.com/davinci-dev/davinci/internal/validators"
	"github.com/davinci-dev/davinci/pkg/openapi"
	"github.com/davinci-dev/davinci/pkg/reflector"
)

// InitialVersion is the version of the first snapshot when none is given
const InitialVersion = "1.0.0"

// Option configures the catalog service
type Option func(s *catalogServiceImpl)

// WithDocumentInfo sets the title and description of generated OpenAPI documents
func WithDocumentInfo(title, description string) Option {
	return func(s *catalogServiceImpl) {
		s.title = title
		s.description = description
	}
}

// WithRefPrefix sets the reference form of definitions returned by the catalog
func WithRefPrefix(prefix string) Option {
	return func(s *catalogServiceImpl) {
		s.refPrefix = prefix
	}
}

// WithMetrics records synthesis, validation and snapshot metrics
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *catalogServiceImpl) {
		s.metrics = m
	}
}

// WithClock overrides the time source used for snapshot timestamps
func WithClock(now func() time.Time) Option {
	return func(s *catalogServiceImpl) {
		s.now = now
	}
}

// catalogServiceImpl implements the CatalogService interface
type catalogServiceImpl struct {
	db        database.Database
	store     *reflector.Store
	resources []model.Resource

	title       string
	description string
	refPrefix   string
	metrics     *telemetry.Metrics
	now         func() time.Time

	mu         sync.Mutex
	validators map[string]*validators.Validator
}

// NewCatalogService creates a new catalog service over resources registered in store
//
//nolint:ireturn // Factory function intentionally returns interface for dependency injection
func NewCatalogService(db database.Database, store *reflector.Store, resources []model.Resource, opts ...Option) CatalogService {
	s := &catalogServiceImpl{
		db:         db,
		store:      store,
		resources:  resources,
		title:      "Davinci API",
		now:        time.Now,
		validators: make(map[string]*validators.Validator),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *catalogServiceImpl) synthesizer(prefix string) *openapi.Synthesizer {
	return openapi.NewSynthesizer(s.store, openapi.WithRefPrefix(prefix))
}

func (s *catalogServiceImpl) find(name string) (model.Resource, bool) {
	for _, r := range s.resources {
		if r.Name == name {
			return r, true
		}
	}
	return model.Resource{}, false
}

func (s *catalogServiceImpl) detail(r model.Resource) model.ResourceDetail {
	result := s.synthesizer(s.refPrefix).Synthesize(r.Root)
	detail := model.ResourceDetail{
		Resource:    r,
		Definitions: result.Definitions.Keys(),
	}
	if detail.Definitions == nil {
		detail.Definitions = []string{}
	}
	if result.Schema.IsRef() {
		detail.RootTitle = strings.TrimPrefix(result.Schema.Ref, s.refPrefix)
	}
	return detail
}

// Resources lists every registered resource
func (s *catalogServiceImpl) Resources() []model.ResourceDetail {
	details := make([]model.ResourceDetail, 0, len(s.resources))
	for _, r := range s.resources {
		details = append(details, s.detail(r))
	}
	return details
}

// Resource retrieves a single resource by name
func (s *catalogServiceImpl) Resource(name string) (*model.ResourceDetail, error) {
	r, ok := s.find(name)
	if !ok {
		return nil, ErrResourceNotFound
	}
	detail := s.detail(r)
	return &detail, nil
}

// Definitions synthesizes the definitions reachable from a resource root
func (s *catalogServiceImpl) Definitions(name string) (*openapi.Definitions, error) {
	r, ok := s.find(name)
	if !ok {
		return nil, ErrResourceNotFound
	}
	defs := s.synthesizer(s.refPrefix).ExtractDefinitions(r.Root)
	s.metrics.RecordSynthesis(context.Background(), r.Name, defs.Len())
	return defs, nil
}

// Definition retrieves a single definition by title across all resources
func (s *catalogServiceImpl) Definition(title string) (*openapi.Schema, error) {
	synth := s.synthesizer(s.refPrefix)
	defs := openapi.NewDefinitions()
	for _, r := range s.resources {
		synth.SynthesizeInto(r.Root, defs)
	}
	def, ok := defs.Get(title)
	if !ok {
		return nil, ErrDefinitionNotFound
	}
	return def, nil
}

// Document builds the OpenAPI document of the whole catalog
func (s *catalogServiceImpl) Document() *huma.OpenAPI {
	return s.buildDocument("")
}

func (s *catalogServiceImpl) buildDocument(version string) *huma.OpenAPI {
	if version == "" {
		version = "0.0.0"
	}
	doc := docs.NewDocument(s.title, version, s.description)
	synth := s.synthesizer(docs.ComponentsRefPrefix)
	defs := openapi.NewDefinitions()
	for _, r := range s.resources {
		result := synth.SynthesizeInto(r.Root, defs)
		docs.AddResource(doc, r, result.Schema)
	}
	docs.MergeDefinitions(doc, defs)
	return doc
}

func (s *catalogServiceImpl) validator(r model.Resource) (*validators.Validator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.validators[r.Name]; ok {
		return v, nil
	}
	result := s.synthesizer(validators.DefinitionsRefPrefix).Synthesize(r.Root)
	v, err := validators.NewValidator(result.Schema, result.Definitions)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema of %s: %w", r.Name, err)
	}
	s.validators[r.Name] = v
	return v, nil
}

// Validate checks a JSON payload against a resource schema
func (s *catalogServiceImpl) Validate(name string, payload []byte) (*model.ValidationResult, error) {
	r, ok := s.find(name)
	if !ok {
		return nil, ErrResourceNotFound
	}
	v, err := s.validator(r)
	if err != nil {
		return nil, err
	}
	result, err := v.Validate(payload)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		s.metrics.RecordValidationFailure(context.Background(), r.Name)
	}
	return result, nil
}

// PublishSnapshot stores the current document under version
func (s *catalogServiceImpl) PublishSnapshot(ctx context.Context, version string) (*model.Snapshot, error) {
	latest, err := s.db.GetLatest(ctx)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	if version == "" {
		version = InitialVersion
		if latest != nil {
			version = NextPatchVersion(latest.Version)
		}
	}
	if !IsSemanticVersion(version) {
		return nil, ErrInvalidVersion
	}
	version = strings.TrimPrefix(version, "v")
	if latest != nil && CompareVersions(version, latest.Version) <= 0 {
		return nil, fmt.Errorf("%w: %s <= %s", ErrVersionNotGreater, version, latest.Version)
	}

	document, err := docs.MarshalJSON(s.buildDocument(version))
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate snapshot id: %w", err)
	}

	published, err := s.db.Publish(ctx, &model.Snapshot{
		ID:          id.String(),
		Version:     version,
		PublishedAt: s.now().UTC(),
		Document:    document,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordSnapshot(ctx, version)
	return published, nil
}

// ListSnapshots lists published snapshots
func (s *catalogServiceImpl) ListSnapshots(ctx context.Context, cursor string, limit int) ([]model.SnapshotSummary, string, error) {
	// If limit is not set or negative, use a default limit
	if limit <= 0 {
		limit = 30
	}

	snapshots, next, err := s.db.List(ctx, nil, cursor, limit)
	if err != nil {
		return nil, "", err
	}

	summaries := make([]model.SnapshotSummary, len(snapshots))
	for i, snapshot := range snapshots {
		summaries[i] = snapshot.Summary()
	}
	return summaries, next, nil
}

// GetSnapshot retrieves a snapshot by ID
func (s *catalogServiceImpl) GetSnapshot(ctx context.Context, id string) (*model.Snapshot, error) {
	return s.db.GetByID(ctx, id)
}

// LatestSnapshot retrieves the latest snapshot
func (s *catalogServiceImpl) LatestSnapshot(ctx context.Context) (*model.Snapshot, error) {
	return s.db.GetLatest(ctx)
}

// DocumentChanged reports whether the current document differs from the latest
// snapshot. It is true when nothing was published yet.
func (s *catalogServiceImpl) DocumentChanged(ctx context.Context) (bool, error) {
	latest, err := s.db.GetLatest(ctx)
	if errors.Is(err, database.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	current, err := docs.MarshalJSON(s.buildDocument(latest.Version))
	if err != nil {
		return false, err
	}
	return !sameJSON(current, latest.Document), nil
}

// sameJSON compares documents structurally: stores may reorder keys.
func sameJSON(a, b []byte) bool {
	var va, vb any
	if json.Unmarshal(a, &va) != nil || json.Unmarshal(b, &vb) != nil {
		return false
	}
	return reflect.DeepEqual(va, vb)
}
