package v0

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/davinci-dev/davinci/internal/model"
	"github.com/davinci-dev/davinci/internal/service"
)

// ListSnapshotsInput represents the input for listing snapshots
type ListSnapshotsInput struct {
	Cursor string `query:"cursor" doc:"Pagination cursor (UUID)" format:"uuid" required:"false"`
	Limit  int    `query:"limit" doc:"Number of items per page" default:"30" minimum:"1" maximum:"100"`
}

// ListSnapshotsBody represents the paginated snapshot list response body
type ListSnapshotsBody struct {
	Snapshots []model.SnapshotSummary `json:"snapshots" doc:"Published OpenAPI snapshots"`
	Metadata  *Metadata               `json:"metadata,omitempty" doc:"Pagination metadata"`
}

// PublishSnapshotInput represents the input for publishing a snapshot
type PublishSnapshotInput struct {
	Body struct {
		Version string `json:"version,omitempty" doc:"Semantic version; the latest patch is bumped when empty" required:"false"`
	}
}

// SnapshotDetailInput represents the input for getting a snapshot
type SnapshotDetailInput struct {
	ID string `path:"id" doc:"Snapshot ID (UUID)" format:"uuid"`
}

// RegisterSnapshotsEndpoints registers all snapshot endpoints
func RegisterSnapshotsEndpoints(api huma.API, basePath string, catalog service.CatalogService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-snapshots",
		Method:      http.MethodGet,
		Path:        basePath + "/snapshots",
		Summary:     "List snapshots",
		Description: "Get a paginated list of published OpenAPI snapshots",
		Tags:        []string{"snapshots"},
	}, func(ctx context.Context, input *ListSnapshotsInput) (*Response[ListSnapshotsBody], error) {
		// Validate cursor if provided
		if input.Cursor != "" {
			if _, err := uuid.Parse(input.Cursor); err != nil {
				return nil, huma.Error400BadRequest("Invalid cursor parameter")
			}
		}

		snapshots, nextCursor, err := catalog.ListSnapshots(ctx, input.Cursor, input.Limit)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to list snapshots", err)
		}

		body := ListSnapshotsBody{Snapshots: snapshots}
		if nextCursor != "" {
			body.Metadata = &Metadata{
				NextCursor: nextCursor,
				Count:      len(snapshots),
			}
		}
		return &Response[ListSnapshotsBody]{Body: body}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "publish-snapshot",
		Method:        http.MethodPost,
		Path:          basePath + "/snapshots",
		Summary:       "Publish snapshot",
		Description:   "Store the current OpenAPI document as a new versioned snapshot",
		Tags:          []string{"snapshots"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *PublishSnapshotInput) (*Response[model.Snapshot], error) {
		snapshot, err := catalog.PublishSnapshot(ctx, input.Body.Version)
		if err != nil {
			return nil, toHTTPError(err, "publish snapshot")
		}
		return &Response[model.Snapshot]{Body: *snapshot}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-latest-snapshot",
		Method:      http.MethodGet,
		Path:        basePath + "/snapshots/latest",
		Summary:     "Get latest snapshot",
		Description: "Get the most recently published OpenAPI snapshot",
		Tags:        []string{"snapshots"},
	}, func(ctx context.Context, _ *struct{}) (*Response[model.Snapshot], error) {
		snapshot, err := catalog.LatestSnapshot(ctx)
		if err != nil {
			return nil, toHTTPError(err, "get latest snapshot")
		}
		return &Response[model.Snapshot]{Body: *snapshot}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-snapshot",
		Method:      http.MethodGet,
		Path:        basePath + "/snapshots/{id}",
		Summary:     "Get snapshot",
		Description: "Get a published OpenAPI snapshot with its document",
		Tags:        []string{"snapshots"},
	}, func(ctx context.Context, input *SnapshotDetailInput) (*Response[model.Snapshot], error) {
		snapshot, err := catalog.GetSnapshot(ctx, input.ID)
		if err != nil {
			return nil, toHTTPError(err, "get snapshot")
		}
		return &Response[model.Snapshot]{Body: *snapshot}, nil
	})
}
