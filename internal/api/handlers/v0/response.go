package v0

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/davinci-dev/davinci/internal/database"
	"github.com/davinci-dev/davinci/internal/service"
)

// Response is a generic wrapper for Huma responses
// Usage: Response[HealthBody] instead of HealthOutput
type Response[T any] struct {
	Body T
}

// RawResponse carries an already encoded body
type RawResponse struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// Metadata contains pagination metadata
type Metadata struct {
	NextCursor string `json:"next_cursor,omitempty"`
	Count      int    `json:"count,omitempty"`
}

func jsonResponse(body []byte) *RawResponse {
	return &RawResponse{ContentType: "application/json", Body: body}
}

// toHTTPError maps service and database errors onto huma status errors
func toHTTPError(err error, action string) error {
	switch {
	case errors.Is(err, service.ErrResourceNotFound):
		return huma.Error404NotFound("Resource not found")
	case errors.Is(err, service.ErrDefinitionNotFound):
		return huma.Error404NotFound("Definition not found")
	case errors.Is(err, database.ErrNotFound):
		return huma.Error404NotFound("Snapshot not found")
	case errors.Is(err, service.ErrInvalidVersion):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, service.ErrVersionNotGreater), errors.Is(err, database.ErrInvalidVersion),
		errors.Is(err, database.ErrAlreadyExists):
		return huma.Error409Conflict(err.Error())
	default:
		return huma.Error500InternalServerError("Failed to "+action, err)
	}
}
