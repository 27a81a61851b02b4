package model

import (
	"encoding/json"
	"time"

	"github.com/davinci-dev/davinci/pkg/openapi"
)

// Resource is an API resource exposed by the catalog. Its root type drives
// schema synthesis.
type Resource struct {
	Name        string `json:"name"`
	BasePath    string `json:"base_path"`
	Description string `json:"description,omitempty"`
	// Root is the registered Go type of the resource body
	Root openapi.Type `json:"-"`
}

// ResourceDetail is a resource together with the title of its root definition
type ResourceDetail struct {
	Resource
	RootTitle   string   `json:"root_title,omitempty"`
	Definitions []string `json:"definitions"`
}

// ResourceList represents the response for listing resources
type ResourceList struct {
	Resources  []ResourceDetail `json:"resources"`
	TotalCount int              `json:"total_count"`
}

// Snapshot is a published, versioned OpenAPI document
type Snapshot struct {
	ID          string          `json:"id" bson:"id"`
	Version     string          `json:"version" bson:"version"`
	PublishedAt time.Time       `json:"published_at" bson:"published_at"`
	IsLatest    bool            `json:"is_latest" bson:"is_latest"`
	Document    json.RawMessage `json:"document,omitempty" bson:"-"`
}

// SnapshotSummary is a snapshot without its document
type SnapshotSummary struct {
	ID          string    `json:"id"`
	Version     string    `json:"version"`
	PublishedAt time.Time `json:"published_at"`
	IsLatest    bool      `json:"is_latest"`
}

// Summary drops the document from s
func (s *Snapshot) Summary() SnapshotSummary {
	return SnapshotSummary{
		ID:          s.ID,
		Version:     s.Version,
		PublishedAt: s.PublishedAt,
		IsLatest:    s.IsLatest,
	}
}

// SnapshotList represents the response for listing snapshots
type SnapshotList struct {
	Snapshots  []SnapshotSummary `json:"snapshots"`
	Next       string            `json:"next,omitempty"`
	TotalCount int               `json:"total_count"`
}

// ValidationError is a single schema violation
type ValidationError struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

// ValidationResult is the outcome of validating a payload against a resource
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}
