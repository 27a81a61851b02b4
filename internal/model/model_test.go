//nolint:testpackage
package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davinci-dev/davinci/pkg/openapi"
)

func TestSnapshotSummary(t *testing.T) {
	published := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &Snapshot{
		ID:          "b5b4d2a0-3c1f-4d8c-9c4e-0d6f8a1e2b3c",
		Version:     "1.2.0",
		PublishedAt: published,
		IsLatest:    true,
		Document:    json.RawMessage(`{"openapi":"3.1.0"}`),
	}

	assert.Equal(t, SnapshotSummary{
		ID:          s.ID,
		Version:     "1.2.0",
		PublishedAt: published,
		IsLatest:    true,
	}, s.Summary())
}

func TestSnapshotJSON(t *testing.T) {
	tests := []struct {
		name     string
		snapshot Snapshot
		expected string
	}{
		{
			name: "with document",
			snapshot: Snapshot{
				ID:          "id-1",
				Version:     "1.0.0",
				PublishedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
				Document:    json.RawMessage(`{"openapi":"3.1.0"}`),
			},
			expected: `{"id":"id-1","version":"1.0.0","published_at":"2025-01-02T03:04:05Z","is_latest":false,"document":{"openapi":"3.1.0"}}`,
		},
		{
			name: "without document",
			snapshot: Snapshot{
				ID:          "id-2",
				Version:     "1.0.1",
				PublishedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
				IsLatest:    true,
			},
			expected: `{"id":"id-2","version":"1.0.1","published_at":"2025-01-02T03:04:05Z","is_latest":true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.snapshot)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))

			var decoded Snapshot
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, tt.snapshot.Version, decoded.Version)
			assert.True(t, tt.snapshot.PublishedAt.Equal(decoded.PublishedAt))
		})
	}
}

func TestResourceJSONOmitsRoot(t *testing.T) {
	detail := ResourceDetail{
		Resource: Resource{
			Name:     "customers",
			BasePath: "/customers",
			Root:     openapi.String,
		},
		RootTitle:   "Customer",
		Definitions: []string{"Customer"},
	}

	data, err := json.Marshal(detail)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"name":"customers","base_path":"/customers","root_title":"Customer","definitions":["Customer"]}`,
		string(data))
}
