package v0_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/stretchr/testify/assert"

	v0 "github.com/davinci-dev/davinci/internal/api/handlers/v0"
	"github.com/davinci-dev/davinci/internal/config"
)

func TestHealthEndpoint(t *testing.T) {
	testCases := []struct {
		name           string
		config         *config.Config
		path           string
		expectedStatus int
		expectedBody   []string
		unexpected     string
	}{
		{
			name:           "returns health status with version",
			config:         &config.Config{APIBasePath: "/v0", Version: "1.2.3"},
			path:           "/v0/health",
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"status":"ok"`, `"version":"1.2.3"`},
		},
		{
			name:           "returns health status without version",
			config:         &config.Config{APIBasePath: "/v0"},
			path:           "/v0/health",
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"status":"ok"`},
			unexpected:     `"version"`,
		},
		{
			name:           "honors the base path",
			config:         &config.Config{APIBasePath: "/api"},
			path:           "/api/health",
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"status":"ok"`},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux := http.NewServeMux()
			api := humago.New(mux, huma.DefaultConfig("Test API", "1.0.0"))

			v0.RegisterHealthEndpoint(api, tc.config, nil)

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)

			// Since Huma adds a $schema field, we'll check individual fields
			body := w.Body.String()
			for _, expected := range tc.expectedBody {
				assert.Contains(t, body, expected)
			}
			if tc.unexpected != "" {
				assert.NotContains(t, body, tc.unexpected)
			}
		})
	}
}
