package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/davinci-dev/davinci/internal/api/router"
	"github.com/davinci-dev/davinci/internal/telemetry"
)

func TestMetricTelemetryMiddleware(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := telemetry.NewMetrics(provider.Meter(telemetry.Namespace))
	require.NoError(t, err)

	mux := http.NewServeMux()
	api := humago.New(mux, huma.DefaultConfig("Test API", "1.0.0"))
	api.UseMiddleware(router.MetricTelemetryMiddleware(metrics, router.WithSkipPaths("/ping")))

	huma.Register(api, huma.Operation{
		OperationID: "get-item",
		Method:      http.MethodGet,
		Path:        "/v0/items/{id}",
	}, func(_ context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if input.ID == "missing" {
			return nil, huma.Error404NotFound("not found")
		}
		return nil, nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "ping",
		Method:      http.MethodGet,
		Path:        "/v0/ping",
	}, func(_ context.Context, _ *struct{}) (*struct{}, error) {
		return nil, nil
	})

	for _, path := range []string{"/v0/items/a", "/v0/items/b", "/v0/items/missing", "/v0/ping"} {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := make(map[string]int64)
	paths := make(map[string]bool)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				counts[m.Name] += dp.Value
				if v, ok := dp.Attributes.Value("path"); ok {
					paths[v.AsString()] = true
				}
			}
		}
	}

	assert.Equal(t, int64(3), counts["davinci.http.requests"])
	assert.Equal(t, int64(1), counts["davinci.http.errors"])
	assert.Equal(t, map[string]bool{"/v0/items/{id}": true}, paths)
}
