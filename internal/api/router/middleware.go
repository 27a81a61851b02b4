package router

import (
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/davinci-dev/davinci/internal/telemetry"
)

// MiddlewareOption configures MetricTelemetryMiddleware
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	skipPaths []string
}

// WithSkipPaths excludes requests whose path ends with one of paths
func WithSkipPaths(paths ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.skipPaths = append(c.skipPaths, paths...)
	}
}

// MetricTelemetryMiddleware records request count, duration and errors per
// operation path
func MetricTelemetryMiddleware(metrics *telemetry.Metrics, opts ...MiddlewareOption) func(huma.Context, func(huma.Context)) {
	cfg := &middlewareConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(ctx huma.Context, next func(huma.Context)) {
		if cfg.skip(ctx.URL().Path) {
			next(ctx)
			return
		}

		start := time.Now()
		next(ctx)
		duration := time.Since(start).Seconds()

		path := ctx.URL().Path
		if op := ctx.Operation(); op != nil {
			path = op.Path
		}
		attrs := metric.WithAttributes(
			attribute.String("method", ctx.Method()),
			attribute.String("path", path),
			attribute.String("status_code", strconv.Itoa(ctx.Status())),
		)

		reqCtx := ctx.Context()
		metrics.Requests.Add(reqCtx, 1, attrs)
		metrics.RequestDuration.Record(reqCtx, duration, attrs)
		if ctx.Status() >= 400 {
			metrics.ErrorCount.Add(reqCtx, 1, attrs)
		}
	}
}

func (c *middlewareConfig) skip(path string) bool {
	for _, p := range c.skipPaths {
		if strings.HasSuffix(path, p) {
			return true
		}
	}
	return false
}
