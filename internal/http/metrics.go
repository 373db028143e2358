package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

const httpInstrumentationName = "github.com/fyrsmithlabs/brainlib/internal/http"

// Ask requests wait on the model, so the duration buckets reach a minute.
var (
	durationBuckets = []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}
	sizeBuckets     = []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000}
)

// HTTPMetrics records per-route request instruments. An instrument the meter
// rejects is replaced by a no-op so the middleware never branches on it.
type HTTPMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	size     metric.Int64Histogram
	inFlight metric.Int64UpDownCounter
}

// NewHTTPMetrics creates the instruments on meter, or on the global meter
// provider when meter is nil.
func NewHTTPMetrics(meter metric.Meter, logger *zap.Logger) *HTTPMetrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	if meter == nil {
		meter = otel.Meter(httpInstrumentationName)
	}
	fallback := noop.NewMeterProvider().Meter(httpInstrumentationName)
	warn := func(name string, err error) {
		logger.Warn("failed to create instrument", zap.String("instrument", name), zap.Error(err))
	}

	m := &HTTPMetrics{}
	var err error

	if m.requests, err = meter.Int64Counter("brainlib.http.requests_total",
		metric.WithDescription("HTTP requests by method, route and status code"),
		metric.WithUnit("{request}"),
	); err != nil {
		warn("requests_total", err)
		m.requests, _ = fallback.Int64Counter("requests_total")
	}

	if m.duration, err = meter.Float64Histogram("brainlib.http.request_duration_seconds",
		metric.WithDescription("HTTP request duration by method, route and status code"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		warn("request_duration_seconds", err)
		m.duration, _ = fallback.Float64Histogram("request_duration_seconds")
	}

	if m.size, err = meter.Int64Histogram("brainlib.http.response_size_bytes",
		metric.WithDescription("HTTP response body size"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(sizeBuckets...),
	); err != nil {
		warn("response_size_bytes", err)
		m.size, _ = fallback.Int64Histogram("response_size_bytes")
	}

	if m.inFlight, err = meter.Int64UpDownCounter("brainlib.http.active_requests",
		metric.WithDescription("HTTP requests currently being served"),
		metric.WithUnit("{request}"),
	); err != nil {
		warn("active_requests", err)
		m.inFlight, _ = fallback.Int64UpDownCounter("active_requests")
	}

	return m
}

// MetricsMiddleware records every request. Handler errors are committed
// through echo's error handler first so the recorded status is final.
func (m *HTTPMetrics) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			start := time.Now()

			m.inFlight.Add(ctx, 1)
			defer m.inFlight.Add(ctx, -1)

			if err := next(c); err != nil {
				c.Error(err)
			}

			res := c.Response()
			attrs := metric.WithAttributes(
				attribute.String("method", c.Request().Method),
				attribute.String("route", normalizePath(c.Path())),
				attribute.Int("status", res.Status),
			)
			m.requests.Add(ctx, 1, attrs)
			m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
			m.size.Record(ctx, res.Size, attrs)
			return nil
		}
	}
}

// normalizePath labels requests that matched no route as "unmatched" so
// arbitrary paths cannot grow the series count.
func normalizePath(route string) string {
	if route == "" || route == "/*" {
		return "unmatched"
	}
	return route
}
