package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry owns the OTLP pipelines of the gateway. An exporter that cannot
// be built degrades the instance instead of failing startup; callers then get
// the global providers.
type Telemetry struct {
	cfg *Config

	traces  *sdktrace.TracerProvider
	metrics *sdkmetric.MeterProvider

	mu      sync.Mutex
	health  HealthStatus
	reasons []string
}

// HealthStatus describes the telemetry pipeline state.
type HealthStatus struct {
	Healthy  bool
	Degraded bool
	Reason   string
}

// New validates cfg and starts the configured pipelines. A disabled config
// yields an instance backed by the global providers.
func New(ctx context.Context, cfg *Config) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry config: %w", err)
	}

	t := &Telemetry{cfg: cfg, health: HealthStatus{Healthy: true}}
	if !cfg.Enabled {
		return t, nil
	}

	res := newResource(cfg)

	if tp, err := newTracerProvider(ctx, cfg, res); err != nil {
		t.degrade("traces", err)
	} else {
		t.traces = tp
		otel.SetTracerProvider(tp)
	}

	if cfg.MetricsEnabled {
		if mp, err := newMeterProvider(ctx, cfg, res); err != nil {
			t.degrade("metrics", err)
		} else {
			t.metrics = mp
			otel.SetMeterProvider(mp)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return t, nil
}

// TracerProvider returns the provider for provider-call spans.
func (t *Telemetry) TracerProvider() trace.TracerProvider {
	if t == nil || t.traces == nil {
		return otel.GetTracerProvider()
	}
	return t.traces
}

// Meter returns a meter for the given instrumentation scope.
func (t *Telemetry) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if t == nil || t.metrics == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return t.metrics.Meter(name, opts...)
}

// LoggerProvider returns the provider the zap bridge writes to.
func (t *Telemetry) LoggerProvider() log.LoggerProvider {
	return global.GetLoggerProvider()
}

// Shutdown flushes and stops the pipelines. Without a deadline on ctx the
// configured shutdown timeout applies.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}

	if _, ok := ctx.Deadline(); !ok && t.cfg != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.ShutdownTimeout)
		defer cancel()
	}

	var errs []error
	if t.traces != nil {
		if err := t.traces.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("traces: %w", err))
		}
	}
	if t.metrics != nil {
		if err := t.metrics.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics: %w", err))
		}
	}

	t.mu.Lock()
	t.health.Healthy = false
	t.mu.Unlock()

	return errors.Join(errs...)
}

// Health reports the pipeline state. A nil instance is degraded.
func (t *Telemetry) Health() HealthStatus {
	if t == nil {
		return HealthStatus{Degraded: true}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.health
}

// IsEnabled reports whether export is configured and not shut down.
func (t *Telemetry) IsEnabled() bool {
	if t == nil || t.cfg == nil {
		return false
	}
	return t.cfg.Enabled && t.Health().Healthy
}

func (t *Telemetry) degrade(signal string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reasons = append(t.reasons, signal+": "+err.Error())
	t.health.Degraded = true
	t.health.Reason = strings.Join(t.reasons, "; ")
}
