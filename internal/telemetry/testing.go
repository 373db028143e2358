package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// TestTelemetry records spans and metrics in memory.
type TestTelemetry struct {
	*Telemetry

	recorder *tracetest.SpanRecorder
	reader   *sdkmetric.ManualReader
}

// NewTestTelemetry returns an enabled instance backed by in-memory readers.
func NewTestTelemetry() *TestTelemetry {
	cfg := NewDefaultConfig()
	cfg.Enabled = true

	recorder := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()

	return &TestTelemetry{
		Telemetry: &Telemetry{
			cfg:     cfg,
			traces:  sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)),
			metrics: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
			health:  HealthStatus{Healthy: true},
		},
		recorder: recorder,
		reader:   reader,
	}
}

// Spans returns the ended spans in end order.
func (t *TestTelemetry) Spans() []sdktrace.ReadOnlySpan {
	return t.recorder.Ended()
}

// Span returns the last ended span with the given name and fails tb when
// there is none.
func (t *TestTelemetry) Span(tb testing.TB, name string) sdktrace.ReadOnlySpan {
	tb.Helper()
	spans := t.Spans()
	for i := len(spans) - 1; i >= 0; i-- {
		if spans[i].Name() == name {
			return spans[i]
		}
	}
	names := make([]string, len(spans))
	for i, s := range spans {
		names[i] = s.Name()
	}
	tb.Fatalf("span %q not recorded, have %v", name, names)
	return nil
}

// AssertSpanAttribute checks the emitted form of a span attribute, so
// integer attributes compare against their decimal text.
func (t *TestTelemetry) AssertSpanAttribute(tb testing.TB, spanName, key, want string) {
	tb.Helper()
	for _, kv := range t.Span(tb, spanName).Attributes() {
		if string(kv.Key) == key {
			if got := kv.Value.Emit(); got != want {
				tb.Errorf("span %q attribute %q = %q, want %q", spanName, key, got, want)
			}
			return
		}
	}
	tb.Errorf("span %q has no attribute %q", spanName, key)
}

// AssertSpanStatus checks the status code a span ended with.
func (t *TestTelemetry) AssertSpanStatus(tb testing.TB, spanName string, want codes.Code) {
	tb.Helper()
	if got := t.Span(tb, spanName).Status().Code; got != want {
		tb.Errorf("span %q status = %v, want %v", spanName, got, want)
	}
}

// Metrics collects the current metric data, keyed by instrument name.
func (t *TestTelemetry) Metrics(tb testing.TB) map[string]metricdata.Metrics {
	tb.Helper()
	var rm metricdata.ResourceMetrics
	if err := t.reader.Collect(context.Background(), &rm); err != nil {
		tb.Fatalf("collecting metrics: %v", err)
	}
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

// Int64Sum returns the data points of a counter or up-down counter.
func (t *TestTelemetry) Int64Sum(tb testing.TB, name string) []metricdata.DataPoint[int64] {
	tb.Helper()
	m, ok := t.Metrics(tb)[name]
	if !ok {
		tb.Fatalf("metric %q not recorded", name)
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		tb.Fatalf("metric %q is %T, not an int64 sum", name, m.Data)
	}
	return sum.DataPoints
}
