package telemetry

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupTestMetrics returns a recorder backed by a manual reader.
func setupTestMetrics(t *testing.T) (*sdkmetric.ManualReader, *Metrics) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m := NewMetrics(MetricsConfig{MeterProvider: provider})
	if m.Error() != nil {
		t.Fatalf("failed to create metrics: %v", m.Error())
	}
	return reader, m
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s data = %T, want Sum[int64]", m.Name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_Routing(t *testing.T) {
	reader, m := setupTestMetrics(t)
	ctx := context.Background()

	m.RecordRouteAttempt(ctx, "anthropic", "skipped")
	m.RecordRouteAttempt(ctx, "openai", "selected")
	m.RecordRoute(ctx, "openai", true, 3*time.Millisecond)
	m.RecordRoute(ctx, "", false, time.Millisecond)

	got := collect(t, reader)
	if n := sumOf(t, got["router.attempts"]); n != 2 {
		t.Errorf("router.attempts = %d, want 2", n)
	}
	if n := sumOf(t, got["router.exhausted"]); n != 1 {
		t.Errorf("router.exhausted = %d, want 1", n)
	}
	if _, ok := got["router.route.duration"]; !ok {
		t.Error("router.route.duration not recorded")
	}
}

func TestMetrics_Connections(t *testing.T) {
	reader, m := setupTestMetrics(t)
	ctx := context.Background()

	m.RecordConnect(ctx, "code", "subprocess", true, time.Millisecond)
	m.RecordConnect(ctx, "search", "network", false, time.Millisecond)
	m.RecordToolsDiscovered(ctx, "code", 4)
	m.RecordCollision(ctx, "search", "code")
	m.RecordDisconnect(ctx, "code")
	m.RecordUnmatched(ctx, 2)

	got := collect(t, reader)
	if n := sumOf(t, got["connection.attempts"]); n != 2 {
		t.Errorf("connection.attempts = %d, want 2", n)
	}
	if n := sumOf(t, got["connection.active"]); n != 0 {
		t.Errorf("connection.active = %d, want 0", n)
	}
	if n := sumOf(t, got["tools.discovered"]); n != 4 {
		t.Errorf("tools.discovered = %d, want 4", n)
	}
	if n := sumOf(t, got["tools.collisions"]); n != 1 {
		t.Errorf("tools.collisions = %d, want 1", n)
	}
	if n := sumOf(t, got["resolver.unmatched"]); n != 2 {
		t.Errorf("resolver.unmatched = %d, want 2", n)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	ctx := context.Background()

	m.RecordRouteAttempt(ctx, "a", "skipped")
	m.RecordRoute(ctx, "a", true, 0)
	m.RecordConnect(ctx, "c", "network", true, 0)
	m.RecordDisconnect(ctx, "c")
	m.RecordToolsDiscovered(ctx, "c", 1)
	m.RecordCollision(ctx, "c", "d")
	m.RecordUnmatched(ctx, 1)
	if m.Error() != nil {
		t.Errorf("Error() = %v, want nil", m.Error())
	}
}

func TestTracer(t *testing.T) {
	if Tracer() == nil {
		t.Fatal("Tracer() returned nil")
	}
}
