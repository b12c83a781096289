// Package telemetry provides OpenTelemetry instruments for model routing,
// remote connections and tool resolution.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the meter and tracer name.
const InstrumentationName = "github.com/felixgeelhaar/agent-router"

// Metrics records routing and tool resolution metrics. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	meter metric.Meter

	routeAttempts     metric.Int64Counter
	routeExhausted    metric.Int64Counter
	routeDuration     metric.Float64Histogram
	connectAttempts   metric.Int64Counter
	connectDuration   metric.Float64Histogram
	connectionsActive metric.Int64UpDownCounter
	toolsDiscovered   metric.Int64Counter
	toolCollisions    metric.Int64Counter
	unmatchedTokens   metric.Int64Counter

	initErr error
}

// MetricsConfig configures the metrics recorder.
type MetricsConfig struct {
	// MeterProvider supplies the meter (default: the global provider).
	MeterProvider metric.MeterProvider
	// MeterName is the name of the meter (default: InstrumentationName).
	MeterName string
	// MeterVersion is the version of the meter.
	MeterVersion string
}

// DefaultMetricsConfig returns a default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		MeterName:    InstrumentationName,
		MeterVersion: "1.0.0",
	}
}

// NewMetrics creates a metrics recorder. Instrument creation errors are
// reported by Error; the recorder stays usable.
func NewMetrics(config MetricsConfig) *Metrics {
	if config.MeterName == "" {
		config.MeterName = InstrumentationName
	}
	provider := config.MeterProvider
	if provider == nil {
		provider = otel.GetMeterProvider()
	}

	m := &Metrics{
		meter: provider.Meter(
			config.MeterName,
			metric.WithInstrumentationVersion(config.MeterVersion),
		),
	}
	m.initErr = m.initInstruments()
	return m
}

func (m *Metrics) initInstruments() error {
	var err error

	if m.routeAttempts, err = m.meter.Int64Counter(
		"router.attempts",
		metric.WithDescription("Handler attempts made while routing a model"),
		metric.WithUnit("{attempt}"),
	); err != nil {
		return err
	}

	if m.routeExhausted, err = m.meter.Int64Counter(
		"router.exhausted",
		metric.WithDescription("Routing calls where no handler produced a client"),
		metric.WithUnit("{call}"),
	); err != nil {
		return err
	}

	if m.routeDuration, err = m.meter.Float64Histogram(
		"router.route.duration",
		metric.WithDescription("Duration of routing calls"),
		metric.WithUnit("ms"),
	); err != nil {
		return err
	}

	if m.connectAttempts, err = m.meter.Int64Counter(
		"connection.attempts",
		metric.WithDescription("Remote connection attempts"),
		metric.WithUnit("{attempt}"),
	); err != nil {
		return err
	}

	if m.connectDuration, err = m.meter.Float64Histogram(
		"connection.duration",
		metric.WithDescription("Duration of connect plus discovery"),
		metric.WithUnit("ms"),
	); err != nil {
		return err
	}

	if m.connectionsActive, err = m.meter.Int64UpDownCounter(
		"connection.active",
		metric.WithDescription("Open remote connections"),
		metric.WithUnit("{connection}"),
	); err != nil {
		return err
	}

	if m.toolsDiscovered, err = m.meter.Int64Counter(
		"tools.discovered",
		metric.WithDescription("Tools registered by a source"),
		metric.WithUnit("{tool}"),
	); err != nil {
		return err
	}

	if m.toolCollisions, err = m.meter.Int64Counter(
		"tools.collisions",
		metric.WithDescription("Tools dropped from the global catalog because the name was taken"),
		metric.WithUnit("{tool}"),
	); err != nil {
		return err
	}

	if m.unmatchedTokens, err = m.meter.Int64Counter(
		"resolver.unmatched",
		metric.WithDescription("Tool tokens that resolved to no tool"),
		metric.WithUnit("{token}"),
	); err != nil {
		return err
	}

	return nil
}

// Error returns any initialization error.
func (m *Metrics) Error() error {
	if m == nil {
		return nil
	}
	return m.initErr
}

func (m *Metrics) ready() bool {
	return m != nil && m.initErr == nil
}

// RecordRouteAttempt records one handler attempt.
func (m *Metrics) RecordRouteAttempt(ctx context.Context, handler, outcome string) {
	if !m.ready() {
		return
	}
	m.routeAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("handler", handler),
		attribute.String("outcome", outcome),
	))
}

// RecordRoute records a finished routing call.
func (m *Metrics) RecordRoute(ctx context.Context, handler string, success bool, duration time.Duration) {
	if !m.ready() {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("handler", handler),
		attribute.Bool("success", success),
	)
	m.routeDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	if !success {
		m.routeExhausted.Add(ctx, 1)
	}
}

// RecordConnect records a connect plus discovery attempt.
func (m *Metrics) RecordConnect(ctx context.Context, connection, transport string, success bool, duration time.Duration) {
	if !m.ready() {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("connection", connection),
		attribute.String("transport", transport),
		attribute.Bool("success", success),
	)
	m.connectAttempts.Add(ctx, 1, attrs)
	m.connectDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	if success {
		m.connectionsActive.Add(ctx, 1, metric.WithAttributes(attribute.String("connection", connection)))
	}
}

// RecordDisconnect records a closed connection.
func (m *Metrics) RecordDisconnect(ctx context.Context, connection string) {
	if !m.ready() {
		return
	}
	m.connectionsActive.Add(ctx, -1, metric.WithAttributes(attribute.String("connection", connection)))
}

// RecordToolsDiscovered records tools registered by a source.
func (m *Metrics) RecordToolsDiscovered(ctx context.Context, source string, count int) {
	if !m.ready() || count == 0 {
		return
	}
	m.toolsDiscovered.Add(ctx, int64(count), metric.WithAttributes(attribute.String("source", source)))
}

// RecordCollision records a tool dropped from the global catalog.
func (m *Metrics) RecordCollision(ctx context.Context, source, owner string) {
	if !m.ready() {
		return
	}
	m.toolCollisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("owner", owner),
	))
}

// RecordUnmatched records tool tokens that resolved to nothing.
func (m *Metrics) RecordUnmatched(ctx context.Context, count int) {
	if !m.ready() || count == 0 {
		return
	}
	m.unmatchedTokens.Add(ctx, int64(count))
}

// Tracer returns the tracer used by the routing components.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}
