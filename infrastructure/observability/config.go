// Package observability sets up OpenTelemetry trace export for the CLI.
package observability

import (
	"fmt"
	"strings"
	"time"
)

// Config configures trace export.
type Config struct {
	// ServiceName is the name of the service for telemetry.
	ServiceName string

	// ServiceVersion is the version of the service.
	ServiceVersion string

	// Environment is the deployment environment (e.g., "production", "staging").
	Environment string

	// Tracing configures distributed tracing.
	Tracing TracingConfig
}

// TracingConfig configures distributed tracing.
type TracingConfig struct {
	// Exporter specifies the trace exporter type.
	Exporter ExporterType

	// Endpoint is the OTLP endpoint (e.g., "localhost:4317").
	Endpoint string

	// Insecure disables TLS for the exporter connection.
	Insecure bool

	// SampleRate is the sampling rate (0.0-1.0, default: 1.0).
	SampleRate float64

	// BatchTimeout is the batch export timeout.
	BatchTimeout time.Duration
}

// ExporterType specifies the trace exporter.
type ExporterType string

const (
	// ExporterOTLP exports to an OTLP gRPC endpoint.
	ExporterOTLP ExporterType = "otlp"

	// ExporterStdout writes spans to stdout.
	ExporterStdout ExporterType = "stdout"

	// ExporterNoop disables export.
	ExporterNoop ExporterType = "noop"
)

// ParseExporter parses an exporter name. The empty string selects noop.
func ParseExporter(s string) (ExporterType, error) {
	switch ExporterType(strings.ToLower(strings.TrimSpace(s))) {
	case "", ExporterNoop, "none":
		return ExporterNoop, nil
	case ExporterStdout:
		return ExporterStdout, nil
	case ExporterOTLP:
		return ExporterOTLP, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownExporter, s)
	}
}

// DefaultConfig returns a configuration with export disabled.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "agent-router",
		ServiceVersion: "dev",
		Environment:    "development",
		Tracing: TracingConfig{
			Exporter:     ExporterNoop,
			SampleRate:   1.0,
			BatchTimeout: 5 * time.Second,
		},
	}
}

// Option configures the provider.
type Option func(*Config)

// WithServiceName sets the service name.
func WithServiceName(name string) Option {
	return func(c *Config) {
		c.ServiceName = name
	}
}

// WithServiceVersion sets the service version.
func WithServiceVersion(version string) Option {
	return func(c *Config) {
		c.ServiceVersion = version
	}
}

// WithEnvironment sets the environment.
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithExporter selects the trace exporter and its endpoint.
func WithExporter(exporter ExporterType, endpoint string) Option {
	return func(c *Config) {
		c.Tracing.Exporter = exporter
		c.Tracing.Endpoint = endpoint
	}
}

// WithStdoutTracing writes spans to stdout.
func WithStdoutTracing() Option {
	return WithExporter(ExporterStdout, "")
}

// WithOTLP exports spans to an OTLP endpoint.
func WithOTLP(endpoint string) Option {
	return WithExporter(ExporterOTLP, endpoint)
}

// WithInsecure disables TLS for OTLP export.
func WithInsecure() Option {
	return func(c *Config) {
		c.Tracing.Insecure = true
	}
}

// WithSampleRate sets the trace sampling rate.
func WithSampleRate(rate float64) Option {
	return func(c *Config) {
		c.Tracing.SampleRate = rate
	}
}
