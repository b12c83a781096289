package observability

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ErrUnknownExporter is returned for an unsupported exporter type.
var ErrUnknownExporter = errors.New("unknown trace exporter type")

// Provider owns the tracer provider installed for the process.
type Provider struct {
	config         Config
	tracerProvider trace.TracerProvider
	shutdownFuncs  []func(context.Context) error
}

// New creates a provider. Unless the exporter is noop, the tracer provider
// is installed globally along with the W3C propagators.
func New(ctx context.Context, opts ...Option) (*Provider, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Provider{config: cfg}
	if err := p.setupTracing(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) setupTracing(ctx context.Context) error {
	var exporter sdktrace.SpanExporter

	switch p.config.Tracing.Exporter {
	case ExporterOTLP:
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(p.config.Tracing.Endpoint),
		}
		if p.config.Tracing.Insecure {
			opts = append(opts,
				otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
				otlptracegrpc.WithInsecure(),
			)
		}
		exp, err := otlptracegrpc.New(ctx, opts...)
		if err != nil {
			return err
		}
		exporter = exp

	case ExporterStdout:
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return err
		}
		exporter = exp

	case ExporterNoop, "":
		p.tracerProvider = noop.NewTracerProvider()
		return nil

	default:
		return ErrUnknownExporter
	}

	// Not merged with resource.Default() to avoid schema URL conflicts.
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(p.config.ServiceName),
		semconv.ServiceVersion(p.config.ServiceVersion),
		semconv.DeploymentEnvironment(p.config.Environment),
	)

	var sampler sdktrace.Sampler
	switch rate := p.config.Tracing.SampleRate; {
	case rate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case rate <= 0.0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(rate)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(p.config.Tracing.BatchTimeout)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	p.tracerProvider = tp
	p.shutdownFuncs = append(p.shutdownFuncs, tp.Shutdown)
	return nil
}

// Config returns the effective configuration.
func (p *Provider) Config() Config {
	return p.config
}

// TracerProvider returns the configured tracer provider.
func (p *Provider) TracerProvider() trace.TracerProvider {
	return p.tracerProvider
}

// Tracer returns a tracer for the given instrumentation name.
func (p *Provider) Tracer(name string) trace.Tracer {
	return p.tracerProvider.Tracer(name)
}

// Shutdown flushes and stops exporters.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range p.shutdownFuncs {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
