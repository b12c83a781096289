package observability

import (
	"context"
	"errors"
	"testing"
)

func TestParseExporter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    ExporterType
		wantErr bool
	}{
		{"", ExporterNoop, false},
		{"none", ExporterNoop, false},
		{"STDOUT", ExporterStdout, false},
		{" otlp ", ExporterOTLP, false},
		{"zipkin", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseExporter(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseExporter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrUnknownExporter) {
				t.Errorf("error = %v, want %v", err, ErrUnknownExporter)
			}
			if got != tt.want {
				t.Errorf("ParseExporter(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew_Noop(t *testing.T) {
	t.Parallel()

	p, err := New(context.Background(), WithServiceName("test"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if p.Config().ServiceName != "test" {
		t.Errorf("ServiceName = %s, want test", p.Config().ServiceName)
	}

	_, span := p.Tracer("test").Start(context.Background(), "op")
	if span.SpanContext().IsValid() {
		t.Error("noop provider produced a recording span")
	}
	span.End()

	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNew_UnknownExporter(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), WithExporter("zipkin", ""))
	if !errors.Is(err, ErrUnknownExporter) {
		t.Errorf("New() error = %v, want %v", err, ErrUnknownExporter)
	}
}

func TestOptions(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	for _, opt := range []Option{
		WithServiceVersion("1.2.3"),
		WithEnvironment("staging"),
		WithOTLP("localhost:4317"),
		WithInsecure(),
		WithSampleRate(0.5),
	} {
		opt(&cfg)
	}

	if cfg.ServiceVersion != "1.2.3" || cfg.Environment != "staging" {
		t.Errorf("service = %s/%s", cfg.ServiceVersion, cfg.Environment)
	}
	if cfg.Tracing.Exporter != ExporterOTLP || cfg.Tracing.Endpoint != "localhost:4317" {
		t.Errorf("exporter = %s %s", cfg.Tracing.Exporter, cfg.Tracing.Endpoint)
	}
	if !cfg.Tracing.Insecure || cfg.Tracing.SampleRate != 0.5 {
		t.Errorf("tracing = %+v", cfg.Tracing)
	}
}
