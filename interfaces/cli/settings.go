package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/agent-router/infrastructure/logging"
	"github.com/felixgeelhaar/agent-router/infrastructure/observability"
)

// settings are process-level knobs read from the environment.
type settings struct {
	LogLevel  string `env:"AGENT_ROUTER_LOG_LEVEL,default=warn"`
	LogFormat string `env:"AGENT_ROUTER_LOG_FORMAT,default=console"`

	Environment   string  `env:"AGENT_ROUTER_ENV,default=development"`
	TraceExporter string  `env:"AGENT_ROUTER_TRACE_EXPORTER,default=noop"`
	OTLPEndpoint  string  `env:"AGENT_ROUTER_OTLP_ENDPOINT,default=localhost:4317"`
	OTLPInsecure  bool    `env:"AGENT_ROUTER_OTLP_INSECURE,default=false"`
	SampleRate    float64 `env:"AGENT_ROUTER_TRACE_SAMPLE_RATE,default=1.0"`
}

func loadSettings(ctx context.Context, l envconfig.Lookuper) (settings, error) {
	var s settings
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &s,
		Lookuper: l,
	}); err != nil {
		return settings{}, fmt.Errorf("reading settings: %w", err)
	}
	return s, nil
}

// setup installs the logger and the trace exporter for one command run.
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := loadSettings(ctx, a.lookuper)
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  s.LogLevel,
		Format: s.LogFormat,
		Output: a.stderr,
	})

	exporter, err := observability.ParseExporter(s.TraceExporter)
	if err != nil {
		return err
	}
	opts := []observability.Option{
		observability.WithServiceVersion(Version),
		observability.WithEnvironment(s.Environment),
		observability.WithExporter(exporter, s.OTLPEndpoint),
		observability.WithSampleRate(s.SampleRate),
	}
	if s.OTLPInsecure {
		opts = append(opts, observability.WithInsecure())
	}
	p, err := observability.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	a.tracing = p
	return nil
}

func (a *App) teardown(cmd *cobra.Command, _ []string) error {
	if a.tracing == nil {
		return nil
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	err := a.tracing.Shutdown(ctx)
	a.tracing = nil
	return err
}

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
