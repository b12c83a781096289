package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/agent-router/application"
	"github.com/felixgeelhaar/agent-router/domain/config"
	"github.com/felixgeelhaar/agent-router/domain/diagnostic"
	"github.com/felixgeelhaar/agent-router/domain/tool"
	infraconfig "github.com/felixgeelhaar/agent-router/infrastructure/config"
	"github.com/felixgeelhaar/agent-router/infrastructure/local"
	"github.com/felixgeelhaar/agent-router/infrastructure/telemetry"
)

var errConfigRequired = errors.New("configuration file path is required (-c flag)")

// session is a loaded configuration and, once started, its runtime.
type session struct {
	config      *config.RouterConfig
	build       *infraconfig.BuildResult
	diagnostics *diagnostic.Collector
	runtime     *application.Runtime
}

// load reads and builds the configuration without touching the network.
func (a *App) load(path string, strictEnv bool) (*session, error) {
	if path == "" {
		return nil, errConfigRequired
	}

	loader := infraconfig.NewLoaderWithOptions(infraconfig.WithStrictEnv(strictEnv))
	cfg, err := loader.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	diags := &diagnostic.Collector{}
	result, err := infraconfig.NewBuilder(cfg, infraconfig.WithDiagnostics(diags.Reporter())).Build()
	if err != nil {
		return nil, err
	}
	return &session{config: cfg, build: result, diagnostics: diags}, nil
}

// start loads the configuration and starts a runtime with the built-in
// local tools. The caller closes the session.
func (a *App) start(ctx context.Context, path string) (*session, error) {
	s, err := a.load(path, false)
	if err != nil {
		return nil, err
	}

	rc := application.RuntimeConfig{
		Handlers:       s.build.Handlers,
		Connections:    s.build.Connections,
		LocalTools:     local.Builtins(),
		Instances:      local.MapInstances{local.ConfigInstanceKey: s.config},
		RequireTools:   s.build.RequireTools,
		ConnectTimeout: s.build.ConnectTimeout,
		MaxConcurrent:  s.build.MaxConcurrent,
		Diagnostics:    s.diagnostics.Reporter(),
		Metrics:        telemetry.NewMetrics(telemetry.DefaultMetricsConfig()),
	}
	if a.tracing != nil {
		rc.Tracer = a.tracing.Tracer(telemetry.InstrumentationName)
	}

	s.runtime = application.NewRuntime(rc)
	if err := s.runtime.Start(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *session) Close() error {
	if s.runtime == nil {
		return nil
	}
	return s.runtime.Close()
}

// toolView is the printed form of a tool descriptor.
type toolView struct {
	Name        string `json:"name"`
	Qualified   string `json:"qualified"`
	Source      string `json:"source"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
}

func toolViews(ds []tool.Descriptor) []toolView {
	out := make([]toolView, 0, len(ds))
	for _, d := range ds {
		v := toolView{
			Name:      d.Name,
			Qualified: d.QualifiedName(),
			Source:    d.SourceID,
			Kind:      string(d.SourceKind),
		}
		if d.Tool != nil {
			v.Description = d.Tool.Description()
		}
		out = append(out, v)
	}
	return out
}

// diagnosticView is the printed form of a diagnostic.
type diagnosticView struct {
	Kind      string `json:"kind"`
	Component string `json:"component"`
	Subject   string `json:"subject,omitempty"`
	Error     string `json:"error,omitempty"`
}

func diagnosticViews(ds []diagnostic.Diagnostic) []diagnosticView {
	out := make([]diagnosticView, 0, len(ds))
	for _, d := range ds {
		v := diagnosticView{
			Kind:      string(d.Kind),
			Component: d.Component,
			Subject:   d.Subject,
		}
		if d.Err != nil {
			v.Error = d.Err.Error()
		}
		out = append(out, v)
	}
	return out
}

func (a *App) printDiagnostics(ds []diagnostic.Diagnostic) {
	if len(ds) == 0 {
		return
	}
	fmt.Fprintf(a.stdout, "\nDiagnostics:\n")
	for _, d := range ds {
		fmt.Fprintf(a.stdout, "  - %s\n", d)
	}
}
