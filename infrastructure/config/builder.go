package config

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/agent-router/domain/config"
	"github.com/felixgeelhaar/agent-router/domain/connection"
	"github.com/felixgeelhaar/agent-router/domain/diagnostic"
	"github.com/felixgeelhaar/agent-router/domain/model"
	"github.com/felixgeelhaar/agent-router/infrastructure/logging"
	"github.com/felixgeelhaar/agent-router/infrastructure/provider"
)

const component = "config"

// Builder turns a router configuration into runtime components.
type Builder struct {
	config      *config.RouterConfig
	diagnostics diagnostic.Reporter
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithDiagnostics sets the callback for handlers dropped during Build.
func WithDiagnostics(r diagnostic.Reporter) BuilderOption {
	return func(b *Builder) {
		b.diagnostics = r
	}
}

// NewBuilder creates a new configuration builder.
func NewBuilder(cfg *config.RouterConfig, opts ...BuilderOption) *Builder {
	b := &Builder{config: cfg}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildResult contains the components built from configuration.
type BuildResult struct {
	// Handlers is the model handler chain in configured order.
	Handlers []model.Handler

	// Connections are the remote tool server configurations.
	Connections []connection.Config

	// ConnectTimeout bounds one connection attempt (zero means default).
	ConnectTimeout time.Duration

	// MaxConcurrent bounds simultaneous connection attempts (zero means default).
	MaxConcurrent int

	// RequireTools fails assembly when tools are requested but no source exists.
	RequireTools bool
}

// Build builds the handler chain and connection list. A handler whose type
// is unknown or whose name repeats an earlier handler is dropped with a
// configuration diagnostic. Build fails only when no handler remains.
func (b *Builder) Build() (*BuildResult, error) {
	if b.config == nil {
		return nil, fmt.Errorf("%w: nil configuration", config.ErrBuildFailed)
	}

	result := &BuildResult{
		ConnectTimeout: b.config.Connect.Timeout.Duration(),
		MaxConcurrent:  b.config.Connect.MaxConcurrent,
		RequireTools:   b.config.Resolution.RequireTools,
	}

	seen := make(map[string]bool, len(b.config.Handlers))
	for i, hc := range b.config.Handlers {
		h, err := provider.NewHandler(hc)
		if err == nil && seen[h.Name()] {
			err = fmt.Errorf("%w: %q", model.ErrDuplicateHandler, h.Name())
		}
		if err != nil {
			b.drop(fmt.Sprintf("handlers[%d]", i), hc.DisplayName(), err)
			continue
		}
		seen[h.Name()] = true
		result.Handlers = append(result.Handlers, h)

		if err := h.Ready(); err != nil {
			logging.Debug().
				Add(logging.Component(component)).
				Add(logging.Handler(h.Name())).
				Add(logging.Reason(err.Error())).
				Msg("handler not ready, it will decline every model")
		}
	}
	if len(result.Handlers) == 0 {
		return nil, fmt.Errorf("%w: %w", config.ErrBuildFailed, model.ErrNoHandlersConfigured)
	}

	result.Connections = make([]connection.Config, 0, len(b.config.Connections))
	for _, c := range b.config.Connections {
		result.Connections = append(result.Connections, cloneConnection(c))
	}
	return result, nil
}

func (b *Builder) drop(path, name string, err error) {
	logging.Warn().
		Add(logging.Component(component)).
		Add(logging.Handler(name)).
		Add(logging.Str("path", path)).
		Add(logging.ErrorField(err)).
		Msg("dropping handler")
	b.diagnostics.Report(diagnostic.Diagnostic{
		Kind:      diagnostic.KindConfiguration,
		Component: component,
		Subject:   name,
		Err:       err,
	})
}

func cloneConnection(c connection.Config) connection.Config {
	c.Args = append([]string(nil), c.Args...)
	if c.Env != nil {
		env := make(map[string]string, len(c.Env))
		for k, v := range c.Env {
			env[k] = v
		}
		c.Env = env
	}
	if c.Headers != nil {
		headers := make(map[string]string, len(c.Headers))
		for k, v := range c.Headers {
			headers[k] = v
		}
		c.Headers = headers
	}
	return c
}
