// Package application wires routing and tool resolution into a runtime that
// assembles agents for a host.
package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/agent-router/domain/agent"
	"github.com/felixgeelhaar/agent-router/domain/connection"
	"github.com/felixgeelhaar/agent-router/domain/diagnostic"
	"github.com/felixgeelhaar/agent-router/domain/model"
	"github.com/felixgeelhaar/agent-router/domain/tool"
	"github.com/felixgeelhaar/agent-router/infrastructure/local"
	"github.com/felixgeelhaar/agent-router/infrastructure/logging"
	"github.com/felixgeelhaar/agent-router/infrastructure/mcp"
	"github.com/felixgeelhaar/agent-router/infrastructure/registry"
	"github.com/felixgeelhaar/agent-router/infrastructure/router"
	"github.com/felixgeelhaar/agent-router/infrastructure/telemetry"
)

const runtimeComponent = "runtime"

// RuntimeConfig contains configuration for the runtime.
type RuntimeConfig struct {
	// Handlers is the model handler chain, in order.
	Handlers []model.Handler

	// Connections are the remote tool servers.
	Connections []connection.Config

	// LocalTools is the in-process registration table.
	LocalTools []local.Registration

	// Instances resolves instance-bound local tools.
	Instances local.InstanceProvider

	// RequireTools fails Assemble when tools are requested but no source
	// is configured.
	RequireTools bool

	// ConnectTimeout bounds one connection attempt (zero means default).
	ConnectTimeout time.Duration

	// MaxConcurrent bounds simultaneous connection attempts (zero means default).
	MaxConcurrent int

	// Dialer replaces the MCP SDK dialer.
	Dialer mcp.Dialer

	// Diagnostics receives every non-fatal problem.
	Diagnostics diagnostic.Reporter

	// Metrics records routing and resolution metrics.
	Metrics *telemetry.Metrics

	// Tracer overrides the global tracer.
	Tracer trace.Tracer
}

// Runtime builds the routing and tool components once and assembles agents
// from descriptors.
type Runtime struct {
	config RuntimeConfig

	mu      sync.RWMutex
	started bool
	closed  bool

	catalog  *tool.Catalog
	local    *local.Source
	manager  *mcp.Manager
	registry *registry.Registry
	resolver *Resolver
	router   *router.Router
}

// NewRuntime creates a runtime. Nothing is built until Start.
func NewRuntime(config RuntimeConfig) *Runtime {
	if config.Tracer == nil {
		config.Tracer = telemetry.Tracer()
	}
	return &Runtime{config: config}
}

// Start builds the router, the local source, connects every remote
// connection and builds the registry and resolver. An empty handler chain
// is fatal; every other problem is reported as a diagnostic. Calls after
// the first successful Start are no-ops.
func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRuntimeClosed
	}
	if r.started {
		return nil
	}

	rt, err := router.New(r.config.Handlers,
		router.WithDiagnostics(r.config.Diagnostics),
		router.WithMetrics(r.config.Metrics),
		router.WithTracer(r.config.Tracer),
	)
	if err != nil {
		return fmt.Errorf("building router: %w", err)
	}

	catalog := tool.NewCatalog()
	localSource := local.NewSource(r.config.LocalTools, r.config.Instances,
		local.WithCatalog(catalog),
		local.WithDiagnostics(r.config.Diagnostics),
		local.WithMetrics(r.config.Metrics),
	)

	managerOpts := []mcp.Option{
		mcp.WithCatalog(catalog),
		mcp.WithConnectTimeout(r.config.ConnectTimeout),
		mcp.WithMaxConcurrent(r.config.MaxConcurrent),
		mcp.WithDiagnostics(r.config.Diagnostics),
		mcp.WithMetrics(r.config.Metrics),
		mcp.WithTracer(r.config.Tracer),
	}
	if r.config.Dialer != nil {
		managerOpts = append(managerOpts, mcp.WithDialer(r.config.Dialer))
	}
	manager, err := mcp.NewManager(r.config.Connections, managerOpts...)
	if err != nil {
		return fmt.Errorf("building connection manager: %w", err)
	}
	if err := manager.Initialize(ctx); err != nil {
		return fmt.Errorf("initializing connections: %w", err)
	}

	reg := registry.New(catalog, localSource, manager)

	r.catalog = catalog
	r.local = localSource
	r.manager = manager
	r.registry = reg
	r.router = rt
	r.resolver = NewResolver(reg,
		WithResolverDiagnostics(r.config.Diagnostics),
		WithResolverMetrics(r.config.Metrics),
		WithResolverTracer(r.config.Tracer),
	)
	r.started = true

	logging.Info().
		Add(logging.Component(runtimeComponent)).
		Add(logging.Count("handlers", len(r.config.Handlers))).
		Add(logging.Count("local_tools", localSource.Len())).
		Add(logging.Count("connections", manager.Configured())).
		Add(logging.Count("global_tools", catalog.Len())).
		Msg("runtime started")
	return nil
}

func (r *Runtime) ready() error {
	if r.closed {
		return ErrRuntimeClosed
	}
	if !r.started {
		return ErrNotStarted
	}
	return nil
}

// Assemble routes the descriptor's model and resolves its tool tokens. A
// routing failure is returned as the error; unmatched tokens are not
// errors. The caller owns the returned assembly's client.
func (r *Runtime) Assemble(ctx context.Context, desc agent.Descriptor) (*agent.Assembly, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.ready(); err != nil {
		return nil, err
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if r.config.RequireTools && desc.RequestsTools() && r.registry.Empty() {
		return nil, fmt.Errorf("%w: agent %q", ErrNoToolSources, desc.Name)
	}

	route, err := r.router.Route(ctx, desc.ModelName)
	if err != nil {
		return nil, err
	}
	res := r.resolver.Resolve(ctx, desc.ToolTokens)

	a := &agent.Assembly{
		ID:         uuid.NewString(),
		Descriptor: desc,
		Client:     route.Client,
		Handler:    route.Handler,
		Attempts:   route.Attempts,
		Tools:      res.Tools,
		Unmatched:  res.Unmatched,
	}

	logging.Info().
		Add(logging.Component(runtimeComponent)).
		Add(logging.Str("agent", desc.Name)).
		Add(logging.Model(desc.ModelName)).
		Add(logging.Handler(route.Handler)).
		Add(logging.Count("tools", len(a.Tools))).
		Add(logging.Count("unmatched", len(a.Unmatched))).
		Msg("agent assembled")
	return a, nil
}

// Route routes a model name through the handler chain.
func (r *Runtime) Route(ctx context.Context, modelName string) (*model.Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.ready(); err != nil {
		return nil, err
	}
	return r.router.Route(ctx, modelName)
}

// Resolve resolves tool tokens against the registry.
func (r *Runtime) Resolve(ctx context.Context, tokens []string) (Resolution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.ready(); err != nil {
		return Resolution{}, err
	}
	return r.resolver.Resolve(ctx, tokens), nil
}

// Connections lists every configured connection.
func (r *Runtime) Connections() ([]connection.Info, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.ready(); err != nil {
		return nil, err
	}
	return r.manager.ListConnections(), nil
}

// ToolsForConnection lists every tool of one connection.
func (r *Runtime) ToolsForConnection(name string) ([]tool.Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.ready(); err != nil {
		return nil, err
	}
	return r.manager.ListToolsForConnection(name)
}

// GlobalTools returns the global tool catalog in claim order.
func (r *Runtime) GlobalTools() ([]tool.Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.ready(); err != nil {
		return nil, err
	}
	return r.registry.GlobalTools(), nil
}

// Handlers returns the handler names in chain order.
func (r *Runtime) Handlers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.router == nil {
		return nil
	}
	return r.router.Handlers()
}

// Close tears down every remote connection. Clients returned by Assemble
// are owned by the caller and are not closed.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	if r.manager != nil {
		_ = r.manager.Close()
	}
	logging.Debug().
		Add(logging.Component(runtimeComponent)).
		Msg("runtime closed")
	return nil
}
