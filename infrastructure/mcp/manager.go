package mcp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/statekit"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/agent-router/domain/connection"
	"github.com/felixgeelhaar/agent-router/domain/diagnostic"
	"github.com/felixgeelhaar/agent-router/domain/tool"
	"github.com/felixgeelhaar/agent-router/infrastructure/logging"
	"github.com/felixgeelhaar/agent-router/infrastructure/statemachine"
	"github.com/felixgeelhaar/agent-router/infrastructure/telemetry"
)

const component = "connections"

var errNilSession = errors.New("dialer returned nil session")

// Manager owns the configured remote connections. Initialize connects them
// once; afterwards the tool views are read-only until Close.
type Manager struct {
	initMu      sync.Mutex
	initialized bool
	closed      atomic.Bool

	entries []*remoteSource
	byName  map[string]*remoteSource

	catalog        *tool.Catalog
	dialer         Dialer
	connectTimeout time.Duration
	maxConcurrent  int
	diagnostics    diagnostic.Reporter
	metrics        *telemetry.Metrics
	tracer         trace.Tracer
}

// Option configures a Manager.
type Option func(*Manager)

// WithCatalog sets the global catalog remote tools are claimed in.
func WithCatalog(c *tool.Catalog) Option {
	return func(m *Manager) {
		m.catalog = c
	}
}

// WithDialer replaces the SDK dialer.
func WithDialer(d Dialer) Option {
	return func(m *Manager) {
		m.dialer = d
	}
}

// WithConnectTimeout bounds dial plus discovery for each connection.
func WithConnectTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.connectTimeout = d
		}
	}
}

// WithMaxConcurrent bounds simultaneous connection attempts.
func WithMaxConcurrent(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxConcurrent = n
		}
	}
}

// WithDiagnostics sets the callback for configuration and connection errors.
func WithDiagnostics(r diagnostic.Reporter) Option {
	return func(m *Manager) {
		m.diagnostics = r
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(mt *telemetry.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

// WithTracer sets the tracer for connection spans.
func WithTracer(t trace.Tracer) Option {
	return func(m *Manager) {
		m.tracer = t
	}
}

// NewManager creates a manager for configs. No connection is attempted
// until Initialize.
func NewManager(configs []connection.Config, opts ...Option) (*Manager, error) {
	machine, err := statemachine.NewConnectionMachine()
	if err != nil {
		return nil, fmt.Errorf("building connection machine: %w", err)
	}

	m := &Manager{
		byName:         make(map[string]*remoteSource, len(configs)),
		connectTimeout: DefaultConnectTimeout,
		maxConcurrent:  DefaultMaxConcurrent,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.catalog == nil {
		m.catalog = tool.NewCatalog()
	}
	if m.dialer == nil {
		m.dialer = NewSDKDialer("agent-router", "")
	}
	if m.tracer == nil {
		m.tracer = telemetry.Tracer()
	}

	m.entries = make([]*remoteSource, 0, len(configs))
	for _, cfg := range configs {
		src := newRemoteSource(machine, cfg)
		m.entries = append(m.entries, src)
		if _, exists := m.byName[cfg.Name]; cfg.Name != "" && !exists {
			m.byName[cfg.Name] = src
		}
	}
	return m, nil
}

func newRemoteSource(machine *statekit.MachineConfig[*statemachine.Context], cfg connection.Config) *remoteSource {
	cfg.Args = append([]string(nil), cfg.Args...)
	return &remoteSource{
		config:    cfg,
		lifecycle: statemachine.NewInterpreter(machine, cfg.Name),
	}
}

type dialResult struct {
	session  Session
	defs     []*mcpsdk.Tool
	op       string
	err      error
	duration time.Duration
}

// Initialize connects every configured connection and registers its tools.
// Connections are dialed concurrently; registration happens afterwards in
// configured order so global claims are deterministic. A failing
// connection never affects the others. Only the first call does any work.
func (m *Manager) Initialize(ctx context.Context) error {
	m.initMu.Lock()
	defer m.initMu.Unlock()

	if m.closed.Load() {
		return ErrManagerClosed
	}
	if m.initialized {
		return nil
	}
	m.initialized = true

	ctx, span := m.tracer.Start(ctx, "connections.initialize",
		trace.WithAttributes(attribute.Int("connections", len(m.entries))))
	defer span.End()

	seen := make(map[string]bool, len(m.entries))
	pending := make([]*remoteSource, 0, len(m.entries))
	for _, src := range m.entries {
		_ = src.lifecycle.Transition(connection.StateConnecting, "initialize", nil)

		err := src.config.Validate()
		if err == nil && seen[src.config.Name] {
			err = fmt.Errorf("%w: %q", connection.ErrDuplicateName, src.config.Name)
		}
		seen[src.config.Name] = true
		if err != nil {
			m.fail(src, "validate", err, diagnostic.KindConfiguration)
			continue
		}
		pending = append(pending, src)
	}

	results := make([]dialResult, len(pending))
	var g errgroup.Group
	g.SetLimit(m.maxConcurrent)
	for i, src := range pending {
		g.Go(func() error {
			results[i] = m.dial(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	connected := 0
	for i, src := range pending {
		r := results[i]
		m.metrics.RecordConnect(ctx, src.config.Name, string(src.config.Transport), r.err == nil, r.duration)
		if r.err != nil {
			m.fail(src, r.op, r.err, diagnostic.KindConnection)
			continue
		}
		m.register(ctx, src, r.session, r.defs)
		connected++
	}

	span.SetAttributes(attribute.Int("connected", connected))
	logging.Info().
		Add(logging.Component(component)).
		Add(logging.Count("configured", len(m.entries))).
		Add(logging.Count("connected", connected)).
		Add(logging.Count("global_tools", m.catalog.Len())).
		Msg("connections initialized")
	return nil
}

func (m *Manager) dial(ctx context.Context, src *remoteSource) dialResult {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, m.connectTimeout)
	defer cancel()

	ctx, span := m.tracer.Start(ctx, "connection.dial", trace.WithAttributes(
		attribute.String("connection", src.config.Name),
		attribute.String("transport", string(src.config.Transport)),
	))
	defer span.End()

	logging.Debug().
		Add(logging.Component(component)).
		Add(logging.Connection(src.config.Name)).
		Add(logging.Transport(string(src.config.Transport))).
		Msg("connecting")

	result := func(r dialResult) dialResult {
		r.duration = time.Since(start)
		if r.err != nil {
			span.RecordError(r.err)
			span.SetStatus(codes.Error, r.op)
		}
		return r
	}

	session, err := m.dialer.Dial(ctx, src.config)
	if err == nil && session == nil {
		err = errNilSession
	}
	if err != nil {
		return result(dialResult{op: "dial", err: err})
	}

	defs, err := session.ListTools(ctx)
	if err != nil {
		_ = session.Close()
		return result(dialResult{op: "list tools", err: err})
	}
	span.SetAttributes(attribute.Int("tools", len(defs)))
	return result(dialResult{session: session, defs: defs})
}

func (m *Manager) register(ctx context.Context, src *remoteSource, session Session, defs []*mcpsdk.Tool) {
	name := src.config.Name
	tools := make([]tool.Descriptor, 0, len(defs))
	byName := make(map[string]int, len(defs))

	for _, def := range defs {
		if def == nil || def.Name == "" {
			continue
		}
		if _, dup := byName[def.Name]; dup {
			logging.Warn().
				Add(logging.Component(component)).
				Add(logging.Connection(name)).
				Add(logging.ToolName(def.Name)).
				Msg("server advertised duplicate tool")
			continue
		}

		d := tool.Descriptor{
			Name:       def.Name,
			SourceID:   name,
			SourceKind: tool.SourceRemote,
			Tool:       newProxyTool(def, session),
		}
		byName[def.Name] = len(tools)
		tools = append(tools, d)

		if owner, ok := m.catalog.Claim(d); !ok {
			m.metrics.RecordCollision(ctx, name, owner.SourceID)
			logging.Warn().
				Add(logging.Component(component)).
				Add(logging.Connection(name)).
				Add(logging.ToolName(def.Name)).
				Add(logging.Owner(owner.SourceID)).
				Msg("tool name already claimed, reachable only as qualified name")
		}
	}

	src.connect(session, tools, byName)
	_ = src.lifecycle.Transition(connection.StateConnected, "tools discovered", nil)

	m.metrics.RecordToolsDiscovered(ctx, name, len(tools))
	logging.Info().
		Add(logging.Component(component)).
		Add(logging.Connection(name)).
		Add(logging.State(connection.StateConnected.String())).
		Add(logging.Count("tools", len(tools))).
		Msg("connection established")
}

func (m *Manager) fail(src *remoteSource, op string, err error, kind diagnostic.Kind) {
	cerr := &connection.Error{Connection: src.config.Name, Op: op, Err: err}
	src.setError(cerr)
	_ = src.lifecycle.Transition(connection.StateFailed, op, cerr)

	logging.Warn().
		Add(logging.Component(component)).
		Add(logging.Connection(src.config.Name)).
		Add(logging.Operation(op)).
		Add(logging.State(connection.StateFailed.String())).
		Add(logging.ErrorField(err)).
		Msg("connection failed")
	m.diagnostics.Report(diagnostic.Diagnostic{
		Kind:      kind,
		Component: component,
		Subject:   src.config.Name,
		Err:       cerr,
	})
}

// Close closes every open session. Failures are logged and otherwise
// ignored. Connected connections move to disposed and their tools are
// removed from the catalog. Close always returns nil.
func (m *Manager) Close() error {
	m.initMu.Lock()
	defer m.initMu.Unlock()

	if m.closed.Swap(true) {
		return nil
	}

	for _, src := range m.entries {
		session := src.dispose()
		if src.lifecycle.State() == connection.StateConnected {
			_ = src.lifecycle.Transition(connection.StateDisposed, "close", nil)
		}
		if session == nil {
			continue
		}
		if err := session.Close(); err != nil {
			logging.Error().
				Add(logging.Component(component)).
				Add(logging.Connection(src.config.Name)).
				Add(logging.ErrorField(err)).
				Msg("closing session")
		}
		m.catalog.Release(src.config.Name)
		m.metrics.RecordDisconnect(context.Background(), src.config.Name)
	}

	logging.Debug().
		Add(logging.Component(component)).
		Msg("connections closed")
	return nil
}

// ListConnections returns every configured connection in configured order.
func (m *Manager) ListConnections() []connection.Info {
	out := make([]connection.Info, 0, len(m.entries))
	for _, src := range m.entries {
		out = append(out, src.info())
	}
	return out
}

// ListToolsForConnection returns every tool of the named connection,
// including tools that lost the global claim. A connection that is not
// connected has no tools.
func (m *Manager) ListToolsForConnection(name string) ([]tool.Descriptor, error) {
	if m.closed.Load() {
		return nil, ErrManagerClosed
	}
	src, ok := m.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConnection, name)
	}
	return src.Tools(), nil
}

// LookupQualified finds a tool on a specific connection.
func (m *Manager) LookupQualified(connectionName, toolName string) (tool.Descriptor, bool) {
	if m.closed.Load() {
		return tool.Descriptor{}, false
	}
	src, ok := m.byName[connectionName]
	if !ok {
		return tool.Descriptor{}, false
	}
	return src.Lookup(toolName)
}

// GlobalTools returns the global catalog in claim order.
func (m *Manager) GlobalTools() []tool.Descriptor {
	if m.closed.Load() {
		return nil
	}
	return m.catalog.All()
}

// Sources returns the connected connections in configured order.
func (m *Manager) Sources() []tool.Source {
	if m.closed.Load() {
		return nil
	}
	var out []tool.Source
	for _, src := range m.entries {
		if m.byName[src.config.Name] != src {
			continue
		}
		if src.State() == connection.StateConnected {
			out = append(out, src)
		}
	}
	return out
}

// Connection returns the named connection as a tool source.
func (m *Manager) Connection(name string) (tool.Source, bool) {
	src, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return src, true
}

// IsConfigured reports whether name is a configured connection.
func (m *Manager) IsConfigured(name string) bool {
	_, ok := m.byName[name]
	return ok
}

// Configured returns the number of configured connections.
func (m *Manager) Configured() int {
	return len(m.entries)
}

// Catalog returns the global catalog.
func (m *Manager) Catalog() *tool.Catalog {
	return m.catalog
}
