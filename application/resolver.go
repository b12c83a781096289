package application

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/agent-router/domain/diagnostic"
	"github.com/felixgeelhaar/agent-router/domain/tool"
	"github.com/felixgeelhaar/agent-router/infrastructure/logging"
	"github.com/felixgeelhaar/agent-router/infrastructure/telemetry"
)

const resolverComponent = "resolver"

// Token forms understood by the resolver besides bare and qualified names.
const (
	TokenAll      = "*"
	TokenAllAlias = "all"
	wildcard      = "*"
)

// ToolRegistry is the ordered source view the resolver reads.
type ToolRegistry interface {
	Local() tool.Source
	Remote() []tool.Source
	Sources() []tool.Source
	Connection(name string) (tool.Source, bool)
	IsConnectionConfigured(name string) bool
	Lookup(name string) (tool.Descriptor, bool)
	LookupQualified(source, name string) (tool.Descriptor, bool)
}

// Resolution is the outcome of resolving a token list.
type Resolution struct {
	// Tools are the resolved tools in first-seen order, unique by name.
	Tools []tool.Descriptor

	// Unmatched lists tokens that resolved to no tool, in request order.
	Unmatched []string
}

// Names returns the resolved tool names.
func (r Resolution) Names() []string {
	return tool.Names(r.Tools)
}

// Resolver turns tool tokens into tool descriptors.
type Resolver struct {
	registry    ToolRegistry
	diagnostics diagnostic.Reporter
	metrics     *telemetry.Metrics
	tracer      trace.Tracer
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverDiagnostics sets the callback for tokens that match nothing.
func WithResolverDiagnostics(r diagnostic.Reporter) ResolverOption {
	return func(res *Resolver) {
		res.diagnostics = r
	}
}

// WithResolverMetrics sets the metrics recorder.
func WithResolverMetrics(m *telemetry.Metrics) ResolverOption {
	return func(res *Resolver) {
		res.metrics = m
	}
}

// WithResolverTracer sets the tracer.
func WithResolverTracer(t trace.Tracer) ResolverOption {
	return func(res *Resolver) {
		res.tracer = t
	}
}

// NewResolver creates a resolver over registry.
func NewResolver(registry ToolRegistry, opts ...ResolverOption) *Resolver {
	r := &Resolver{registry: registry}
	for _, opt := range opts {
		opt(r)
	}
	if r.tracer == nil {
		r.tracer = telemetry.Tracer()
	}
	return r
}

// Resolve resolves tokens in order. Each token is interpreted as the first
// matching form of:
//
//	* or all           every tool of every source
//	local/*            every local tool
//	mcp/*              every tool of every connection
//	<connection>/*     every tool of that connection, including collisions
//	<source>/<tool>    one tool of one source, else the token as a bare name
//	<tool>             the first source, in order, that has the tool
//
// A tool name is added once; later tokens never replace it. Surrounding
// whitespace is ignored when matching, and blank tokens are skipped. Tokens
// that match nothing are returned in Unmatched exactly as given.
func (r *Resolver) Resolve(ctx context.Context, tokens []string) Resolution {
	ctx, span := r.tracer.Start(ctx, "resolver.resolve",
		trace.WithAttributes(attribute.Int("tokens", len(tokens))))
	defer span.End()

	var (
		res  Resolution
		seen = make(map[string]bool)
	)
	for _, raw := range tokens {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}

		matched := r.match(token)
		if len(matched) == 0 {
			res.Unmatched = append(res.Unmatched, raw)
			r.miss(raw)
			continue
		}
		for _, d := range matched {
			if seen[d.Name] {
				continue
			}
			seen[d.Name] = true
			res.Tools = append(res.Tools, d)
		}
	}

	span.SetAttributes(
		attribute.Int("tools", len(res.Tools)),
		attribute.Int("unmatched", len(res.Unmatched)),
	)
	r.metrics.RecordUnmatched(ctx, len(res.Unmatched))
	if len(res.Unmatched) > 0 {
		logging.Warn().
			Add(logging.Component(resolverComponent)).
			Add(logging.Tokens(res.Unmatched)).
			Add(logging.Count("resolved", len(res.Tools))).
			Msg("some tool tokens matched nothing")
	}
	return res
}

func (r *Resolver) match(token string) []tool.Descriptor {
	if token == TokenAll || token == TokenAllAlias {
		return allTools(r.registry.Sources())
	}

	prefix, name, qualified := strings.Cut(token, "/")
	if !qualified {
		if d, ok := r.registry.Lookup(token); ok {
			return []tool.Descriptor{d}
		}
		return nil
	}

	if name == wildcard {
		switch {
		case prefix == tool.LocalSourceID:
			return r.registry.Local().Tools()
		case prefix == string(tool.SourceRemote):
			return allTools(r.registry.Remote())
		case r.registry.IsConnectionConfigured(prefix):
			if src, ok := r.registry.Connection(prefix); ok {
				return src.Tools()
			}
		}
		return nil
	}

	if d, ok := r.registry.LookupQualified(prefix, name); ok {
		return []tool.Descriptor{d}
	}
	// Tool names may themselves contain '/'.
	if d, ok := r.registry.Lookup(token); ok {
		return []tool.Descriptor{d}
	}
	return nil
}

func (r *Resolver) miss(token string) {
	logging.Debug().
		Add(logging.Component(resolverComponent)).
		Add(logging.Token(token)).
		Msg("tool token matched nothing")
	r.diagnostics.Report(diagnostic.Diagnostic{
		Kind:      diagnostic.KindResolutionMiss,
		Component: resolverComponent,
		Subject:   token,
	})
}

func allTools(sources []tool.Source) []tool.Descriptor {
	var out []tool.Descriptor
	for _, s := range sources {
		out = append(out, s.Tools()...)
	}
	return out
}
