package local

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/agent-router/domain/diagnostic"
	"github.com/felixgeelhaar/agent-router/domain/tool"
	"github.com/felixgeelhaar/agent-router/infrastructure/logging"
	"github.com/felixgeelhaar/agent-router/infrastructure/telemetry"
)

const component = "local"

// Source is the in-process tool source. It is immutable after NewSource.
type Source struct {
	tools  []tool.Descriptor
	byName map[string]int
}

var _ tool.Source = (*Source)(nil)

type sourceOptions struct {
	catalog     *tool.Catalog
	diagnostics diagnostic.Reporter
	metrics     *telemetry.Metrics
}

// Option configures a Source.
type Option func(*sourceOptions)

// WithCatalog sets the global catalog local tools are claimed in.
func WithCatalog(c *tool.Catalog) Option {
	return func(o *sourceOptions) {
		o.catalog = c
	}
}

// WithDiagnostics sets the callback for invalid entries.
func WithDiagnostics(r diagnostic.Reporter) Option {
	return func(o *sourceOptions) {
		o.diagnostics = r
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *sourceOptions) {
		o.metrics = m
	}
}

// NewSource builds the local source from table. Instance-bound entries are
// resolved through instances now; entries whose instance is missing or of
// the wrong type are skipped. Invalid entries are skipped and reported.
// Duplicate names keep the first entry.
func NewSource(table []Registration, instances InstanceProvider, opts ...Option) *Source {
	var o sourceOptions
	for _, opt := range opts {
		opt(&o)
	}

	s := &Source{byName: make(map[string]int, len(table))}
	for _, r := range table {
		if err := r.validate(); err != nil {
			logging.Warn().
				Add(logging.Component(component)).
				Add(logging.ToolName(r.Name)).
				Add(logging.ErrorField(err)).
				Msg("invalid local tool registration")
			o.diagnostics.Report(diagnostic.Diagnostic{
				Kind:      diagnostic.KindConfiguration,
				Component: component,
				Subject:   r.Name,
				Err:       err,
			})
			continue
		}

		handler, err := r.resolve(instances)
		if err != nil {
			logging.Debug().
				Add(logging.Component(component)).
				Add(logging.ToolName(r.Name)).
				Add(logging.Str("instance", r.InstanceKey)).
				Add(logging.ErrorField(err)).
				Msg("skipping instance-bound tool")
			continue
		}

		if _, dup := s.byName[r.Name]; dup {
			logging.Warn().
				Add(logging.Component(component)).
				Add(logging.ToolName(r.Name)).
				Msg("duplicate local tool registration ignored")
			continue
		}

		t := tool.NewBuilder(r.Name).
			WithDescription(r.Description).
			WithInputSchema(r.Schema).
			WithAnnotations(r.Annotations).
			WithHandler(handler).
			MustBuild()

		d := tool.Descriptor{
			Name:       r.Name,
			SourceID:   tool.LocalSourceID,
			SourceKind: tool.SourceLocal,
			Tool:       t,
		}
		s.byName[r.Name] = len(s.tools)
		s.tools = append(s.tools, d)

		if o.catalog != nil {
			if owner, ok := o.catalog.Claim(d); !ok {
				o.metrics.RecordCollision(context.Background(), tool.LocalSourceID, owner.SourceID)
				logging.Warn().
					Add(logging.Component(component)).
					Add(logging.ToolName(r.Name)).
					Add(logging.Owner(owner.SourceID)).
					Msg("tool name already claimed")
			}
		}
	}

	o.metrics.RecordToolsDiscovered(context.Background(), tool.LocalSourceID, len(s.tools))
	logging.Debug().
		Add(logging.Component(component)).
		Add(logging.Count("tools", len(s.tools))).
		Msg("local tools registered")
	return s
}

func (r Registration) resolve(instances InstanceProvider) (tool.Handler, error) {
	if !r.IsBound() {
		return r.handler, nil
	}
	if instances == nil {
		return nil, fmt.Errorf("%w: %q", ErrInstanceNotFound, r.InstanceKey)
	}
	inst, ok := instances.Instance(r.InstanceKey)
	if !ok || inst == nil {
		return nil, fmt.Errorf("%w: %q", ErrInstanceNotFound, r.InstanceKey)
	}
	h, err := r.bind(inst)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, fmt.Errorf("%w: %q", tool.ErrNoHandler, r.Name)
	}
	return h, nil
}

// ID returns the local source identifier.
func (s *Source) ID() string { return tool.LocalSourceID }

// Kind returns tool.SourceLocal.
func (s *Source) Kind() tool.SourceKind { return tool.SourceLocal }

// Tools returns the registered tools in table order.
func (s *Source) Tools() []tool.Descriptor {
	out := make([]tool.Descriptor, len(s.tools))
	copy(out, s.tools)
	return out
}

// Lookup finds a local tool by name.
func (s *Source) Lookup(name string) (tool.Descriptor, bool) {
	i, ok := s.byName[name]
	if !ok {
		return tool.Descriptor{}, false
	}
	return s.tools[i], true
}

// Len returns the number of registered tools.
func (s *Source) Len() int {
	if s == nil {
		return 0
	}
	return len(s.tools)
}
