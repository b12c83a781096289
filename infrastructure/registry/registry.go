// Package registry provides the ordered, read-only view over every tool
// source: the local table first, then each remote connection in configured
// order.
package registry

import (
	"github.com/felixgeelhaar/agent-router/domain/tool"
	"github.com/felixgeelhaar/agent-router/infrastructure/local"
)

// Remote is the part of the connection manager the registry reads.
type Remote interface {
	// Sources returns connected connections in configured order.
	Sources() []tool.Source

	// Connection returns a configured connection by name.
	Connection(name string) (tool.Source, bool)

	// IsConfigured reports whether name is a configured connection.
	IsConfigured(name string) bool

	// LookupQualified finds a tool on a specific connection.
	LookupQualified(connection, name string) (tool.Descriptor, bool)

	// Configured returns the number of configured connections.
	Configured() int
}

// Registry orders tool sources for resolution. It is read-only after New.
type Registry struct {
	catalog *tool.Catalog
	local   *local.Source
	remote  Remote
	sources []tool.Source
}

// New snapshots the source order. A nil local source or remote is treated
// as empty.
func New(catalog *tool.Catalog, localSource *local.Source, remote Remote) *Registry {
	if catalog == nil {
		catalog = tool.NewCatalog()
	}
	if localSource == nil {
		localSource = local.NewSource(nil, nil, local.WithCatalog(catalog))
	}

	r := &Registry{
		catalog: catalog,
		local:   localSource,
		remote:  remote,
	}
	r.sources = append(r.sources, localSource)
	if remote != nil {
		r.sources = append(r.sources, remote.Sources()...)
	}
	return r
}

// Sources returns every source in resolution order.
func (r *Registry) Sources() []tool.Source {
	return append([]tool.Source(nil), r.sources...)
}

// Local returns the local source.
func (r *Registry) Local() tool.Source {
	return r.local
}

// Remote returns the connected remote sources in configured order.
func (r *Registry) Remote() []tool.Source {
	return append([]tool.Source(nil), r.sources[1:]...)
}

// Connection returns a configured connection by name, whether or not it is
// connected.
func (r *Registry) Connection(name string) (tool.Source, bool) {
	if r.remote == nil {
		return nil, false
	}
	return r.remote.Connection(name)
}

// IsConnectionConfigured reports whether name is a configured connection.
func (r *Registry) IsConnectionConfigured(name string) bool {
	return r.remote != nil && r.remote.IsConfigured(name)
}

// Lookup finds the first source, in order, that has a tool with the bare
// name.
func (r *Registry) Lookup(name string) (tool.Descriptor, bool) {
	for _, s := range r.sources {
		if d, ok := s.Lookup(name); ok {
			return d, true
		}
	}
	return tool.Descriptor{}, false
}

// LookupQualified finds a tool on one source. The local source is addressed
// by tool.LocalSourceID.
func (r *Registry) LookupQualified(source, name string) (tool.Descriptor, bool) {
	if source == tool.LocalSourceID {
		return r.local.Lookup(name)
	}
	if r.remote == nil {
		return tool.Descriptor{}, false
	}
	return r.remote.LookupQualified(source, name)
}

// GlobalTools returns the global catalog in claim order.
func (r *Registry) GlobalTools() []tool.Descriptor {
	return r.catalog.All()
}

// Empty reports whether there are no local registrations and no configured
// connections.
func (r *Registry) Empty() bool {
	return r.local.Len() == 0 && (r.remote == nil || r.remote.Configured() == 0)
}
