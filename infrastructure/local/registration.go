// Package local provides the in-process tool source built from a static
// registration table.
package local

import (
	"fmt"

	"github.com/felixgeelhaar/agent-router/domain/tool"
)

// Registration is one entry of the local tool table. It is either
// free-standing, carrying its handler, or bound to a host instance that is
// resolved when the source is built.
type Registration struct {
	Name        string
	Description string
	Schema      tool.Schema
	Annotations tool.Annotations

	// InstanceKey names the host instance an instance-bound entry needs.
	InstanceKey string

	handler tool.Handler
	bind    func(instance any) (tool.Handler, error)
}

// Func returns a free-standing registration.
func Func(name, description string, handler tool.Handler) Registration {
	return Registration{
		Name:        name,
		Description: description,
		handler:     handler,
	}
}

// Method returns a registration bound to the instance stored under
// instanceKey. bind receives the instance and returns the handler.
func Method[T any](name, description, instanceKey string, bind func(T) tool.Handler) Registration {
	r := Registration{
		Name:        name,
		Description: description,
		InstanceKey: instanceKey,
	}
	if bind != nil {
		r.bind = func(instance any) (tool.Handler, error) {
			v, ok := instance.(T)
			if !ok {
				var zero T
				return nil, fmt.Errorf("%w: %q holds %T, want %T", ErrInstanceType, instanceKey, instance, zero)
			}
			return bind(v), nil
		}
	}
	return r
}

// WithSchema returns a copy of r with the given input schema.
func (r Registration) WithSchema(s tool.Schema) Registration {
	r.Schema = s
	return r
}

// WithAnnotations returns a copy of r with the given annotations.
func (r Registration) WithAnnotations(a tool.Annotations) Registration {
	r.Annotations = a
	return r
}

// IsBound reports whether the registration needs a host instance.
func (r Registration) IsBound() bool {
	return r.InstanceKey != ""
}

func (r Registration) validate() error {
	if r.Name == "" {
		return tool.ErrEmptyName
	}
	if r.IsBound() {
		if r.bind == nil {
			return fmt.Errorf("%w: %q", tool.ErrNoHandler, r.Name)
		}
		return nil
	}
	if r.handler == nil {
		return fmt.Errorf("%w: %q", tool.ErrNoHandler, r.Name)
	}
	return nil
}

// InstanceProvider resolves host instances by key.
type InstanceProvider interface {
	Instance(key string) (any, bool)
}

// MapInstances is an InstanceProvider backed by a map.
type MapInstances map[string]any

// Instance returns the instance stored under key.
func (m MapInstances) Instance(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// InstanceFunc adapts a function into an InstanceProvider.
type InstanceFunc func(key string) (any, bool)

// Instance calls f.
func (f InstanceFunc) Instance(key string) (any, bool) {
	return f(key)
}
