// Package diagnostic describes non-fatal problems reported by the routing
// and tool resolution components.
package diagnostic

import (
	"fmt"
)

// Kind classifies a diagnostic.
type Kind string

const (
	// KindConfiguration marks invalid configuration that made a component inert.
	KindConfiguration Kind = "configuration_error"
	// KindConstruction marks a handler that failed to build a client.
	KindConstruction Kind = "construction_error"
	// KindConnection marks a remote connection that failed.
	KindConnection Kind = "connection_error"
	// KindResolutionMiss marks a tool token that matched nothing.
	KindResolutionMiss Kind = "resolution_miss"
)

// Diagnostic is one reported problem.
type Diagnostic struct {
	Kind      Kind
	Component string
	Subject   string
	Err       error
}

func (d Diagnostic) String() string {
	if d.Err == nil {
		return fmt.Sprintf("%s [%s] %s", d.Kind, d.Component, d.Subject)
	}
	return fmt.Sprintf("%s [%s] %s: %v", d.Kind, d.Component, d.Subject, d.Err)
}

// Reporter receives diagnostics. Implementations must be safe for
// concurrent use.
type Reporter func(Diagnostic)

// Report calls r if it is set.
func (r Reporter) Report(d Diagnostic) {
	if r != nil {
		r(d)
	}
}
