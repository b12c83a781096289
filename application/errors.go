package application

import "errors"

// Application errors.
var (
	// ErrNoToolSources indicates an agent requested tools but no local tool
	// is registered and no connection is configured.
	ErrNoToolSources = errors.New("agent requires tools but no tool source is configured")

	// ErrNotStarted indicates the runtime was used before Start.
	ErrNotStarted = errors.New("runtime not started")

	// ErrRuntimeClosed indicates the runtime was used after Close.
	ErrRuntimeClosed = errors.New("runtime closed")
)
