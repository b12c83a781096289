package agent

import "errors"

// Domain errors for agent descriptors.
var (
	// ErrMissingModel indicates a descriptor without a model name.
	ErrMissingModel = errors.New("agent descriptor has no model name")

	// ErrUnknownAgent indicates a named agent that is not configured.
	ErrUnknownAgent = errors.New("unknown agent")
)
