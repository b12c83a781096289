package tool

import "errors"

// Domain errors for the tool system.
var (
	// ErrEmptyName indicates a tool was created with an empty name.
	ErrEmptyName = errors.New("tool name cannot be empty")

	// ErrNoHandler indicates a tool was created without a handler.
	ErrNoHandler = errors.New("tool has no handler")

	// ErrToolNotFound indicates the requested tool was not found.
	ErrToolNotFound = errors.New("tool not found")

	// ErrNameClaimed indicates another source already owns a global tool name.
	ErrNameClaimed = errors.New("tool name already claimed")
)
