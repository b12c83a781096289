package connection

import (
	"errors"
	"fmt"
)

// Domain errors for remote connections.
var (
	// ErrInvalidConfig indicates a connection configuration is incomplete.
	ErrInvalidConfig = errors.New("invalid connection configuration")

	// ErrReservedName indicates a connection name collides with a resolver keyword.
	ErrReservedName = errors.New("reserved connection name")

	// ErrUnknownTransport indicates an unsupported transport kind.
	ErrUnknownTransport = errors.New("unknown transport")

	// ErrInvalidTransition indicates an illegal lifecycle transition.
	ErrInvalidTransition = errors.New("invalid connection state transition")

	// ErrDuplicateName indicates two connections share a name.
	ErrDuplicateName = errors.New("duplicate connection name")
)

// Error isolates a failure to a single connection.
type Error struct {
	Connection string
	Op         string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("connection %q: %s: %v", e.Connection, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
