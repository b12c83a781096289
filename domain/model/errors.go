package model

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors for model routing.
var (
	// ErrNoHandlersConfigured indicates the routing chain is empty.
	ErrNoHandlersConfigured = errors.New("no model handlers configured")

	// ErrChainExhausted indicates no handler produced a client.
	ErrChainExhausted = errors.New("no handler could create a client for model")

	// ErrDuplicateHandler indicates two handlers share a name.
	ErrDuplicateHandler = errors.New("duplicate handler name")

	// ErrNilHandler indicates a nil handler in the chain.
	ErrNilHandler = errors.New("nil handler in chain")

	// ErrNoFactory indicates a handler has no client factory.
	ErrNoFactory = errors.New("handler has no client factory")

	// ErrNilClient indicates a handler returned neither a client nor an error.
	ErrNilClient = errors.New("handler returned nil client")
)

// ConstructionError records a handler that accepted a model but failed to
// build a client for it.
type ConstructionError struct {
	Handler string
	Model   string
	Err     error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("handler %q failed to create client for %q: %v", e.Handler, e.Model, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// ExhaustedError is returned when every handler in the chain was skipped or
// failed. It lists each handler with its reason.
type ExhaustedError struct {
	Model    string
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %q", ErrChainExhausted.Error(), e.Model)
	if len(e.Attempts) == 0 {
		return b.String()
	}
	b.WriteString(": ")
	for i, a := range e.Attempts {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", a.Handler, a.Reason)
	}
	return b.String()
}

// Is matches ErrChainExhausted.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrChainExhausted
}

// Unwrap returns the construction errors collected along the chain.
func (e *ExhaustedError) Unwrap() []error {
	var errs []error
	for _, a := range e.Attempts {
		if a.Err != nil {
			errs = append(errs, a.Err)
		}
	}
	return errs
}
