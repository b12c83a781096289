package statemachine

import (
	"fmt"
	"sync"

	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/agent-router/domain/connection"
)

// TransitionPayload carries the target state and cause with an event.
type TransitionPayload struct {
	To     connection.State
	Reason string
	Err    error
}

// Interpreter runs one connection's lifecycle. It is safe for concurrent use.
type Interpreter struct {
	mu     sync.Mutex
	interp *statekit.Interpreter[*Context]
	ctx    *Context
}

// NewInterpreter creates a started interpreter for the named connection.
func NewInterpreter(machine *statekit.MachineConfig[*Context], name string) *Interpreter {
	ctx := NewContext(name)
	interp := statekit.NewInterpreter(machine)
	interp.UpdateContext(func(c **Context) {
		*c = ctx
	})
	interp.Start()
	return &Interpreter{interp: interp, ctx: ctx}
}

// Stop stops the interpreter.
func (i *Interpreter) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.interp.Stop()
}

// State returns the current lifecycle state.
func (i *Interpreter) State() connection.State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return connection.State(i.interp.State().Value)
}

// Transition moves the connection to the target state. Illegal transitions
// return connection.ErrInvalidTransition and leave the state unchanged.
func (i *Interpreter) Transition(to connection.State, reason string, cause error) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	from := connection.State(i.interp.State().Value)
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: %s to %s", connection.ErrInvalidTransition, from, to)
	}

	// Send panics on events the current state does not accept, so the
	// domain table is checked above.
	i.interp.Send(statekit.Event{
		Type:    EventForTransition(to),
		Payload: TransitionPayload{To: to, Reason: reason, Err: cause},
	})
	return nil
}

// IsTerminal returns true if the connection reached a final state.
func (i *Interpreter) IsTerminal() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.interp.Done()
}

// Matches checks if the current state matches s.
func (i *Interpreter) Matches(s connection.State) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.interp.Matches(statekit.StateID(s))
}

// LastError returns the error recorded by the most recent failing transition.
func (i *Interpreter) LastError() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.ctx.LastError
}

// History returns a copy of the recorded transitions.
func (i *Interpreter) History() []Transition {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]Transition, len(i.ctx.History))
	copy(out, i.ctx.History)
	return out
}
