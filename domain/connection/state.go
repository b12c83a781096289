// Package connection provides the domain model for remote tool server
// connections.
package connection

// State is the lifecycle state of one remote connection.
type State string

// Connection lifecycle states.
const (
	StateUninitialized State = "uninitialized" // Configured, not yet attempted
	StateConnecting    State = "connecting"    // Dial and discovery in progress
	StateConnected     State = "connected"     // Session open, tools discovered
	StateFailed        State = "failed"        // Terminal: dial, discovery or config failed
	StateDisposed      State = "disposed"      // Terminal: session closed by teardown
)

var transitions = map[State][]State{
	StateUninitialized: {StateConnecting},
	StateConnecting:    {StateConnected, StateFailed},
	StateConnected:     {StateDisposed},
}

// CanTransition reports whether moving from s to next is legal.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible.
func (s State) IsTerminal() bool {
	return s == StateFailed || s == StateDisposed
}

// IsValid returns true if the state is a recognized state.
func (s State) IsValid() bool {
	switch s {
	case StateUninitialized, StateConnecting, StateConnected, StateFailed, StateDisposed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// AllStates returns every lifecycle state.
func AllStates() []State {
	return []State{
		StateUninitialized,
		StateConnecting,
		StateConnected,
		StateFailed,
		StateDisposed,
	}
}
