// Package statemachine drives the remote connection lifecycle with a
// statekit statechart.
package statemachine

import (
	"time"

	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/agent-router/domain/connection"
)

// Context carries one connection's lifecycle through the machine.
type Context struct {
	Connection string
	State      connection.State
	LastError  error
	History    []Transition
}

// Transition is one recorded lifecycle change.
type Transition struct {
	From   connection.State
	To     connection.State
	Reason string
	Err    error
	At     time.Time
}

// NewContext creates a machine context for the named connection.
func NewContext(name string) *Context {
	return &Context{
		Connection: name,
		State:      connection.StateUninitialized,
	}
}

// Events understood by the connection machine.
const (
	EventConnect statekit.EventType = "CONNECT"
	EventSucceed statekit.EventType = "SUCCEED"
	EventFail    statekit.EventType = "FAIL"
	EventDispose statekit.EventType = "DISPOSE"
)

const (
	stateUninitialized statekit.StateID = statekit.StateID(connection.StateUninitialized)
	stateConnecting    statekit.StateID = statekit.StateID(connection.StateConnecting)
	stateConnected     statekit.StateID = statekit.StateID(connection.StateConnected)
	stateFailed        statekit.StateID = statekit.StateID(connection.StateFailed)
	stateDisposed      statekit.StateID = statekit.StateID(connection.StateDisposed)
)

// NewConnectionMachine creates the connection lifecycle statechart.
func NewConnectionMachine() (*statekit.MachineConfig[*Context], error) {
	return statekit.NewMachine[*Context]("connection").
		WithInitial(stateUninitialized).
		WithContext(&Context{}).
		WithAction("recordTransition", recordTransition).
		WithGuard("canTransition", guardCanTransition).
		State(stateUninitialized).
			On(EventConnect).Target(stateConnecting).Guard("canTransition").Do("recordTransition").
			Done().
		State(stateConnecting).
			On(EventSucceed).Target(stateConnected).Guard("canTransition").Do("recordTransition").
			On(EventFail).Target(stateFailed).Guard("canTransition").Do("recordTransition").
			Done().
		State(stateConnected).
			On(EventDispose).Target(stateDisposed).Guard("canTransition").Do("recordTransition").
			Done().
		State(stateFailed).
			Final().
			Done().
		State(stateDisposed).
			Final().
			Done().
		Build()
}

// EventForTransition returns the event that moves a connection into to.
func EventForTransition(to connection.State) statekit.EventType {
	switch to {
	case connection.StateConnecting:
		return EventConnect
	case connection.StateConnected:
		return EventSucceed
	case connection.StateFailed:
		return EventFail
	case connection.StateDisposed:
		return EventDispose
	default:
		return statekit.EventType(to)
	}
}

// stateFromEventType derives the target state from an event type.
func stateFromEventType(eventType statekit.EventType) connection.State {
	switch eventType {
	case EventConnect:
		return connection.StateConnecting
	case EventSucceed:
		return connection.StateConnected
	case EventFail:
		return connection.StateFailed
	case EventDispose:
		return connection.StateDisposed
	default:
		return connection.State(eventType)
	}
}
