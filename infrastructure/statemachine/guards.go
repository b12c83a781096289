package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/agent-router/domain/connection"
)

// guardCanTransition checks the domain transition table.
func guardCanTransition(ctx *Context, event statekit.Event) bool {
	if ctx == nil {
		return false
	}

	var to connection.State
	if payload, ok := event.Payload.(TransitionPayload); ok {
		to = payload.To
	} else {
		to = stateFromEventType(event.Type)
	}
	return ctx.State.CanTransition(to)
}
