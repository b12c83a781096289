package statemachine

import (
	"time"

	"github.com/felixgeelhaar/statekit"
)

// recordTransition appends the transition to the context history.
// Actions receive **Context because the machine context is *Context.
func recordTransition(ctx **Context, event statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	c := *ctx

	t := Transition{
		From: c.State,
		To:   stateFromEventType(event.Type),
		At:   time.Now(),
	}
	if payload, ok := event.Payload.(TransitionPayload); ok {
		t.To = payload.To
		t.Reason = payload.Reason
		t.Err = payload.Err
	}

	c.History = append(c.History, t)
	c.State = t.To
	if t.Err != nil {
		c.LastError = t.Err
	}
}
