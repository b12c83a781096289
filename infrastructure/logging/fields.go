package logging

import (
	"strings"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// Handler adds a model handler name field.
func Handler(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("handler", name)
	}
}

// Model adds a model name field.
func Model(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("model", name)
	}
}

// Connection adds a remote connection name field.
func Connection(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("connection", name)
	}
}

// Transport adds a transport kind field.
func Transport(kind string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("transport", kind)
	}
}

// State adds a lifecycle state field.
func State(s string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("state", s)
	}
}

// ToolName adds a tool name field.
func ToolName(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("tool", name)
	}
}

// Source adds a tool source field.
func Source(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("source", id)
	}
}

// Owner adds the source that owns a contested tool name.
func Owner(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("owner", id)
	}
}

// Token adds a tool request token field.
func Token(token string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("token", token)
	}
}

// Tokens adds a comma separated list of tokens.
func Tokens(tokens []string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("tokens", strings.Join(tokens, ","))
	}
}

// Count adds a count field.
func Count(key string, n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int(key, n)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// Reason adds a reason field.
func Reason(reason string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("reason", reason)
	}
}

// Component adds a component field for categorization.
func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}

// Operation adds an operation field.
func Operation(op string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("operation", op)
	}
}

// Str adds a custom string field.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}

// Bool adds a custom boolean field.
func Bool(key string, value bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool(key, value)
	}
}
