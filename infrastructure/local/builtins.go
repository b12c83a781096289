package local

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/agent-router/domain/config"
	"github.com/felixgeelhaar/agent-router/domain/tool"
)

// ConfigInstanceKey is the instance key under which hosts store the loaded
// *config.RouterConfig for describe_config.
const ConfigInstanceKey = "config"

// now is replaced in tests.
var now = time.Now

// Builtins returns the built-in local tools.
func Builtins() []Registration {
	return []Registration{
		Func("echo", "Returns its input unchanged", echo).
			WithSchema(tool.ObjectSchema(map[string]json.RawMessage{
				"message": json.RawMessage(`{"type":"string"}`),
			}, []string{"message"})).
			WithAnnotations(tool.Annotations{Title: "Echo", ReadOnly: true, Idempotent: true}),

		Func("current_time", "Returns the current time, optionally in an IANA time zone", currentTime).
			WithSchema(tool.ObjectSchema(map[string]json.RawMessage{
				"timezone": json.RawMessage(`{"type":"string","description":"IANA zone such as Europe/Berlin"}`),
			}, nil)).
			WithAnnotations(tool.Annotations{Title: "Current time", ReadOnly: true}),

		Method("describe_config", "Summarizes the loaded router configuration", ConfigInstanceKey, describeConfig).
			WithAnnotations(tool.Annotations{Title: "Describe configuration", ReadOnly: true, Idempotent: true}),
	}
}

func echo(_ context.Context, input json.RawMessage) (tool.Result, error) {
	var in struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(input, &in); err != nil {
		return tool.Result{}, fmt.Errorf("invalid input: %w", err)
	}
	return tool.NewTextResult(in.Message), nil
}

func currentTime(_ context.Context, input json.RawMessage) (tool.Result, error) {
	var in struct {
		Timezone string `json:"timezone"`
	}
	if len(input) > 0 {
		if err := json.Unmarshal(input, &in); err != nil {
			return tool.Result{}, fmt.Errorf("invalid input: %w", err)
		}
	}

	t := now()
	if in.Timezone != "" {
		loc, err := time.LoadLocation(in.Timezone)
		if err != nil {
			return tool.NewErrorResult(fmt.Errorf("unknown timezone %q", in.Timezone)), nil
		}
		t = t.In(loc)
	}
	return tool.NewTextResult(t.Format(time.RFC3339)), nil
}

// configSummary omits credentials.
type configSummary struct {
	Name        string   `json:"name,omitempty"`
	Handlers    []string `json:"handlers"`
	Connections []string `json:"connections"`
	Agents      []string `json:"agents,omitempty"`
}

func describeConfig(cfg *config.RouterConfig) tool.Handler {
	return func(_ context.Context, _ json.RawMessage) (tool.Result, error) {
		s := configSummary{
			Name:        cfg.Name,
			Handlers:    make([]string, 0, len(cfg.Handlers)),
			Connections: make([]string, 0, len(cfg.Connections)),
		}
		for _, h := range cfg.Handlers {
			s.Handlers = append(s.Handlers, h.DisplayName()+" ("+h.Type+")")
		}
		for _, c := range cfg.Connections {
			s.Connections = append(s.Connections, c.Name+" ("+string(c.Transport)+")")
		}
		for _, a := range cfg.Agents {
			s.Agents = append(s.Agents, a.Name)
		}

		out, err := json.Marshal(s)
		if err != nil {
			return tool.Result{}, err
		}
		return tool.NewResult(out), nil
	}
}
