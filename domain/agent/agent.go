// Package agent provides the declarative agent description consumed by the
// router and resolver, and the assembly produced from it.
package agent

import (
	"strings"

	"github.com/felixgeelhaar/agent-router/domain/model"
	"github.com/felixgeelhaar/agent-router/domain/tool"
)

// Descriptor is a host-supplied agent description.
type Descriptor struct {
	// Name identifies the agent.
	Name string `yaml:"name" json:"name"`

	// ModelName is the model the agent runs on.
	ModelName string `yaml:"model" json:"model"`

	// ToolTokens are the requested tools, in order. See the resolver for
	// the accepted token forms.
	ToolTokens []string `yaml:"tools,omitempty" json:"tools,omitempty"`

	// Instructions is the agent's system prompt.
	Instructions string `yaml:"instructions,omitempty" json:"instructions,omitempty"`

	// Metadata carries opaque host data.
	Metadata map[string]string `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Validate checks the descriptor can be assembled.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.ModelName) == "" {
		return ErrMissingModel
	}
	return nil
}

// RequestsTools reports whether any non-blank token was requested.
func (d Descriptor) RequestsTools() bool {
	for _, t := range d.ToolTokens {
		if strings.TrimSpace(t) != "" {
			return true
		}
	}
	return false
}

// Assembly is a routed client and a resolved tool set for one descriptor.
type Assembly struct {
	// ID uniquely identifies this assembly.
	ID string

	// Descriptor is the agent description that was assembled.
	Descriptor Descriptor

	// Client is the model-generation client.
	Client model.Client

	// Handler is the name of the handler that built the client.
	Handler string

	// Attempts lists every handler consulted while routing.
	Attempts []model.Attempt

	// Tools is the resolved tool set, deduplicated by name.
	Tools []tool.Descriptor

	// Unmatched lists tokens that resolved to no tool.
	Unmatched []string
}

// ToolNames returns the names of the resolved tools.
func (a *Assembly) ToolNames() []string {
	return tool.Names(a.Tools)
}

// Close releases the client.
func (a *Assembly) Close() error {
	if a.Client == nil {
		return nil
	}
	return a.Client.Close()
}
