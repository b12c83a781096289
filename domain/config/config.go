// Package config provides domain models for router configuration.
package config

import (
	"time"

	"github.com/felixgeelhaar/agent-router/domain/connection"
)

// Handler types understood by the provider factory.
const (
	HandlerAnthropic = "anthropic"
	HandlerOpenAI    = "openai"
	HandlerGemini    = "gemini"
	HandlerBedrock   = "bedrock"
	HandlerOllama    = "ollama"
	HandlerCopilot   = "copilot"
)

// HandlerTypes returns every supported handler type.
func HandlerTypes() []string {
	return []string{
		HandlerAnthropic,
		HandlerOpenAI,
		HandlerGemini,
		HandlerBedrock,
		HandlerOllama,
		HandlerCopilot,
	}
}

// RouterConfig is the complete configuration of the routing engine.
type RouterConfig struct {
	// Name is a human-readable name for this configuration.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Handlers is the ordered model handler chain.
	Handlers []HandlerConfig `json:"handlers" yaml:"handlers" jsonschema:"required"`

	// Connections are the remote tool servers.
	Connections []connection.Config `json:"connections,omitempty" yaml:"connections,omitempty"`

	// Connect tunes connection establishment.
	Connect ConnectConfig `json:"connect,omitempty" yaml:"connect,omitempty"`

	// Resolution tunes tool resolution.
	Resolution ResolutionConfig `json:"resolution,omitempty" yaml:"resolution,omitempty"`

	// Agents are optional agent descriptors addressable by name.
	Agents []AgentConfig `json:"agents,omitempty" yaml:"agents,omitempty"`
}

// HandlerConfig configures one model handler.
type HandlerConfig struct {
	// Name identifies the handler in diagnostics. Defaults to Type.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Type selects the integration.
	Type string `json:"type" yaml:"type" jsonschema:"required,enum=anthropic,enum=openai,enum=gemini,enum=bedrock,enum=ollama,enum=copilot"`

	// Models are glob patterns of model names the handler accepts.
	// Empty means the integration's defaults.
	Models []string `json:"models,omitempty" yaml:"models,omitempty"`

	// APIKey authenticates against the provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Project is the Google Cloud project for Vertex AI.
	Project string `json:"project,omitempty" yaml:"project,omitempty"`

	// Location is the Google Cloud location for Vertex AI.
	Location string `json:"location,omitempty" yaml:"location,omitempty"`

	// Region is the AWS region for Bedrock.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// AccessKeyID is an optional static AWS access key.
	AccessKeyID string `json:"access_key_id,omitempty" yaml:"access_key_id,omitempty"`

	// SecretAccessKey is an optional static AWS secret key.
	SecretAccessKey string `json:"secret_access_key,omitempty" yaml:"secret_access_key,omitempty"`

	// SessionToken is an optional AWS session token.
	SessionToken string `json:"session_token,omitempty" yaml:"session_token,omitempty"`

	// CLIPath is the Copilot CLI executable.
	CLIPath string `json:"cli_path,omitempty" yaml:"cli_path,omitempty"`

	// CLIUrl is an existing Copilot CLI server.
	CLIUrl string `json:"cli_url,omitempty" yaml:"cli_url,omitempty"`

	// Timeout bounds client requests.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// DisplayName returns Name, falling back to Type.
func (h HandlerConfig) DisplayName() string {
	if h.Name != "" {
		return h.Name
	}
	return h.Type
}

// ConnectConfig tunes remote connection establishment.
type ConnectConfig struct {
	// Timeout bounds dial plus discovery for one connection.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// MaxConcurrent bounds simultaneous connection attempts.
	MaxConcurrent int `json:"max_concurrent,omitempty" yaml:"max_concurrent,omitempty"`
}

// ResolutionConfig tunes tool resolution.
type ResolutionConfig struct {
	// RequireTools fails assembly when an agent requests tools but no
	// tool source is configured.
	RequireTools bool `json:"require_tools,omitempty" yaml:"require_tools,omitempty"`
}

// AgentConfig is an agent descriptor stored in configuration.
type AgentConfig struct {
	Name         string   `json:"name" yaml:"name" jsonschema:"required"`
	Model        string   `json:"model" yaml:"model" jsonschema:"required"`
	Tools        []string `json:"tools,omitempty" yaml:"tools,omitempty"`
	Instructions string   `json:"instructions,omitempty" yaml:"instructions,omitempty"`
}

// Agent returns the named agent configuration.
func (c *RouterConfig) Agent(name string) (AgentConfig, bool) {
	for _, a := range c.Agents {
		if a.Name == name {
			return a, true
		}
	}
	return AgentConfig{}, false
}

// Duration is a time.Duration that supports JSON/YAML string representation.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
