package connection

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/felixgeelhaar/agent-router/domain/tool"
)

// TransportKind selects how a connection reaches its tool server.
type TransportKind string

const (
	// TransportSubprocess launches the tool server as a child process and
	// speaks over its standard streams.
	TransportSubprocess TransportKind = "subprocess"
	// TransportNetwork reaches the tool server over HTTP, streamable first
	// with server-sent events as fallback.
	TransportNetwork TransportKind = "network"
)

// Config describes one configured remote tool server.
type Config struct {
	// Name identifies the connection and qualifies its tools.
	Name string `yaml:"name" json:"name" jsonschema:"required"`

	// Transport selects subprocess or network.
	Transport TransportKind `yaml:"transport" json:"transport" jsonschema:"required,enum=subprocess,enum=network"`

	// Command is the executable for subprocess connections.
	Command string `yaml:"command,omitempty" json:"command,omitempty"`

	// Args are the command arguments.
	Args []string `yaml:"args,omitempty" json:"args,omitempty"`

	// Env holds extra environment variables layered over the parent environment.
	Env map[string]string `yaml:"env,omitempty" json:"env,omitempty"`

	// WorkDir is the working directory of the child process.
	WorkDir string `yaml:"work_dir,omitempty" json:"work_dir,omitempty"`

	// URL is the endpoint for network connections.
	URL string `yaml:"url,omitempty" json:"url,omitempty"`

	// Headers are sent with every network request.
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// Validate checks the configuration for the selected transport.
func (c Config) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if IsReservedName(name) {
		return fmt.Errorf("%w: %q", ErrReservedName, name)
	}
	if strings.Contains(name, "/") {
		return fmt.Errorf("%w: name %q must not contain '/'", ErrInvalidConfig, name)
	}

	switch c.Transport {
	case TransportSubprocess:
		if strings.TrimSpace(c.Command) == "" {
			return fmt.Errorf("%w: %s: command is required for subprocess transport", ErrInvalidConfig, name)
		}
	case TransportNetwork:
		if c.URL == "" {
			return fmt.Errorf("%w: %s: url is required for network transport", ErrInvalidConfig, name)
		}
		u, err := url.Parse(c.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %s: url %q must be an absolute http(s) URL", ErrInvalidConfig, name, c.URL)
		}
	case "":
		return fmt.Errorf("%w: %s: transport is required", ErrInvalidConfig, name)
	default:
		return fmt.Errorf("%w: %s: %q", ErrUnknownTransport, name, c.Transport)
	}
	return nil
}

// IsReservedName reports whether name collides with a resolver keyword.
func IsReservedName(name string) bool {
	switch strings.ToLower(name) {
	case tool.LocalSourceID, string(tool.SourceRemote), "all", "*":
		return true
	default:
		return false
	}
}

// Info is a point-in-time view of one connection.
type Info struct {
	Name      string        `json:"name"`
	Transport TransportKind `json:"transport"`
	State     State         `json:"state"`
	ToolCount int           `json:"tool_count"`
	Error     string        `json:"error,omitempty"`
}
