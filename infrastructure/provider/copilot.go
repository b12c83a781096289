package provider

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	copilot "github.com/github/copilot-sdk/go"

	"github.com/felixgeelhaar/agent-router/domain/model"
)

// CopilotConfig configures the GitHub Copilot handler.
type CopilotConfig struct {
	// Name is the handler name (default: "copilot").
	Name string

	// CLIPath is the location of the CLI executable.
	// Defaults to "copilot" or the COPILOT_CLI_PATH environment variable.
	CLIPath string

	// CLIUrl is the URL of an existing Copilot CLI server.
	// When set, the client connects to the existing server instead of spawning a new process.
	CLIUrl string

	// Cwd is the working directory for the CLI process.
	Cwd string

	// LogLevel sets logging verbosity (default: "error").
	LogLevel string

	// Models are the accepted model patterns.
	Models []string
}

// CopilotDefaultModels are the patterns accepted when none are configured.
var CopilotDefaultModels = []string{"gpt-*", "claude-*", "gemini-*"}

// CopilotClient is the client type produced by the Copilot handler.
type CopilotClient = Client[*copilot.Client]

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// NewCopilotHandler creates a handler backed by the Copilot CLI. The handler
// is ready when a CLI server URL is configured or the CLI binary is found.
func NewCopilotHandler(cfg CopilotConfig) *Handler {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "error"
	}
	if cfg.CLIPath == "" {
		cfg.CLIPath = os.Getenv("COPILOT_CLI_PATH")
	}

	h := &Handler{
		name:     nameOr(cfg.Name, "copilot"),
		kind:     "copilot",
		patterns: patternsOr(cfg.Models, CopilotDefaultModels),
	}
	if cfg.CLIUrl == "" {
		bin := cfg.CLIPath
		if bin == "" {
			bin = "copilot"
		}
		if _, err := lookPath(bin); err != nil {
			h.unready = fmt.Errorf("%w: copilot cli %q not found: %v", ErrNotConfigured, bin, err)
		}
	}

	h.create = func(_ context.Context, modelName string) (model.Client, error) {
		clientOpts := &copilot.ClientOptions{
			LogLevel: cfg.LogLevel,
		}
		if cfg.CLIPath != "" {
			clientOpts.CLIPath = cfg.CLIPath
		}
		if cfg.CLIUrl != "" {
			clientOpts.CLIUrl = cfg.CLIUrl
		}
		if cfg.Cwd != "" {
			clientOpts.Cwd = cfg.Cwd
		}

		client := copilot.NewClient(clientOpts)
		if err := client.Start(); err != nil {
			return nil, fmt.Errorf("starting copilot client: %w", err)
		}
		return newClient(h.kind, modelName, client, func() error {
			return errors.Join(client.Stop()...)
		}), nil
	}
	return h
}
