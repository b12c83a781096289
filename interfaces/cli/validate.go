package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	infraconfig "github.com/felixgeelhaar/agent-router/infrastructure/config"
)

// validateOptions holds options for the validate command.
type validateOptions struct {
	configPath string
	strict     bool
	showSchema bool
}

// readiness is implemented by handlers that can report missing settings.
type readiness interface {
	Ready() error
}

type handlerView struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Reason string `json:"reason,omitempty"`
}

type connectionConfigView struct {
	Name      string `json:"name"`
	Transport string `json:"transport"`
}

type validateReport struct {
	Name        string                 `json:"name,omitempty"`
	Handlers    []handlerView          `json:"handlers"`
	Connections []connectionConfigView `json:"connections"`
	Agents      []string               `json:"agents,omitempty"`
	Diagnostics []diagnosticView       `json:"diagnostics,omitempty"`
}

func (a *App) newValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Long: `Validate a router configuration file.

This command checks:
  - File format (YAML or JSON)
  - Handler types, names and model patterns
  - Connection names and transports
  - Environment variable references (in strict mode)

Handlers that cannot be built are reported as diagnostics. No connection is
opened.

Examples:
  # Validate a configuration file
  agent-router validate -c router.yaml

  # Strict validation (fail on missing env vars)
  agent-router validate -c router.yaml --strict

  # Show the JSON schema for configuration
  agent-router validate --schema`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showSchema {
				return a.showConfigSchema()
			}
			return a.validateConfig(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Enable strict validation (fail on missing env vars)")
	cmd.Flags().BoolVar(&opts.showSchema, "schema", false, "Show JSON schema for configuration")

	return cmd
}

func (a *App) validateConfig(opts *validateOptions) error {
	s, err := a.load(opts.configPath, opts.strict)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	report := validateReport{
		Name:        s.config.Name,
		Handlers:    make([]handlerView, 0, len(s.build.Handlers)),
		Connections: make([]connectionConfigView, 0, len(s.build.Connections)),
		Diagnostics: diagnosticViews(s.diagnostics.All()),
	}
	for _, h := range s.build.Handlers {
		v := handlerView{Name: h.Name(), Ready: true}
		if r, ok := h.(readiness); ok {
			if err := r.Ready(); err != nil {
				v.Ready = false
				v.Reason = err.Error()
			}
		}
		report.Handlers = append(report.Handlers, v)
	}
	for _, c := range s.build.Connections {
		report.Connections = append(report.Connections, connectionConfigView{
			Name:      c.Name,
			Transport: string(c.Transport),
		})
	}
	for _, ag := range s.config.Agents {
		report.Agents = append(report.Agents, ag.Name)
	}

	if a.jsonOutput {
		return a.printJSON(report)
	}

	fmt.Fprintf(a.stdout, "✓ Configuration is valid\n")
	if report.Name != "" {
		fmt.Fprintf(a.stdout, "  Name: %s\n", report.Name)
	}

	fmt.Fprintf(a.stdout, "\nHandler chain: %d\n", len(report.Handlers))
	for i, h := range report.Handlers {
		status := "ready"
		if !h.Ready {
			status = "not ready: " + h.Reason
		}
		fmt.Fprintf(a.stdout, "  %d. %s (%s)\n", i+1, h.Name, status)
	}

	if len(report.Connections) > 0 {
		fmt.Fprintf(a.stdout, "\nConnections: %d\n", len(report.Connections))
		for _, c := range report.Connections {
			fmt.Fprintf(a.stdout, "  - %s (%s)\n", c.Name, c.Transport)
		}
	}

	if len(report.Agents) > 0 {
		fmt.Fprintf(a.stdout, "\nAgents: %d\n", len(report.Agents))
		for _, name := range report.Agents {
			fmt.Fprintf(a.stdout, "  - %s\n", name)
		}
	}

	a.printDiagnostics(s.diagnostics.All())
	return nil
}

func (a *App) showConfigSchema() error {
	schemaJSON, err := infraconfig.SchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	fmt.Fprintln(a.stdout, schemaJSON)
	return nil
}
