package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/agent-router/domain/agent"
	"github.com/felixgeelhaar/agent-router/domain/model"
)

type assembleOptions struct {
	configPath string
	agentName  string
	modelName  string
	tools      []string
}

type assembleReport struct {
	ID          string           `json:"id"`
	Agent       string           `json:"agent,omitempty"`
	Model       string           `json:"model"`
	Handler     string           `json:"handler"`
	Provider    string           `json:"provider"`
	Attempts    []model.Attempt  `json:"attempts"`
	Tools       []toolView       `json:"tools"`
	Unmatched   []string         `json:"unmatched"`
	Diagnostics []diagnosticView `json:"diagnostics,omitempty"`
}

func (a *App) newAssembleCmd() *cobra.Command {
	opts := &assembleOptions{}

	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Route an agent's model and resolve its tools",
		Long: `Assemble an agent: route its model through the handler chain and resolve
its tool tokens. The agent comes from the configuration (--agent) or from
flags; --model and --tool override a configured agent.

Examples:
  agent-router assemble -c router.yaml --agent reviewer
  agent-router assemble -c router.yaml --model gpt-4o --tool 'local/*' --tool search`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.assemble(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file (required)")
	cmd.Flags().StringVarP(&opts.agentName, "agent", "a", "", "Configured agent to assemble")
	cmd.Flags().StringVarP(&opts.modelName, "model", "m", "", "Model name")
	cmd.Flags().StringArrayVarP(&opts.tools, "tool", "t", nil, "Tool token (repeatable)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func (a *App) assemble(ctx context.Context, opts *assembleOptions) error {
	s, err := a.start(ctx, opts.configPath)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	desc, err := s.descriptor(opts.agentName, opts.modelName, opts.tools)
	if err != nil {
		return err
	}

	asm, err := s.runtime.Assemble(ctx, desc)
	if err != nil {
		return err
	}
	defer func() { _ = asm.Close() }()

	unmatched := asm.Unmatched
	if unmatched == nil {
		unmatched = []string{}
	}
	report := assembleReport{
		ID:          asm.ID,
		Agent:       desc.Name,
		Model:       desc.ModelName,
		Handler:     asm.Handler,
		Provider:    asm.Client.Provider(),
		Attempts:    asm.Attempts,
		Tools:       toolViews(asm.Tools),
		Unmatched:   unmatched,
		Diagnostics: diagnosticViews(s.diagnostics.All()),
	}

	if a.jsonOutput {
		return a.printJSON(report)
	}

	fmt.Fprintf(a.stdout, "Assembly %s\n", report.ID)
	if report.Agent != "" {
		fmt.Fprintf(a.stdout, "  Agent:   %s\n", report.Agent)
	}
	fmt.Fprintf(a.stdout, "  Model:   %s\n", report.Model)
	fmt.Fprintf(a.stdout, "  Handler: %s (%s)\n", report.Handler, report.Provider)
	if failures := len(report.Attempts) - 1; failures > 0 {
		fmt.Fprintf(a.stdout, "  Passed over: %d handler(s)\n", failures)
	}

	fmt.Fprintf(a.stdout, "\nTools: %d\n", len(asm.Tools))
	a.printTools(asm.Tools)
	a.printUnmatched(asm.Unmatched)
	a.printDiagnostics(s.diagnostics.All())
	return nil
}

// descriptor builds the agent descriptor from a configured agent and flag
// overrides.
func (s *session) descriptor(agentName, modelName string, tools []string) (agent.Descriptor, error) {
	var desc agent.Descriptor
	if agentName != "" {
		cfg, ok := s.config.Agent(agentName)
		if !ok {
			return agent.Descriptor{}, fmt.Errorf("%w: %q", agent.ErrUnknownAgent, agentName)
		}
		desc = agent.Descriptor{
			Name:         cfg.Name,
			ModelName:    cfg.Model,
			ToolTokens:   cfg.Tools,
			Instructions: cfg.Instructions,
		}
	}
	if modelName != "" {
		desc.ModelName = modelName
	}
	if len(tools) > 0 {
		desc.ToolTokens = tools
	}
	return desc, nil
}
