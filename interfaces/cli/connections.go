package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/agent-router/domain/connection"
	"github.com/felixgeelhaar/agent-router/domain/tool"
)

type connectionsOptions struct {
	configPath string
	showTools  bool
}

type connectionView struct {
	connection.Info
	Tools []toolView `json:"tools,omitempty"`
}

type connectionsReport struct {
	Connections []connectionView `json:"connections"`
	Global      []toolView       `json:"global_tools"`
	Diagnostics []diagnosticView `json:"diagnostics,omitempty"`
}

func (a *App) newConnectionsCmd() *cobra.Command {
	opts := &connectionsOptions{}

	cmd := &cobra.Command{
		Use:   "connections",
		Short: "Connect to every tool server and report its state",
		Long: `Connect to every configured tool server, discover its tools and report
the state of each connection together with the global tool catalog.

Examples:
  agent-router connections -c router.yaml
  agent-router connections -c router.yaml --tools --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.connections(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file (required)")
	cmd.Flags().BoolVar(&opts.showTools, "tools", false, "List the tools of each connection")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func (a *App) connections(ctx context.Context, opts *connectionsOptions) error {
	s, err := a.start(ctx, opts.configPath)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	infos, err := s.runtime.Connections()
	if err != nil {
		return err
	}
	global, err := s.runtime.GlobalTools()
	if err != nil {
		return err
	}

	report := connectionsReport{
		Connections: make([]connectionView, 0, len(infos)),
		Global:      toolViews(global),
		Diagnostics: diagnosticViews(s.diagnostics.All()),
	}
	for _, info := range infos {
		v := connectionView{Info: info}
		if opts.showTools && info.State == connection.StateConnected {
			ds, err := s.runtime.ToolsForConnection(info.Name)
			if err != nil {
				return err
			}
			v.Tools = toolViews(ds)
		}
		report.Connections = append(report.Connections, v)
	}

	if a.jsonOutput {
		return a.printJSON(report)
	}

	if len(report.Connections) == 0 {
		fmt.Fprintf(a.stdout, "No connections configured.\n")
	} else {
		fmt.Fprintf(a.stdout, "Connections: %d\n", len(report.Connections))
	}
	for _, c := range report.Connections {
		fmt.Fprintf(a.stdout, "  %-20s %-10s %-12s %d tools", c.Name, c.Transport, c.State, c.ToolCount)
		if c.Error != "" {
			fmt.Fprintf(a.stdout, "  (%s)", c.Error)
		}
		fmt.Fprintln(a.stdout)
		for _, t := range c.Tools {
			fmt.Fprintf(a.stdout, "      - %s\n", t.Name)
		}
	}

	fmt.Fprintf(a.stdout, "\nGlobal tools: %d\n", len(report.Global))
	a.printTools(global)
	a.printDiagnostics(s.diagnostics.All())
	return nil
}

func (a *App) printTools(ds []tool.Descriptor) {
	for _, v := range toolViews(ds) {
		if v.Description != "" {
			fmt.Fprintf(a.stdout, "  %-30s %s\n", v.Qualified, v.Description)
			continue
		}
		fmt.Fprintf(a.stdout, "  %s\n", v.Qualified)
	}
}
