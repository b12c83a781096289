package cli

import (
	"context"
	"fmt"
	"time"

	mcpgo "github.com/felixgeelhaar/mcp-go"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/agent-router/domain/tool"
	"github.com/felixgeelhaar/agent-router/infrastructure/logging"
	"github.com/felixgeelhaar/agent-router/infrastructure/mcp"
	"github.com/felixgeelhaar/agent-router/infrastructure/resilience"
)

type serveOptions struct {
	configPath string
	agentName  string
	tools      []string
	httpAddr   string
	name       string

	timeout       time.Duration
	maxConcurrent int
}

func (a *App) newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose a resolved tool set as an MCP server",
		Long: `Resolve a tool set and serve it over MCP, on stdio by default or over
HTTP with --http. The tool set comes from a configured agent (--agent) or
from --tool tokens.

Examples:
  agent-router serve -c router.yaml --tool 'local/*' --tool 'github/*'
  agent-router serve -c router.yaml --agent reviewer --http :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file (required)")
	cmd.Flags().StringVarP(&opts.agentName, "agent", "a", "", "Serve the tools of a configured agent")
	cmd.Flags().StringArrayVarP(&opts.tools, "tool", "t", nil, "Tool token (repeatable)")
	cmd.Flags().StringVar(&opts.httpAddr, "http", "", "Serve over HTTP on this address instead of stdio")
	cmd.Flags().StringVar(&opts.name, "name", "agent-router", "Server name advertised to clients")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Per-call timeout (default 30s)")
	cmd.Flags().IntVar(&opts.maxConcurrent, "max-concurrent", 0, "Maximum tool calls in flight (default 10)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func (a *App) serve(ctx context.Context, opts *serveOptions) error {
	s, err := a.start(ctx, opts.configPath)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	tokens := opts.tools
	if opts.agentName != "" {
		desc, err := s.descriptor(opts.agentName, "", opts.tools)
		if err != nil {
			return err
		}
		tokens = desc.ToolTokens
	}

	res, err := s.runtime.Resolve(ctx, tokens)
	if err != nil {
		return err
	}
	if len(res.Tools) == 0 {
		return fmt.Errorf("%w: no tool matched %v", tool.ErrToolNotFound, tokens)
	}

	srv := mcp.NewToolSetServer(mcp.ServerConfig{
		Name:     opts.name,
		Version:  Version,
		Tools:    res.Tools,
		Executor: opts.executor(),
	})
	srv.Use(mcpgo.Recover(), mcpgo.RequestID())

	event := logging.Info().
		Add(logging.Component("serve")).
		Add(logging.Tokens(srv.ToolNames())).
		Add(logging.Count("unmatched", len(res.Unmatched)))
	if opts.httpAddr != "" {
		event.Add(logging.Transport("http")).Add(logging.Str("addr", opts.httpAddr)).Msg("serving tools")
		return srv.ServeHTTP(ctx, opts.httpAddr)
	}
	event.Add(logging.Transport("stdio")).Msg("serving tools")
	return srv.ServeStdio(ctx)
}

func (o *serveOptions) executor() *resilience.Executor {
	return resilience.NewExecutorWithOptions(
		resilience.WithTimeout(o.timeout),
		resilience.WithMaxConcurrent(o.maxConcurrent),
	)
}
