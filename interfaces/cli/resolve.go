package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

type resolveOptions struct {
	configPath string
}

type resolveReport struct {
	Tools     []toolView `json:"tools"`
	Unmatched []string   `json:"unmatched"`
}

func (a *App) newResolveCmd() *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve TOKEN...",
		Short: "Resolve tool tokens against every tool source",
		Long: `Resolve tool request tokens the way an agent's tool list is resolved.

Accepted tokens:
  *, all             every tool in the global catalog
  local/*            every local tool
  mcp/*              every tool of every connected server
  <connection>/*     every tool of one connection
  <source>/<tool>    one tool of one source
  <tool>             the first source that has the tool

Unmatched tokens are reported, not treated as errors.

Examples:
  agent-router resolve -c router.yaml 'local/*' search
  agent-router resolve -c router.yaml --json 'github/*'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.resolve(cmd.Context(), opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file (required)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func (a *App) resolve(ctx context.Context, opts *resolveOptions, tokens []string) error {
	s, err := a.start(ctx, opts.configPath)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	res, err := s.runtime.Resolve(ctx, tokens)
	if err != nil {
		return err
	}

	if a.jsonOutput {
		unmatched := res.Unmatched
		if unmatched == nil {
			unmatched = []string{}
		}
		return a.printJSON(resolveReport{Tools: toolViews(res.Tools), Unmatched: unmatched})
	}

	fmt.Fprintf(a.stdout, "Resolved tools: %d\n", len(res.Tools))
	a.printTools(res.Tools)
	a.printUnmatched(res.Unmatched)
	return nil
}

func (a *App) printUnmatched(tokens []string) {
	if len(tokens) == 0 {
		return
	}
	fmt.Fprintf(a.stdout, "\nUnmatched: %d\n", len(tokens))
	for _, t := range tokens {
		fmt.Fprintf(a.stdout, "  - %s\n", t)
	}
}
