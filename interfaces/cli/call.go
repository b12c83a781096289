package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/agent-router/domain/tool"
	"github.com/felixgeelhaar/agent-router/infrastructure/resilience"
)

var errInvalidInput = errors.New("input is not valid JSON")

type callOptions struct {
	configPath string
	input      string
	timeout    time.Duration
}

type callReport struct {
	Tool   string          `json:"tool"`
	Output json.RawMessage `json:"output,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func (a *App) newCallCmd() *cobra.Command {
	opts := &callOptions{}

	cmd := &cobra.Command{
		Use:   "call TOOL",
		Short: "Invoke one resolved tool",
		Long: `Resolve a single tool token and invoke the tool with JSON input.

Calls run with a timeout and a circuit breaker per tool source; read-only
and idempotent tools are retried.

Examples:
  agent-router call -c router.yaml echo --input '{"message":"hi"}'
  agent-router call -c router.yaml github/search_issues --input '{"query":"bug"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd.Context(), opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file (required)")
	cmd.Flags().StringVarP(&opts.input, "input", "i", "{}", "Tool input as a JSON object")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Per-call timeout (default: executor default)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func (a *App) call(ctx context.Context, opts *callOptions, token string) error {
	input := json.RawMessage(opts.input)
	if !json.Valid(input) {
		return fmt.Errorf("%w: %s", errInvalidInput, opts.input)
	}

	s, err := a.start(ctx, opts.configPath)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	res, err := s.runtime.Resolve(ctx, []string{token})
	if err != nil {
		return err
	}
	if len(res.Tools) == 0 {
		return fmt.Errorf("%w: %q", tool.ErrToolNotFound, token)
	}
	d := res.Tools[0]

	var execOpts []resilience.Option
	if opts.timeout > 0 {
		execOpts = append(execOpts, resilience.WithTimeout(opts.timeout))
	}
	executor := resilience.NewExecutorWithOptions(execOpts...)

	out, err := executor.Execute(ctx, d, input)
	if err != nil {
		return fmt.Errorf("calling %s: %w", d.QualifiedName(), err)
	}

	report := callReport{Tool: d.QualifiedName(), Output: out.Output}
	if out.IsError() {
		report.Error = out.Error.Error()
	}

	if a.jsonOutput {
		if err := a.printJSON(report); err != nil {
			return err
		}
	} else if report.Error == "" {
		fmt.Fprintln(a.stdout, out.OutputString())
	}

	if out.IsError() {
		return fmt.Errorf("tool %s failed: %w", d.QualifiedName(), out.Error)
	}
	return nil
}
