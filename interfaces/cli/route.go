package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/agent-router/domain/model"
	"github.com/felixgeelhaar/agent-router/infrastructure/router"
	"github.com/felixgeelhaar/agent-router/infrastructure/telemetry"
)

type routeOptions struct {
	configPath string
}

type routeReport struct {
	Model    string          `json:"model"`
	Handler  string          `json:"handler,omitempty"`
	Provider string          `json:"provider,omitempty"`
	Attempts []model.Attempt `json:"attempts"`
	Error    string          `json:"error,omitempty"`
}

func (a *App) newRouteCmd() *cobra.Command {
	opts := &routeOptions{}

	cmd := &cobra.Command{
		Use:   "route MODEL",
		Short: "Show which handler serves a model",
		Long: `Walk the handler chain for a model name and report every attempt.

The selected client is closed immediately; no request is sent to the
provider and no tool connection is opened.

Examples:
  agent-router route -c router.yaml claude-sonnet-4-20250514
  agent-router route -c router.yaml --json gpt-4o`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.route(cmd.Context(), opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file (required)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func (a *App) route(ctx context.Context, opts *routeOptions, modelName string) error {
	s, err := a.load(opts.configPath, false)
	if err != nil {
		return err
	}

	routerOpts := []router.Option{
		router.WithDiagnostics(s.diagnostics.Reporter()),
		router.WithMetrics(telemetry.NewMetrics(telemetry.DefaultMetricsConfig())),
	}
	if a.tracing != nil {
		routerOpts = append(routerOpts, router.WithTracer(a.tracing.Tracer(telemetry.InstrumentationName)))
	}
	rt, err := router.New(s.build.Handlers, routerOpts...)
	if err != nil {
		return err
	}

	report := routeReport{Model: modelName}
	route, routeErr := rt.Route(ctx, modelName)
	if routeErr != nil {
		report.Error = routeErr.Error()
		var exhausted *model.ExhaustedError
		if errors.As(routeErr, &exhausted) {
			report.Attempts = exhausted.Attempts
		}
	} else {
		defer func() { _ = route.Client.Close() }()
		report.Handler = route.Handler
		report.Provider = route.Client.Provider()
		report.Attempts = route.Attempts
	}

	if a.jsonOutput {
		if err := a.printJSON(report); err != nil {
			return err
		}
		return routeErr
	}

	if routeErr == nil {
		fmt.Fprintf(a.stdout, "%s → %s (%s)\n", modelName, report.Handler, report.Provider)
	} else {
		fmt.Fprintf(a.stdout, "%s → no handler\n", modelName)
	}
	fmt.Fprintf(a.stdout, "\nAttempts:\n")
	for i, at := range report.Attempts {
		if at.Reason != "" {
			fmt.Fprintf(a.stdout, "  %d. %-20s %-8s %s\n", i+1, at.Handler, at.Outcome, at.Reason)
			continue
		}
		fmt.Fprintf(a.stdout, "  %d. %-20s %s\n", i+1, at.Handler, at.Outcome)
	}
	return routeErr
}
