// Package cli provides a command-line interface for the agent router.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	agentrouter "github.com/felixgeelhaar/agent-router"
	"github.com/felixgeelhaar/agent-router/infrastructure/observability"
)

// Version information set at build time.
var (
	Version   = agentrouter.Version
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App represents the CLI application.
type App struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer

	// lookuper supplies process settings.
	lookuper envconfig.Lookuper
	tracing  *observability.Provider

	jsonOutput bool
}

// New creates a new CLI application.
func New() *App {
	app := &App{
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		lookuper: envconfig.OsLookuper(),
	}

	app.root = &cobra.Command{
		Use:   "agent-router",
		Short: "Model routing and tool resolution for agents",
		Long: `agent-router picks a model client for an agent by walking an ordered chain
of provider handlers, and resolves the agent's tool requests against local
tools and remote MCP tool servers.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  app.setup,
		PersistentPostRunE: app.teardown,
	}
	app.root.PersistentFlags().BoolVar(&app.jsonOutput, "json", false, "Output results as JSON")

	app.root.AddCommand(
		app.newVersionCmd(),
		app.newValidateCmd(),
		app.newRouteCmd(),
		app.newConnectionsCmd(),
		app.newResolveCmd(),
		app.newAssembleCmd(),
		app.newCallCmd(),
		app.newServeCmd(),
		app.newExportSchemaCmd(),
	)

	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// WithLookuper replaces the environment used for process settings.
func (a *App) WithLookuper(l envconfig.Lookuper) *App {
	a.lookuper = l
	return a
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.jsonOutput {
				return a.printJSON(map[string]string{
					"version":    Version,
					"git_commit": GitCommit,
					"build_date": BuildDate,
				})
			}
			fmt.Fprintf(a.stdout, "agent-router version %s\n", Version)
			fmt.Fprintf(a.stdout, "  Git commit: %s\n", GitCommit)
			fmt.Fprintf(a.stdout, "  Build date: %s\n", BuildDate)
			return nil
		},
	}
}
