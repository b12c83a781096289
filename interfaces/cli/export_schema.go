package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	infraconfig "github.com/felixgeelhaar/agent-router/infrastructure/config"
)

// exportSchemaOptions holds options for the export-schema command.
type exportSchemaOptions struct {
	outputPath string
}

func (a *App) newExportSchemaCmd() *cobra.Command {
	opts := &exportSchemaOptions{}

	cmd := &cobra.Command{
		Use:   "export-schema",
		Short: "Export the configuration JSON schema",
		Long: `Export the JSON Schema for router configuration files.

The exported schema can be used for IDE validation and autocompletion.

Examples:
  # Export schema to stdout
  agent-router export-schema

  # Export schema to a file
  agent-router export-schema -o router.schema.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.exportSchema(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Output file path (default: stdout)")

	return cmd
}

func (a *App) exportSchema(opts *exportSchemaOptions) error {
	schemaJSON, err := infraconfig.SchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if opts.outputPath == "" {
		_, _ = fmt.Fprintln(a.stdout, schemaJSON)
		return nil
	}

	// Write to file with restrictive permissions (G306)
	if err := os.WriteFile(opts.outputPath, []byte(schemaJSON), 0600); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}

	_, _ = fmt.Fprintf(a.stdout, "Schema exported to %s\n", opts.outputPath)
	return nil
}
