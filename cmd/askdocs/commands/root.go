// Package commands defines all Cobra CLI commands for the askdocs binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/askdocs/askdocs-go/internal/audit"
	"github.com/askdocs/askdocs-go/internal/config"
	"github.com/askdocs/askdocs-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "askdocs",
		Short: "AskDocs — question answering over your own documents",
		Long: `AskDocs indexes your documents into per-topic knowledge bases and answers
natural language questions grounded in their content.

It ingests PDF, Word, plain-text and audio files (with OCR fallback for
scanned documents), stores the originals in object storage, and serves
answers with time-limited links back to the source files.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.askdocs/config.yaml).
See 'askdocs --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.askdocs/config.yaml)")

	root.AddCommand(
		NewServeCmd(),
		NewIngestCmd(),
		NewQueryCmd(),
		NewVersionCmd(),
	)

	return root
}
