// Package cli implements the pgvectorctl command tree. Every command shares
// one lazily-built application graph so the CLI, REST API and MCP server all
// run the same service code.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lihongwen/pgvector-kit/internal/app"
	"github.com/lihongwen/pgvector-kit/internal/config"
)

var version = "0.1.0"

var application *app.App

var rootCmd = &cobra.Command{
	Use:   "pgvectorctl",
	Short: "Manage pgvector collections and document ingestion",
	Long: `pgvectorctl turns documents into searchable vectors stored in
PostgreSQL with the pgvector extension. Collections, ingestion, search
and retention cleanup are all driven from here.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	defer func() {
		if application != nil {
			application.Close()
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// requireApp builds the shared application graph on first use. Commands that
// need no database (version, token) never call it.
func requireApp(cmd *cobra.Command) (*app.App, error) {
	if application != nil {
		return application, nil
	}
	cfg := config.LoadConfig()
	a, err := app.NewApp(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("startup failed: %w", err)
	}
	application = a
	return a, nil
}
