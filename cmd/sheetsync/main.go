package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mkranz/sheetsync/internal/config"
	"github.com/mkranz/sheetsync/internal/logging"
)

// rootCmd is the base command. Every subcommand loads config and logging
// through its PersistentPreRunE.
var rootCmd = &cobra.Command{
	Use:          "sheetsync",
	Short:        "Sync Google Sheets and Drive content into Confluence",
	Long:         "sheetsync pulls tabular data and files from Google Sheets and Drive,\npublishes them as Confluence attachments and pages, and can generate\nlesson pages from sheet rows through a local LLM backend.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load .env if present (Overload overwrites existing env vars).
		if err := godotenv.Overload(); err != nil {
			slog.Debug("no .env file found, using environment variables")
		}

		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		cfg = loaded

		logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
		return nil
	},
}

// cfg is populated by the root PersistentPreRunE before any RunE executes.
var cfg *config.Config

func main() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
