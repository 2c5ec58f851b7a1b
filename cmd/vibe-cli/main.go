package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"vibe_demo_server/config"
	"vibe_demo_server/internal/store"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vibe-cli",
	Short: "Maintenance commands for the demo page server",
	Long: `vibe-cli runs one-off maintenance tasks against the demo page database.

Examples:
  vibe-cli push "sam" "Tutorial copy edits" 3f2a9c1
  vibe-cli migrate
  vibe-cli sweep
  vibe-cli persist k3x9a2bq user-42`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(persistCmd)

	rootCmd.PersistentFlags().String("config-dir", ".", "Directory holding an optional config file")
}

// openDB loads .env and config, then opens the configured database.
func openDB(cmd *cobra.Command) (*sql.DB, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	dir, _ := cmd.Flags().GetString("config-dir")
	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	return store.Open(cmdContext(cmd), cfg.DatabaseURL)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
