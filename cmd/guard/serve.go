package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slavayosome/seriously-ai-sub000/bootstrap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the guard server",
	Long: `Start the guard server.

The server will:
  - Load configuration from guard.yaml (or --config)
  - Or load configuration from GUARD_* environment variables
  - Connect to the configured session and wallet stores
  - Gate every request by protection level, session, credits and plan

Environment variables (for Docker deployments):
  GUARD_SERVER_PORT        - Server port (default: 8080)
  GUARD_AUTH_MODE          - Session mode: jwt, sqlite, memory
  GUARD_AUTH_JWT_SECRET    - JWT signing secret
  GUARD_DATABASE_DRIVER    - Database driver: sqlite or memory
  GUARD_DATABASE_DSN       - Database path (default: guard.db)
  GUARD_LOG_LEVEL          - Log level: debug, info, warn, error

Examples:
  guard serve
  guard serve --config /etc/guard/config.yaml

  # Docker (env vars only):
  GUARD_AUTH_JWT_SECRET=s3cret guard serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgFile); err != nil {
		fmt.Println("Running with environment variables (no config file)")
	}

	app, err := bootstrap.New(cfgFile)
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}
