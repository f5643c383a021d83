package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slavayosome/seriously-ai-sub000/adapters/sqlite"
	"github.com/slavayosome/seriously-ai-sub000/config"
)

const (
	checkMark = "✓"
	crossMark = "✗"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration before deployment",
	Long: `Validate the guard configuration file.

Checks:
  - YAML syntax is valid
  - Required fields are present
  - Database is writable (optional)

Examples:
  guard validate
  guard validate --config /etc/guard/config.yaml`,
	RunE: runValidate,
}

var validateCheckDatabase bool

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateCheckDatabase, "check-database", false, "check if database is writable")
}

func runValidate(cmd *cobra.Command, args []string) error {
	fmt.Printf("Validating %s...\n\n", cfgFile)

	// Check file exists
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Printf("  %s Config file exists\n", crossMark)
		return fmt.Errorf("config file not found: %s", cfgFile)
	}
	fmt.Printf("  %s Config file exists\n", checkMark)

	// Load and validate config
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Printf("  %s Config syntax valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Printf("  %s Config syntax valid\n", checkMark)

	// Show config summary
	fmt.Printf("  %s Auth mode: %s\n", checkMark, cfg.Auth.Mode)
	fmt.Printf("  %s Database: %s (%s)\n", checkMark, cfg.Database.DSN, cfg.Database.Driver)
	patterns := len(cfg.Routes.Paid) + len(cfg.Routes.Authenticated) + len(cfg.Routes.Public)
	if patterns == 0 {
		fmt.Printf("  %s Route patterns: built-in defaults\n", checkMark)
	} else {
		fmt.Printf("  %s Route patterns: %d\n", checkMark, patterns)
	}
	fmt.Printf("  %s Pipeline cost overrides: %d\n", checkMark, len(cfg.Credits.Pipelines))

	// Optional: check database
	if validateCheckDatabase && cfg.Database.Driver == "sqlite" {
		if err := checkDatabaseWritable(cfg.Database.DSN); err != nil {
			fmt.Printf("  %s Database writable\n", crossMark)
			fmt.Printf("      Error: %v\n", err)
			return err
		}
		fmt.Printf("  %s Database writable\n", checkMark)
	}

	fmt.Println("\nConfiguration valid")
	return nil
}

func checkDatabaseWritable(dsn string) error {
	db, err := sqlite.Open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Ping()
}
