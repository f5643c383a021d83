package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "guard",
	Short: "Request protection service for Seriously AI",
	Long: `Guard sits in front of the Seriously AI application and decides,
per request, whether it may proceed.

It classifies routes into protection levels, validates sessions,
checks the credit ledger and plan entitlements, and answers blocked
requests with contextual redirects.

Quick start:
  guard serve       # Start the guard server
  guard validate    # Validate configuration`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "guard.yaml", "config file path")
}
