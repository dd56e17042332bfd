package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "invoicely-api",
	Short: "Invoicely API - invoice ledger service",
	Long: `Invoicely API keeps invoices, clients and payments for small businesses.

Configuration is read from .env and the environment. Run "serve" to start the
HTTP API, "migrate" to create or update the schema, and "sweep-overdue" from a
scheduler to flag past-due invoices.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, sweepCmd, purgeKeysCmd)
}
