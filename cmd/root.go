package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "orderdesk",
	Short: "OrderDesk maintenance CLI",
	Long:  "Operational commands for the OrderDesk backend: migrations, Shopify sync, cron.",
}

// Execute runs the CLI. Exits non-zero on command failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
