package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"orderdesk/config"
	"orderdesk/cron"
)

var cronStartCmd = &cobra.Command{
	Use:   "cron:start",
	Short: "Start the Shopify sync scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.NewDB()
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		c, err := cron.StartCron(db)
		if err != nil {
			return err
		}
		defer c.Stop()
		fmt.Println("Cron scheduler started. Press Ctrl+C to exit.")
		select {} // Block forever
	},
}

func init() {
	rootCmd.AddCommand(cronStartCmd)
}
