package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"orderdesk/config"
	"orderdesk/cron"
	shopifyService "orderdesk/service/shopify"
)

var syncCmd = &cobra.Command{
	Use:   "shopify:sync",
	Short: "Run one Shopify sync pass over every active store",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.NewDB()
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		cron.SyncAllStores(db, shopifyService.NewClient())
		fmt.Println("Sync pass finished.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
