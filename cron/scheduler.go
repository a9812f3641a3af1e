package cron

import (
	"context"
	"os"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"orderdesk/core/log"
	storeRepo "orderdesk/model/repository/store"
	"orderdesk/service/shopify"
)

// DefaultSyncSchedule runs the Shopify sync pass every 30 minutes.
const DefaultSyncSchedule = "*/30 * * * *"

// StartCron starts the scheduler with the shopify:sync job registered.
func StartCron(db *gorm.DB) (*cron.Cron, error) {
	c := cron.New()
	schedule := os.Getenv("SHOPIFY_SYNC_SCHEDULE")
	if schedule == "" {
		schedule = DefaultSyncSchedule
	}
	_, err := c.AddFunc(schedule, func() {
		SyncAllStores(db, shopify.NewClient())
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

// SyncAllStores runs one sync pass over every active store. Per-store
// failures are logged and do not stop the remaining stores.
func SyncAllStores(db *gorm.DB, client *shopify.Client) {
	stores, err := storeRepo.NewStoreRepository(db).FindActive()
	if err != nil {
		log.L().Errorw("list active stores failed", "error", err)
		return
	}
	svc := shopify.NewSyncService(db, client)
	for _, s := range stores {
		res, err := svc.SyncStore(context.Background(), s.ID, s.TenantID)
		if err != nil {
			log.L().Errorw("scheduled sync failed", "store_id", s.ID, "error", err)
			continue
		}
		log.L().Infow("scheduled sync done",
			"store", res.Store, "created", res.Created, "updated", res.Updated, "errors", res.Errors)
	}
}
