package shopify

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"orderdesk/core/log"
	entity "orderdesk/model/entity"
	orderRepo "orderdesk/model/repository/order"
	storeRepo "orderdesk/model/repository/store"
	orderService "orderdesk/service/order"
)

// SyncService reconciles fetched Shopify orders into the local store.
type SyncService struct {
	db     *gorm.DB
	client *Client
	orders *orderRepo.OrderRepository
	stores *storeRepo.StoreRepository
}

func NewSyncService(db *gorm.DB, client *Client) *SyncService {
	return &SyncService{
		db:     db,
		client: client,
		orders: orderRepo.NewOrderRepository(db),
		stores: storeRepo.NewStoreRepository(db),
	}
}

// SyncResult counts one sync pass. Processed is the number of orders
// fetched; Errors counts orders whose mapping or write failed without
// aborting the rest of the batch.
type SyncResult struct {
	Processed int    `json:"processed"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Errors    int    `json:"errors"`
	Store     string `json:"store"`
}

// SyncStore fetches a store's orders from Shopify and reconciles each one
// sequentially. A single order's failure is logged and counted, never
// propagated to its siblings. The store's last-sync cursor advances when at
// least one order was reconciled successfully.
func (s *SyncService) SyncStore(ctx context.Context, storeID, tenantID uint) (*SyncResult, error) {
	store, err := s.stores.FindByID(storeID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", orderService.ErrStorage, err)
	}
	if store == nil {
		return nil, orderService.ErrNotFound
	}

	payloads, err := s.client.FetchOrders(ctx, store, 50)
	if err != nil {
		return nil, err
	}

	res := &SyncResult{Processed: len(payloads), Store: store.ShopName}
	for _, payload := range payloads {
		created, err := s.Reconcile(payload, store)
		if err != nil {
			res.Errors++
			log.L().Errorw("shopify order reconciliation failed",
				"store_id", store.ID, "shopify_order_id", payload["id"], "error", err)
			continue
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}

	if res.Created+res.Updated > 0 {
		if err := s.stores.UpdateLastSync(store.ID, store.TenantID); err != nil {
			log.L().Errorw("advance last_sync failed", "store_id", store.ID, "error", err)
		}
	}

	log.L().Infow("shopify sync pass finished",
		"store", store.ShopName, "processed", res.Processed,
		"created", res.Created, "updated", res.Updated, "errors", res.Errors)
	return res, nil
}

// Reconcile maps one raw payload and decides create-vs-update keyed on the
// immutable Shopify order id. Creation goes through the full order-creation
// unit of work (code allocation, items, usage counter); an update refreshes
// mutable fields in place and never re-adjusts stock, so repeated syncs
// cannot double-count inventory.
func (s *SyncService) Reconcile(payload map[string]any, store *entity.ShopifyStore) (created bool, err error) {
	mapped, err := Map(payload)
	if err != nil {
		return false, err
	}

	rawJSON, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("marshal raw payload: %w", err)
	}
	productsJSON, err := json.Marshal(mapped.Items)
	if err != nil {
		return false, fmt.Errorf("marshal line items: %w", err)
	}

	existing, err := s.orders.FindByShopifyOrderID(mapped.ShopifyOrderID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", orderService.ErrStorage, err)
	}

	phone := ""
	if mapped.CustomerPhone != nil {
		phone = *mapped.CustomerPhone
	}
	address := ""
	if mapped.CustomerAddress != nil {
		address = *mapped.CustomerAddress
	}

	if existing == nil {
		items := make([]orderService.ItemInput, 0, len(mapped.Items))
		for _, it := range mapped.Items {
			items = append(items, orderService.ItemInput{
				// No local product reference: Shopify product ids live in
				// the snapshot metadata only, so stock stays untouched.
				ProductName: it.Name,
				UnitPrice:   it.Price,
				Quantity:    it.Quantity,
			})
		}
		tenantID := store.TenantID
		storeID := store.ID
		_, err := orderService.Create(s.db, orderService.CreateInput{
			TenantID:       &tenantID,
			ClientName:     mapped.CustomerName,
			ClientPhone:    phone,
			ClientAddress:  address,
			Status:         mapped.Status,
			TotalAmount:    mapped.TotalAmount,
			Notes:          mapped.Notes,
			Source:         entity.SourceShopify,
			ShopifyOrderID: &mapped.ShopifyOrderID,
			ShopifyStoreID: &storeID,
			ProductsJSON:   datatypes.JSON(productsJSON),
			ShopifyData:    datatypes.JSON(rawJSON),
			OrderDate:      mapped.OrderDate,
			Items:          items,
		})
		if err != nil {
			return false, err
		}
		return true, nil
	}

	err = s.orders.UpdateFromExternal(existing.ID, orderRepo.ExternalUpdate{
		ClientName:    mapped.CustomerName,
		ClientPhone:   phone,
		ClientAddress: address,
		TotalAmount:   mapped.TotalAmount,
		Status:        mapped.Status,
		Notes:         mapped.Notes,
		ProductsJSON:  datatypes.JSON(productsJSON),
		ShopifyData:   datatypes.JSON(rawJSON),
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", orderService.ErrStorage, err)
	}
	return false, nil
}

// SyncStats compares local and remote order counts for a store.
type SyncStats struct {
	Store           string `json:"store"`
	LastSync        any    `json:"last_sync"`
	TotalInShopify  int    `json:"total_in_shopify"`
	TotalInDatabase int    `json:"total_in_database"`
}

// GetSyncStats reports sync health for one store.
func (s *SyncService) GetSyncStats(ctx context.Context, storeID, tenantID uint) (*SyncStats, error) {
	store, err := s.stores.FindByID(storeID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", orderService.ErrStorage, err)
	}
	if store == nil {
		return nil, orderService.ErrNotFound
	}

	local, err := s.orders.FindByStore(store.ID, store.TenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", orderService.ErrStorage, err)
	}

	remote, err := s.client.CountOrders(ctx, store)
	if err != nil {
		// Remote count is informational; a Shopify hiccup should not hide
		// the local numbers.
		log.L().Warnw("shopify order count unavailable", "store_id", store.ID, "error", err)
		remote = 0
	}

	return &SyncStats{
		Store:           store.ShopName,
		LastSync:        store.LastSync,
		TotalInShopify:  remote,
		TotalInDatabase: len(local),
	}, nil
}
