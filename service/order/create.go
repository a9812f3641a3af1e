package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"orderdesk/core/log"
	entity "orderdesk/model/entity"
	orderRepo "orderdesk/model/repository/order"
	productRepo "orderdesk/model/repository/product"
	tenantRepo "orderdesk/model/repository/tenant"
)

// codeRetries bounds how often a creation transaction is retried when two
// concurrent callers derive the same order code and collide on the
// (tenant_id, order_code) unique index.
const codeRetries = 3

// ItemInput is one requested line item. ProductID may be nil for external
// orders referencing products that do not exist locally.
type ItemInput struct {
	ProductID   *uint           `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// CreateInput is the order header plus line items.
type CreateInput struct {
	TenantID       *uint
	ClientName     string
	ClientPhone    string
	ClientAddress  string
	Status         string
	TotalAmount    decimal.Decimal
	Notes          string
	Source         string
	ShopifyOrderID *string
	ShopifyStoreID *uint
	ProductsJSON   datatypes.JSON
	ShopifyData    datatypes.JSON
	OrderDate      *time.Time
	Items          []ItemInput
}

// CreateResult carries the hydrated order. DegradedCode is set when the
// anonymous fallback code path was taken; such codes are wall-clock derived
// and not collision-proof.
type CreateResult struct {
	Order        *entity.Order `json:"order"`
	DegradedCode bool          `json:"code_degraded,omitempty"`
}

// Create runs the full order-creation unit of work: allocate the order
// code, insert the header, insert line items while decrementing stock for
// locally known products, and bump the tenant usage counter. All of it
// commits or none of it does. Entitlement is the route middleware's job;
// this function does not re-check it.
func Create(db *gorm.DB, in CreateInput) (*CreateResult, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = entity.StatusDashboard
	}
	if in.Source == "" {
		in.Source = entity.SourceManual
	}

	var (
		created  entity.Order
		degraded bool
	)
	var lastErr error
	for attempt := 0; attempt < codeRetries; attempt++ {
		created = entity.Order{}
		err := db.Transaction(func(tx *gorm.DB) error {
			code, deg, err := orderRepo.AllocateCode(tx, in.TenantID)
			if err != nil {
				return err
			}
			degraded = deg

			o := entity.Order{
				TenantID:       in.TenantID,
				OrderCode:      code,
				ClientName:     in.ClientName,
				ClientPhone:    in.ClientPhone,
				ClientAddress:  in.ClientAddress,
				Status:         in.Status,
				TotalAmount:    in.TotalAmount,
				Notes:          in.Notes,
				Source:         in.Source,
				ShopifyOrderID: in.ShopifyOrderID,
				ShopifyStoreID: in.ShopifyStoreID,
				ProductsJSON:   in.ProductsJSON,
				ShopifyData:    in.ShopifyData,
				OrderDate:      in.OrderDate,
			}
			if err := orderRepo.Insert(tx, &o); err != nil {
				return err
			}

			for _, item := range in.Items {
				it := entity.OrderItem{
					OrderID:     o.ID,
					ProductID:   item.ProductID,
					ProductName: item.ProductName,
					UnitPrice:   item.UnitPrice,
					Quantity:    item.Quantity,
				}
				if err := orderRepo.InsertItem(tx, &it); err != nil {
					return err
				}
				if item.ProductID != nil {
					if err := productRepo.DecrementStock(tx, *item.ProductID, item.Quantity); err != nil {
						return err
					}
				}
			}

			if in.TenantID != nil {
				if err := tenantRepo.IncrementOrderCount(tx, *in.TenantID); err != nil {
					return err
				}
			}

			created = o
			return nil
		})
		if err == nil {
			lastErr = nil
			break
		}
		lastErr = err
		if !isDuplicateKey(err) {
			break
		}
		log.L().Warnw("order code collision, retrying",
			"tenant_id", in.TenantID, "attempt", attempt+1)
	}
	if lastErr != nil {
		log.L().Errorw("order creation rolled back",
			"tenant_id", in.TenantID, "source", in.Source, "error", lastErr)
		return nil, fmt.Errorf("%w: %v", ErrStorage, lastErr)
	}

	full, err := orderRepo.NewOrderRepository(db).FindByID(created.ID, in.TenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if full == nil {
		return nil, fmt.Errorf("%w: order %d vanished after commit", ErrStorage, created.ID)
	}
	if degraded {
		log.L().Warnw("order created with degraded fallback code", "order_code", full.OrderCode)
	}
	return &CreateResult{Order: full, DegradedCode: degraded}, nil
}

func validate(in CreateInput) error {
	external := in.Source == entity.SourceShopify
	if !external {
		if strings.TrimSpace(in.ClientName) == "" ||
			strings.TrimSpace(in.ClientPhone) == "" ||
			strings.TrimSpace(in.ClientAddress) == "" {
			return fmt.Errorf("%w: client name, phone and address are required", ErrValidation)
		}
		if len(in.Items) == 0 {
			return fmt.Errorf("%w: a manual order needs at least one item", ErrValidation)
		}
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item quantity must be positive", ErrValidation)
		}
	}
	return nil
}

// isDuplicateKey matches unique-index violations across the drivers in use
// (mysql in production, sqlite in tests).
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
