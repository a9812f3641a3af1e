package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	entity "orderdesk/model/entity"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// WithTx runs fn inside a single transaction. Every write of one order
// creation (header, items, stock, usage counter) goes through the tx-bound
// repository handed to fn; a non-nil error rolls the whole unit back.
func (r *OrderRepository) WithTx(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// CountByTenant returns the number of orders the tenant owns.
func CountByTenant(db *gorm.DB, tenantID uint) (int64, error) {
	var n int64
	err := db.Model(&entity.Order{}).Where("tenant_id = ?", tenantID).Count(&n).Error
	return n, err
}

// AllocateCode derives the next order code for a tenant from the current
// order count: USR{tenant}-CMD{seq}. Codes are strictly increasing under
// serialized access; concurrent callers are fenced by the unique index on
// (tenant_id, order_code) and the caller's retry loop. With a nil tenant
// (legacy/anonymous path) it returns a wall-clock fallback code and
// degraded=true: that code is not collision-proof.
func AllocateCode(db *gorm.DB, tenantID *uint) (code string, degraded bool, err error) {
	if tenantID == nil {
		return fmt.Sprintf("CMD-%d", time.Now().UnixMilli()), true, nil
	}
	n, err := CountByTenant(db, *tenantID)
	if err != nil {
		return "", false, err
	}
	return fmt.Sprintf("USR%d-CMD%d", *tenantID, n+1), false, nil
}

// Insert creates the order header row. The caller is expected to run this
// inside WithTx together with item inserts and stock adjustments.
func Insert(db *gorm.DB, o *entity.Order) error {
	return db.Create(o).Error
}

// InsertItem creates one line-item row.
func InsertItem(db *gorm.DB, it *entity.OrderItem) error {
	return db.Create(it).Error
}

// FindByID loads one order with hydrated items (including the denormalized
// product image reference). A non-nil tenantID scopes the lookup: a foreign
// tenant's order reads as absent. Returns (nil, nil) when not found.
func (r *OrderRepository) FindByID(id uint, tenantID *uint) (*entity.Order, error) {
	q := r.db.Where("id = ?", id)
	if tenantID != nil {
		q = q.Where("tenant_id = ?", *tenantID)
	}
	var o entity.Order
	err := q.Preload("Items").First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.hydrateItemImages(o.Items); err != nil {
		return nil, err
	}
	return &o, nil
}

// hydrateItemImages fills ImageURL on items from the products table in one
// batch query.
func (r *OrderRepository) hydrateItemImages(items []entity.OrderItem) error {
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		if it.ProductID != nil {
			ids = append(ids, *it.ProductID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	rows, err := r.db.Model(&entity.Product{}).
		Select("id, image_url").
		Where("id IN ?", ids).
		Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	images := make(map[uint]string, len(ids))
	for rows.Next() {
		var id uint
		var url string
		if err := rows.Scan(&id, &url); err != nil {
			continue
		}
		images[id] = url
	}
	for i := range items {
		if items[i].ProductID != nil {
			items[i].ImageURL = images[*items[i].ProductID]
		}
	}
	return nil
}

// FindAll returns orders newest-first, optionally scoped to one tenant.
func (r *OrderRepository) FindAll(tenantID *uint) ([]entity.Order, error) {
	q := r.db.Order("created_at DESC").Preload("Items")
	if tenantID != nil {
		q = q.Where("tenant_id = ?", *tenantID)
	}
	var list []entity.Order
	err := q.Find(&list).Error
	return list, err
}

// FindByShopifyOrderID looks an order up by its external id. The lookup is
// global: Shopify order ids are unique across the platform, not per tenant.
// Returns (nil, nil) when not found.
func (r *OrderRepository) FindByShopifyOrderID(shopifyOrderID string) (*entity.Order, error) {
	var o entity.Order
	err := r.db.Where("shopify_order_id = ?", shopifyOrderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus sets a new status on a tenant's order. Returns (nil, nil)
// when the order does not exist or belongs to another tenant.
func (r *OrderRepository) UpdateStatus(id uint, tenantID *uint, status string) (*entity.Order, error) {
	q := r.db.Model(&entity.Order{}).Where("id = ?", id)
	if tenantID != nil {
		q = q.Where("tenant_id = ?", *tenantID)
	}
	res := q.Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(id, tenantID)
}

// ExternalUpdate holds the mutable fields a repeated Shopify sync may
// refresh on an existing order. Identity fields (id, code, created_at) and
// stock are never touched on update.
type ExternalUpdate struct {
	ClientName    string
	ClientPhone   string
	ClientAddress string
	TotalAmount   decimal.Decimal
	Status        string
	Notes         string
	ProductsJSON  datatypes.JSON
	ShopifyData   datatypes.JSON
}

// UpdateFromExternal refreshes an existing external order in place.
func (r *OrderRepository) UpdateFromExternal(id uint, u ExternalUpdate) error {
	return r.db.Model(&entity.Order{}).Where("id = ?", id).Updates(map[string]any{
		"client_name":       u.ClientName,
		"client_phone":      u.ClientPhone,
		"client_address":    u.ClientAddress,
		"total_amount":      u.TotalAmount,
		"status":            u.Status,
		"notes":             u.Notes,
		"products_snapshot": u.ProductsJSON,
		"shopify_data":      u.ShopifyData,
	}).Error
}

// FindByStore returns orders attached to one Shopify store, tenant-scoped.
func (r *OrderRepository) FindByStore(storeID uint, tenantID uint) ([]entity.Order, error) {
	var list []entity.Order
	err := r.db.
		Where("shopify_store_id = ? AND tenant_id = ?", storeID, tenantID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// NumberingStats summarizes a tenant's order numbering.
type NumberingStats struct {
	TotalOrders    int64      `json:"total_orders"`
	LastOrderCode  string     `json:"last_order_code"`
	FirstOrderDate *time.Time `json:"first_order_date"`
}

// GetNumberingStats returns total orders, the latest assigned code and the
// first order date for a tenant.
func (r *OrderRepository) GetNumberingStats(tenantID uint) (*NumberingStats, error) {
	var s NumberingStats
	if err := r.db.Model(&entity.Order{}).
		Where("tenant_id = ?", tenantID).
		Count(&s.TotalOrders).Error; err != nil {
		return nil, err
	}
	if s.TotalOrders == 0 {
		return &s, nil
	}
	var last entity.Order
	if err := r.db.Where("tenant_id = ?", tenantID).
		Order("id DESC").Select("order_code").First(&last).Error; err != nil {
		return nil, err
	}
	s.LastOrderCode = last.OrderCode
	var first entity.Order
	if err := r.db.Where("tenant_id = ?", tenantID).
		Order("created_at ASC").Select("created_at").First(&first).Error; err != nil {
		return nil, err
	}
	s.FirstOrderDate = &first.CreatedAt
	return &s, nil
}

// DashboardStats holds today's grouped order counts and delivered revenue.
type DashboardStats struct {
	TotalOrders int64           `json:"total_orders"`
	Delivered   int64           `json:"delivered"`
	Cancelled   int64           `json:"cancelled"`
	Postponed   int64           `json:"postponed"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// GetDashboardStats aggregates today's orders for a tenant.
func (r *OrderRepository) GetDashboardStats(tenantID uint, day time.Time) (*DashboardStats, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	base := func() *gorm.DB {
		return r.db.Model(&entity.Order{}).
			Where("tenant_id = ? AND created_at >= ? AND created_at < ?", tenantID, start, end)
	}

	var s DashboardStats
	if err := base().Count(&s.TotalOrders).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", entity.StatusDelivered).Count(&s.Delivered).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", entity.StatusCancelled).Count(&s.Cancelled).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", entity.StatusPostponed).Count(&s.Postponed).Error; err != nil {
		return nil, err
	}

	var revenue decimal.NullDecimal
	err := base().Where("status = ?", entity.StatusDelivered).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&revenue).Error
	if err != nil {
		return nil, err
	}
	if revenue.Valid {
		s.Revenue = revenue.Decimal
	}
	return &s, nil
}

// DayStat is one day of the weekly series.
type DayStat struct {
	Day     string          `json:"day"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// GetWeeklyStats returns per-day order counts and delivered revenue for the
// 7 days ending at day (inclusive).
func (r *OrderRepository) GetWeeklyStats(tenantID uint, day time.Time) ([]DayStat, error) {
	out := make([]DayStat, 0, 7)
	for i := 6; i >= 0; i-- {
		d := day.AddDate(0, 0, -i)
		stats, err := r.GetDashboardStats(tenantID, d)
		if err != nil {
			return nil, err
		}
		out = append(out, DayStat{
			Day:     d.Format("2006-01-02"),
			Orders:  stats.TotalOrders,
			Revenue: stats.Revenue,
		})
	}
	return out, nil
}
