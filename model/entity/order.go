package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Order source tags.
const (
	SourceManual  = "manual"
	SourceShopify = "shopify"
)

// Statuses a Shopify financial status maps onto. Manual orders additionally
// use dashboard lifecycle statuses (dashboard, livree, annulee, reportee).
const (
	StatusDashboard         = "dashboard"
	StatusPending           = "en_attente"
	StatusAuthorized        = "autorisé"
	StatusPartiallyPaid     = "partiellement_payé"
	StatusPaid              = "payé"
	StatusPartiallyRefunded = "partiellement_remboursé"
	StatusRefunded          = "remboursé"
	StatusVoided            = "annulé"
	StatusDelivered         = "livree"
	StatusCancelled         = "annulee"
	StatusPostponed         = "reportee"
)

// Order is a tenant-scoped order. OrderCode is the durable human-facing
// identifier (USR{tenant}-CMD{seq}); once assigned it never changes.
// ShopifyOrderID is the reconciliation key for external orders and is
// globally unique when present.
type Order struct {
	ID             uint            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TenantID       *uint           `gorm:"column:tenant_id;index;uniqueIndex:ux_orders_tenant_code" json:"tenant_id,omitempty"`
	OrderCode      string          `gorm:"column:order_code;type:varchar(64);not null;uniqueIndex:ux_orders_tenant_code" json:"order_code"`
	ClientName     string          `gorm:"column:client_name;type:varchar(255)" json:"client_name"`
	ClientPhone    string          `gorm:"column:client_phone;type:varchar(50)" json:"client_phone"`
	ClientAddress  string          `gorm:"column:client_address;type:text" json:"client_address"`
	Status         string          `gorm:"column:status;type:varchar(32);not null;default:'dashboard'" json:"status"`
	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:decimal(10,2);not null" json:"total_amount"`
	Notes          string          `gorm:"column:notes;type:text" json:"notes"`
	Source         string          `gorm:"column:source;type:varchar(16);not null;default:'manual'" json:"source"`
	ShopifyOrderID *string         `gorm:"column:shopify_order_id;type:varchar(32);uniqueIndex" json:"shopify_order_id,omitempty"`
	ShopifyStoreID *uint           `gorm:"column:shopify_store_id;index" json:"shopify_store_id,omitempty"`
	ProductsJSON   datatypes.JSON  `gorm:"column:products_snapshot" json:"products_snapshot,omitempty"`
	ShopifyData    datatypes.JSON  `gorm:"column:shopify_data" json:"shopify_data,omitempty"`
	OrderDate      *time.Time      `gorm:"column:order_date" json:"order_date,omitempty"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is owned by exactly one order. ProductID is nullable: Shopify
// line items may reference products that do not exist locally. Name and
// unit price are snapshots taken at creation time.
type OrderItem struct {
	ID          uint            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID     uint            `gorm:"column:order_id;not null;index" json:"order_id"`
	ProductID   *uint           `gorm:"column:product_id;index" json:"product_id,omitempty"`
	ProductName string          `gorm:"column:product_name;type:varchar(255);not null" json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:decimal(10,2);not null" json:"unit_price"`
	Quantity    int             `gorm:"column:quantity;not null" json:"quantity"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	// Hydrated from products on read, never persisted here.
	ImageURL string `gorm:"-" json:"image_url,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
