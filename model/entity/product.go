package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a tenant-owned inventory record. Stock is mutated only as a
// side effect of order creation and may go negative (no floor check).
type Product struct {
	ID          uint            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TenantID    uint            `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	Name        string          `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description string          `gorm:"column:description;type:text" json:"description"`
	Price       decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	Stock       int             `gorm:"column:stock;not null;default:0" json:"stock"`
	ImageURL    string          `gorm:"column:image_url;type:varchar(500)" json:"image_url"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}
