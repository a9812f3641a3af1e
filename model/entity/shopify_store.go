package entity

import "time"

// ShopifyStore holds one tenant's Shopify credentials plus the sync cursor.
// LastSync is advanced only after a sync pass reconciled at least one order.
type ShopifyStore struct {
	ID          uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TenantID    uint       `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	ShopName    string     `gorm:"column:shop_name;type:varchar(255);not null" json:"shop_name"`
	APIKey      string     `gorm:"column:api_key;type:varchar(128)" json:"api_key"`
	AccessToken string     `gorm:"column:access_token;type:varchar(128);not null" json:"-"`
	IsActive    bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	ConnectedAt time.Time  `gorm:"column:connected_at;autoCreateTime" json:"connected_at"`
	LastSync    *time.Time `gorm:"column:last_sync" json:"last_sync,omitempty"`
}

func (ShopifyStore) TableName() string {
	return "shopify_stores"
}
