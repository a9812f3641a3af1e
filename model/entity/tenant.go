package entity

import "time"

// Tenant is an account owning its own products, orders and Shopify stores.
// order_count/max_orders and the license fields drive the entitlement gate.
type Tenant struct {
	ID            uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Email         string     `gorm:"column:email;type:varchar(255);not null;uniqueIndex" json:"email"`
	Phone         string     `gorm:"column:phone;type:varchar(50)" json:"phone"`
	APIToken      string     `gorm:"column:api_token;type:varchar(64);not null;uniqueIndex" json:"-"`
	TrialUsed     bool       `gorm:"column:trial_used;not null;default:false" json:"trial_used"`
	OrderCount    int        `gorm:"column:order_count;not null;default:0" json:"order_count"`
	MaxOrders     int        `gorm:"column:max_orders;not null;default:10" json:"max_orders"`
	LicenseKey    *string    `gorm:"column:license_key;type:varchar(64)" json:"license_key,omitempty"`
	LicenseExpiry *time.Time `gorm:"column:license_expiry" json:"license_expiry,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Tenant) TableName() string {
	return "tenants"
}

// HasValidLicense reports whether the tenant holds a non-expired license key.
func (t *Tenant) HasValidLicense(now time.Time) bool {
	return t.LicenseKey != nil && *t.LicenseKey != "" &&
		t.LicenseExpiry != nil && t.LicenseExpiry.After(now)
}
