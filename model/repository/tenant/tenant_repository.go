package tenant

import (
	"errors"
	"time"

	"gorm.io/gorm"

	entity "orderdesk/model/entity"
)

type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// FindByID returns a tenant, (nil, nil) when absent.
func (r *TenantRepository) FindByID(id uint) (*entity.Tenant, error) {
	var t entity.Tenant
	err := r.db.First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindByToken resolves a tenant from its API token, (nil, nil) when absent.
func (r *TenantRepository) FindByToken(token string) (*entity.Tenant, error) {
	var t entity.Tenant
	err := r.db.First(&t, "api_token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CanCreateOrder is the entitlement gate: a valid license always allows
// creation, otherwise the trial counter applies. Unknown tenants may not
// create orders.
func (r *TenantRepository) CanCreateOrder(id uint) (bool, error) {
	t, err := r.FindByID(id)
	if err != nil {
		return false, err
	}
	if t == nil {
		return false, nil
	}
	if t.HasValidLicense(time.Now()) {
		return true, nil
	}
	return t.OrderCount < t.MaxOrders, nil
}

// IncrementOrderCount bumps the usage counter by one. Called exactly once
// per committed order, inside the order-creation transaction.
func IncrementOrderCount(db *gorm.DB, id uint) error {
	return db.Model(&entity.Tenant{}).
		Where("id = ?", id).
		Update("order_count", gorm.Expr("order_count + 1")).Error
}

// ActivateLicense stores a license key and expiry and lifts the trial cap.
func (r *TenantRepository) ActivateLicense(id uint, key string, expiry time.Time) error {
	return r.db.Model(&entity.Tenant{}).Where("id = ?", id).Updates(map[string]any{
		"license_key":    key,
		"license_expiry": expiry,
		"max_orders":     100000,
	}).Error
}
