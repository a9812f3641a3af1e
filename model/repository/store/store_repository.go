package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	entity "orderdesk/model/entity"
)

type StoreRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

// FindByID returns one store scoped to its tenant, (nil, nil) when absent.
func (r *StoreRepository) FindByID(id, tenantID uint) (*entity.ShopifyStore, error) {
	var s entity.ShopifyStore
	err := r.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByTenant returns all stores a tenant connected, newest first.
func (r *StoreRepository) FindByTenant(tenantID uint) ([]entity.ShopifyStore, error) {
	var list []entity.ShopifyStore
	err := r.db.Where("tenant_id = ?", tenantID).Order("connected_at DESC").Find(&list).Error
	return list, err
}

// FindActive returns every active store across tenants, for the scheduled
// sync pass.
func (r *StoreRepository) FindActive() ([]entity.ShopifyStore, error) {
	var list []entity.ShopifyStore
	err := r.db.Where("is_active = ?", true).Find(&list).Error
	return list, err
}

// Create connects a new store.
func (r *StoreRepository) Create(s *entity.ShopifyStore) error {
	return r.db.Create(s).Error
}

// Delete disconnects a tenant's store. Returns false when no row matched.
func (r *StoreRepository) Delete(id, tenantID uint) (bool, error) {
	res := r.db.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&entity.ShopifyStore{})
	return res.RowsAffected > 0, res.Error
}

// UpdateLastSync advances the sync cursor to now.
func (r *StoreRepository) UpdateLastSync(id, tenantID uint) error {
	return r.db.Model(&entity.ShopifyStore{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Update("last_sync", time.Now()).Error
}
