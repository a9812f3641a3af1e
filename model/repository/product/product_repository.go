package product

import (
	"errors"

	"gorm.io/gorm"

	entity "orderdesk/model/entity"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindAll returns a tenant's products, newest first.
func (r *ProductRepository) FindAll(tenantID uint) ([]entity.Product, error) {
	var list []entity.Product
	err := r.db.Where("tenant_id = ?", tenantID).Order("created_at DESC").Find(&list).Error
	return list, err
}

// FindByID returns one product scoped to its tenant, (nil, nil) when absent.
func (r *ProductRepository) FindByID(id, tenantID uint) (*entity.Product, error) {
	var p entity.Product
	err := r.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a product.
func (r *ProductRepository) Create(p *entity.Product) error {
	return r.db.Create(p).Error
}

// Update saves mutable fields on an existing product. Returns false when no
// row matched (absent or foreign tenant).
func (r *ProductRepository) Update(p *entity.Product) (bool, error) {
	res := r.db.Model(&entity.Product{}).
		Where("id = ? AND tenant_id = ?", p.ID, p.TenantID).
		Updates(map[string]any{
			"name":        p.Name,
			"description": p.Description,
			"price":       p.Price,
			"stock":       p.Stock,
			"image_url":   p.ImageURL,
		})
	return res.RowsAffected > 0, res.Error
}

// Delete removes a tenant's product. Returns false when no row matched.
func (r *ProductRepository) Delete(id, tenantID uint) (bool, error) {
	res := r.db.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&entity.Product{})
	return res.RowsAffected > 0, res.Error
}

// DecrementStock subtracts qty from a product's stock. Blind subtraction:
// there is no floor check, concurrent orders can drive stock negative.
// Runs against whatever db handle is passed so order creation can call it
// inside its transaction.
func DecrementStock(db *gorm.DB, productID uint, qty int) error {
	return db.Model(&entity.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock - ?", qty)).Error
}
