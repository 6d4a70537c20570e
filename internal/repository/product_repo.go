package repository

import (
	"go-smartretail-api/internal/model"

	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindAllPaged(userID uint, page, perPage int) ([]model.Product, int64, error)
	FindByCategoryPaged(userID, categoryID uint, page, perPage int) ([]model.Product, int64, error)
	FindByID(userID, id uint) (*model.Product, error)
	FindBySKU(userID uint, sku string) (*model.Product, error)
	Search(userID uint, query string, page, perPage int) ([]model.Product, int64, error)
	FindLowStock(userID uint) ([]model.Product, error)
	Update(product *model.Product) error
	UpdateStock(tx *gorm.DB, userID, id uint, newStock int) error
	SoftDelete(userID, id uint) error

	// Sale workflow contract: both run under the caller's transaction scope.
	FindForSale(tx *gorm.DB, id, userID uint) (*model.Product, error)
	DeductStock(tx *gorm.DB, id, userID uint, quantity int) (bool, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

// visible scopes every read to one merchant and hides soft-deleted rows
func visible(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ? AND is_deleted = ?", userID, false)
	}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindAllPaged(userID uint, page, perPage int) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.Model(&model.Product{}).Scopes(visible(userID))
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Category").
		Order("created_at DESC").
		Limit(perPage).Offset((page - 1) * perPage).
		Find(&products).Error
	return products, total, err
}

func (r *productRepo) FindByCategoryPaged(userID, categoryID uint, page, perPage int) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.Model(&model.Product{}).Scopes(visible(userID)).Where("category_id = ?", categoryID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").
		Limit(perPage).Offset((page - 1) * perPage).
		Find(&products).Error
	return products, total, err
}

func (r *productRepo) FindByID(userID, id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.Scopes(visible(userID)).Preload("Category").First(&product, "product_id = ?", id).Error
	return &product, err
}

func (r *productRepo) FindBySKU(userID uint, sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.Scopes(visible(userID)).First(&product, "sku = ?", sku).Error
	return &product, err
}

// Search matches name, SKU or description case-insensitively
func (r *productRepo) Search(userID uint, query string, page, perPage int) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	pattern := "%" + query + "%"
	q := r.db.Model(&model.Product{}).Scopes(visible(userID)).
		Where("LOWER(name) LIKE LOWER(?) OR LOWER(sku) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)",
			pattern, pattern, pattern)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Category").
		Order("name ASC").
		Limit(perPage).Offset((page - 1) * perPage).
		Find(&products).Error
	return products, total, err
}

func (r *productRepo) FindLowStock(userID uint) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Scopes(visible(userID)).
		Where("stock <= low_stock_threshold").
		Preload("Category").
		Order("stock ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

// UpdateStock sets an absolute stock level and marks the row stale for sync.
// It takes tx so callers can run it inside a transaction.
func (r *productRepo) UpdateStock(tx *gorm.DB, userID, id uint, newStock int) error {
	return tx.Model(&model.Product{}).
		Where("product_id = ? AND user_id = ? AND is_deleted = ?", id, userID, false).
		Updates(map[string]interface{}{
			"stock":     newStock,
			"is_synced": false,
		}).Error
}

func (r *productRepo) SoftDelete(userID, id uint) error {
	res := r.db.Model(&model.Product{}).
		Where("product_id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"is_synced":  false,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindForSale reads a product inside the sale's transaction scope so the
// stock check and price snapshot are consistent with the deduction below.
func (r *productRepo) FindForSale(tx *gorm.DB, id, userID uint) (*model.Product, error) {
	var product model.Product
	err := tx.Scopes(visible(userID)).First(&product, "product_id = ?", id).Error
	return &product, err
}

// DeductStock applies a conditional decrement: the stock >= quantity guard
// closes the window between the in-scope read and the write, so two sales
// racing for the last units serialize on the row and the loser gets false.
// The stale-sync mark rides in the same UPDATE and rolls back with it.
func (r *productRepo) DeductStock(tx *gorm.DB, id, userID uint, quantity int) (bool, error) {
	res := tx.Model(&model.Product{}).
		Where("product_id = ? AND user_id = ? AND is_deleted = ? AND stock >= ?", id, userID, false, quantity).
		Updates(map[string]interface{}{
			"stock":     gorm.Expr("stock - ?", quantity),
			"is_synced": false,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
