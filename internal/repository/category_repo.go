package repository

import (
	"go-smartretail-api/internal/model"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(category *model.Category) error
	FindAllByUser(userID uint) ([]model.Category, error)
	FindByID(userID, id uint) (*model.Category, error)
	FindByName(userID uint, name string) (*model.Category, error)
	Update(category *model.Category) error
	Delete(userID, id uint) error
	CountProducts(categoryID uint) (int64, error)
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db}
}

func (r *categoryRepo) Create(category *model.Category) error {
	return r.db.Create(category).Error
}

func (r *categoryRepo) FindAllByUser(userID uint) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.Where("user_id = ?", userID).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) FindByID(userID, id uint) (*model.Category, error) {
	var category model.Category
	err := r.db.First(&category, "category_id = ? AND user_id = ?", id, userID).Error
	return &category, err
}

func (r *categoryRepo) FindByName(userID uint, name string) (*model.Category, error) {
	var category model.Category
	err := r.db.First(&category, "user_id = ? AND name = ?", userID, name).Error
	return &category, err
}

func (r *categoryRepo) Update(category *model.Category) error {
	return r.db.Save(category).Error
}

func (r *categoryRepo) Delete(userID, id uint) error {
	res := r.db.Delete(&model.Category{}, "category_id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountProducts counts live products still referencing the category
func (r *categoryRepo) CountProducts(categoryID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).
		Where("category_id = ? AND is_deleted = ?", categoryID, false).
		Count(&count).Error
	return count, err
}
