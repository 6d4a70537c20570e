package service

import (
	"errors"

	"go-smartretail-api/internal/model"
	"go-smartretail-api/internal/repository"
	"go-smartretail-api/pkg/validator"

	"gorm.io/gorm"
)

type CategoryService interface {
	CreateCategory(userID uint, req *CategoryRequest) (*model.Category, error)
	UpdateCategory(userID, id uint, req *CategoryRequest) (*model.Category, error)
	DeleteCategory(userID, id uint) error
	GetCategories(userID uint) ([]model.Category, error)
	GetCategory(userID, id uint) (*model.Category, error)
	GetCategoryProducts(userID, id uint, page, perPage int) ([]model.Product, int64, error)
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	ParentID    *uint  `json:"parent_id"`
	ImageURL    string `json:"image_url"`
	IsActive    *bool  `json:"is_active"`
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

func NewCategoryService(cRepo repository.CategoryRepository, pRepo repository.ProductRepository) CategoryService {
	return &categoryService{
		categoryRepo: cRepo,
		productRepo:  pRepo,
	}
}

func (s *categoryService) CreateCategory(userID uint, req *CategoryRequest) (*model.Category, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, firstValidationError(errs)
	}

	existing, _ := s.categoryRepo.FindByName(userID, req.Name)
	if existing != nil && existing.CategoryID != 0 {
		return nil, ErrCategoryExists
	}

	category := &model.Category{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) UpdateCategory(userID, id uint, req *CategoryRequest) (*model.Category, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, firstValidationError(errs)
	}

	category, err := s.categoryRepo.FindByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &CategoryNotFoundError{CategoryID: id}
		}
		return nil, err
	}

	if req.Name != category.Name {
		existing, _ := s.categoryRepo.FindByName(userID, req.Name)
		if existing != nil && existing.CategoryID != 0 {
			return nil, ErrCategoryExists
		}
	}

	category.Name = req.Name
	category.Description = req.Description
	category.ParentID = req.ParentID
	category.ImageURL = req.ImageURL
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.categoryRepo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category that no live product references
func (s *categoryService) DeleteCategory(userID, id uint) error {
	category, err := s.categoryRepo.FindByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CategoryNotFoundError{CategoryID: id}
		}
		return err
	}

	count, err := s.categoryRepo.CountProducts(category.CategoryID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	return s.categoryRepo.Delete(userID, id)
}

func (s *categoryService) GetCategories(userID uint) ([]model.Category, error) {
	return s.categoryRepo.FindAllByUser(userID)
}

func (s *categoryService) GetCategory(userID, id uint) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &CategoryNotFoundError{CategoryID: id}
		}
		return nil, err
	}
	return category, nil
}

func (s *categoryService) GetCategoryProducts(userID, id uint, page, perPage int) ([]model.Product, int64, error) {
	if _, err := s.categoryRepo.FindByID(userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, &CategoryNotFoundError{CategoryID: id}
		}
		return nil, 0, err
	}
	return s.productRepo.FindByCategoryPaged(userID, id, page, perPage)
}
