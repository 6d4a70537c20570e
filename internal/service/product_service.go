package service

import (
	"errors"

	"go-smartretail-api/internal/model"
	"go-smartretail-api/internal/repository"
	"go-smartretail-api/internal/ws"
	"go-smartretail-api/pkg/validator"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductService interface {
	CreateProduct(userID uint, req *CreateProductRequest) (*model.Product, error)
	UpdateProduct(userID, id uint, req *UpdateProductRequest) (*model.Product, error)
	UpdateStockLevel(userID, id uint, stock int) (*model.Product, error)
	DeleteProduct(userID, id uint) error
	GetProducts(userID uint, page, perPage int) ([]model.Product, int64, error)
	GetProduct(userID, id uint) (*model.Product, error)
	SearchProducts(userID uint, query string, page, perPage int) ([]model.Product, int64, error)
	GetLowStock(userID uint) ([]model.Product, error)
}

type CreateProductRequest struct {
	SKU               *string         `json:"sku"`
	Name              string          `json:"name" validate:"required"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	Stock             int             `json:"stock" validate:"gte=0"`
	LowStockThreshold *int            `json:"low_stock_threshold" validate:"omitempty,gte=0"`
	CategoryID        *uint           `json:"category_id"`
	ImageURL          string          `json:"image_url"`
}

// UpdateProductRequest carries only the fields the caller wants to change
type UpdateProductRequest struct {
	SKU               *string          `json:"sku"`
	Name              *string          `json:"name"`
	Description       *string          `json:"description"`
	Price             *decimal.Decimal `json:"price"`
	Stock             *int             `json:"stock" validate:"omitempty,gte=0"`
	LowStockThreshold *int             `json:"low_stock_threshold" validate:"omitempty,gte=0"`
	CategoryID        *uint            `json:"category_id"`
	ImageURL          *string          `json:"image_url"`
}

type productService struct {
	productRepo repository.ProductRepository
	db          *gorm.DB
	hub         *ws.Hub
}

func NewProductService(pRepo repository.ProductRepository, db *gorm.DB, hub *ws.Hub) ProductService {
	return &productService{
		productRepo: pRepo,
		db:          db,
		hub:         hub,
	}
}

func (s *productService) CreateProduct(userID uint, req *CreateProductRequest) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, firstValidationError(errs)
	}
	if req.Price.IsNegative() {
		return nil, &ValidationError{Field: "Price", Tag: "gte"}
	}

	// Per-store SKU uniqueness
	if req.SKU != nil && *req.SKU != "" {
		existing, _ := s.productRepo.FindBySKU(userID, *req.SKU)
		if existing != nil && existing.ProductID != 0 {
			return nil, ErrSKUExists
		}
	}

	threshold := 10
	if req.LowStockThreshold != nil {
		threshold = *req.LowStockThreshold
	}

	product := &model.Product{
		UserID:            userID,
		CategoryID:        req.CategoryID,
		SKU:               req.SKU,
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		Stock:             req.Stock,
		LowStockThreshold: threshold,
		ImageURL:          req.ImageURL,
		IsSynced:          true,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	if s.hub != nil {
		go s.hub.BroadcastEvent("product_created", map[string]interface{}{
			"product_id": product.ProductID,
			"user_id":    userID,
			"name":       product.Name,
			"stock":      product.Stock,
			"price":      product.Price,
		})
	}

	return product, nil
}

func (s *productService) UpdateProduct(userID, id uint, req *UpdateProductRequest) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, firstValidationError(errs)
	}
	if req.Price != nil && req.Price.IsNegative() {
		return nil, &ValidationError{Field: "Price", Tag: "gte"}
	}

	product, err := s.productRepo.FindByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ProductNotFoundError{ProductID: id}
		}
		return nil, err
	}

	if req.SKU != nil {
		product.SKU = req.SKU
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.LowStockThreshold != nil {
		product.LowStockThreshold = *req.LowStockThreshold
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	// Any edit makes the external copy stale
	product.IsSynced = false

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	if s.hub != nil {
		go s.hub.BroadcastEvent("product_updated", map[string]interface{}{
			"product_id": product.ProductID,
			"user_id":    userID,
			"name":       product.Name,
			"stock":      product.Stock,
			"price":      product.Price,
		})
	}

	return product, nil
}

// UpdateStockLevel sets an absolute stock count (manual recount, not a sale)
func (s *productService) UpdateStockLevel(userID, id uint, stock int) (*model.Product, error) {
	if stock < 0 {
		return nil, &ValidationError{Field: "Stock", Tag: "gte"}
	}

	product, err := s.productRepo.FindByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ProductNotFoundError{ProductID: id}
		}
		return nil, err
	}

	if err := s.productRepo.UpdateStock(s.db, userID, id, stock); err != nil {
		return nil, err
	}
	product.Stock = stock
	product.IsSynced = false

	if s.hub != nil {
		go s.hub.BroadcastEvent("stock_adjusted", map[string]interface{}{
			"product_id": product.ProductID,
			"user_id":    userID,
			"new_stock":  stock,
		})
	}

	return product, nil
}

func (s *productService) DeleteProduct(userID, id uint) error {
	if err := s.productRepo.SoftDelete(userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ProductNotFoundError{ProductID: id}
		}
		return err
	}

	if s.hub != nil {
		go s.hub.BroadcastEvent("product_deleted", map[string]interface{}{
			"product_id": id,
			"user_id":    userID,
		})
	}
	return nil
}

func (s *productService) GetProducts(userID uint, page, perPage int) ([]model.Product, int64, error) {
	return s.productRepo.FindAllPaged(userID, page, perPage)
}

func (s *productService) GetProduct(userID, id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ProductNotFoundError{ProductID: id}
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) SearchProducts(userID uint, query string, page, perPage int) ([]model.Product, int64, error) {
	return s.productRepo.Search(userID, query, page, perPage)
}

func (s *productService) GetLowStock(userID uint) ([]model.Product, error) {
	return s.productRepo.FindLowStock(userID)
}
