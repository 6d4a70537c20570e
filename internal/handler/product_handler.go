package handler

import (
	"go-smartretail-api/internal/service"
	"go-smartretail-api/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	service service.ProductService
}

func NewProductHandler(s service.ProductService) *ProductHandler {
	return &ProductHandler{service: s}
}

// List returns the merchant's products, paginated
// GET /api/v1/products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	page, perPage := pagination(c)
	products, total, err := h.service.GetProducts(getUserID(c), page, perPage)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(response.Paginated(products, page, perPage, total))
}

// Search matches products by name, SKU or description
// GET /api/v1/products/search?q=...
func (h *ProductHandler) Search(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(400).JSON(response.Error("VALIDATION_ERROR", "Search query is required", nil))
	}

	page, perPage := pagination(c)
	products, total, err := h.service.SearchProducts(getUserID(c), query, page, perPage)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(response.Paginated(products, page, perPage, total))
}

// LowStock lists products at or below their low-stock threshold
// GET /api/v1/products/low-stock
func (h *ProductHandler) LowStock(c *fiber.Ctx) error {
	products, err := h.service.GetLowStock(getUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(response.Success(products))
}

// Get returns one product
// GET /api/v1/products/:id
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(response.Error("VALIDATION_ERROR", "Invalid product ID", nil))
	}

	product, err := h.service.GetProduct(getUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(response.Success(product))
}

// Create adds a product to the merchant's catalogue
// POST /api/v1/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(response.Error("VALIDATION_ERROR", "Invalid JSON", nil))
	}

	product, err := h.service.CreateProduct(getUserID(c), &req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(201).JSON(response.Success(product))
}

// Update applies a partial edit and marks the product stale for sync
// PUT /api/v1/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(response.Error("VALIDATION_ERROR", "Invalid product ID", nil))
	}

	var req service.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(response.Error("VALIDATION_ERROR", "Invalid JSON", nil))
	}

	product, err := h.service.UpdateProduct(getUserID(c), id, &req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(response.Success(product))
}

// UpdateStock sets an absolute stock level (manual recount)
// PATCH /api/v1/products/:id/stock
func (h *ProductHandler) UpdateStock(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(response.Error("VALIDATION_ERROR", "Invalid product ID", nil))
	}

	var req struct {
		Stock *int `json:"stock"`
	}
	if err := c.BodyParser(&req); err != nil || req.Stock == nil {
		return c.Status(400).JSON(response.Error("VALIDATION_ERROR", "Stock must be a non-negative integer", nil))
	}

	product, err := h.service.UpdateStockLevel(getUserID(c), id, *req.Stock)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(response.Success(product))
}

// Delete soft-deletes a product; historical sale lines keep their snapshots
// DELETE /api/v1/products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(response.Error("VALIDATION_ERROR", "Invalid product ID", nil))
	}

	if err := h.service.DeleteProduct(getUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(response.Success(fiber.Map{"message": "Product deleted successfully"}))
}
