package handler

import (
	"go-smartretail-api/internal/service"
	"go-smartretail-api/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type CategoryHandler struct {
	service service.CategoryService
}

func NewCategoryHandler(s service.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: s}
}

// GET /api/v1/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	categories, err := h.service.GetCategories(getUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(response.Success(categories))
}

// GET /api/v1/categories/:id
func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(response.Error("VALIDATION_ERROR", "Invalid category ID", nil))
	}

	category, err := h.service.GetCategory(getUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(response.Success(category))
}

// POST /api/v1/categories
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var req service.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(response.Error("VALIDATION_ERROR", "Invalid JSON", nil))
	}

	category, err := h.service.CreateCategory(getUserID(c), &req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(201).JSON(response.Success(category))
}

// PUT /api/v1/categories/:id
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(response.Error("VALIDATION_ERROR", "Invalid category ID", nil))
	}

	var req service.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(response.Error("VALIDATION_ERROR", "Invalid JSON", nil))
	}

	category, err := h.service.UpdateCategory(getUserID(c), id, &req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(response.Success(category))
}

// DELETE /api/v1/categories/:id
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(response.Error("VALIDATION_ERROR", "Invalid category ID", nil))
	}

	if err := h.service.DeleteCategory(getUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(response.Success(fiber.Map{"message": "Category deleted successfully"}))
}

// GET /api/v1/categories/:id/products
func (h *CategoryHandler) Products(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(response.Error("VALIDATION_ERROR", "Invalid category ID", nil))
	}

	page, perPage := pagination(c)
	products, total, err := h.service.GetCategoryProducts(getUserID(c), id, page, perPage)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(response.Paginated(products, page, perPage, total))
}
