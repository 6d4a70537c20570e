package handler

import (
	"errors"
	"strconv"

	"go-smartretail-api/internal/service"
	"go-smartretail-api/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// getUserID reads the authenticated merchant id set by the auth middleware
func getUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("user_id").(uint); ok {
		return id
	}
	return 0
}

// pagination parses page/per_page query params with defaults and a cap
func pagination(c *fiber.Ctx) (page, perPage int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage = c.QueryInt("per_page", defaultPageSize)
	if perPage < 1 {
		perPage = defaultPageSize
	}
	if perPage > maxPageSize {
		perPage = maxPageSize
	}
	return page, perPage
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Params(name), 10, 32)
	return uint(v), err
}

// respondServiceError translates service errors into the JSON envelope with
// machine-readable codes; unexpected errors become an opaque INTERNAL_ERROR.
func respondServiceError(c *fiber.Ctx, err error) error {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(
			"VALIDATION_ERROR", vErr.Error(),
			fiber.Map{"field": vErr.Field, "tag": vErr.Tag},
		))
	}

	var stockErr *service.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(
			"INSUFFICIENT_STOCK", stockErr.Error(),
			fiber.Map{
				"product_id": stockErr.ProductID,
				"available":  stockErr.Available,
				"requested":  stockErr.Requested,
			},
		))
	}

	var productErr *service.ProductNotFoundError
	if errors.As(err, &productErr) {
		return c.Status(fiber.StatusNotFound).JSON(response.Error(
			"NOT_FOUND", productErr.Error(),
			fiber.Map{"product_id": productErr.ProductID},
		))
	}

	var categoryErr *service.CategoryNotFoundError
	if errors.As(err, &categoryErr) {
		return c.Status(fiber.StatusNotFound).JSON(response.Error("NOT_FOUND", categoryErr.Error(), nil))
	}

	var txErr *service.TransactionNotFoundError
	if errors.As(err, &txErr) {
		return c.Status(fiber.StatusNotFound).JSON(response.Error("NOT_FOUND", txErr.Error(), nil))
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(response.Error("INVALID_CREDENTIALS", err.Error(), nil))
	case errors.Is(err, service.ErrAccountDeactivated):
		return c.Status(fiber.StatusForbidden).JSON(response.Error("FORBIDDEN", err.Error(), nil))
	case errors.Is(err, service.ErrInvalidRefresh):
		return c.Status(fiber.StatusUnauthorized).JSON(response.Error("INVALID_REFRESH_TOKEN", err.Error(), nil))
	case errors.Is(err, service.ErrWrongPassword):
		return c.Status(fiber.StatusBadRequest).JSON(response.Error("INVALID_PASSWORD", err.Error(), nil))
	case errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrUsernameExists),
		errors.Is(err, service.ErrSKUExists),
		errors.Is(err, service.ErrCategoryExists),
		errors.Is(err, service.ErrCategoryInUse):
		return c.Status(fiber.StatusConflict).JSON(response.Error("CONFLICT", err.Error(), nil))
	case errors.Is(err, service.ErrKeyNotFound):
		return c.Status(fiber.StatusNotFound).JSON(response.Error("NOT_FOUND", err.Error(), nil))
	}

	return c.Status(fiber.StatusInternalServerError).JSON(response.Error(
		"INTERNAL_ERROR", "An unexpected error occurred", nil,
	))
}
