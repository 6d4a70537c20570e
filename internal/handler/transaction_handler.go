package handler

import (
	"go-smartretail-api/internal/service"
	"go-smartretail-api/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TransactionHandler struct {
	service service.SaleService
}

func NewTransactionHandler(s service.SaleService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

// List returns the merchant's transactions with their items, paginated
// GET /api/v1/transactions
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	page, perPage := pagination(c)
	transactions, total, err := h.service.GetTransactions(getUserID(c), page, perPage)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(response.Paginated(transactions, page, perPage, total))
}

// DailySummary aggregates today's completed sales
// GET /api/v1/transactions/daily-summary
func (h *TransactionHandler) DailySummary(c *fiber.Ctx) error {
	summary, err := h.service.GetDailySummary(getUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(response.Success(summary))
}

// Get returns one transaction with its line items
// GET /api/v1/transactions/:id
func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(response.Error("VALIDATION_ERROR", "Invalid transaction ID", nil))
	}

	trx, err := h.service.GetTransaction(getUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(response.Success(trx))
}

// Create records a sale: stock checks, deductions and the ledger insert
// happen atomically, so a failing line leaves inventory untouched
// POST /api/v1/transactions
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var req service.CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(response.Error("VALIDATION_ERROR", "Invalid JSON", nil))
	}

	trx, err := h.service.CreateSale(getUserID(c), &req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(201).JSON(response.Success(trx))
}
