package service

import (
	"errors"
	"time"

	"go-smartretail-api/internal/model"
	"go-smartretail-api/internal/repository"
	"go-smartretail-api/internal/ws"
	"go-smartretail-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	CreateSale(userID uint, req *CreateSaleRequest) (*model.Transaction, error)
	GetTransactions(userID uint, page, perPage int) ([]model.Transaction, int64, error)
	GetTransaction(userID uint, id uuid.UUID) (*model.Transaction, error)
	GetDailySummary(userID uint) (*repository.DailySummary, error)
}

// SaleItem is one requested line: which product and how many units
type SaleItem struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

type CreateSaleRequest struct {
	Items         []SaleItem `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string     `json:"payment_method" validate:"omitempty,oneof=cash card e-wallet bank_transfer other"`
	Notes         string     `json:"notes"`
}

type saleService struct {
	productRepo     repository.ProductRepository
	transactionRepo repository.TransactionRepository
	db              *gorm.DB
	hub             *ws.Hub
}

func NewSaleService(pRepo repository.ProductRepository, tRepo repository.TransactionRepository, db *gorm.DB, hub *ws.Hub) SaleService {
	return &saleService{
		productRepo:     pRepo,
		transactionRepo: tRepo,
		db:              db,
		hub:             hub,
	}
}

// CreateSale records one sale: every stock check, deduction and ledger insert
// runs inside a single database transaction, so a failure on any line leaves
// no trace of the earlier ones. Items are processed in submitted order; a
// request listing the same product twice sees its own earlier deduction
// because every read runs on the same transaction connection.
//
// The workflow is not idempotent: re-submitting an identical request after a
// successful commit records a second sale and a second deduction.
func (s *saleService) CreateSale(userID uint, req *CreateSaleRequest) (*model.Transaction, error) {
	// Rejected before any store access
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, firstValidationError(errs)
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = model.PaymentCash
	}

	type stockChange struct {
		ProductID uint `json:"product_id"`
		NewStock  int  `json:"new_stock"`
	}

	var created *model.Transaction
	var changes []stockChange

	err := s.db.Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		items := make([]model.TransactionItem, 0, len(req.Items))
		changes = make([]stockChange, 0, len(req.Items))

		for _, line := range req.Items {
			product, err := s.productRepo.FindForSale(tx, line.ProductID, userID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &ProductNotFoundError{ProductID: line.ProductID}
				}
				return err
			}

			if product.Stock < line.Quantity {
				return &InsufficientStockError{
					ProductID:   product.ProductID,
					ProductName: product.Name,
					Available:   product.Stock,
					Requested:   line.Quantity,
				}
			}

			ok, err := s.productRepo.DeductStock(tx, product.ProductID, userID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				// A concurrent sale consumed the stock between our read and
				// the guarded decrement; re-read under this scope for the
				// fresh available count.
				fresh, ferr := s.productRepo.FindForSale(tx, line.ProductID, userID)
				if ferr != nil {
					return &ProductNotFoundError{ProductID: line.ProductID}
				}
				return &InsufficientStockError{
					ProductID:   fresh.ProductID,
					ProductName: fresh.Name,
					Available:   fresh.Stock,
					Requested:   line.Quantity,
				}
			}

			// Snapshot name and unit price at sale time
			subtotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(subtotal)

			productID := product.ProductID
			items = append(items, model.TransactionItem{
				ProductID:   &productID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   product.Price,
				Subtotal:    subtotal,
			})
			changes = append(changes, stockChange{
				ProductID: product.ProductID,
				NewStock:  product.Stock - line.Quantity,
			})
		}

		trx := &model.Transaction{
			UserID:        userID,
			TotalPrice:    total,
			PaymentMethod: paymentMethod,
			Status:        model.TxStatusCompleted,
			SyncStatus:    model.SyncPending,
			Notes:         req.Notes,
			Items:         items,
		}
		if err := s.transactionRepo.Create(tx, trx); err != nil {
			return err
		}

		created = trx
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Broadcast only after commit so consumers never see a rolled-back sale
	if s.hub != nil {
		go s.hub.BroadcastEvent("sale_completed", map[string]interface{}{
			"transaction_id": created.TransactionID,
			"user_id":        userID,
			"total_price":    created.TotalPrice,
			"stock_changes":  changes,
		})
	}

	return created, nil
}

func (s *saleService) GetTransactions(userID uint, page, perPage int) ([]model.Transaction, int64, error) {
	return s.transactionRepo.FindAllPaged(userID, page, perPage)
}

func (s *saleService) GetTransaction(userID uint, id uuid.UUID) (*model.Transaction, error) {
	trx, err := s.transactionRepo.FindByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &TransactionNotFoundError{TransactionID: id.String()}
		}
		return nil, err
	}
	return trx, nil
}

func (s *saleService) GetDailySummary(userID uint) (*repository.DailySummary, error) {
	return s.transactionRepo.DailySummary(userID, time.Now())
}
