package repository

import (
	"time"

	"go-smartretail-api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(tx *gorm.DB, trx *model.Transaction) error
	FindAllPaged(userID uint, page, perPage int) ([]model.Transaction, int64, error)
	FindByID(userID uint, id uuid.UUID) (*model.Transaction, error)
	DailySummary(userID uint, day time.Time) (*DailySummary, error)
}

// DailySummary aggregates one day's completed sales
type DailySummary struct {
	Date               string          `json:"date"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	TotalTransactions  int64           `json:"total_transactions"`
	AverageTransaction decimal.Decimal `json:"average_transaction"`
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

// Create inserts the header and its line items under the caller's transaction
// scope; nothing is visible to other observers until that scope commits.
func (r *transactionRepo) Create(tx *gorm.DB, trx *model.Transaction) error {
	return tx.Create(trx).Error
}

func (r *transactionRepo) FindAllPaged(userID uint, page, perPage int) ([]model.Transaction, int64, error) {
	var transactions []model.Transaction
	var total int64

	q := r.db.Model(&model.Transaction{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Items").
		Order("created_at DESC").
		Limit(perPage).Offset((page - 1) * perPage).
		Find(&transactions).Error
	return transactions, total, err
}

func (r *transactionRepo) FindByID(userID uint, id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.db.Preload("Items").
		First(&transaction, "transaction_id = ? AND user_id = ?", id, userID).Error
	return &transaction, err
}

func (r *transactionRepo) DailySummary(userID uint, day time.Time) (*DailySummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var transactions []model.Transaction
	err := r.db.
		Where("user_id = ? AND status = ? AND created_at >= ? AND created_at < ?",
			userID, model.TxStatusCompleted, start, end).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	summary := &DailySummary{
		Date:               start.Format("2006-01-02"),
		TotalRevenue:       decimal.Zero,
		TotalTransactions:  int64(len(transactions)),
		AverageTransaction: decimal.Zero,
	}
	for _, t := range transactions {
		summary.TotalRevenue = summary.TotalRevenue.Add(t.TotalPrice)
	}
	if summary.TotalTransactions > 0 {
		summary.AverageTransaction = summary.TotalRevenue.
			DivRound(decimal.NewFromInt(summary.TotalTransactions), 2)
	}
	return summary, nil
}
