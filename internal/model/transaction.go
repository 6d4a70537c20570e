package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment methods accepted on a sale
const (
	PaymentCash         = "cash"
	PaymentCard         = "card"
	PaymentEWallet      = "e-wallet"
	PaymentBankTransfer = "bank_transfer"
	PaymentOther        = "other"
)

// Transaction lifecycle states
const (
	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusCancelled = "cancelled"
	TxStatusRefunded  = "refunded"
)

// External sync states for a committed transaction
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncFailed  = "failed"
)

// Transaction is one completed sale: a header plus at least one line item,
// created atomically with its stock deductions.
type Transaction struct {
	TransactionID uuid.UUID         `gorm:"type:uuid;primaryKey" json:"transaction_id"`
	UserID        uint              `gorm:"not null;index" json:"user_id"`
	TotalPrice    decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"total_price"`
	PaymentMethod string            `gorm:"type:varchar(50)" json:"payment_method" validate:"omitempty,oneof=cash card e-wallet bank_transfer other"`
	Status        string            `gorm:"type:varchar(50);default:'completed';index" json:"status" validate:"omitempty,oneof=pending completed cancelled refunded"`
	SyncStatus    string            `gorm:"type:varchar(50);default:'pending';index" json:"sync_status" validate:"omitempty,oneof=pending synced failed"`
	Notes         string            `gorm:"type:text" json:"notes,omitempty"`
	Items         []TransactionItem `gorm:"foreignKey:TransactionID;references:TransactionID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt     time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// Hook Before Create to generate the transaction UUID
func (t *Transaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.TransactionID == uuid.Nil {
		t.TransactionID = uuid.New()
	}
	return
}

// TransactionItem is one immutable line of a sale. ProductName and UnitPrice
// are snapshots taken at sale time and never track later product edits;
// ProductID is nullable so the line survives product deletion.
type TransactionItem struct {
	ItemID        uint            `gorm:"primaryKey" json:"item_id"`
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"transaction_id"`
	ProductID     *uint           `gorm:"index" json:"product_id,omitempty"`
	ProductName   string          `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity      int             `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"unit_price"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"subtotal"`
}

func (TransactionItem) TableName() string {
	return "transaction_items"
}
