package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable item owned by one merchant.
// Rows are never physically removed; IsDeleted hides them from every read path.
type Product struct {
	ProductID         uint            `gorm:"primaryKey" json:"product_id"`
	UserID            uint            `gorm:"not null;index;uniqueIndex:idx_user_sku" json:"user_id"`
	CategoryID        *uint           `gorm:"index" json:"category_id,omitempty"`
	Category          *Category       `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	SKU               *string         `gorm:"type:varchar(100);uniqueIndex:idx_user_sku" json:"sku,omitempty"`
	Name              string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Description       string          `gorm:"type:text" json:"description,omitempty"`
	Price             decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"price"`
	Stock             int             `gorm:"default:0" json:"stock" validate:"gte=0"`
	LowStockThreshold int             `gorm:"default:10" json:"low_stock_threshold" validate:"gte=0"`
	ImageURL          string          `gorm:"type:varchar(500)" json:"image_url,omitempty"`
	IsSynced          bool            `gorm:"default:true" json:"is_synced"`
	IsDeleted         bool            `gorm:"default:false;index" json:"is_deleted"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// IsLowStock reports whether stock has fallen to or below the configured threshold
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}
