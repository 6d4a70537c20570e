package model

import "time"

// Category groups a merchant's products; name is unique per merchant
type Category struct {
	CategoryID  uint      `gorm:"primaryKey" json:"category_id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_user_category_name" json:"user_id"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_user_category_name" json:"name" validate:"required,max=100"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	ParentID    *uint     `gorm:"index" json:"parent_id,omitempty"`
	Parent      *Category `gorm:"foreignKey:ParentID;constraint:OnDelete:SET NULL" json:"parent,omitempty"`
	ImageURL    string    `gorm:"type:varchar(500)" json:"image_url,omitempty"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}
