package model

import (
	"time"

	"gorm.io/datatypes"
)

// ApiKey grants programmatic access to the data routes on behalf of its owner
type ApiKey struct {
	KeyID       uint           `gorm:"primaryKey" json:"key_id"`
	UserID      uint           `gorm:"index;not null" json:"user_id"`
	User        *User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	APIKey      string         `gorm:"column:api_key;type:varchar(255);uniqueIndex;not null" json:"api_key"`
	KeyName     string         `gorm:"type:varchar(100)" json:"key_name"`
	Permissions datatypes.JSON `gorm:"type:json" json:"permissions,omitempty"`
	LastUsedAt  *time.Time     `json:"last_used_at,omitempty"`
	ExpiresAt   *time.Time     `json:"expires_at,omitempty"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (ApiKey) TableName() string {
	return "api_keys"
}

// IsExpired reports whether the key has passed its expiry, if one is set
func (k *ApiKey) IsExpired() bool {
	return k.ExpiresAt != nil && k.ExpiresAt.Before(time.Now())
}
