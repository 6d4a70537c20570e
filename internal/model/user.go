package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role codes as constants
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
	RoleOwner = "owner"
)

// bcrypt cost used for merchant passwords
const PasswordHashCost = 12

// User represents a merchant account that owns products, categories and transactions
type User struct {
	UserID       uint      `gorm:"primaryKey" json:"user_id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Username     string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"username" validate:"required,min=3,max=100"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	StoreName    string    `gorm:"type:varchar(255);not null" json:"store_name" validate:"required"`
	Role         string    `gorm:"type:varchar(50);default:'admin'" json:"role" validate:"omitempty,oneof=admin staff owner"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	UserID    uint      `json:"user_id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	StoreName string    `json:"store_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		UserID:    u.UserID,
		Email:     u.Email,
		Username:  u.Username,
		StoreName: u.StoreName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}
