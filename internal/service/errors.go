package service

import (
	"errors"
	"fmt"

	"go-smartretail-api/pkg/validator"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDeactivated = errors.New("account has been deactivated")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrEmailExists        = errors.New("email already exists")
	ErrUsernameExists     = errors.New("username already exists")
	ErrSKUExists          = errors.New("SKU already exists for this store")
	ErrCategoryExists     = errors.New("category name already exists")
	ErrCategoryInUse      = errors.New("category still has products assigned")
	ErrInvalidRefresh     = errors.New("invalid or expired refresh token")
	ErrKeyNotFound        = errors.New("API key not found")
	ErrKeyInvalid         = errors.New("invalid API key")
	ErrKeyExpired         = errors.New("API key has expired")
)

// ValidationError reports a rejected request before any store access
type ValidationError struct {
	Field string
	Tag   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: field '%s' failed on tag '%s'", e.Field, e.Tag)
}

// firstValidationError converts validator output into a typed error
func firstValidationError(errs []*validator.ErrorResponse) error {
	first := errs[0]
	return &ValidationError{Field: first.FailedField, Tag: first.Tag}
}

// ProductNotFoundError identifies the offending product id when a sale or
// product operation references an unknown, foreign or soft-deleted product
type ProductNotFoundError struct {
	ProductID uint
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InsufficientStockError carries available vs requested quantities so the
// caller can make a precise retry decision
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s. Available: %d, Requested: %d",
		e.ProductName, e.Available, e.Requested)
}

// CategoryNotFoundError identifies a missing or foreign category
type CategoryNotFoundError struct {
	CategoryID uint
}

func (e *CategoryNotFoundError) Error() string {
	return fmt.Sprintf("category %d not found", e.CategoryID)
}

// TransactionNotFoundError identifies a missing or foreign transaction
type TransactionNotFoundError struct {
	TransactionID string
}

func (e *TransactionNotFoundError) Error() string {
	return fmt.Sprintf("transaction %s not found", e.TransactionID)
}
