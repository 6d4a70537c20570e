package repository

import (
	"errors"
	"fmt"
	"testing"

	"go-smartretail-api/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.ApiKey{},
		&model.Category{},
		&model.Product{},
		&model.Transaction{},
		&model.TransactionItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "x",
		StoreName:    username + " store",
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, userID uint, name string, stock int) *model.Product {
	t.Helper()
	product := &model.Product{
		UserID:            userID,
		Name:              name,
		Price:             decimal.RequireFromString("9.99"),
		Stock:             stock,
		LowStockThreshold: 10,
		IsSynced:          true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func TestDeductStockGuard(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "repo1")
	product := seedProduct(t, db, user.UserID, "Guarded", 5)
	repo := NewProductRepo(db)

	ok, err := repo.DeductStock(db, product.ProductID, user.UserID, 3)
	if err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if !ok {
		t.Fatal("expected deduction to apply")
	}

	var after model.Product
	db.First(&after, product.ProductID)
	if after.Stock != 2 {
		t.Fatalf("stock = %d, want 2", after.Stock)
	}
	if after.IsSynced {
		t.Fatal("deduction must clear is_synced")
	}

	// Guard trips: only 2 left, asking for 3
	ok, err = repo.DeductStock(db, product.ProductID, user.UserID, 3)
	if err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if ok {
		t.Fatal("expected guard to reject over-deduction")
	}
	db.First(&after, product.ProductID)
	if after.Stock != 2 {
		t.Fatalf("stock = %d after rejected deduction, want 2", after.Stock)
	}
}

func TestDeductStockScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "repo2a")
	other := seedUser(t, db, "repo2b")
	product := seedProduct(t, db, owner.UserID, "Mine", 5)
	repo := NewProductRepo(db)

	ok, err := repo.DeductStock(db, product.ProductID, other.UserID, 1)
	if err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if ok {
		t.Fatal("another merchant must not be able to deduct stock")
	}
}

func TestFindForSaleHidesDeleted(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "repo3")
	product := seedProduct(t, db, user.UserID, "Hidden", 5)
	repo := NewProductRepo(db)

	if err := repo.SoftDelete(user.UserID, product.ProductID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	if _, err := repo.FindForSale(db, product.ProductID, user.UserID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestSoftDeleteMissingProduct(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "repo4")
	repo := NewProductRepo(db)

	if err := repo.SoftDelete(user.UserID, 12345); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestSoftDeleteHidesFromReads(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "repo5")
	kept := seedProduct(t, db, user.UserID, "Kept", 5)
	gone := seedProduct(t, db, user.UserID, "Gone", 5)
	repo := NewProductRepo(db)

	if err := repo.SoftDelete(user.UserID, gone.ProductID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	products, total, err := repo.FindAllPaged(user.UserID, 1, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(products) != 1 || products[0].ProductID != kept.ProductID {
		t.Fatalf("list = %d rows total %d, want only the kept product", len(products), total)
	}

	if _, err := repo.FindByID(user.UserID, gone.ProductID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestSearchMatchesNameAndSKU(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "repo6")
	repo := NewProductRepo(db)

	sku := "CB-001"
	coffee := &model.Product{
		UserID: user.UserID,
		Name:   "Coffee Beans",
		SKU:    &sku,
		Price:  decimal.RequireFromString("25.00"),
		Stock:  10,
	}
	if err := db.Create(coffee).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	seedProduct(t, db, user.UserID, "Tea Leaves", 10)

	byName, total, err := repo.Search(user.UserID, "coffee", 1, 20)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 1 || len(byName) != 1 || byName[0].Name != "Coffee Beans" {
		t.Fatalf("search by name returned %d rows", len(byName))
	}

	bySKU, total, err := repo.Search(user.UserID, "cb-0", 1, 20)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 1 || len(bySKU) != 1 {
		t.Fatalf("search by sku returned %d rows", len(bySKU))
	}
}

func TestSearchScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "repo7a")
	other := seedUser(t, db, "repo7b")
	seedProduct(t, db, owner.UserID, "Coffee Beans", 10)
	repo := NewProductRepo(db)

	results, total, err := repo.Search(other.UserID, "coffee", 1, 20)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 0 || len(results) != 0 {
		t.Fatalf("search leaked %d rows across merchants", len(results))
	}
}

func TestFindLowStock(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "repo8")
	low := seedProduct(t, db, user.UserID, "Running Out", 5) // threshold 10
	seedProduct(t, db, user.UserID, "Plenty", 50)
	repo := NewProductRepo(db)

	products, err := repo.FindLowStock(user.UserID)
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(products) != 1 || products[0].ProductID != low.ProductID {
		t.Fatalf("low stock returned %d rows", len(products))
	}
}

func TestUpdateStockMarksUnsynced(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "repo9")
	product := seedProduct(t, db, user.UserID, "Adjusted", 5)
	repo := NewProductRepo(db)

	if err := repo.UpdateStock(db, user.UserID, product.ProductID, 42); err != nil {
		t.Fatalf("update stock: %v", err)
	}

	var after model.Product
	db.First(&after, product.ProductID)
	if after.Stock != 42 {
		t.Fatalf("stock = %d, want 42", after.Stock)
	}
	if after.IsSynced {
		t.Fatal("stock adjustment must clear is_synced")
	}
}
