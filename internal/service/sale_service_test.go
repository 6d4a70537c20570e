package service

import (
	"fmt"
	"testing"

	"go-smartretail-api/internal/model"
	"go-smartretail-api/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func seedProduct(t *testing.T, db *gorm.DB, userID uint, name, price string, stock int) *model.Product {
	t.Helper()
	product := &model.Product{
		UserID:            userID,
		Name:              name,
		Price:             decimal.RequireFromString(price),
		Stock:             stock,
		LowStockThreshold: 3,
		IsSynced:          true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func newSaleService(db *gorm.DB) SaleService {
	return NewSaleService(repository.NewProductRepo(db), repository.NewTransactionRepo(db), db, nil)
}

func reloadProduct(t *testing.T, db *gorm.DB, id uint) *model.Product {
	t.Helper()
	var product model.Product
	if err := db.First(&product, "product_id = ?", id).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	return &product
}

func countRows(t *testing.T, db *gorm.DB, m interface{}) int64 {
	t.Helper()
	var count int64
	if err := db.Model(m).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return count
}

func TestCreateSaleDeductsStockAndComputesTotal(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "merchant1")
	product := seedProduct(t, db, user.UserID, "Coffee Beans", "25.00", 10)
	svc := newSaleService(db)

	trx, err := svc.CreateSale(user.UserID, &CreateSaleRequest{
		Items: []SaleItem{{ProductID: product.ProductID, Quantity: 4}},
	})
	require.NoError(t, err)
	require.NotNil(t, trx)

	assert.Equal(t, model.TxStatusCompleted, trx.Status)
	assert.Equal(t, model.SyncPending, trx.SyncStatus)
	assert.True(t, trx.TotalPrice.Equal(decimal.RequireFromString("100.00")),
		"total = %s", trx.TotalPrice)

	require.Len(t, trx.Items, 1)
	item := trx.Items[0]
	assert.Equal(t, "Coffee Beans", item.ProductName)
	assert.Equal(t, 4, item.Quantity)
	assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("25.00")))
	assert.True(t, item.Subtotal.Equal(decimal.RequireFromString("100.00")))

	after := reloadProduct(t, db, product.ProductID)
	assert.Equal(t, 6, after.Stock)
	assert.False(t, after.IsSynced, "deduction must mark the product stale for sync")
}

func TestCreateSaleMultipleItemsTotal(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "merchant2")
	p1 := seedProduct(t, db, user.UserID, "Espresso Cup", "19.99", 10)
	p2 := seedProduct(t, db, user.UserID, "Filter Paper", "5.50", 10)
	svc := newSaleService(db)

	trx, err := svc.CreateSale(user.UserID, &CreateSaleRequest{
		Items: []SaleItem{
			{ProductID: p1.ProductID, Quantity: 2},
			{ProductID: p2.ProductID, Quantity: 3},
		},
		PaymentMethod: model.PaymentCard,
	})
	require.NoError(t, err)

	// 2*19.99 + 3*5.50 = 56.48
	assert.True(t, trx.TotalPrice.Equal(decimal.RequireFromString("56.48")),
		"total = %s", trx.TotalPrice)
	assert.Equal(t, model.PaymentCard, trx.PaymentMethod)
	require.Len(t, trx.Items, 2)

	var sum decimal.Decimal
	for _, item := range trx.Items {
		assert.True(t, item.Subtotal.Equal(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))))
		sum = sum.Add(item.Subtotal)
	}
	assert.True(t, trx.TotalPrice.Equal(sum), "header total must equal sum of line subtotals")
}

func TestCreateSaleInsufficientStock(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "merchant3")
	product := seedProduct(t, db, user.UserID, "Rare Item", "10.00", 2)
	svc := newSaleService(db)

	_, err := svc.CreateSale(user.UserID, &CreateSaleRequest{
		Items: []SaleItem{{ProductID: product.ProductID, Quantity: 5}},
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, product.ProductID, stockErr.ProductID)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 5, stockErr.Requested)

	after := reloadProduct(t, db, product.ProductID)
	assert.Equal(t, 2, after.Stock)
	assert.True(t, after.IsSynced, "failed sale must not mark the product stale")
	assert.EqualValues(t, 0, countRows(t, db, &model.Transaction{}))
	assert.EqualValues(t, 0, countRows(t, db, &model.TransactionItem{}))
}

func TestCreateSaleUnknownProduct(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "merchant4")
	svc := newSaleService(db)

	_, err := svc.CreateSale(user.UserID, &CreateSaleRequest{
		Items: []SaleItem{{ProductID: 9999, Quantity: 1}},
	})

	var nfErr *ProductNotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.EqualValues(t, 9999, nfErr.ProductID)
}

func TestCreateSaleProductOwnedByOtherUser(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "owner5")
	intruder := seedUser(t, db, "intruder5")
	product := seedProduct(t, db, owner.UserID, "Private Stock", "10.00", 10)
	svc := newSaleService(db)

	_, err := svc.CreateSale(intruder.UserID, &CreateSaleRequest{
		Items: []SaleItem{{ProductID: product.ProductID, Quantity: 1}},
	})

	var nfErr *ProductNotFoundError
	require.ErrorAs(t, err, &nfErr)

	after := reloadProduct(t, db, product.ProductID)
	assert.Equal(t, 10, after.Stock)
	assert.EqualValues(t, 0, countRows(t, db, &model.Transaction{}))
}

func TestCreateSaleSoftDeletedProduct(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "merchant6")
	product := seedProduct(t, db, user.UserID, "Gone", "10.00", 10)
	require.NoError(t, db.Model(product).Update("is_deleted", true).Error)
	svc := newSaleService(db)

	_, err := svc.CreateSale(user.UserID, &CreateSaleRequest{
		Items: []SaleItem{{ProductID: product.ProductID, Quantity: 1}},
	})

	var nfErr *ProductNotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestCreateSaleEmptyItems(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "merchant7")
	svc := newSaleService(db)

	for _, req := range []*CreateSaleRequest{
		{Items: []SaleItem{}},
		{Items: nil},
	} {
		_, err := svc.CreateSale(user.UserID, req)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
	}
	assert.EqualValues(t, 0, countRows(t, db, &model.Transaction{}))
}

func TestCreateSaleNonPositiveQuantity(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "merchant8")
	product := seedProduct(t, db, user.UserID, "Widget", "1.00", 10)
	svc := newSaleService(db)

	for _, qty := range []int{0, -3} {
		_, err := svc.CreateSale(user.UserID, &CreateSaleRequest{
			Items: []SaleItem{{ProductID: product.ProductID, Quantity: qty}},
		})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr, "quantity %d must be rejected", qty)
	}

	after := reloadProduct(t, db, product.ProductID)
	assert.Equal(t, 10, after.Stock)
}

func TestCreateSaleInvalidPaymentMethod(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "merchant9")
	product := seedProduct(t, db, user.UserID, "Widget", "1.00", 10)
	svc := newSaleService(db)

	_, err := svc.CreateSale(user.UserID, &CreateSaleRequest{
		Items:         []SaleItem{{ProductID: product.ProductID, Quantity: 1}},
		PaymentMethod: "bitcoin",
	})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestCreateSaleDefaultsPaymentMethod(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "merchant10")
	product := seedProduct(t, db, user.UserID, "Widget", "1.00", 10)
	svc := newSaleService(db)

	trx, err := svc.CreateSale(user.UserID, &CreateSaleRequest{
		Items: []SaleItem{{ProductID: product.ProductID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCash, trx.PaymentMethod)
}

// A single request listing the same product twice must evaluate later lines
// against the already-decremented stock, not the original value.
func TestCreateSaleSameProductTwiceOversell(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "merchant11")
	product := seedProduct(t, db, user.UserID, "Scarce", "10.00", 5)
	svc := newSaleService(db)

	_, err := svc.CreateSale(user.UserID, &CreateSaleRequest{
		Items: []SaleItem{
			{ProductID: product.ProductID, Quantity: 3},
			{ProductID: product.ProductID, Quantity: 3},
		},
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available, "second line must see the first line's deduction")
	assert.Equal(t, 3, stockErr.Requested)

	after := reloadProduct(t, db, product.ProductID)
	assert.Equal(t, 5, after.Stock, "rollback must restore the first line's deduction")
	assert.EqualValues(t, 0, countRows(t, db, &model.Transaction{}))
	assert.EqualValues(t, 0, countRows(t, db, &model.TransactionItem{}))
}

func TestCreateSaleSameProductTwiceWithinStock(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "merchant12")
	product := seedProduct(t, db, user.UserID, "Scarce", "10.00", 5)
	svc := newSaleService(db)

	trx, err := svc.CreateSale(user.UserID, &CreateSaleRequest{
		Items: []SaleItem{
			{ProductID: product.ProductID, Quantity: 2},
			{ProductID: product.ProductID, Quantity: 3},
		},
	})
	require.NoError(t, err)
	assert.True(t, trx.TotalPrice.Equal(decimal.RequireFromString("50.00")))
	require.Len(t, trx.Items, 2)

	after := reloadProduct(t, db, product.ProductID)
	assert.Equal(t, 0, after.Stock)
}

// Failure on a later line must leave earlier lines' deductions rolled back.
func TestCreateSaleAtomicRollbackAcrossProducts(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "merchant13")
	p1 := seedProduct(t, db, user.UserID, "Plenty", "2.00", 10)
	p2 := seedProduct(t, db, user.UserID, "Scarce", "3.00", 1)
	svc := newSaleService(db)

	_, err := svc.CreateSale(user.UserID, &CreateSaleRequest{
		Items: []SaleItem{
			{ProductID: p1.ProductID, Quantity: 2},
			{ProductID: p2.ProductID, Quantity: 5},
		},
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, p2.ProductID, stockErr.ProductID)

	after1 := reloadProduct(t, db, p1.ProductID)
	assert.Equal(t, 10, after1.Stock)
	assert.True(t, after1.IsSynced, "rolled-back deduction must not leave a stale-sync mark")
	after2 := reloadProduct(t, db, p2.ProductID)
	assert.Equal(t, 1, after2.Stock)
	assert.EqualValues(t, 0, countRows(t, db, &model.Transaction{}))
	assert.EqualValues(t, 0, countRows(t, db, &model.TransactionItem{}))
}

// Two sales of the last units: exactly one succeeds, the loser sees the
// committed deduction as insufficient stock.
func TestCreateSaleLastUnitsContention(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "merchant14")
	product := seedProduct(t, db, user.UserID, "Last Units", "7.00", 4)
	svc := newSaleService(db)

	_, err := svc.CreateSale(user.UserID, &CreateSaleRequest{
		Items: []SaleItem{{ProductID: product.ProductID, Quantity: 4}},
	})
	require.NoError(t, err)

	_, err = svc.CreateSale(user.UserID, &CreateSaleRequest{
		Items: []SaleItem{{ProductID: product.ProductID, Quantity: 4}},
	})
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 0, stockErr.Available)
	assert.Equal(t, 4, stockErr.Requested)

	after := reloadProduct(t, db, product.ProductID)
	assert.Equal(t, 0, after.Stock)
	assert.EqualValues(t, 1, countRows(t, db, &model.Transaction{}))
}

// Line items snapshot name and unit price; later product edits must not
// rewrite historical sales.
func TestCreateSaleSnapshotSurvivesProductEdits(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "merchant15")
	product := seedProduct(t, db, user.UserID, "Original Name", "10.00", 10)
	svc := newSaleService(db)

	trx, err := svc.CreateSale(user.UserID, &CreateSaleRequest{
		Items: []SaleItem{{ProductID: product.ProductID, Quantity: 2}},
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(product).Updates(map[string]interface{}{
		"name":  "Renamed",
		"price": decimal.RequireFromString("99.99"),
	}).Error)

	fetched, err := svc.GetTransaction(user.UserID, trx.TransactionID)
	require.NoError(t, err)
	require.Len(t, fetched.Items, 1)
	assert.Equal(t, "Original Name", fetched.Items[0].ProductName)
	assert.True(t, fetched.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, fetched.TotalPrice.Equal(decimal.RequireFromString("20.00")))
}

func TestGetTransactionScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "owner16")
	other := seedUser(t, db, "other16")
	product := seedProduct(t, db, owner.UserID, "Widget", "1.00", 10)
	svc := newSaleService(db)

	trx, err := svc.CreateSale(owner.UserID, &CreateSaleRequest{
		Items: []SaleItem{{ProductID: product.ProductID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.GetTransaction(other.UserID, trx.TransactionID)
	var nfErr *TransactionNotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestGetTransactionsPagination(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "merchant17")
	product := seedProduct(t, db, user.UserID, "Widget", "1.00", 100)
	svc := newSaleService(db)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateSale(user.UserID, &CreateSaleRequest{
			Items: []SaleItem{{ProductID: product.ProductID, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	page, total, err := svc.GetTransactions(user.UserID, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page, 2)

	rest, _, err := svc.GetTransactions(user.UserID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestDailySummary(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "merchant18")
	product := seedProduct(t, db, user.UserID, "Widget", "12.50", 100)
	svc := newSaleService(db)

	for i := 0; i < 2; i++ {
		_, err := svc.CreateSale(user.UserID, &CreateSaleRequest{
			Items: []SaleItem{{ProductID: product.ProductID, Quantity: 2}},
		})
		require.NoError(t, err)
	}

	summary, err := svc.GetDailySummary(user.UserID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.TotalTransactions)
	assert.True(t, summary.TotalRevenue.Equal(decimal.RequireFromString("50.00")),
		"revenue = %s", summary.TotalRevenue)
	assert.True(t, summary.AverageTransaction.Equal(decimal.RequireFromString("25.00")))
}
