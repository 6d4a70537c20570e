package service

import (
	"testing"

	"go-smartretail-api/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCategoryService(db *gorm.DB) CategoryService {
	return NewCategoryService(repository.NewCategoryRepo(db), repository.NewProductRepo(db))
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "catsvc1")
	svc := newCategoryService(db)

	_, err := svc.CreateCategory(user.UserID, &CategoryRequest{Name: "Beverages"})
	require.NoError(t, err)

	_, err = svc.CreateCategory(user.UserID, &CategoryRequest{Name: "Beverages"})
	assert.ErrorIs(t, err, ErrCategoryExists)
}

func TestCategoryNameUniquePerStore(t *testing.T) {
	db := setupTestDB(t)
	a := seedUser(t, db, "catsvc2a")
	b := seedUser(t, db, "catsvc2b")
	svc := newCategoryService(db)

	_, err := svc.CreateCategory(a.UserID, &CategoryRequest{Name: "Beverages"})
	require.NoError(t, err)

	_, err = svc.CreateCategory(b.UserID, &CategoryRequest{Name: "Beverages"})
	assert.NoError(t, err, "same name in another store must be allowed")
}

func TestDeleteCategoryBlockedByLiveProducts(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "catsvc3")
	catSvc := newCategoryService(db)
	prodSvc := newProductService(db)

	category, err := catSvc.CreateCategory(user.UserID, &CategoryRequest{Name: "Snacks"})
	require.NoError(t, err)

	product, err := prodSvc.CreateProduct(user.UserID, &CreateProductRequest{
		Name:       "Chips",
		Price:      decimal.NewFromInt(2),
		CategoryID: &category.CategoryID,
	})
	require.NoError(t, err)

	err = catSvc.DeleteCategory(user.UserID, category.CategoryID)
	assert.ErrorIs(t, err, ErrCategoryInUse)

	// Soft-deleting the product frees the category
	require.NoError(t, prodSvc.DeleteProduct(user.UserID, product.ProductID))
	assert.NoError(t, catSvc.DeleteCategory(user.UserID, category.CategoryID))
}

func TestGetCategoryScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "catsvc4a")
	other := seedUser(t, db, "catsvc4b")
	svc := newCategoryService(db)

	category, err := svc.CreateCategory(owner.UserID, &CategoryRequest{Name: "Private"})
	require.NoError(t, err)

	_, err = svc.GetCategory(other.UserID, category.CategoryID)
	var nfErr *CategoryNotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

func TestGetCategoryProducts(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "catsvc5")
	catSvc := newCategoryService(db)
	prodSvc := newProductService(db)

	category, err := catSvc.CreateCategory(user.UserID, &CategoryRequest{Name: "Dairy"})
	require.NoError(t, err)

	_, err = prodSvc.CreateProduct(user.UserID, &CreateProductRequest{
		Name: "Milk", Price: decimal.NewFromInt(3), CategoryID: &category.CategoryID,
	})
	require.NoError(t, err)
	_, err = prodSvc.CreateProduct(user.UserID, &CreateProductRequest{
		Name: "Uncategorized", Price: decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	products, total, err := catSvc.GetCategoryProducts(user.UserID, category.CategoryID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, "Milk", products[0].Name)

	_, _, err = catSvc.GetCategoryProducts(user.UserID, 9999, 1, 20)
	var nfErr *CategoryNotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

func TestUpdateCategoryRename(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "catsvc6")
	svc := newCategoryService(db)

	category, err := svc.CreateCategory(user.UserID, &CategoryRequest{Name: "Old"})
	require.NoError(t, err)
	taken, err := svc.CreateCategory(user.UserID, &CategoryRequest{Name: "Taken"})
	require.NoError(t, err)
	_ = taken

	updated, err := svc.UpdateCategory(user.UserID, category.CategoryID, &CategoryRequest{Name: "New"})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)

	_, err = svc.UpdateCategory(user.UserID, category.CategoryID, &CategoryRequest{Name: "Taken"})
	assert.ErrorIs(t, err, ErrCategoryExists)
}
