package repository

import (
	"testing"

	"github.com/ikkim/shopfront-backend/internal/app/model"
	"github.com/ikkim/shopfront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartTest(t *testing.T) (*gorm.DB, CartRepository, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	user := &model.User{Email: "cart@example.com", PasswordHash: "hash", Role: model.RoleCustomer}
	require.NoError(t, testDB.Create(user).Error)

	category := &model.Category{Name: "Hardware"}
	require.NoError(t, testDB.Create(category).Error)

	product := &model.Product{Name: "Widget", Description: "A widget", Price: 10, Stock: 5, CategoryID: category.ID}
	require.NoError(t, testDB.Create(product).Error)

	return testDB, NewCartRepository(testDB), user, product
}

func TestCartRepository_EnsureForUserIsIdempotent(t *testing.T) {
	testDB, repo, user, _ := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.EnsureForUser(user.ID))
	require.NoError(t, repo.EnsureForUser(user.ID))

	var count int64
	require.NoError(t, testDB.Model(&model.Cart{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	cart, err := repo.FindByUserID(user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0, cart.Version)
}

func TestCartRepository_ItemLifecycle(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.EnsureForUser(user.ID))
	cart, err := repo.LockByUserID(user.ID)
	require.NoError(t, err)

	item := &model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 2, Price: 20}
	require.NoError(t, repo.CreateItem(item))

	found, err := repo.FindItemByProduct(cart.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, found.ID)

	found.Quantity = 5
	found.Price = 999
	require.NoError(t, repo.UpdateItemQuantity(found))

	items, err := repo.FindItems(cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 20.0, items[0].Price)

	removed, err := repo.DeleteItemsByProduct(cart.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	removed, err = repo.DeleteItemsByProduct(cart.ID, product.ID)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestCartRepository_BumpVersionAndClear(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.EnsureForUser(user.ID))

	err := testDB.Transaction(func(tx *gorm.DB) error {
		txRepo := repo.WithTx(tx)
		cart, err := txRepo.LockByUserID(user.ID)
		if err != nil {
			return err
		}
		if err := txRepo.CreateItem(&model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 1, Price: 10}); err != nil {
			return err
		}
		return txRepo.BumpVersion(cart)
	})
	require.NoError(t, err)

	cart, err := repo.FindByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Version)
	assert.Len(t, cart.Items, 1)

	require.NoError(t, repo.DeleteItems(cart.ID))
	cart, err = repo.FindByUserID(user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartRepository_FindByUserIDMissing(t *testing.T) {
	testDB, repo, _, _ := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	_, err := repo.FindByUserID(42)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
