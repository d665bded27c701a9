package service

import (
	"sync"
	"testing"

	"github.com/ikkim/shopfront-backend/internal/app/model"
	"github.com/ikkim/shopfront-backend/internal/app/repository"
	"github.com/ikkim/shopfront-backend/internal/db"
	apperrors "github.com/ikkim/shopfront-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartServiceTest(t *testing.T) (CartService, *model.User, *model.Product, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	user := &model.User{Email: "cart@example.com", PasswordHash: "hash", Role: model.RoleCustomer}
	require.NoError(t, testDB.Create(user).Error)

	category := &model.Category{Name: "Electronics"}
	require.NoError(t, testDB.Create(category).Error)

	product := &model.Product{Name: "Widget", Description: "A widget", Price: 10, Stock: 5, CategoryID: category.ID}
	require.NoError(t, testDB.Create(product).Error)

	svc := NewCartService(
		repository.NewCartRepository(testDB),
		repository.NewProductRepository(testDB),
		testDB,
	)
	return svc, user, product, testDB
}

func TestCartService_GetCartIsIdempotent(t *testing.T) {
	svc, user, _, _ := setupCartServiceTest(t)

	first, err := svc.GetCart(user.ID)
	require.NoError(t, err)
	second, err := svc.GetCart(user.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Version, second.Version)
	assert.Equal(t, first.Items, second.Items)
	assert.NotNil(t, first.Items)
	assert.Equal(t, 0.0, first.TotalPrice)
}

func TestCartService_AddItemCapturesPrice(t *testing.T) {
	svc, user, product, testDB := setupCartServiceTest(t)

	cart, err := svc.AddItem(user.ID, product.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 20.0, cart.Items[0].Price)
	assert.Equal(t, 20.0, cart.TotalPrice)

	require.NoError(t, testDB.Model(product).Update("price", 15).Error)

	cart, err = svc.GetCart(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, cart.TotalPrice)

	// Re-adding only grows quantity; the captured price stays.
	cart, err = svc.AddItem(user.ID, product.ID, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 20.0, cart.Items[0].Price)
	assert.Equal(t, 20.0, cart.TotalPrice)
	assert.Equal(t, 2, cart.Version)
}

func TestCartService_AddItemLinePriceIsExact(t *testing.T) {
	svc, user, product, testDB := setupCartServiceTest(t)
	require.NoError(t, testDB.Model(product).Update("price", 0.33).Error)

	cart, err := svc.AddItem(user.ID, product.ID, 3)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 0.99, cart.Items[0].Price)
	assert.Equal(t, 0.99, cart.TotalPrice)
}

func TestCartService_AddItemQuantityCeiling(t *testing.T) {
	svc, user, product, _ := setupCartServiceTest(t)

	_, err := svc.AddItem(user.ID, product.ID, MaxLineQuantity+1)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	cart, err := svc.AddItem(user.ID, product.ID, MaxLineQuantity-1)
	require.NoError(t, err)
	assert.Equal(t, MaxLineQuantity-1, cart.Items[0].Quantity)

	_, err = svc.AddItem(user.ID, product.ID, 2)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Equal(t, "quantity", appErr.Fields[0].Field)

	cart, err = svc.AddItem(user.ID, product.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, MaxLineQuantity, cart.Items[0].Quantity)
	assert.Equal(t, 2, cart.Version)
}

func TestCartService_AddItemErrors(t *testing.T) {
	svc, user, product, _ := setupCartServiceTest(t)

	_, err := svc.AddItem(user.ID, 999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.AddItem(user.ID, product.ID, 0)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Equal(t, "quantity", appErr.Fields[0].Field)

	cart, err := svc.GetCart(user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartService_RemoveItem(t *testing.T) {
	svc, user, product, testDB := setupCartServiceTest(t)

	other := &model.Product{Name: "Gadget", Description: "A gadget", Price: 5, CategoryID: product.CategoryID}
	require.NoError(t, testDB.Create(other).Error)

	_, err := svc.AddItem(user.ID, product.ID, 2)
	require.NoError(t, err)
	before, err := svc.AddItem(user.ID, other.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 25.0, before.TotalPrice)

	t.Run("Missing product is a no-op", func(t *testing.T) {
		cart, err := svc.RemoveItem(user.ID, 12345)
		require.NoError(t, err)
		assert.Equal(t, 25.0, cart.TotalPrice)
		assert.Equal(t, before.Version, cart.Version)
	})

	t.Run("Existing product", func(t *testing.T) {
		cart, err := svc.RemoveItem(user.ID, product.ID)
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, other.ID, cart.Items[0].ProductID)
		assert.Equal(t, 5.0, cart.TotalPrice)
	})
}

func TestCartService_Clear(t *testing.T) {
	svc, user, product, _ := setupCartServiceTest(t)

	_, err := svc.AddItem(user.ID, product.ID, 4)
	require.NoError(t, err)

	cart, err := svc.Clear(user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.TotalPrice)
}

func TestCartService_ConcurrentAddsAreNotLost(t *testing.T) {
	svc, user, product, _ := setupCartServiceTest(t)

	const adds = 10
	var wg sync.WaitGroup
	errs := make(chan error, adds)
	for i := 0; i < adds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(user.ID, product.ID, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	cart, err := svc.GetCart(user.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, adds, cart.Items[0].Quantity)
	assert.Equal(t, 10.0, cart.Items[0].Price)
	assert.Equal(t, adds, cart.Version)
}
