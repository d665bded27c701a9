package service

import (
	"errors"
	"fmt"

	"github.com/ikkim/shopfront-backend/internal/app/model"
	"github.com/ikkim/shopfront-backend/internal/app/repository"
	apperrors "github.com/ikkim/shopfront-backend/internal/errors"
	"github.com/ikkim/shopfront-backend/internal/metrics"
	"github.com/ikkim/shopfront-backend/pkg/logger"
	"gorm.io/gorm"
)

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity = 9999

type CartService interface {
	GetCart(userID uint) (*model.Cart, error)
	AddItem(userID, productID uint, quantity int) (*model.Cart, error)
	RemoveItem(userID, productID uint) (*model.Cart, error)
	Clear(userID uint) (*model.Cart, error)
}

var errLineQuantityTooLarge = apperrors.Validation(apperrors.ValidationInvalidInput, "Invalid cart item",
	apperrors.Field("quantity", fmt.Sprintf("must not bring the line above %d", MaxLineQuantity)))

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	db          *gorm.DB
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	db *gorm.DB,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		db:          db,
	}
}

// GetCart returns the user's cart, creating an empty one on first access.
func (s *cartService) GetCart(userID uint) (*model.Cart, error) {
	logger.Debug("Fetching user cart", map[string]interface{}{
		"user_id": userID,
	})

	if err := s.cartRepo.EnsureForUser(userID); err != nil {
		return nil, apperrors.ParseDBError(err, "cart")
	}

	cart, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, apperrors.ParseDBError(err, "cart")
	}
	return withTotal(cart), nil
}

// AddItem captures the product's current price times quantity on a new line,
// or adds quantity to the existing line for the product without touching
// the price captured when that line was created.
func (s *cartService) AddItem(userID, productID uint, quantity int) (*model.Cart, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	if quantity < 1 {
		return nil, apperrors.Validation(apperrors.ValidationInvalidInput, "Invalid cart item",
			apperrors.Field("quantity", "must be at least 1"))
	}
	if quantity > MaxLineQuantity {
		return nil, errLineQuantityTooLarge
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: product not found", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, apperrors.ParseDBError(err, "product")
	}
	linePrice := model.LinePrice(product.Price, quantity)

	cart, err := s.mutate(userID, "add", func(repo repository.CartRepository, cart *model.Cart) (bool, error) {
		existing, err := repo.FindItemByProduct(cart.ID, productID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, err
		}

		if existing != nil {
			if existing.Quantity > MaxLineQuantity-quantity {
				return false, errLineQuantityTooLarge
			}
			logger.Debug("Increasing quantity of existing cart line", map[string]interface{}{
				"cart_item_id": existing.ID,
				"old_qty":      existing.Quantity,
				"new_qty":      existing.Quantity + quantity,
			})
			existing.Quantity += quantity
			return true, repo.UpdateItemQuantity(existing)
		}

		return true, repo.CreateItem(&model.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
			Price:     linePrice,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Cart item added successfully", map[string]interface{}{
		"user_id":     userID,
		"product_id":  productID,
		"total_price": cart.TotalPrice,
	})
	return cart, nil
}

// RemoveItem drops every line for productID. A product that is not in the
// cart leaves it untouched.
func (s *cartService) RemoveItem(userID, productID uint) (*model.Cart, error) {
	logger.Info("Removing item from cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	return s.mutate(userID, "remove", func(repo repository.CartRepository, cart *model.Cart) (bool, error) {
		removed, err := repo.DeleteItemsByProduct(cart.ID, productID)
		return removed > 0, err
	})
}

func (s *cartService) Clear(userID uint) (*model.Cart, error) {
	logger.Info("Clearing cart", map[string]interface{}{
		"user_id": userID,
	})

	return s.mutate(userID, "clear", func(repo repository.CartRepository, cart *model.Cart) (bool, error) {
		return true, repo.DeleteItems(cart.ID)
	})
}

// mutate runs fn inside a transaction holding the row lock on the user's
// cart, so concurrent mutations for one user apply one after the other.
// The version is bumped whenever fn reports a change.
func (s *cartService) mutate(
	userID uint,
	op string,
	fn func(repo repository.CartRepository, cart *model.Cart) (bool, error),
) (*model.Cart, error) {
	var result *model.Cart

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)

		if err := repo.EnsureForUser(userID); err != nil {
			return err
		}
		cart, err := repo.LockByUserID(userID)
		if err != nil {
			return err
		}

		changed, err := fn(repo, cart)
		if err != nil {
			return err
		}
		if changed {
			if err := repo.BumpVersion(cart); err != nil {
				return err
			}
		}

		items, err := repo.FindItems(cart.ID)
		if err != nil {
			return err
		}
		cart.Items = items
		result = withTotal(cart)
		return nil
	})
	if err != nil {
		if appErr, ok := apperrors.As(err); ok && appErr.Kind == apperrors.KindValidation {
			return nil, appErr
		}
		logger.Error("Cart mutation failed", err, map[string]interface{}{
			"user_id": userID,
			"op":      op,
		})
		return nil, apperrors.ParseDBError(err, "cart")
	}

	metrics.CartMutationsTotal.WithLabelValues(op).Inc()
	return result, nil
}

func withTotal(cart *model.Cart) *model.Cart {
	if cart.Items == nil {
		cart.Items = []model.CartItem{}
	}
	cart.TotalPrice = cart.SumItems()
	return cart
}
