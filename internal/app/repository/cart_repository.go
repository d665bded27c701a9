package repository

import (
	"github.com/ikkim/shopfront-backend/internal/app/model"
	"github.com/ikkim/shopfront-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	// WithTx returns a repository bound to tx.
	WithTx(tx *gorm.DB) CartRepository
	EnsureForUser(userID uint) error
	FindByUserID(userID uint) (*model.Cart, error)
	LockByUserID(userID uint) (*model.Cart, error)
	FindItems(cartID uint) ([]model.CartItem, error)
	FindItemByProduct(cartID, productID uint) (*model.CartItem, error)
	CreateItem(item *model.CartItem) error
	UpdateItemQuantity(item *model.CartItem) error
	DeleteItemsByProduct(cartID, productID uint) (int64, error)
	DeleteItems(cartID uint) error
	BumpVersion(cart *model.Cart) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepository{db: tx}
}

// EnsureForUser creates the user's cart unless one already exists. The
// unique index on carts.user_id makes concurrent calls converge on one row.
func (r *cartRepository) EnsureForUser(userID uint) error {
	cart := &model.Cart{UserID: userID}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(cart).Error
	if err != nil {
		logger.Error("Failed to ensure cart in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) FindByUserID(userID uint) (*model.Cart, error) {
	logger.Debug("Finding cart by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var cart model.Cart
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("cart_items.id ASC")
	}).Where("user_id = ?", userID).First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// LockByUserID loads the cart row with FOR UPDATE so mutations for one user
// queue behind each other. Items are not loaded.
func (r *cartRepository) LockByUserID(userID uint) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) FindItems(cartID uint) ([]model.CartItem, error) {
	items := []model.CartItem{}
	if err := r.db.Where("cart_id = ?", cartID).Order("id ASC").Find(&items).Error; err != nil {
		logger.Error("Failed to find cart items in database", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return nil, err
	}
	return items, nil
}

func (r *cartRepository) FindItemByProduct(cartID, productID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).
		Order("id ASC").
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) CreateItem(item *model.CartItem) error {
	logger.Debug("Creating cart item in database", map[string]interface{}{
		"cart_id":    item.CartID,
		"product_id": item.ProductID,
		"quantity":   item.Quantity,
		"price":      item.Price,
	})

	if err := r.db.Create(item).Error; err != nil {
		logger.Error("Failed to create cart item in database", err, map[string]interface{}{
			"cart_id":    item.CartID,
			"product_id": item.ProductID,
		})
		return err
	}
	return nil
}

// UpdateItemQuantity writes only the quantity; the captured price stays.
func (r *cartRepository) UpdateItemQuantity(item *model.CartItem) error {
	logger.Debug("Updating cart item quantity in database", map[string]interface{}{
		"cart_item_id": item.ID,
		"quantity":     item.Quantity,
	})

	err := r.db.Model(item).Update("quantity", item.Quantity).Error
	if err != nil {
		logger.Error("Failed to update cart item in database", err, map[string]interface{}{
			"cart_item_id": item.ID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) DeleteItemsByProduct(cartID, productID uint) (int64, error) {
	logger.Debug("Deleting cart items by product from database", map[string]interface{}{
		"cart_id":    cartID,
		"product_id": productID,
	})

	result := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).Delete(&model.CartItem{})
	if result.Error != nil {
		logger.Error("Failed to delete cart items from database", result.Error, map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *cartRepository) DeleteItems(cartID uint) error {
	logger.Debug("Clearing cart items in database", map[string]interface{}{
		"cart_id": cartID,
	})

	if err := r.db.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
		logger.Error("Failed to clear cart items in database", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) BumpVersion(cart *model.Cart) error {
	err := r.db.Model(cart).Update("version", gorm.Expr("version + 1")).Error
	if err != nil {
		return err
	}
	cart.Version++
	return nil
}
