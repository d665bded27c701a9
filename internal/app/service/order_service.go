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

var (
	ErrOrderNotFound = apperrors.NotFound(apperrors.OrderNotFound, "Order not found")
	ErrEmptyCart     = apperrors.Validation(apperrors.CartEmpty, "Cart is empty")
)

// OrderItemInput is one line of an explicitly placed order. Price is the
// line price the cart captured, not a unit price.
type OrderItemInput struct {
	ProductID uint     `json:"product_id" binding:"required"`
	Quantity  int      `json:"quantity" binding:"required,min=1"`
	Price     *float64 `json:"price" binding:"required,gte=0"`
}

type OrderService interface {
	PlaceOrder(userID uint, items []OrderItemInput, totalPrice float64) (*model.Order, error)
	Checkout(userID uint) (*model.Order, error)
	ListOrders(userID uint) ([]model.Order, error)
	GetOrder(userID, orderID uint) (*model.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	db        *gorm.DB
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	db *gorm.DB,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		db:        db,
	}
}

// PlaceOrder stores items and totalPrice exactly as given. Current product
// prices are never consulted.
func (s *orderService) PlaceOrder(userID uint, items []OrderItemInput, totalPrice float64) (*model.Order, error) {
	logger.Info("Placing order", map[string]interface{}{
		"user_id":     userID,
		"item_count":  len(items),
		"total_price": totalPrice,
	})

	orderItems, err := validateOrderItems(items, totalPrice)
	if err != nil {
		logger.Warn("Order rejected", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil, err
	}

	order := &model.Order{
		UserID:     userID,
		TotalPrice: totalPrice,
		Items:      orderItems,
	}
	if err := s.orderRepo.Create(order); err != nil {
		logger.Error("Failed to create order", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, apperrors.ParseDBError(err, "order")
	}

	s.recordPlaced(order, "request")
	return order, nil
}

func validateOrderItems(items []OrderItemInput, totalPrice float64) ([]model.OrderItem, error) {
	if len(items) == 0 {
		return nil, apperrors.Validation(apperrors.ValidationInvalidInput, "Invalid order",
			apperrors.Field("items", "must contain at least one item"))
	}

	var fields []apperrors.FieldError
	for i := range items {
		if err := validate.Struct(&items[i]); err != nil {
			for _, fe := range apperrors.FromBinding(err).Fields {
				fields = append(fields, apperrors.Field(fmt.Sprintf("items[%d].%s", i, fe.Field), fe.Message))
			}
		}
	}
	for i := range items {
		if items[i].Price != nil && !model.IsWholeCents(*items[i].Price) {
			fields = append(fields, apperrors.Field(fmt.Sprintf("items[%d].price", i), subCentMessage))
		}
	}
	if !model.IsWholeCents(totalPrice) {
		fields = append(fields, apperrors.Field("total_price", subCentMessage))
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation(apperrors.ValidationInvalidInput, "Invalid order", fields...)
	}

	orderItems := make([]model.OrderItem, len(items))
	for i, item := range items {
		orderItems[i] = model.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     *item.Price,
		}
	}

	if sum := model.SumOrderItems(orderItems); sum != totalPrice {
		return nil, apperrors.Validation(apperrors.OrderTotalMismatch, "Order total does not match its items",
			apperrors.Field("total_price", fmt.Sprintf("must equal the sum of item prices (%.2f)", sum)))
	}
	return orderItems, nil
}

// Checkout turns the user's cart into an order and empties the cart, all
// under the cart row lock.
func (s *orderService) Checkout(userID uint) (*model.Order, error) {
	logger.Info("Checking out cart", map[string]interface{}{
		"user_id": userID,
	})

	var order *model.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		carts := s.cartRepo.WithTx(tx)

		if err := carts.EnsureForUser(userID); err != nil {
			return err
		}
		cart, err := carts.LockByUserID(userID)
		if err != nil {
			return err
		}
		lines, err := carts.FindItems(cart.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		items := make([]model.OrderItem, len(lines))
		for i, line := range lines {
			items[i] = model.OrderItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     line.Price,
			}
		}
		order = &model.Order{
			UserID:     userID,
			TotalPrice: model.SumOrderItems(items),
			Items:      items,
		}

		if err := s.orderRepo.WithTx(tx).Create(order); err != nil {
			return err
		}
		if err := carts.DeleteItems(cart.ID); err != nil {
			return err
		}
		return carts.BumpVersion(cart)
	})
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			logger.Warn("Cannot check out: cart is empty", map[string]interface{}{
				"user_id": userID,
			})
			return nil, ErrEmptyCart
		}
		logger.Error("Checkout failed", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, apperrors.ParseDBError(err, "order")
	}

	s.recordPlaced(order, "cart")
	return order, nil
}

func (s *orderService) recordPlaced(order *model.Order, source string) {
	metrics.OrdersPlacedTotal.WithLabelValues(source).Inc()
	metrics.OrderValueTotal.Add(order.TotalPrice)

	logger.Info("Order placed successfully", map[string]interface{}{
		"order_id":    order.ID,
		"user_id":     order.UserID,
		"total_price": order.TotalPrice,
		"source":      source,
	})
}

// ListOrders returns the user's orders, newest first.
func (s *orderService) ListOrders(userID uint) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, apperrors.ParseDBError(err, "order")
	}
	return orders, nil
}

func (s *orderService) GetOrder(userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, apperrors.ParseDBError(err, "order")
	}

	// Someone else's order is reported as missing.
	if order.UserID != userID {
		logger.Warn("Order access denied", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		return nil, ErrOrderNotFound
	}
	return order, nil
}
