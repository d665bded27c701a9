package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopfront-backend/internal/app/model"
	"github.com/ikkim/shopfront-backend/internal/app/service"
	apperrors "github.com/ikkim/shopfront-backend/internal/errors"
	"github.com/ikkim/shopfront-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

// CreateOrderRequest carries explicit line items. Item fields are checked by
// the order service so errors can name the offending index.
type CreateOrderRequest struct {
	Items      []service.OrderItemInput `json:"items"`
	TotalPrice *float64                 `json:"total_price"`
}

// GetOrders lists the caller's orders, newest first
// GET /orders
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	orders, err := ctrl.orderService.ListOrders(userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrder
// GET /orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrder(userID, orderID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// CreateOrder places an order from explicit items, or checks out the cart
// when the body is empty or has no items.
// POST /orders
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBindingError(c, err, "Invalid order request")
		return
	}

	var (
		order *model.Order
		err   error
	)
	if len(req.Items) == 0 {
		order, err = ctrl.orderService.Checkout(userID)
	} else {
		if req.TotalPrice == nil {
			apperrors.Respond(c, apperrors.Validation(apperrors.ValidationInvalidInput, "Invalid input",
				apperrors.Field("total_price", "is required")))
			return
		}
		order, err = ctrl.orderService.PlaceOrder(userID, req.Items, *req.TotalPrice)
	}
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	log.Info("Order created", map[string]interface{}{
		"user_id":     userID,
		"order_id":    order.ID,
		"total_price": order.TotalPrice,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"order":   order,
	})
}
