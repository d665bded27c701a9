package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopfront-backend/internal/app/service"
	apperrors "github.com/ikkim/shopfront-backend/internal/errors"
	"github.com/ikkim/shopfront-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1,max=9999"`
}

// GetCart returns the caller's cart, creating it on first access
// GET /cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.GetCart(userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart": cart,
	})
}

// AddToCart adds quantity units of a product at its current price
// POST /cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err, "Invalid add to cart request")
		return
	}

	cart, err := ctrl.cartService.AddItem(userID, req.ProductID, req.Quantity)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	log.Info("Item added to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart",
		"cart":    cart,
	})
}

// RemoveFromCart drops every line for a product
// DELETE /cart/:productId
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	cart, err := ctrl.cartService.RemoveItem(userID, productID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart",
		"cart":    cart,
	})
}
