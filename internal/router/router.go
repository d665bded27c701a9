package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopfront-backend/config"
	"github.com/ikkim/shopfront-backend/internal/app/controller"
	apperrors "github.com/ikkim/shopfront-backend/internal/errors"
	"github.com/ikkim/shopfront-backend/internal/middleware"
	"github.com/ikkim/shopfront-backend/internal/policy"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type Router struct {
	authController     *controller.AuthController
	categoryController *controller.CategoryController
	productController  *controller.ProductController
	cartController     *controller.CartController
	orderController    *controller.OrderController
	uploadController   *controller.UploadController
	authMiddleware     *middleware.AuthMiddleware
	redisClient        *redis.Client
	healthCheck        func() error
	config             *config.Config
}

// NewRouter wires the controllers. uploadController is nil when no S3
// bucket is configured, redisClient is nil when Redis is not.
func NewRouter(
	authController *controller.AuthController,
	categoryController *controller.CategoryController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	redisClient *redis.Client,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		categoryController: categoryController,
		productController:  productController,
		cartController:     cartController,
		orderController:    orderController,
		uploadController:   uploadController,
		authMiddleware:     authMiddleware,
		redisClient:        redisClient,
		config:             cfg,
	}
}

// WithHealthCheck makes /health report 503 while check fails.
func (r *Router) WithHealthCheck(check func() error) *Router {
	r.healthCheck = check
	return r
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)
	apperrors.UseJSONFieldNamesInBinding()

	router := gin.New()
	router.MaxMultipartMemory = r.config.Storage.MaxImageSize

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", r.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if !r.config.S3.Enabled() {
		router.Static(r.config.Storage.PublicPrefix, r.config.Storage.LocalDir)
	}

	authenticate := r.authMiddleware.Authenticate()
	adminOnly := r.authMiddleware.RequireRole(policy.RoleAdmin)

	auth := router.Group("/auth")
	{
		auth.POST("/signup", r.rateLimit("signup"), r.authController.Signup)
		auth.POST("/login", r.rateLimit("login"), r.authController.Login)
		auth.POST("/logout", authenticate, r.authController.Logout)
		auth.GET("/me", authenticate, r.authController.Me)
	}

	products := router.Group("/products")
	{
		products.GET("", r.productController.GetAllProducts)
		products.GET("/list", r.productController.ListProducts)
		products.GET("/export", authenticate, adminOnly, r.productController.ExportProducts)
		products.GET("/:id", r.productController.GetProduct)

		products.POST("", authenticate, adminOnly, r.productController.CreateProduct)
		products.PUT("/:id", authenticate, adminOnly, r.productController.UpdateProduct)
		products.DELETE("/:id", authenticate, adminOnly, r.productController.DeleteProduct)
	}

	categories := router.Group("/categories")
	{
		categories.GET("", r.categoryController.ListCategories)
		categories.GET("/:id", r.categoryController.GetCategory)

		categories.POST("", authenticate, adminOnly, r.categoryController.CreateCategory)
		categories.PUT("/:id", authenticate, adminOnly, r.categoryController.UpdateCategory)
		categories.DELETE("/:id", authenticate, adminOnly, r.categoryController.DeleteCategory)
	}

	cart := router.Group("/cart")
	cart.Use(authenticate)
	{
		cart.GET("", r.cartController.GetCart)
		cart.POST("", r.cartController.AddToCart)
		cart.DELETE("/:productId", r.cartController.RemoveFromCart)
	}

	orders := router.Group("/orders")
	orders.Use(authenticate)
	{
		orders.GET("", r.orderController.GetOrders)
		orders.POST("", r.orderController.CreateOrder)
		orders.GET("/:id", r.orderController.GetOrder)
	}

	if r.uploadController != nil {
		router.POST("/uploads/presigned-url", authenticate, adminOnly, r.uploadController.GeneratePresignedURL)
	}

	return router
}

func (r *Router) health(c *gin.Context) {
	if r.healthCheck != nil {
		if err := r.healthCheck(); err != nil {
			middleware.GetLoggerFromContext(c).Error("Health check failed", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database is unreachable",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Shopfront API is running",
	})
}

// rateLimit limits by client IP when Redis is available.
func (r *Router) rateLimit(prefix string) gin.HandlerFunc {
	if r.redisClient == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(r.redisClient, middleware.RateLimitConfig{
		RequestsPerWindow: r.config.RateLimit.AuthRequests,
		Window:            r.config.RateLimit.Window,
		KeyPrefix:         "ratelimit:" + prefix,
	})
}
