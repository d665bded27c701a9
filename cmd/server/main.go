package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ikkim/shopfront-backend/config"
	"github.com/ikkim/shopfront-backend/internal/app/controller"
	"github.com/ikkim/shopfront-backend/internal/app/repository"
	"github.com/ikkim/shopfront-backend/internal/app/service"
	"github.com/ikkim/shopfront-backend/internal/db"
	"github.com/ikkim/shopfront-backend/internal/middleware"
	"github.com/ikkim/shopfront-backend/internal/router"
	"github.com/ikkim/shopfront-backend/internal/scheduler"
	"github.com/ikkim/shopfront-backend/internal/storage"
	"github.com/ikkim/shopfront-backend/pkg/logger"
	pkgredis "github.com/ikkim/shopfront-backend/pkg/redis"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel, logFormat := cfg.Server.LogLevel, "json"
	if cfg.IsDevelopment() {
		logFormat = "console"
		if logLevel == "" {
			logLevel = "debug"
		}
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: cfg.IsDevelopment(),
	})

	logger.Info("Starting Shopfront Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	database, err := db.Connect(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(database); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(database); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis is optional: without it logout is a no-op and auth is not rate limited
	var (
		redisClient *redis.Client
		revoker     service.TokenRevoker
	)
	if cfg.Redis.Enabled() {
		redisClient, err = pkgredis.NewClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", err)
		}
		defer redisClient.Close()
		revoker = pkgredis.NewTokenBlacklist(redisClient)
	} else {
		logger.Warn("REDIS_ADDR not set, token revocation and rate limiting are disabled")
	}

	// Image storage
	var (
		images    storage.ImageStore
		s3Storage *storage.S3Storage
	)
	if cfg.S3.Enabled() {
		s3Storage, err = storage.NewS3Storage(context.Background(), &cfg.S3)
		if err != nil {
			logger.Fatal("Failed to initialize S3 storage", err)
		}
		images = s3Storage
	} else {
		local, err := storage.NewLocalStorage(cfg.Storage.LocalDir, cfg.Storage.PublicPrefix)
		if err != nil {
			logger.Fatal("Failed to initialize local image storage", err)
		}
		images = local
	}
	logger.Info("Image storage ready", map[string]interface{}{
		"backend": images.Backend(),
	})

	// Initialize repositories
	userRepo := repository.NewUserRepository(database)
	categoryRepo := repository.NewCategoryRepository(database)
	productRepo := repository.NewProductRepository(database)
	cartRepo := repository.NewCartRepository(database)
	orderRepo := repository.NewOrderRepository(database)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiry, revoker)
	categoryService := service.NewCategoryService(categoryRepo)
	productService := service.NewProductService(productRepo, categoryRepo, images, cfg.Storage.MaxImageSize)
	cartService := service.NewCartService(cartRepo, productRepo, database)
	orderService := service.NewOrderService(orderRepo, cartRepo, database)

	// Initialize controllers
	var uploadController *controller.UploadController
	if s3Storage != nil {
		uploadController = controller.NewUploadController(s3Storage)
	}

	r := router.NewRouter(
		controller.NewAuthController(authService),
		controller.NewCategoryController(categoryService),
		controller.NewProductController(productService),
		controller.NewCartController(cartService),
		controller.NewOrderController(orderService),
		uploadController,
		middleware.NewAuthMiddleware(authService),
		redisClient,
		cfg,
	).WithHealthCheck(func() error { return db.Ping(database) })

	// Catalog gauges
	statsScheduler := scheduler.NewCatalogStatsScheduler(productRepo, cfg.Scheduler.CatalogStatsSpec, cfg.Scheduler.LowStockLevel)
	if err := statsScheduler.Start(); err != nil {
		logger.Fatal("Failed to start catalog stats scheduler", err)
	}
	defer statsScheduler.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r.Setup(),
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shut down", err)
	}
	logger.Info("Server stopped successfully")
}
