package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ikkim/shopfront-backend/internal/app/model"
	"github.com/ikkim/shopfront-backend/internal/app/repository"
	"github.com/ikkim/shopfront-backend/internal/app/service"
	"github.com/ikkim/shopfront-backend/internal/db"
	apperrors "github.com/ikkim/shopfront-backend/internal/errors"
	"github.com/ikkim/shopfront-backend/internal/middleware"
	"github.com/ikkim/shopfront-backend/internal/storage"
)

const testJWTSecret = "controller-test-secret"

// memoryImageStore records uploads instead of sending them anywhere.
type memoryImageStore struct {
	fail bool
	puts []string
}

func (m *memoryImageStore) Put(_ context.Context, img storage.Image) (string, error) {
	if m.fail {
		return "", errors.New("bucket unavailable")
	}
	if _, err := io.ReadAll(img.Body); err != nil {
		return "", err
	}
	m.puts = append(m.puts, img.Filename)
	return "https://cdn.example.com/products/" + img.Filename, nil
}

func (m *memoryImageStore) Backend() string { return "memory" }

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	auth   service.AuthService
	images *memoryImageStore
}

func setupControllerTest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	apperrors.UseJSONFieldNamesInBinding()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)

	images := &memoryImageStore{}
	authService := service.NewAuthService(userRepo, testJWTSecret, time.Hour, nil)
	categoryService := service.NewCategoryService(categoryRepo)
	productService := service.NewProductService(productRepo, categoryRepo, images, 1<<20)
	cartService := service.NewCartService(cartRepo, productRepo, testDB)
	orderService := service.NewOrderService(orderRepo, cartRepo, testDB)

	authCtrl := NewAuthController(authService)
	categoryCtrl := NewCategoryController(categoryService)
	productCtrl := NewProductController(productService)
	cartCtrl := NewCartController(cartService)
	orderCtrl := NewOrderController(orderService)

	authMW := middleware.NewAuthMiddleware(authService)
	admin := authMW.RequireRole("admin")

	r := gin.New()
	r.POST("/auth/signup", authCtrl.Signup)
	r.POST("/auth/login", authCtrl.Login)
	r.POST("/auth/logout", authMW.Authenticate(), authCtrl.Logout)
	r.GET("/auth/me", authMW.Authenticate(), authCtrl.Me)

	r.GET("/categories", categoryCtrl.ListCategories)
	r.GET("/categories/:id", categoryCtrl.GetCategory)
	r.POST("/categories", authMW.Authenticate(), admin, categoryCtrl.CreateCategory)
	r.PUT("/categories/:id", authMW.Authenticate(), admin, categoryCtrl.UpdateCategory)
	r.DELETE("/categories/:id", authMW.Authenticate(), admin, categoryCtrl.DeleteCategory)

	r.GET("/products", productCtrl.GetAllProducts)
	r.GET("/products/list", productCtrl.ListProducts)
	r.GET("/products/export", authMW.Authenticate(), admin, productCtrl.ExportProducts)
	r.GET("/products/:id", productCtrl.GetProduct)
	r.POST("/products", authMW.Authenticate(), admin, productCtrl.CreateProduct)
	r.PUT("/products/:id", authMW.Authenticate(), admin, productCtrl.UpdateProduct)
	r.DELETE("/products/:id", authMW.Authenticate(), admin, productCtrl.DeleteProduct)

	r.GET("/cart", authMW.Authenticate(), cartCtrl.GetCart)
	r.POST("/cart", authMW.Authenticate(), cartCtrl.AddToCart)
	r.DELETE("/cart/:productId", authMW.Authenticate(), cartCtrl.RemoveFromCart)

	r.GET("/orders", authMW.Authenticate(), orderCtrl.GetOrders)
	r.POST("/orders", authMW.Authenticate(), orderCtrl.CreateOrder)
	r.GET("/orders/:id", authMW.Authenticate(), orderCtrl.GetOrder)

	return &testEnv{router: r, db: testDB, auth: authService, images: images}
}

// tokenFor signs up email with role and returns a bearer token.
func (e *testEnv) tokenFor(t *testing.T, email, role string) string {
	t.Helper()
	_, err := e.auth.Signup(email, "password123", role)
	require.NoError(t, err)
	_, token, err := e.auth.Login(email, "password123")
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seedProduct(t *testing.T, name string, price float64) *model.Product {
	t.Helper()
	category := model.Category{Name: "Cat " + name}
	require.NoError(t, e.db.Create(&category).Error)
	product := &model.Product{Name: name, Description: name + " description", Price: price, Stock: 5, CategoryID: category.ID}
	require.NoError(t, e.db.Create(product).Error)
	return product
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var resp apperrors.ErrorResponse
	decodeBody(t, w, &resp)
	return resp
}

func fieldNames(resp apperrors.ErrorResponse) []string {
	names := make([]string, 0, len(resp.Fields))
	for _, f := range resp.Fields {
		names = append(names, f.Field)
	}
	return names
}

func floatPtr(v float64) *float64 { return &v }
