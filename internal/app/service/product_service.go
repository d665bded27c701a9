package service

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"

	"github.com/ikkim/shopfront-backend/internal/app/model"
	"github.com/ikkim/shopfront-backend/internal/app/repository"
	apperrors "github.com/ikkim/shopfront-backend/internal/errors"
	"github.com/ikkim/shopfront-backend/internal/metrics"
	"github.com/ikkim/shopfront-backend/internal/storage"
	"github.com/ikkim/shopfront-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

var ErrProductNotFound = apperrors.NotFound(apperrors.ProductNotFound, "Product not found")

// ProductQuery are the listing parameters. Nil means "not supplied".
type ProductQuery struct {
	Page       *int     `form:"page" binding:"omitempty,min=1"`
	Limit      *int     `form:"limit" binding:"omitempty,min=1"`
	MinPrice   *float64 `form:"min_price" binding:"omitempty,gte=0"`
	MaxPrice   *float64 `form:"max_price" binding:"omitempty,gte=0"`
	CategoryID *uint    `form:"category_id" binding:"omitempty,min=1"`
	Search     string   `form:"search"`
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Items      []model.Product `json:"items"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// ProductInput is the writable part of a product.
type ProductInput struct {
	Name        string   `json:"name" form:"name" binding:"required"`
	Description string   `json:"description" form:"description" binding:"required"`
	Price       *float64 `json:"price" form:"price" binding:"required,gte=0"`
	Stock       int      `json:"stock" form:"stock" binding:"gte=0"`
	CategoryID  uint     `json:"category_id" form:"category_id" binding:"required"`
}

type ProductService interface {
	ListProducts(query ProductQuery) (*ProductPage, error)
	GetAllProducts() ([]model.Product, error)
	GetProduct(id uint) (*model.Product, error)
	CreateProduct(ctx context.Context, input ProductInput, image *storage.Image) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uint, input ProductInput, image *storage.Image) (*model.Product, error)
	DeleteProduct(id uint) error
	ExportProducts(w io.Writer) error
	ImportProducts(r io.Reader) (*ImportResult, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	images       storage.ImageStore
	maxImageSize int64
}

// NewProductService builds the product service. images may be nil, in which
// case any request carrying an image is rejected.
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	images storage.ImageStore,
	maxImageSize int64,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		images:       images,
		maxImageSize: maxImageSize,
	}
}

func (s *productService) ListProducts(query ProductQuery) (*ProductPage, error) {
	page, limit := defaultPage, defaultLimit
	if query.Page != nil {
		page = *query.Page
	}
	if query.Limit != nil {
		limit = *query.Limit
	}

	if err := validateProductQuery(page, limit, query); err != nil {
		return nil, err
	}

	filter := repository.ProductFilter{
		Search:     strings.TrimSpace(query.Search),
		CategoryID: query.CategoryID,
		MinPrice:   query.MinPrice,
		MaxPrice:   query.MaxPrice,
		Offset:     pageOffset(page, limit),
		Limit:      limit,
	}

	products, total, err := s.productRepo.FindWithFilter(filter)
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, apperrors.ParseDBError(err, "product")
	}

	return &ProductPage{
		Items:      products,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// pageOffset is (page-1)*limit, saturating at math.MaxInt so a page far past
// the end stays empty instead of wrapping around to the first rows.
func pageOffset(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

func validateProductQuery(page, limit int, query ProductQuery) error {
	var fields []apperrors.FieldError
	if page < 1 {
		fields = append(fields, apperrors.Field("page", "must be at least 1"))
	}
	if limit < 1 {
		fields = append(fields, apperrors.Field("limit", "must be at least 1"))
	}
	if query.MinPrice != nil && *query.MinPrice < 0 {
		fields = append(fields, apperrors.Field("min_price", "must be at least 0"))
	}
	if query.MaxPrice != nil && *query.MaxPrice < 0 {
		fields = append(fields, apperrors.Field("max_price", "must be at least 0"))
	}
	if query.MinPrice != nil && query.MaxPrice != nil && *query.MinPrice > *query.MaxPrice {
		fields = append(fields, apperrors.Field("min_price", "must not exceed max_price"))
	}
	if len(fields) > 0 {
		return apperrors.Validation(apperrors.ValidationInvalidInput, "Invalid listing parameters", fields...)
	}
	return nil
}

func (s *productService) GetAllProducts() ([]model.Product, error) {
	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, apperrors.ParseDBError(err, "product")
	}
	return products, nil
}

func (s *productService) GetProduct(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, apperrors.ParseDBError(err, "product")
	}
	return product, nil
}

func (s *productService) CreateProduct(ctx context.Context, input ProductInput, image *storage.Image) (*model.Product, error) {
	if err := s.checkInput(&input, image); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       *input.Price,
		Stock:       input.Stock,
		CategoryID:  input.CategoryID,
	}

	if image != nil {
		url, err := s.upload(ctx, *image)
		if err != nil {
			return nil, err
		}
		product.ImageURL = &url
	}

	if err := s.productRepo.Create(product); err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"name": product.Name,
		})
		return nil, apperrors.ParseDBError(err, "product")
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id":  product.ID,
		"category_id": product.CategoryID,
		"price":       product.Price,
	})
	return s.GetProduct(product.ID)
}

func (s *productService) UpdateProduct(ctx context.Context, id uint, input ProductInput, image *storage.Image) (*model.Product, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}
	if err := s.checkInput(&input, image); err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = *input.Price
	product.Stock = input.Stock
	product.CategoryID = input.CategoryID
	product.Category = nil

	if image != nil {
		url, err := s.upload(ctx, *image)
		if err != nil {
			return nil, err
		}
		product.ImageURL = &url
	}

	if err := s.productRepo.Update(product); err != nil {
		logger.Error("Failed to update product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, apperrors.ParseDBError(err, "product")
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": id,
		"price":      product.Price,
	})
	return s.GetProduct(id)
}

// checkInput trims and validates input, resolves its category and checks
// the image metadata. Nothing is written before it passes.
func (s *productService) checkInput(input *ProductInput, image *storage.Image) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)

	if err := validateStruct(input, "Invalid product data"); err != nil {
		return err
	}
	if !model.IsWholeCents(*input.Price) {
		return apperrors.Validation(apperrors.ValidationInvalidInput, "Invalid product data",
			apperrors.Field("price", subCentMessage))
	}

	if _, err := s.categoryRepo.FindByID(input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Validation(apperrors.ValidationInvalidInput, "Invalid product data",
				apperrors.Field("category_id", "does not reference an existing category"))
		}
		return apperrors.ParseDBError(err, "category")
	}

	if image == nil {
		return nil
	}
	if s.images == nil {
		return apperrors.Validation(apperrors.UploadFailed, "Image uploads are not configured",
			apperrors.Field("image", "uploads are disabled"))
	}
	if err := storage.ValidateImage(*image, s.maxImageSize); err != nil {
		code := apperrors.UploadInvalidFileType
		if errors.Is(err, storage.ErrFileTooLarge) {
			code = apperrors.UploadFileTooLarge
		}
		return apperrors.Validation(code, "Invalid product image", apperrors.Field("image", err.Error()))
	}
	return nil
}

// upload stores the image. A failure aborts the product write.
func (s *productService) upload(ctx context.Context, image storage.Image) (string, error) {
	url, err := s.images.Put(ctx, image)
	if err != nil {
		metrics.ImageUploadsTotal.WithLabelValues(s.images.Backend(), "failure").Inc()
		logger.Error("Failed to upload product image", err, map[string]interface{}{
			"filename": image.Filename,
			"backend":  s.images.Backend(),
		})
		return "", apperrors.Storage("failed to upload product image", err).WithCode(apperrors.UploadFailed)
	}
	metrics.ImageUploadsTotal.WithLabelValues(s.images.Backend(), "success").Inc()
	return url, nil
}

func (s *productService) DeleteProduct(id uint) error {
	if err := s.productRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		logger.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		return apperrors.ParseDBError(err, "product")
	}

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}
