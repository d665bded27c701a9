package controller

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopfront-backend/internal/app/service"
	apperrors "github.com/ikkim/shopfront-backend/internal/errors"
	"github.com/ikkim/shopfront-backend/internal/middleware"
	"github.com/ikkim/shopfront-backend/internal/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// GetAllProducts returns all products
// GET /products
func (ctrl *ProductController) GetAllProducts(c *gin.Context) {
	products, err := ctrl.productService.GetAllProducts()
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// ListProducts returns one filtered page
// GET /products/list?page=&limit=&min_price=&max_price=&category_id=&search=
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	var query service.ProductQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindingError(c, err, "Invalid product list query")
		return
	}

	page, err := ctrl.productService.ListProducts(query)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetProduct returns a product by ID
// GET /products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProduct(id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// CreateProduct creates a new product (Admin only). Accepts JSON, or
// multipart form fields with an optional "image" file.
// POST /products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var input service.ProductInput
	if err := c.ShouldBind(&input); err != nil {
		respondBindingError(c, err, "Invalid product creation request")
		return
	}

	image, closeImage, err := formImage(c)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	defer closeImage()

	product, err := ctrl.productService.CreateProduct(c.Request.Context(), input, image)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	log.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}

// UpdateProduct replaces a product's fields (Admin only)
// PUT /products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input service.ProductInput
	if err := c.ShouldBind(&input); err != nil {
		respondBindingError(c, err, "Invalid product update request")
		return
	}

	image, closeImage, err := formImage(c)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	defer closeImage()

	product, err := ctrl.productService.UpdateProduct(c.Request.Context(), id, input, image)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	log.Info("Product updated", map[string]interface{}{
		"product_id": product.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"product": product,
	})
}

// DeleteProduct deletes a product (Admin only)
// DELETE /products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(id); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
	})
}

// ExportProducts streams the catalog as an xlsx workbook (Admin only)
// GET /products/export
func (ctrl *ProductController) ExportProducts(c *gin.Context) {
	var buf bytes.Buffer
	if err := ctrl.productService.ExportProducts(&buf); err != nil {
		apperrors.Respond(c, err)
		return
	}

	filename := "products-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// formImage returns the optional "image" part of a multipart request.
// The returned func closes the underlying file and is always safe to call.
func formImage(c *gin.Context) (*storage.Image, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return nil, noop, nil
	}

	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, apperrors.Validation(apperrors.ValidationInvalidInput, "Invalid product image",
			apperrors.Field("image", "could not be read")).Wrap(err)
	}

	file, err := header.Open()
	if err != nil {
		return nil, noop, apperrors.Storage("failed to open uploaded image", err)
	}

	return &storage.Image{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, func() { file.Close() }, nil
}
