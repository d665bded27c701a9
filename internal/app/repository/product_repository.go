package repository

import (
	"strings"

	"github.com/ikkim/shopfront-backend/internal/app/model"
	"github.com/ikkim/shopfront-backend/pkg/logger"
	"gorm.io/gorm"
)

// ProductFilter narrows a product listing. Nil pointers and an empty
// Search mean "no constraint".
type ProductFilter struct {
	Search     string
	CategoryID *uint
	MinPrice   *float64
	MaxPrice   *float64
	Offset     int
	Limit      int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindByID(id uint) (*model.Product, error)
	FindWithFilter(filter ProductFilter) ([]model.Product, int64, error)
	Update(product *model.Product) error
	Delete(id uint) error
	Count() (int64, error)
	CountLowStock(threshold int) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":        product.Name,
		"category_id": product.CategoryID,
		"price":       product.Price,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
	})
	return nil
}

func (r *productRepository) FindAll() ([]model.Product, error) {
	var products []model.Product
	if err := r.db.Preload("Category").Order("id ASC").Find(&products).Error; err != nil {
		logger.Error("Failed to find products in database", err)
		return nil, err
	}

	logger.Debug("Products found in database", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	logger.Debug("Finding product by ID in database", map[string]interface{}{
		"product_id": id,
	})

	var product model.Product
	if err := r.db.Preload("Category").First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindWithFilter returns one page of matching products and the number of
// matches across all pages. Both queries go through applyFilter.
func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, int64, error) {
	logger.Debug("Finding products with filter in database", map[string]interface{}{
		"search":      filter.Search,
		"category_id": filter.CategoryID,
		"offset":      filter.Offset,
		"limit":       filter.Limit,
	})

	var total int64
	if err := applyFilter(r.db.Model(&model.Product{}), filter).Count(&total).Error; err != nil {
		logger.Error("Failed to count filtered products", err)
		return nil, 0, err
	}

	products := []model.Product{}
	query := applyFilter(r.db.Model(&model.Product{}), filter).
		Preload("Category").
		Order("products.id ASC").
		Offset(filter.Offset)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find filtered products", err)
		return nil, 0, err
	}

	logger.Debug("Filtered products found in database", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return products, total, nil
}

func applyFilter(query *gorm.DB, filter ProductFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		query = query.Where("LOWER(products.name) LIKE ? ESCAPE '!'", pattern)
	}
	if filter.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filter.CategoryID)
	}
	if filter.MinPrice != nil {
		query = query.Where("products.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("products.price <= ?", *filter.MaxPrice)
	}
	return query
}

// likeEscaper uses '!' as the LIKE escape. A backslash literal does not
// parse under MySQL's default sql_mode.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
	})

	err := r.db.Model(product).
		Select("name", "description", "price", "stock", "category_id", "image_url").
		Updates(product).Error
	if err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) Delete(id uint) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	result := r.db.Delete(&model.Product{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete product from database", result.Error, map[string]interface{}{
			"product_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).Count(&count).Error
	return count, err
}

func (r *productRepository) CountLowStock(threshold int) (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).Where("stock <= ?", threshold).Count(&count).Error
	return count, err
}
