package service

import (
	"errors"
	"strings"

	"github.com/ikkim/shopfront-backend/internal/app/model"
	"github.com/ikkim/shopfront-backend/internal/app/repository"
	apperrors "github.com/ikkim/shopfront-backend/internal/errors"
	"github.com/ikkim/shopfront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound   = apperrors.NotFound(apperrors.CategoryNotFound, "Category not found")
	ErrCategoryNameExists = apperrors.Conflict(apperrors.CategoryNameExists, "A category with this name already exists")
	ErrCategoryInUse      = apperrors.Conflict(apperrors.CategoryInUse, "Category still has products")
)

type CategoryService interface {
	ListCategories() ([]model.Category, error)
	GetCategory(id uint) (*model.Category, error)
	CreateCategory(name, description string) (*model.Category, error)
	UpdateCategory(id uint, name, description string) (*model.Category, error)
	DeleteCategory(id uint) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) ListCategories() ([]model.Category, error) {
	categories, err := s.categoryRepo.FindAll()
	if err != nil {
		return nil, apperrors.ParseDBError(err, "category")
	}
	return categories, nil
}

func (s *categoryService) GetCategory(id uint) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, apperrors.ParseDBError(err, "category")
	}
	return category, nil
}

func (s *categoryService) CreateCategory(name, description string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("", "Invalid category data", apperrors.Field("name", "is required"))
	}
	if err := s.ensureNameFree(name, 0); err != nil {
		return nil, err
	}

	category := &model.Category{Name: name, Description: strings.TrimSpace(description)}
	if err := s.categoryRepo.Create(category); err != nil {
		if apperrors.IsDuplicateKey(err) {
			return nil, ErrCategoryNameExists.Wrap(err)
		}
		return nil, apperrors.ParseDBError(err, "category")
	}

	logger.Info("Category created", map[string]interface{}{
		"category_id": category.ID,
		"name":        category.Name,
	})
	return category, nil
}

func (s *categoryService) UpdateCategory(id uint, name, description string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("", "Invalid category data", apperrors.Field("name", "is required"))
	}

	category, err := s.GetCategory(id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(name, id); err != nil {
		return nil, err
	}

	category.Name = name
	category.Description = strings.TrimSpace(description)
	if err := s.categoryRepo.Update(category); err != nil {
		if apperrors.IsDuplicateKey(err) {
			return nil, ErrCategoryNameExists.Wrap(err)
		}
		return nil, apperrors.ParseDBError(err, "category")
	}

	logger.Info("Category updated", map[string]interface{}{
		"category_id": category.ID,
	})
	return category, nil
}

// ensureNameFree fails when another category (not selfID) already uses name.
func (s *categoryService) ensureNameFree(name string, selfID uint) error {
	existing, err := s.categoryRepo.FindByName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperrors.ParseDBError(err, "category")
	}
	if existing.ID != selfID {
		logger.Warn("Category name already taken", map[string]interface{}{
			"name": name,
		})
		return ErrCategoryNameExists
	}
	return nil
}

func (s *categoryService) DeleteCategory(id uint) error {
	if _, err := s.GetCategory(id); err != nil {
		return err
	}

	count, err := s.categoryRepo.CountProducts(id)
	if err != nil {
		return apperrors.ParseDBError(err, "category")
	}
	if count > 0 {
		logger.Warn("Refusing to delete category with products", map[string]interface{}{
			"category_id":   id,
			"product_count": count,
		})
		return ErrCategoryInUse
	}

	if err := s.categoryRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		// A product was added between the count and the delete.
		if appErr := apperrors.ParseDBError(err, "category"); appErr.Kind == apperrors.KindConflict {
			return ErrCategoryInUse.Wrap(err)
		}
		return apperrors.ParseDBError(err, "category")
	}

	logger.Info("Category deleted", map[string]interface{}{
		"category_id": id,
	})
	return nil
}
