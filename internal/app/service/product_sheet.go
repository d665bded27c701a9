package service

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ikkim/shopfront-backend/internal/app/model"
	apperrors "github.com/ikkim/shopfront-backend/internal/errors"
	"github.com/ikkim/shopfront-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const productSheet = "Products"

// productSheetHeaders is the column layout shared by export and import.
var productSheetHeaders = []string{"ID", "Name", "Description", "Price", "Stock", "Category", "Image URL"}

// ImportResult summarizes an xlsx catalog import.
type ImportResult struct {
	Created           int      `json:"created"`
	CategoriesCreated int      `json:"categories_created"`
	Skipped           []string `json:"skipped"`
}

// ExportProducts writes the whole catalog as an xlsx workbook.
func (s *productService) ExportProducts(w io.Writer) error {
	products, err := s.productRepo.FindAll()
	if err != nil {
		return apperrors.ParseDBError(err, "product")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), productSheet); err != nil {
		return apperrors.Storage("failed to build export workbook", err)
	}

	rows := make([][]interface{}, 0, len(products)+1)
	header := make([]interface{}, len(productSheetHeaders))
	for i, h := range productSheetHeaders {
		header[i] = h
	}
	rows = append(rows, header)

	for _, p := range products {
		categoryName := ""
		if p.Category != nil {
			categoryName = p.Category.Name
		}
		imageURL := ""
		if p.ImageURL != nil {
			imageURL = *p.ImageURL
		}
		rows = append(rows, []interface{}{p.ID, p.Name, p.Description, p.Price, p.Stock, categoryName, imageURL})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return apperrors.Storage("failed to build export workbook", err)
		}
		if err := f.SetSheetRow(productSheet, cell, &row); err != nil {
			return apperrors.Storage("failed to build export workbook", err)
		}
	}

	if err := f.Write(w); err != nil {
		return apperrors.Storage("failed to write export workbook", err)
	}

	logger.Info("Products exported", map[string]interface{}{
		"count": len(products),
	})
	return nil
}

// ImportProducts reads a workbook in the export layout and creates one
// product per row. The ID and Image URL columns are ignored; categories are
// matched by name and created when missing. Invalid rows are skipped and
// reported.
func (s *productService) ImportProducts(r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.Validation(apperrors.ValidationInvalidInput, "Not a readable xlsx workbook").Wrap(err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, apperrors.Validation(apperrors.ValidationInvalidInput, "Workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, apperrors.Validation(apperrors.ValidationInvalidInput, "Failed to read workbook rows").Wrap(err)
	}

	result := &ImportResult{Skipped: []string{}}
	categoryIDs := map[string]uint{}

	// First row is the header.
	for i, row := range rows {
		if i == 0 {
			continue
		}
		line := i + 1

		input, categoryName, err := parseProductRow(row)
		if err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("row %d: %v", line, err))
			continue
		}

		categoryID, created, err := s.resolveCategory(categoryName, categoryIDs)
		if err != nil {
			return result, err
		}
		if created {
			result.CategoriesCreated++
		}
		input.CategoryID = categoryID

		if err := s.checkInput(&input, nil); err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("row %d: %v", line, err))
			continue
		}

		product := &model.Product{
			Name:        input.Name,
			Description: input.Description,
			Price:       *input.Price,
			Stock:       input.Stock,
			CategoryID:  input.CategoryID,
		}
		if err := s.productRepo.Create(product); err != nil {
			return result, apperrors.ParseDBError(err, "product")
		}
		result.Created++
	}

	logger.Info("Products imported", map[string]interface{}{
		"created":            result.Created,
		"categories_created": result.CategoriesCreated,
		"skipped":            len(result.Skipped),
	})
	return result, nil
}

func parseProductRow(row []string) (ProductInput, string, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	price, err := strconv.ParseFloat(cell(3), 64)
	if err != nil {
		return ProductInput{}, "", fmt.Errorf("invalid price %q", cell(3))
	}

	stock := 0
	if raw := cell(4); raw != "" {
		stock, err = strconv.Atoi(raw)
		if err != nil {
			return ProductInput{}, "", fmt.Errorf("invalid stock %q", raw)
		}
	}

	categoryName := cell(5)
	if categoryName == "" {
		return ProductInput{}, "", errors.New("missing category")
	}

	return ProductInput{
		Name:        cell(1),
		Description: cell(2),
		Price:       &price,
		Stock:       stock,
	}, categoryName, nil
}

func (s *productService) resolveCategory(name string, cache map[string]uint) (uint, bool, error) {
	if id, ok := cache[name]; ok {
		return id, false, nil
	}

	category, err := s.categoryRepo.FindByName(name)
	if err == nil {
		cache[name] = category.ID
		return category.ID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, apperrors.ParseDBError(err, "category")
	}

	category = &model.Category{Name: name}
	if err := s.categoryRepo.Create(category); err != nil {
		return 0, false, apperrors.ParseDBError(err, "category")
	}
	cache[name] = category.ID
	return category.ID, true, nil
}
