package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikkim/shopfront-backend/internal/app/model"
	apperrors "github.com/ikkim/shopfront-backend/internal/errors"
)

func TestCategoryController_CRUD(t *testing.T) {
	env := setupControllerTest(t)
	admin := env.tokenFor(t, "admin@example.com", "admin")

	w := env.do("POST", "/categories", CategoryRequest{Name: "Books", Description: "Paper"}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Category model.Category `json:"category"`
	}
	decodeBody(t, w, &created)
	path := fmt.Sprintf("/categories/%d", created.Category.ID)

	w = env.do("PUT", path, CategoryRequest{Name: "Novels"}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Novels")

	w = env.do("GET", "/categories", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Novels")

	w = env.do("DELETE", path, nil, admin)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do("GET", path, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.CategoryNotFound, decodeError(t, w).Error)
}

func TestCategoryController_Errors(t *testing.T) {
	env := setupControllerTest(t)
	admin := env.tokenFor(t, "admin@example.com", "admin")
	customer := env.tokenFor(t, "customer@example.com", "customer")
	product := env.seedProduct(t, "Lamp", 12)

	w := env.do("POST", "/categories", CategoryRequest{Name: "Books"}, customer)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do("POST", "/categories", CategoryRequest{Name: "Cat Lamp"}, admin)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperrors.CategoryNameExists, decodeError(t, w).Error)

	w = env.do("DELETE", fmt.Sprintf("/categories/%d", product.CategoryID), nil, admin)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperrors.CategoryInUse, decodeError(t, w).Error)

	w = env.do("GET", "/categories/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ValidationInvalidID, decodeError(t, w).Error)
}
