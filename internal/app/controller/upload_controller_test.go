package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikkim/shopfront-backend/config"
	apperrors "github.com/ikkim/shopfront-backend/internal/errors"
	"github.com/ikkim/shopfront-backend/internal/storage"
)

func setupUploadControllerTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	apperrors.UseJSONFieldNamesInBinding()

	s3Storage, err := storage.NewS3Storage(t.Context(), &config.S3Config{
		Region:          "us-east-1",
		Bucket:          "shop-images",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
	})
	require.NoError(t, err)

	ctrl := NewUploadController(s3Storage)
	router := gin.New()
	router.POST("/uploads/presigned-url", ctrl.GeneratePresignedURL)
	return router
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadController_GeneratePresignedURL(t *testing.T) {
	router := setupUploadControllerTest(t)

	w := postJSON(router, "/uploads/presigned-url", GeneratePresignedURLRequest{
		Filename:    "widget.png",
		ContentType: "image/png",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp storage.PresignedURLResponse
	decodeBody(t, w, &resp)
	assert.True(t, strings.HasPrefix(resp.Key, "products/"))
	assert.True(t, strings.HasSuffix(resp.Key, ".png"))
	assert.Contains(t, resp.UploadURL, "X-Amz-Signature")
	assert.Equal(t, "https://shop-images.s3.us-east-1.amazonaws.com/"+resp.Key, resp.FileURL)
}

func TestUploadController_RejectsBadRequests(t *testing.T) {
	router := setupUploadControllerTest(t)

	w := postJSON(router, "/uploads/presigned-url", GeneratePresignedURLRequest{
		Filename:    "notes.txt",
		ContentType: "text/plain",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.UploadInvalidFileType, decodeError(t, w).Error)

	w = postJSON(router, "/uploads/presigned-url", map[string]string{"content_type": "image/png"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, fieldNames(decodeError(t, w)), "filename")
}
