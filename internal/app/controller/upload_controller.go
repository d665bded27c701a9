package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/shopfront-backend/internal/errors"
	"github.com/ikkim/shopfront-backend/internal/middleware"
	"github.com/ikkim/shopfront-backend/internal/storage"
)

type UploadController struct {
	storage *storage.S3Storage
}

func NewUploadController(storage *storage.S3Storage) *UploadController {
	return &UploadController{
		storage: storage,
	}
}

type GeneratePresignedURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Folder      string `json:"folder"` // defaults to "products"
}

// GeneratePresignedURL generates a presigned URL for uploading an image to S3
// POST /uploads/presigned-url
func (ctrl *UploadController) GeneratePresignedURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req GeneratePresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err, "Invalid presigned URL request")
		return
	}

	if err := storage.ValidateContentType(req.ContentType); err != nil {
		apperrors.Respond(c, apperrors.Validation(apperrors.UploadInvalidFileType, "Invalid file type",
			apperrors.Field("content_type", err.Error())))
		return
	}

	folder := req.Folder
	if folder == "" {
		folder = "products"
	}

	response, err := ctrl.storage.GeneratePresignedURL(c.Request.Context(), req.Filename, req.ContentType, folder)
	if err != nil {
		apperrors.Respond(c, apperrors.Storage("failed to generate presigned URL", err).WithCode(apperrors.UploadFailed))
		return
	}

	log.Info("Presigned URL generated", map[string]interface{}{
		"key": response.Key,
	})

	c.JSON(http.StatusOK, response)
}
