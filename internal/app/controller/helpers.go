package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/shopfront-backend/internal/errors"
	"github.com/ikkim/shopfront-backend/internal/middleware"
)

// parseIDParam reads a positive numeric path parameter.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid ID parameter", map[string]interface{}{
			"param": name,
			"value": raw,
		})
		apperrors.Respond(c, apperrors.Validation(apperrors.ValidationInvalidID, "Invalid ID",
			apperrors.Field(name, "must be a positive integer")))
		return 0, false
	}
	return uint(id), true
}

// requireUserID returns the authenticated user id or replies 401.
func requireUserID(c *gin.Context) (uint, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return 0, false
	}
	return userID, true
}

func respondBindingError(c *gin.Context, err error, msg string) {
	middleware.GetLoggerFromContext(c).Warn(msg, map[string]interface{}{
		"error": err.Error(),
	})
	apperrors.Respond(c, apperrors.FromBinding(err))
}
