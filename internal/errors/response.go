package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopfront-backend/pkg/logger"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

const genericInternalMessage = "Something went wrong, please try again later"

// RespondWithError writes an error body and aborts the handler chain.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// Respond is the single place where errors turn into HTTP replies.
// Storage errors and anything unclassified are reported generically.
func Respond(c *gin.Context, err error) {
	appErr, ok := As(err)
	if !ok || appErr.Kind == KindStorage {
		log := requestLogger(c)
		log.Error("Request failed with internal error", err, map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		code := InternalServerError
		if ok && appErr.Code != "" {
			code = appErr.Code
		}
		RespondWithError(c, http.StatusInternalServerError, code, genericInternalMessage)
		return
	}

	if appErr.Err != nil {
		requestLogger(c).Debug("Request rejected", map[string]interface{}{
			"code":  appErr.Code,
			"cause": appErr.Err.Error(),
		})
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus(), ErrorResponse{
		Error:   appErr.Code,
		Message: appErr.Message,
		Fields:  appErr.Fields,
	})
}

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func requestLogger(c *gin.Context) *logger.Logger {
	if l, exists := c.Get("logger"); exists {
		if typed, ok := l.(*logger.Logger); ok {
			return typed
		}
	}
	return logger.Get()
}
