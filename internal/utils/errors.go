package utils

import (
	"errors"
	"net/http"
	"promptgallery-backend/internal/services"

	"github.com/gin-gonic/gin"
)

// ErrorStatus maps a service error to its HTTP status and public message.
func ErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, "Invalid request parameters"
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, services.ErrPromptNotFound):
		return http.StatusNotFound, "Prompt not found"
	case errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, services.ErrTransientStore):
		return http.StatusServiceUnavailable, "Service temporarily unavailable, please retry"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// RespondError writes the error envelope. Server-side failures are attached
// to the gin context so the request logger records them.
func RespondError(c *gin.Context, err error) {
	status, message := ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}

	var data interface{}
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		data = gin.H{"fields": verr.Fields}
	}

	c.JSON(status, NewResponse(status, message, data))
}
