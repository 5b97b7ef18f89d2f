package auth

import (
	"net/http"
	"promptgallery-backend/internal/middleware"
	"promptgallery-backend/internal/services"
	"promptgallery-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// Logout godoc
// @Summary Log out a user
// @Description Invalidate the user's current token until it expires
// @Tags auth
// @Produce  json
// @Security Bearer
// @Success 200 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /auth/logout [post]
func Logout(c *gin.Context) {
	tokenString, claims, ok := middleware.CurrentToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	if err := services.AddToDenylist(c.Request.Context(), tokenString, utils.TokenTTL(claims)); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to denylist token"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Logged out successfully", nil))
}
