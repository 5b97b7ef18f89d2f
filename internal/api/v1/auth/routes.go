package auth

import (
	"promptgallery-backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Sign-in happens at the identity provider; only sign-out is served here.
func RegisterRoutes(router *gin.RouterGroup, auth *middleware.Authenticator) {
	group := router.Group("/auth")
	group.POST("/logout", auth.AuthMiddleware(), Logout)
}
