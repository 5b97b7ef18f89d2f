package prompt

import (
	"promptgallery-backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, h *Handler, auth *middleware.Authenticator) {
	prompts := router.Group("/prompts")
	{
		prompts.GET("", auth.OptionalAuthMiddleware(), h.ListPrompts)
		prompts.GET("/:id", auth.OptionalAuthMiddleware(), h.GetPrompt)
		prompts.GET("/:id/like", auth.OptionalAuthMiddleware(), h.HasLiked)
		prompts.POST("/:id/copy", auth.OptionalAuthMiddleware(), h.CopyPrompt)

		prompts.POST("", auth.AuthMiddleware(), h.CreatePrompt)
		prompts.PATCH("/:id", auth.AuthMiddleware(), h.UpdatePrompt)
		prompts.DELETE("/:id", auth.AuthMiddleware(), h.DeletePrompt)
		prompts.POST("/:id/like", auth.AuthMiddleware(), h.ToggleLike)
	}
}
