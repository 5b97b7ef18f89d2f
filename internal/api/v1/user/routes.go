package user

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the /me endpoints. router must already require auth.
func RegisterRoutes(router *gin.RouterGroup, h *Handler) {
	me := router.Group("/me")
	{
		me.GET("", h.CurrentUser)
		me.PATCH("", h.UpdateProfile)
		me.GET("/prompts", h.MyPrompts)
		me.GET("/likes", h.MyLikes)
		me.GET("/stats", h.MyStats)
	}
}
