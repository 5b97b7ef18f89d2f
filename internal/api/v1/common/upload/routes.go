package upload

import (
	"promptgallery-backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the upload endpoints. tokens may be nil when direct
// uploads are not configured.
func RegisterRoutes(router *gin.RouterGroup, tokens storage.TokenIssuer) {
	h := &Handler{tokens: tokens}
	group := router.Group("/common/upload")
	{
		group.GET("/token", h.GetOSSToken)
	}
}
