package upload

import (
	"net/http"
	"promptgallery-backend/internal/storage"
	"promptgallery-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	tokens storage.TokenIssuer
}

// GetOSSToken godoc
// @Summary Get OSS STS Token
// @Description Get STS token for uploading prompt images straight to Alibaba Cloud OSS
// @Tags common
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.Response{data=storage.STSCredentials}
// @Failure 503 {object} utils.Response
// @Router /common/upload/token [get]
func (h *Handler) GetOSSToken(c *gin.Context) {
	if h.tokens == nil {
		c.JSON(http.StatusServiceUnavailable, utils.NewErrorResponse(http.StatusServiceUnavailable, "Direct upload is not configured"))
		return
	}

	token, err := h.tokens.IssueToken(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to get OSS token"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("OSS token retrieved successfully", token))
}
