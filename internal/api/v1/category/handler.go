package category

import (
	"net/http"
	"promptgallery-backend/internal/models"
	"promptgallery-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// ListCategories godoc
// @Summary List categories
// @Description Category ids with display label and color, in filter order
// @Tags prompts
// @Produce json
// @Success 200 {object} utils.Response{data=[]models.CategoryInfo}
// @Router /categories [get]
func ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Categories retrieved successfully", models.Categories))
}
