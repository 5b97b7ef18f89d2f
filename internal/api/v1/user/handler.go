package user

import (
	"net/http"
	"promptgallery-backend/internal/middleware"
	"promptgallery-backend/internal/models"
	"promptgallery-backend/internal/services"
	"promptgallery-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	users   *services.UserService
	catalog *services.CatalogService
}

func NewHandler(users *services.UserService, catalog *services.CatalogService) *Handler {
	return &Handler{users: users, catalog: catalog}
}

func toProfileResponse(u *models.User) ProfileResponse {
	return ProfileResponse{
		UID:         u.UID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
		Bio:         u.Bio,
		AuthorName:  u.AuthorName(),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// CurrentUser godoc
// @Summary Get current user
// @Description Get current user's profile
// @Tags user
// @Produce  json
// @Security Bearer
// @Success 200 {object} utils.Response{data=user.ProfileResponse}
// @Failure 401 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /me [get]
func (h *Handler) CurrentUser(c *gin.Context) {
	u, err := h.users.GetProfile(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("User information retrieved successfully", toProfileResponse(u)))
}

// UpdateProfile godoc
// @Summary Update current user
// @Description Existing prompts keep the author name they were created with
// @Tags user
// @Accept json
// @Produce json
// @Security Bearer
// @Param input body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} utils.Response{data=user.ProfileResponse}
// @Failure 400 {object} utils.Response
// @Router /me [patch]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	uid := middleware.CurrentUserID(c)
	u, err := h.users.UpdateProfile(c.Request.Context(), uid, uid, services.ProfilePatch{
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		Bio:         req.Bio,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Profile updated successfully", toProfileResponse(u)))
}

// MyPrompts godoc
// @Summary List my prompts
// @Tags user
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.Response{data=[]models.Prompt}
// @Router /me/prompts [get]
func (h *Handler) MyPrompts(c *gin.Context) {
	prompts, err := h.catalog.ListUserPrompts(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Prompts retrieved successfully", prompts))
}

// MyLikes godoc
// @Summary Ids of the prompts I liked
// @Tags user
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.Response{data=user.LikedPromptsResponse}
// @Router /me/likes [get]
func (h *Handler) MyLikes(c *gin.Context) {
	ids, err := h.catalog.ListLikedPromptIDs(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Likes retrieved successfully", LikedPromptsResponse{PromptIDs: ids}))
}

// MyStats godoc
// @Summary Totals across my prompts
// @Tags user
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.Response{data=repository.AuthorStats}
// @Router /me/stats [get]
func (h *Handler) MyStats(c *gin.Context) {
	stats, err := h.catalog.AuthorStats(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Stats retrieved successfully", stats))
}
