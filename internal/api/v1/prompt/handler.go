package prompt

import (
	"net/http"
	"promptgallery-backend/internal/middleware"
	"promptgallery-backend/internal/models"
	"promptgallery-backend/internal/services"
	"promptgallery-backend/internal/utils"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxImageSize = 10 << 20

type Handler struct {
	catalog *services.CatalogService
}

func NewHandler(catalog *services.CatalogService) *Handler {
	return &Handler{catalog: catalog}
}

// ListPrompts godoc
// @Summary List public prompts
// @Description Newest public prompts, optionally filtered by category or a search term
// @Tags prompts
// @Produce json
// @Param category query string false "Category id"
// @Param q query string false "Search term"
// @Success 200 {object} utils.Response{data=[]models.Prompt}
// @Failure 503 {object} utils.Response
// @Router /prompts [get]
func (h *Handler) ListPrompts(c *gin.Context) {
	ctx := c.Request.Context()
	category := strings.TrimSpace(c.Query("category"))

	var (
		prompts []models.Prompt
		err     error
	)
	if term, ok := c.GetQuery("q"); ok {
		prompts, err = h.catalog.SearchPrompts(ctx, term)
		if err == nil && category != "" {
			prompts = models.FilterByCategory(prompts, models.ParseCategory(category))
		}
	} else {
		prompts, err = h.catalog.ListPublicPrompts(ctx, category)
	}
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Prompts retrieved successfully", prompts))
}

// GetPrompt godoc
// @Summary Get a prompt
// @Tags prompts
// @Produce json
// @Param id path string true "Prompt id"
// @Success 200 {object} utils.Response{data=prompt.PromptResponse}
// @Failure 404 {object} utils.Response
// @Router /prompts/{id} [get]
func (h *Handler) GetPrompt(c *gin.Context) {
	ctx := c.Request.Context()
	viewerID := middleware.CurrentUserID(c)

	p, err := h.catalog.GetPrompt(ctx, c.Param("id"), viewerID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	liked, err := h.catalog.HasUserLiked(ctx, p.ID, viewerID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Prompt retrieved successfully", PromptResponse{Prompt: *p, LikedByMe: liked}))
}

// CreatePrompt godoc
// @Summary Create a prompt
// @Description JSON body, or multipart form with an optional image file
// @Tags prompts
// @Accept json,mpfd
// @Produce json
// @Security Bearer
// @Param input body CreatePromptRequest true "Prompt"
// @Success 201 {object} utils.Response{data=prompt.CreatePromptResponse}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Router /prompts [post]
func (h *Handler) CreatePrompt(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var (
		req   CreatePromptRequest
		image *services.ImageUpload
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if !utils.BindFormAndValidate(c, &req) {
			return
		}

		if fileHeader, err := c.FormFile("image"); err == nil {
			if fileHeader.Size > maxImageSize {
				c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Image exceeds 10MB"))
				return
			}
			file, err := fileHeader.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Could not read image"))
				return
			}
			defer file.Close()

			image = &services.ImageUpload{
				Filename:    fileHeader.Filename,
				ContentType: fileHeader.Header.Get("Content-Type"),
				Body:        file,
			}
		}
	} else if !utils.BindAndValidate(c, &req) {
		return
	}

	authorID := req.AuthorID
	if authorID == "" {
		authorID = user.UID
	}

	id, err := h.catalog.CreatePrompt(c.Request.Context(), user.UID, services.CreatePromptInput{
		Title:      req.Title,
		Content:    req.Content,
		Category:   req.Category,
		IsPublic:   req.IsPublic,
		AuthorID:   authorID,
		AuthorName: user.AuthorName(),
	}, image)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, utils.NewResponse(http.StatusCreated, "Prompt created successfully", CreatePromptResponse{ID: id}))
}

// UpdatePrompt godoc
// @Summary Update a prompt
// @Tags prompts
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Prompt id"
// @Param input body UpdatePromptRequest true "Fields to change"
// @Success 200 {object} utils.Response{data=models.Prompt}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/{id} [patch]
func (h *Handler) UpdatePrompt(c *gin.Context) {
	var req UpdatePromptRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	updated, err := h.catalog.UpdatePrompt(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c), services.PromptPatch{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		IsPublic: req.IsPublic,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Prompt updated successfully", updated))
}

// DeletePrompt godoc
// @Summary Delete a prompt
// @Tags prompts
// @Produce json
// @Security Bearer
// @Param id path string true "Prompt id"
// @Success 200 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/{id} [delete]
func (h *Handler) DeletePrompt(c *gin.Context) {
	if err := h.catalog.DeletePrompt(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c)); err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Prompt deleted successfully", nil))
}

// ToggleLike godoc
// @Summary Like or unlike a prompt
// @Tags prompts
// @Produce json
// @Security Bearer
// @Param id path string true "Prompt id"
// @Success 200 {object} utils.Response{data=prompt.LikeResponse}
// @Failure 404 {object} utils.Response
// @Failure 503 {object} utils.Response
// @Router /prompts/{id}/like [post]
func (h *Handler) ToggleLike(c *gin.Context) {
	liked, err := h.catalog.ToggleLike(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Like updated successfully", LikeResponse{Liked: liked}))
}

// HasLiked godoc
// @Summary Whether the caller likes a prompt
// @Tags prompts
// @Produce json
// @Param id path string true "Prompt id"
// @Success 200 {object} utils.Response{data=prompt.LikeResponse}
// @Router /prompts/{id}/like [get]
func (h *Handler) HasLiked(c *gin.Context) {
	liked, err := h.catalog.HasUserLiked(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Like status retrieved successfully", LikeResponse{Liked: liked}))
}

// CopyPrompt godoc
// @Summary Record a copy of a prompt
// @Description Always succeeds; counting failures are only logged
// @Tags prompts
// @Produce json
// @Param id path string true "Prompt id"
// @Success 200 {object} utils.Response
// @Router /prompts/{id}/copy [post]
func (h *Handler) CopyPrompt(c *gin.Context) {
	metadata := map[string]interface{}{
		"userAgent": c.Request.UserAgent(),
	}
	if requestID := middleware.RequestID(c); requestID != "" {
		metadata["requestId"] = requestID
	}

	h.catalog.IncrementCopyCount(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c), metadata)

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Copy recorded", nil))
}
