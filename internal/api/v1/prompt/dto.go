package prompt

import "promptgallery-backend/internal/models"

// CreatePromptRequest is accepted as JSON or as multipart form with an
// optional "image" file. AuthorID defaults to the caller.
type CreatePromptRequest struct {
	Title    string `json:"title" form:"title" binding:"required,max=200"`
	Content  string `json:"content" form:"content" binding:"required"`
	Category string `json:"category" form:"category" binding:"required"`
	IsPublic bool   `json:"isPublic" form:"isPublic"`
	AuthorID string `json:"authorId" form:"authorId"`
}

// UpdatePromptRequest carries a partial update. Counter fields sent by
// clients are not part of it and are dropped on decode.
type UpdatePromptRequest struct {
	Title    *string `json:"title" binding:"omitempty,max=200"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
	IsPublic *bool   `json:"isPublic"`
	ImageURL *string `json:"imageUrl"`
}

type CreatePromptResponse struct {
	ID string `json:"id"`
}

type PromptResponse struct {
	models.Prompt
	LikedByMe bool `json:"likedByMe"`
}

type LikeResponse struct {
	Liked bool `json:"liked"`
}
