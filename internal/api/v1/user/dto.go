package user

import "time"

// ProfileResponse is the caller's own profile.
type ProfileResponse struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoURL"`
	Bio         string    `json:"bio"`
	AuthorName  string    `json:"authorName"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName" binding:"omitempty,max=80"`
	PhotoURL    *string `json:"photoURL"`
	Bio         *string `json:"bio" binding:"omitempty,max=500"`
}

type LikedPromptsResponse struct {
	PromptIDs []string `json:"promptIds"`
}
