package models

import "time"

// Like is one user's active endorsement of one prompt. At most one row
// exists per (user, prompt) pair; unliking deletes the row.
type Like struct {
	UserID    string    `gorm:"primaryKey;type:varchar(128)" json:"userId"`
	PromptID  string    `gorm:"primaryKey;type:varchar(36);index" json:"promptId"`
	CreatedAt time.Time `json:"createdAt"`
}
