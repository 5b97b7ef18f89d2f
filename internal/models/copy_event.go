package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CopyEvent records one copy of a prompt. UserID is empty for anonymous copies.
type CopyEvent struct {
	ID        string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PromptID  string            `gorm:"type:varchar(36);index;not null" json:"promptId"`
	UserID    string            `gorm:"type:varchar(128);index" json:"userId,omitempty"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

func (e *CopyEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
