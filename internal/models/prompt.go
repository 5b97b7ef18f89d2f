package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SeedAuthorID owns the demonstration prompts.
const SeedAuthorID = "demo"

// Prompt is a shareable AI prompt template.
type Prompt struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title      string    `gorm:"not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Category   Category  `gorm:"type:varchar(32);index;not null;default:'autre'" json:"category"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	ImageKey   string    `json:"-"`
	AuthorID   string    `gorm:"index;not null" json:"authorId"`
	AuthorName string    `json:"authorName"`
	IsPublic   bool      `gorm:"index;not null;default:false" json:"isPublic"`
	Likes      int       `gorm:"not null;default:0" json:"likes"`
	Copies     int       `gorm:"not null;default:0" json:"copies"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (p *Prompt) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Category = ParseCategory(string(p.Category))
	return nil
}

// AfterFind normalizes values read from storage so callers never deal with
// driver-specific representations.
func (p *Prompt) AfterFind(tx *gorm.DB) error {
	p.Category = ParseCategory(string(p.Category))
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return nil
}

// FilterByCategory keeps the prompts of one category, preserving order.
func FilterByCategory(prompts []Prompt, category Category) []Prompt {
	filtered := make([]Prompt, 0, len(prompts))
	for _, p := range prompts {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
