package models

import "time"

// User is the profile projection of an authenticated identity.
type User struct {
	UID         string    `gorm:"primaryKey;type:varchar(128)" json:"uid"`
	Email       string    `gorm:"index" json:"email"`
	DisplayName string    `json:"displayName,omitempty"`
	PhotoURL    string    `json:"photoURL,omitempty"`
	Bio         string    `gorm:"type:text" json:"bio,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AuthorName is the name captured on prompts the user creates.
func (u User) AuthorName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Email != "" {
		return u.Email
	}
	return "Utilisateur anonyme"
}
