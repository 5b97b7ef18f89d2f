package models

import "time"

// SeedMarker proves a named seed set has been inserted.
type SeedMarker struct {
	Name      string `gorm:"primaryKey;type:varchar(64)"`
	CreatedAt time.Time
}
