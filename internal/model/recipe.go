package model

import (
	"time"

	"gorm.io/gorm"
)

// Recipe is a stored recipe. Ingredients is a newline-delimited free-text
// block, one line per ingredient; Portions is free text ("4 Portionen") from
// which the portion count is extracted heuristically.
type Recipe struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	Category      string         `gorm:"size:100;index" json:"category"`
	Portions      string         `gorm:"size:100" json:"portions"`
	Ingredients   string         `gorm:"type:text;not null" json:"ingredients"`
	Instructions  string         `gorm:"type:text" json:"instructions"`
	Notes         string         `gorm:"type:text" json:"notes"`
	ImageFilename string         `gorm:"size:255" json:"image_filename,omitempty"`
}

// Category is a standalone category row. Categories also exist implicitly as
// distinct values of Recipe.Category; the category service merges both views.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
}
