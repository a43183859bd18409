package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category категория каталога видео
type Category struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Slug         string    `json:"slug" db:"slug"`
	Description  string    `json:"description,omitempty" db:"description"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	VideoCount   int       `json:"video_count" db:"video_count"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Tag тег каталога видео
type Tag struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Slug       string    `json:"slug" db:"slug"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	VideoCount int       `json:"video_count" db:"video_count"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// CategoryRequest запрос на создание/обновление категории
type CategoryRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	Slug         string `json:"slug" binding:"required,max=100,slug"`
	Description  string `json:"description" binding:"max=1000"`
	DisplayOrder int    `json:"display_order" binding:"gte=0"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

// TagRequest запрос на создание тега
type TagRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Slug string `json:"slug" binding:"required,max=100,slug"`
}
