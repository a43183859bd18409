package domain

import (
	"time"

	"github.com/google/uuid"
)

// VideoStatus статус жизненного цикла видео
type VideoStatus string

const (
	VideoStatusProcessing VideoStatus = "processing"
	VideoStatusPublished  VideoStatus = "published"
	VideoStatusBlocked    VideoStatus = "blocked"
)

// Video представляет собой запись каталога видео
type Video struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	UploaderID     uuid.UUID   `json:"uploader_id" db:"uploader_id"`
	Title          string      `json:"title" db:"title"`
	Description    string      `json:"description,omitempty" db:"description"`
	VideoURL       string      `json:"video_url" db:"video_url"`
	ThumbnailURL   string      `json:"thumbnail_url,omitempty" db:"thumbnail_url"`
	Duration       float64     `json:"duration" db:"duration"`
	Width          int         `json:"width,omitempty" db:"width"`
	Height         int         `json:"height,omitempty" db:"height"`
	Status         VideoStatus `json:"status" db:"status"`
	IsFeatured     bool        `json:"is_featured" db:"is_featured"`
	Category       string      `json:"category,omitempty" db:"category"`
	Tags           StringList  `json:"tags" db:"tags"`
	Views          int64       `json:"views" db:"views"`
	Likes          int64       `json:"likes" db:"likes"`
	Dislikes       int64       `json:"dislikes" db:"dislikes"`
	CommentsCount  int64       `json:"comments_count" db:"comments_count"`
	SharesCount    int64       `json:"shares_count" db:"shares_count"`
	FavoritesCount int64       `json:"favorites_count" db:"favorites_count"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	PublishedAt    *time.Time  `json:"published_at,omitempty" db:"published_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`

	// Денормализованные данные автора, заполняются при выборках
	UploaderUsername       string `json:"uploader_username,omitempty" db:"uploader_username"`
	UploaderDisplayName    string `json:"uploader_display_name,omitempty" db:"uploader_display_name"`
	UploaderProfilePicture string `json:"uploader_profile_picture,omitempty" db:"uploader_profile_picture"`
	UploaderFollowers      int    `json:"uploader_followers_count,omitempty" db:"uploader_followers_count"`
}

// VideoCreateRequest запрос на создание записи видео
type VideoCreateRequest struct {
	Title        string   `json:"title" binding:"required,max=200"`
	Description  string   `json:"description" binding:"max=5000"`
	VideoURL     string   `json:"video_url" binding:"required,url"`
	ThumbnailURL string   `json:"thumbnail_url" binding:"omitempty,url"`
	Duration     float64  `json:"duration" binding:"gte=0"`
	Width        int      `json:"width" binding:"gte=0"`
	Height       int      `json:"height" binding:"gte=0"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
}

// VideoUpdateRequest запрос на обновление видео
type VideoUpdateRequest struct {
	Title        *string   `json:"title,omitempty" binding:"omitempty,max=200"`
	Description  *string   `json:"description,omitempty" binding:"omitempty,max=5000"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty" binding:"omitempty,url"`
	Category     *string   `json:"category,omitempty"`
	Tags         *[]string `json:"tags,omitempty"`
	Status       *string   `json:"status,omitempty" binding:"omitempty,oneof=processing published blocked"`
	IsFeatured   *bool     `json:"is_featured,omitempty"`
}

// VideoListQuery параметры фильтрации списка видео
type VideoListQuery struct {
	Skip     int
	Limit    int
	Search   string
	Category string
	Tags     []string
	SortBy   string
}

// ViewRecord запись о просмотре видео
type ViewRecord struct {
	ID                   uuid.UUID  `json:"id" db:"id"`
	VideoID              uuid.UUID  `json:"video_id" db:"video_id"`
	UserID               *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	WatchDuration        float64    `json:"watch_duration" db:"watch_duration"`
	CompletionPercentage float64    `json:"completion_percentage" db:"completion_percentage"`
	IsCompleted          bool       `json:"is_completed" db:"is_completed"`
	StartedAt            time.Time  `json:"started_at" db:"started_at"`
}

// ViewRequest запрос на регистрацию просмотра
type ViewRequest struct {
	WatchDuration float64 `json:"watch_duration" binding:"gte=0"`
}

// VideoViewStats агрегированная статистика просмотров видео
type VideoViewStats struct {
	VideoID       uuid.UUID `json:"video_id"`
	TotalViews    int64     `json:"total_views"`
	UniqueViewers int64     `json:"unique_viewers"`
	AvgWatchTime  float64   `json:"avg_watch_duration"`
}

// WatchHistoryEntry запись истории просмотров пользователя
type WatchHistoryEntry struct {
	ID            uuid.UUID `json:"id" db:"id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	VideoID       uuid.UUID `json:"video_id" db:"video_id"`
	WatchDuration float64   `json:"watch_duration" db:"watch_duration"`
	WatchedAt     time.Time `json:"watched_at" db:"watched_at"`
}
