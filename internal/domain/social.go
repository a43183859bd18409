package domain

import (
	"time"

	"github.com/google/uuid"
)

// LikeType тип реакции на видео
type LikeType string

const (
	LikeTypeLike    LikeType = "like"
	LikeTypeDislike LikeType = "dislike"
)

// Like представляет реакцию пользователя на видео (одна на пару пользователь-видео)
type Like struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	VideoID   uuid.UUID `json:"video_id" db:"video_id"`
	LikeType  LikeType  `json:"like_type" db:"like_type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LikeRequest запрос на установку реакции
type LikeRequest struct {
	LikeType LikeType `json:"like_type" binding:"required,oneof=like dislike"`
}

// LikeResult результат операции с реакцией: created, updated или removed
type LikeResult struct {
	Action   string   `json:"action"`
	LikeType LikeType `json:"like_type"`
}

// LikeStatus текущая реакция пользователя на видео
type LikeStatus struct {
	Liked    bool      `json:"liked"`
	Disliked bool      `json:"disliked"`
	LikeType *LikeType `json:"like_type"`
}

// Follow представляет связь "подписан на автора"
type Follow struct {
	ID             uuid.UUID `json:"id" db:"id"`
	FollowerID     uuid.UUID `json:"follower_id" db:"follower_id"`
	FollowingID    uuid.UUID `json:"following_id" db:"following_id"`
	NotifyOnUpload bool      `json:"notify_on_upload" db:"notify_on_upload"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// SavedVideo представляет сохраненное (избранное) видео пользователя
type SavedVideo struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	VideoID   uuid.UUID `json:"video_id" db:"video_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
