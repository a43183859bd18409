package domain

import (
	"time"

	"github.com/google/uuid"
)

// PlaylistPrivacy видимость плейлиста
type PlaylistPrivacy string

const (
	PlaylistPrivacyPublic  PlaylistPrivacy = "public"
	PlaylistPrivacyPrivate PlaylistPrivacy = "private"
)

// Playlist представляет плейлист пользователя
type Playlist struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description,omitempty" db:"description"`
	Privacy     PlaylistPrivacy `json:"privacy" db:"privacy"`
	VideoCount  int             `json:"video_count" db:"video_count"`
	Views       int64           `json:"views" db:"views"`
	Likes       int64           `json:"likes" db:"likes"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// PlaylistItem позиция видео в плейлисте
type PlaylistItem struct {
	PlaylistID uuid.UUID `json:"playlist_id" db:"playlist_id"`
	VideoID    uuid.UUID `json:"video_id" db:"video_id"`
	Position   int       `json:"position" db:"position"`
	AddedAt    time.Time `json:"added_at" db:"added_at"`
}

// PlaylistCreateRequest запрос на создание плейлиста
type PlaylistCreateRequest struct {
	Title       string          `json:"title" binding:"required,max=150"`
	Description string          `json:"description" binding:"max=2000"`
	Privacy     PlaylistPrivacy `json:"privacy" binding:"omitempty,oneof=public private"`
}

// PlaylistUpdateRequest запрос на обновление плейлиста
type PlaylistUpdateRequest struct {
	Title       *string          `json:"title,omitempty" binding:"omitempty,max=150"`
	Description *string          `json:"description,omitempty" binding:"omitempty,max=2000"`
	Privacy     *PlaylistPrivacy `json:"privacy,omitempty" binding:"omitempty,oneof=public private"`
}
