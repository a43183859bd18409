package domain

import (
	"time"

	"github.com/google/uuid"
)

// Comment представляет комментарий к видео. Древовидность — один уровень:
// у ответа заполнен ParentCommentID, у корневого комментария он nil.
type Comment struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	VideoID         uuid.UUID  `json:"video_id" db:"video_id"`
	UserID          uuid.UUID  `json:"user_id" db:"user_id"`
	ParentCommentID *uuid.UUID `json:"parent_comment_id,omitempty" db:"parent_comment_id"`
	Content         string     `json:"content" db:"content"`
	LikesCount      int        `json:"likes_count" db:"likes_count"`
	RepliesCount    int        `json:"replies_count" db:"replies_count"`
	IsEdited        bool       `json:"is_edited" db:"is_edited"`
	IsPinned        bool       `json:"is_pinned" db:"is_pinned"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// CommentCreateRequest запрос на создание комментария
type CommentCreateRequest struct {
	Content         string     `json:"content" binding:"required,max=2000"`
	ParentCommentID *uuid.UUID `json:"parent_comment_id,omitempty"`
}

// CommentUpdateRequest запрос на редактирование комментария
type CommentUpdateRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}
