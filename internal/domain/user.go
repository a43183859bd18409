package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserRole роль пользователя
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// UserStatus статус учетной записи
type UserStatus string

const (
	UserStatusActive UserStatus = "active"
	UserStatusBanned UserStatus = "banned"
)

// User представляет собой модель пользователя
type User struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Username       string     `json:"username" db:"username"`
	Email          string     `json:"email" db:"email"`
	HashedPassword string     `json:"-" db:"hashed_password"`
	DisplayName    string     `json:"display_name" db:"display_name"`
	Bio            string     `json:"bio,omitempty" db:"bio"`
	ProfilePicture string     `json:"profile_picture,omitempty" db:"profile_picture"`
	CoverImage     string     `json:"cover_image,omitempty" db:"cover_image"`
	Role           UserRole   `json:"role" db:"role"`
	Status         UserStatus `json:"status" db:"status"`
	FollowersCount int        `json:"followers_count" db:"followers_count"`
	FollowingCount int        `json:"following_count" db:"following_count"`
	VideosCount    int        `json:"videos_count" db:"videos_count"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// IsAdmin сообщает, является ли пользователь администратором.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// Principal аутентифицированный субъект запроса, извлекаемый из токена.
// Обработчики полностью доверяют этим данным.
type Principal struct {
	UserID  uuid.UUID `json:"user_id"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"is_admin"`
}

// RegisterRequest запрос на регистрацию
type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50,username"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"max=100"`
}

// LoginRequest запрос на вход
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse ответ на успешный вход
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	User        Principal `json:"user"`
}

// UserUpdateRequest запрос на обновление профиля
type UserUpdateRequest struct {
	DisplayName *string `json:"display_name,omitempty" binding:"omitempty,max=100"`
	Bio         *string `json:"bio,omitempty" binding:"omitempty,max=1000"`
}

// PlatformStats агрегированная статистика платформы для админ-панели
type PlatformStats struct {
	TotalUsers  int   `json:"total_users"`
	BannedUsers int   `json:"banned_users"`
	AdminCount  int   `json:"admin_count"`
	TotalVideos int   `json:"total_videos"`
	TotalViews  int64 `json:"total_views"`
}
