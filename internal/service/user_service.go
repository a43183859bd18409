package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/internal/integration/cloudinary"
	"github.com/videohub/videohub-api/internal/metrics"
	"github.com/videohub/videohub-api/internal/middleware"
	"github.com/videohub/videohub-api/internal/repository"
	"github.com/videohub/videohub-api/pkg/logger"
)

// UserService интерфейс сервиса пользователей и аутентификации.
type UserService interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req domain.UserUpdateRequest) (*domain.User, error)

	// SetProfilePicture сохраняет новую аватарку и удаляет старую с медиа-хоста.
	SetProfilePicture(ctx context.Context, userID uuid.UUID, pictureURL string) (*domain.User, error)

	// DeleteAccount удаляет учетную запись вместе с медиафайлами профиля.
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

// AuthConfig параметры выпуска токенов и хеширования паролей.
type AuthConfig struct {
	JWTSecret  []byte
	TokenTTL   time.Duration
	BcryptCost int
}

type userService struct {
	userRepo  repository.UserRepository
	mediaHost cloudinary.MediaHost
	metrics   metrics.PlatformMetrics
	auth      AuthConfig
	log       *logger.Logger
	now       func() time.Time
}

// NewUserService создает новый сервис пользователей.
func NewUserService(
	userRepo repository.UserRepository,
	mediaHost cloudinary.MediaHost,
	platformMetrics metrics.PlatformMetrics,
	auth AuthConfig,
	log *logger.Logger,
) UserService {
	if auth.BcryptCost == 0 {
		auth.BcryptCost = bcrypt.DefaultCost
	}
	return &userService{
		userRepo:  userRepo,
		mediaHost: mediaHost,
		metrics:   platformMetrics,
		auth:      auth,
		log:       log,
		now:       time.Now,
	}
}

// Register создает нового пользователя с захешированным паролем.
func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}

	user := &domain.User{
		ID:             uuid.New(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: string(hashed),
		DisplayName:    displayName,
		Role:           domain.UserRoleUser,
		Status:         domain.UserStatusActive,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("service: failed to register user: %w", err)
	}

	s.metrics.IncUserRegistered()
	s.log.Infow("User registered", "userID", user.ID, "username", user.Username)
	return user, nil
}

// Login проверяет учетные данные и выпускает access-токен.
func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Не раскрываем, существует ли email
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("service: failed to get user for login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		s.log.Warnw("Login attempt with wrong password", "userID", user.ID)
		return nil, domain.ErrInvalidCredentials
	}

	if user.Status == domain.UserStatusBanned {
		s.log.Warnw("Login attempt by banned user", "userID", user.ID)
		return nil, domain.ErrUnauthorized
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, fmt.Errorf("service: failed to issue token: %w", err)
	}

	s.log.Infow("User logged in", "userID", user.ID)
	return &domain.LoginResponse{
		AccessToken: token,
		User: domain.Principal{
			UserID:  user.ID,
			Email:   user.Email,
			IsAdmin: user.IsAdmin(),
		},
	}, nil
}

func (s *userService) issueToken(user *domain.User) (string, error) {
	now := s.now()
	claims := middleware.TokenClaims{
		Email:   user.Email,
		IsAdmin: user.IsAdmin(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.auth.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.auth.JWTSecret)
}

// GetProfile возвращает профиль пользователя.
func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("service: failed to get user profile: %w", err)
	}
	return user, nil
}

// GetByUsername возвращает публичный профиль по имени пользователя.
func (s *userService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("service: failed to get user by username: %w", err)
	}
	return user, nil
}

// UpdateProfile обновляет заполненные поля профиля.
func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req domain.UserUpdateRequest) (*domain.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("service: failed to update profile: %w", err)
	}

	return user, nil
}

// SetProfilePicture сохраняет новую аватарку, старая удаляется с медиа-хоста.
func (s *userService) SetProfilePicture(ctx context.Context, userID uuid.UUID, pictureURL string) (*domain.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	oldPicture := user.ProfilePicture
	user.ProfilePicture = pictureURL

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("service: failed to update profile picture: %w", err)
	}

	if oldPicture != "" && oldPicture != pictureURL {
		s.discardMediaAsset(ctx, oldPicture, "image")
	}

	return user, nil
}

// DeleteAccount удаляет учетную запись и медиафайлы профиля.
func (s *userService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("service: failed to delete account: %w", err)
	}

	s.discardMediaAsset(ctx, user.ProfilePicture, "image")
	s.discardMediaAsset(ctx, user.CoverImage, "image")

	s.log.Infow("Account deleted", "userID", userID)
	return nil
}

// discardMediaAsset удаляет файл с медиа-хоста по URL. Ошибки удаления
// не роняют операцию: запись в БД уже обновлена, файл можно удалить позже.
func (s *userService) discardMediaAsset(ctx context.Context, rawURL, resourceType string) {
	if rawURL == "" {
		return
	}
	publicID := s.mediaHost.ExtractPublicID(rawURL)
	if publicID == "" {
		return
	}
	if err := s.mediaHost.Destroy(ctx, publicID, resourceType); err != nil {
		s.log.Warnw("Failed to destroy media asset", "error", err, "publicID", publicID)
	}
}
