package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/internal/repository"
	"github.com/videohub/videohub-api/pkg/logger"
)

// AdminService интерфейс административных операций над пользователями.
type AdminService interface {
	ListUsers(ctx context.Context, skip, limit int) ([]domain.User, error)

	// BanUser блокирует пользователя. Администратора заблокировать нельзя.
	BanUser(ctx context.Context, userID uuid.UUID) error
	UnbanUser(ctx context.Context, userID uuid.UUID) error

	// PromoteToAdmin выдает пользователю права администратора.
	PromoteToAdmin(ctx context.Context, userID uuid.UUID) error

	PlatformStats(ctx context.Context) (*domain.PlatformStats, error)
}

type adminService struct {
	userRepo repository.UserRepository
	log      *logger.Logger
}

// NewAdminService создает новый административный сервис.
func NewAdminService(userRepo repository.UserRepository, log *logger.Logger) AdminService {
	return &adminService{
		userRepo: userRepo,
		log:      log,
	}
}

// ListUsers возвращает страницу пользователей.
func (s *adminService) ListUsers(ctx context.Context, skip, limit int) ([]domain.User, error) {
	normalizePage(&skip, &limit)
	users, err := s.userRepo.List(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list users: %w", err)
	}
	return users, nil
}

// BanUser блокирует пользователя.
func (s *adminService) BanUser(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("service: failed to get user: %w", err)
	}

	if user.IsAdmin() {
		return domain.ErrInvalidOperation
	}

	if err := s.userRepo.SetStatus(ctx, userID, domain.UserStatusBanned); err != nil {
		return fmt.Errorf("service: failed to ban user: %w", err)
	}

	s.log.Infow("User banned", "userID", userID)
	return nil
}

// UnbanUser разблокирует пользователя.
func (s *adminService) UnbanUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.SetStatus(ctx, userID, domain.UserStatusActive); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("service: failed to unban user: %w", err)
	}

	s.log.Infow("User unbanned", "userID", userID)
	return nil
}

// PromoteToAdmin выдает права администратора.
func (s *adminService) PromoteToAdmin(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.SetRole(ctx, userID, domain.UserRoleAdmin); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("service: failed to promote user: %w", err)
	}

	s.log.Infow("User promoted to admin", "userID", userID)
	return nil
}

// PlatformStats возвращает сводную статистику платформы.
func (s *adminService) PlatformStats(ctx context.Context) (*domain.PlatformStats, error) {
	stats, err := s.userRepo.PlatformStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get platform stats: %w", err)
	}
	return stats, nil
}
