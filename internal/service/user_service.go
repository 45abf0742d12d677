package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tillpoint/internal/domain"
	"tillpoint/internal/repository"
)

// UserService manages operator accounts. Account management is admin-only and
// gated at the transport layer by CapManageUsers.
type UserService interface {
	Create(ctx context.Context, username, password, fullName string, role domain.Role) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	// SetActive enables or disables an account. A disabled account can no
	// longer log in and any stored session for it is rejected on resume.
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.User, error)
	// EnsureDefaultAdmin seeds an admin account when the user collection is
	// empty so a fresh install is reachable.
	EnsureDefaultAdmin(ctx context.Context, username, password string) error
}

type userService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new instance of UserService.
func NewUserService(userRepo repository.UserRepository, logger *zap.Logger) UserService {
	return &userService{userRepo: userRepo, logger: logger}
}

func (s *userService) Create(ctx context.Context, username, password, fullName string, role domain.Role) (*domain.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", role.String()),
	)
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.IsActive = active
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User active flag changed",
		zap.String("user_id", user.ID.String()),
		zap.Bool("active", active),
	)
	return user, nil
}

func (s *userService) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	_, err = s.Create(ctx, username, password, "Administrator", domain.RoleAdmin)
	if err != nil {
		return err
	}
	s.logger.Warn("Seeded default admin account, change its password",
		zap.String("username", username))
	return nil
}
