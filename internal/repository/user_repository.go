package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tillpoint/internal/domain"
	"tillpoint/internal/store"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this username already exists")
)

// UserRepository persists operator accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type userRepository struct {
	store store.Store
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(s store.Store) UserRepository {
	return &userRepository{store: s}
}

func (r *userRepository) load(ctx context.Context) ([]domain.User, error) {
	raw, err := r.store.Get(ctx, store.KeyUsers)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return []domain.User{}, nil
		}
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	// PasswordHash is tagged json:"-" for API responses, so persistence uses a
	// wrapper that carries the hash explicitly.
	var records []userRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	users := make([]domain.User, len(records))
	for i, rec := range records {
		users[i] = rec.User
		users[i].PasswordHash = rec.PasswordHash
	}
	return users, nil
}

type userRecord struct {
	domain.User
	PasswordHash string `json:"passwordHash"`
}

func (r *userRepository) save(ctx context.Context, users []domain.User) error {
	records := make([]userRecord, len(users))
	for i, u := range users {
		records[i] = userRecord{User: u, PasswordHash: u.PasswordHash}
	}

	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode users: %w", err)
	}
	if err := r.store.Set(ctx, store.KeyUsers, raw); err != nil {
		return fmt.Errorf("failed to save users: %w", err)
	}
	return nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	users, err := r.load(ctx)
	if err != nil {
		return err
	}
	for _, existing := range users {
		if existing.Username == user.Username {
			return ErrUserAlreadyExists
		}
	}
	users = append(users, *user)
	return r.save(ctx, users)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	users, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].ID == user.ID {
			users[i] = *user
			return r.save(ctx, users)
		}
	}
	return ErrUserNotFound
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.load(ctx)
}
