package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"tillpoint/internal/domain"
	"tillpoint/internal/repository"
)

// BcryptCost is the cost factor for bcrypt hashing.
const BcryptCost = 10

// bcryptVerifier verifies credentials against the stored user accounts. It is
// the default CredentialVerifier implementation; deployments with a central
// credential service swap in their own.
type bcryptVerifier struct {
	userRepo repository.UserRepository
}

// NewBcryptVerifier creates a CredentialVerifier backed by the user repository.
func NewBcryptVerifier(userRepo repository.UserRepository) CredentialVerifier {
	return &bcryptVerifier{userRepo: userRepo}
}

func (v *bcryptVerifier) Verify(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := v.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// HashPassword hashes a password for storage.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
