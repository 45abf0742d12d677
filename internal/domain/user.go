package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an operator account. Password hashes never leave the process in API
// responses.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TokenPair is the persisted session token pair for the active terminal
// session. It is what lets a restarted process resume an authenticated state.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
