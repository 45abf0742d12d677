package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tillpoint/internal/domain"
	"tillpoint/internal/store"
)

var (
	ErrSessionNotFound = errors.New("no stored session")
)

// SessionRepository persists the terminal's session token pair so a restarted
// process can resume its authenticated state.
type SessionRepository interface {
	SaveTokens(ctx context.Context, tokens *domain.TokenPair) error
	LoadTokens(ctx context.Context) (*domain.TokenPair, error)
	Purge(ctx context.Context) error
}

type sessionRepository struct {
	store store.Store
}

// NewSessionRepository creates a new instance of SessionRepository.
func NewSessionRepository(s store.Store) SessionRepository {
	return &sessionRepository{store: s}
}

func (r *sessionRepository) SaveTokens(ctx context.Context, tokens *domain.TokenPair) error {
	raw, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("failed to encode session tokens: %w", err)
	}
	if err := r.store.Set(ctx, store.KeySessionTokens, raw); err != nil {
		return fmt.Errorf("failed to save session tokens: %w", err)
	}
	return nil
}

func (r *sessionRepository) LoadTokens(ctx context.Context) (*domain.TokenPair, error) {
	raw, err := r.store.Get(ctx, store.KeySessionTokens)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session tokens: %w", err)
	}

	var tokens domain.TokenPair
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return nil, fmt.Errorf("failed to decode session tokens: %w", err)
	}
	return &tokens, nil
}

func (r *sessionRepository) Purge(ctx context.Context) error {
	if err := r.store.Delete(ctx, store.KeySessionTokens); err != nil {
		return fmt.Errorf("failed to purge session tokens: %w", err)
	}
	return nil
}
