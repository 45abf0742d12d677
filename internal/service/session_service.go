package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tillpoint/internal/domain"
	"tillpoint/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotAuthenticated   = errors.New("no authenticated session")
	ErrPermissionDenied   = errors.New("permission denied")
)

const (
	AccessTokenExpiration  = 12 * time.Hour
	RefreshTokenExpiration = 7 * 24 * time.Hour
)

// SessionState is the access-control state machine. The terminal session is a
// process-wide singleton: Anonymous until a login succeeds, Authenticated
// until logout or an invalid stored credential.
type SessionState int

const (
	SessionAnonymous SessionState = iota
	SessionAuthenticating
	SessionAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case SessionAnonymous:
		return "anonymous"
	case SessionAuthenticating:
		return "authenticating"
	case SessionAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Claims are the JWT claims carried by both tokens of the session pair.
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	TokenType string    `json:"token_type"`
	jwt.RegisteredClaims
}

// CredentialVerifier is the credential-verification boundary. Verification is
// an external concern: the engine never embeds password checks or bypass
// credentials of its own.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) (*domain.User, error)
}

// SessionService drives the session state machine and answers capability
// checks. Capability evaluation is a pure function of the current state and
// the declared requirement.
type SessionService interface {
	Login(ctx context.Context, username, password string) (*domain.TokenPair, *domain.User, error)
	Logout(ctx context.Context) error
	// Resume resolves the session state once from the persisted token pair.
	// Anything short of a valid token for an active user leaves the session
	// Anonymous and purges the stale tokens.
	Resume(ctx context.Context) (*domain.User, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
	State() SessionState
	CurrentUser() (*domain.User, bool)
	Allowed(capability domain.Capability) bool
	Require(capability domain.Capability) error
}

type sessionService struct {
	mu          sync.Mutex
	state       SessionState
	user        *domain.User
	verifier    CredentialVerifier
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	jwtSecret   string
	logger      *zap.Logger
}

// NewSessionService creates a session in the Anonymous state.
func NewSessionService(
	verifier CredentialVerifier,
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	jwtSecret string,
	logger *zap.Logger,
) SessionService {
	return &sessionService{
		state:       SessionAnonymous,
		verifier:    verifier,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		jwtSecret:   jwtSecret,
		logger:      logger,
	}
}

func (s *sessionService) Login(ctx context.Context, username, password string) (*domain.TokenPair, *domain.User, error) {
	s.mu.Lock()
	s.state = SessionAuthenticating
	s.mu.Unlock()

	user, err := s.verifier.Verify(ctx, username, password)
	if err != nil {
		// Failed authentication returns the machine to Anonymous; the error
		// surfaces to the caller.
		s.mu.Lock()
		s.state = SessionAnonymous
		s.user = nil
		s.mu.Unlock()
		return nil, nil, err
	}

	accessToken, err := s.generateToken(user, "access", AccessTokenExpiration)
	if err != nil {
		s.mu.Lock()
		s.state = SessionAnonymous
		s.mu.Unlock()
		return nil, nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.generateToken(user, "refresh", RefreshTokenExpiration)
	if err != nil {
		s.mu.Lock()
		s.state = SessionAnonymous
		s.mu.Unlock()
		return nil, nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	tokens := &domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}
	if err := s.sessionRepo.SaveTokens(ctx, tokens); err != nil {
		s.mu.Lock()
		s.state = SessionAnonymous
		s.mu.Unlock()
		return nil, nil, err
	}

	s.mu.Lock()
	s.state = SessionAuthenticated
	s.user = user
	s.mu.Unlock()

	s.logger.Info("Session authenticated",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role.String()),
	)
	return tokens, user, nil
}

func (s *sessionService) Logout(ctx context.Context) error {
	if err := s.sessionRepo.Purge(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = SessionAnonymous
	s.user = nil
	s.mu.Unlock()

	s.logger.Info("Session logged out")
	return nil
}

func (s *sessionService) Resume(ctx context.Context) (*domain.User, error) {
	tokens, err := s.sessionRepo.LoadTokens(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}

	claims, err := s.ValidateToken(tokens.AccessToken)
	if err != nil {
		s.logger.Info("Stored session token invalid, purging", zap.Error(err))
		return nil, s.sessionRepo.Purge(ctx)
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Info("Stored session user no longer exists, purging")
			return nil, s.sessionRepo.Purge(ctx)
		}
		return nil, err
	}
	if !user.IsActive {
		s.logger.Info("Stored session user is inactive, purging",
			zap.String("user_id", user.ID.String()))
		return nil, s.sessionRepo.Purge(ctx)
	}

	s.mu.Lock()
	s.state = SessionAuthenticated
	s.user = user
	s.mu.Unlock()

	s.logger.Info("Session resumed from stored tokens",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role.String()),
	)
	return user, nil
}

func (s *sessionService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.ValidateToken(refreshToken)
	if err != nil {
		return "", ErrInvalidToken
	}
	if claims.TokenType != "refresh" {
		return "", ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return "", ErrInvalidToken
	}

	accessToken, err := s.generateToken(user, "access", AccessTokenExpiration)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	if err := s.sessionRepo.SaveTokens(ctx, &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}); err != nil {
		return "", err
	}
	return accessToken, nil
}

func (s *sessionService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *sessionService) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *sessionService) CurrentUser() (*domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionAuthenticated || s.user == nil {
		return nil, false
	}
	user := *s.user
	return &user, true
}

// Allowed evaluates a capability check. Anonymous always denies; an
// authenticated session delegates to the role capability matrix. No side
// effects, no I/O.
func (s *sessionService) Allowed(capability domain.Capability) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionAuthenticated || s.user == nil {
		return false
	}
	return domain.RoleAllows(s.user.Role, capability)
}

func (s *sessionService) Require(capability domain.Capability) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionAuthenticated || s.user == nil {
		return ErrNotAuthenticated
	}
	if !domain.RoleAllows(s.user.Role, capability) {
		return ErrPermissionDenied
	}
	return nil
}

func (s *sessionService) generateToken(user *domain.User, tokenType string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    user.ID,
		Role:      user.Role.String(),
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
