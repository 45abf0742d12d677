package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tillpoint/internal/domain"
	"tillpoint/internal/middleware"
	"tillpoint/internal/service"
)

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents the token refresh request payload
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// CreateUserRequest represents the admin user-creation payload
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin cashier"`
}

// SetUserActiveRequest represents the account enable/disable payload
type SetUserActiveRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         UserProfile `json:"user"`
}

// RefreshResponse represents the token refresh response
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// UserProfile represents operator profile data
type UserProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

func profileOf(user *domain.User) UserProfile {
	return UserProfile{
		ID:       user.ID.String(),
		Username: user.Username,
		FullName: user.FullName,
		Role:     user.Role.String(),
	}
}

// AuthHandler handles HTTP requests for session and account operations
type AuthHandler struct {
	sessionSvc service.SessionService
	userSvc    service.UserService
	logger     *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(sessionSvc service.SessionService, userSvc service.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		sessionSvc: sessionSvc,
		userSvc:    userSvc,
		logger:     logger,
	}
}

// RegisterRoutes registers all auth routes
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware, loginRateLimit func(http.Handler) http.Handler) {
	r.Route("/api/auth", func(r chi.Router) {
		r.With(loginRateLimit).Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/logout", h.Logout)
			r.Get("/profile", h.Profile)
		})
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireCapability(domain.CapManageUsers, h.logger))
		r.Post("/", h.CreateUser)
		r.Get("/", h.ListUsers)
		r.Put("/{id}/active", h.SetUserActive)
	})
}

// Login authenticates the operator and opens the terminal session
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, user, err := h.sessionSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Debug("Login failed", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         profileOf(user),
	})
}

// Logout closes the terminal session and purges the stored token pair
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionSvc.Logout(r.Context()); err != nil {
		h.logger.Error("Logout failed", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Refresh exchanges a refresh token for a new access token
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accessToken, err := h.sessionSvc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, RefreshResponse{AccessToken: accessToken})
}

// Profile returns the current operator's profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessionSvc.CurrentUser()
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "no authenticated session")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, profileOf(user))
}

// CreateUser creates a new operator account (admin only)
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "unknown role")
		return
	}

	user, err := h.userSvc.Create(r.Context(), req.Username, req.Password, req.FullName, role)
	if err != nil {
		h.logger.Error("User creation failed", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, profileOf(user))
}

// ListUsers lists operator accounts (admin only)
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userSvc.List(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	profiles := make([]UserProfile, len(users))
	for i := range users {
		profiles[i] = profileOf(&users[i])
	}
	middleware.RespondWithJSON(w, http.StatusOK, profiles)
}

// SetUserActive enables or disables an operator account (admin only)
func (h *AuthHandler) SetUserActive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req SetUserActiveRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userSvc.SetActive(r.Context(), id, *req.IsActive)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, profileOf(user))
}

// operatorID extracts the authenticated operator's id from the request
// context. Shared by the cart, hold and sale handlers.
func operatorID(r *http.Request) (uuid.UUID, bool) {
	raw, ok := middleware.GetUserID(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
