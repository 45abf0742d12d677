package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"tillpoint/internal/domain"
)

// RequireCapability gates a route on the capability matrix. An anonymous
// request never reaches this point (AuthMiddleware runs first), so a missing
// role in context is treated as a denial, never a pass-through.
func RequireCapability(capability domain.Capability, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context",
					zap.String("capability", capability.String()),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if !domain.RoleAllows(role, capability) {
				logger.Warn("Capability denied",
					zap.String("role", role.String()),
					zap.String("capability", capability.String()),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
