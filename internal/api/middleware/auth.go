package middleware

import (
	"net/http"
	"strings"

	"github.com/kiranshivaraju/hireflow/internal/api/response"
	"github.com/kiranshivaraju/hireflow/pkg/models"
)

// TokenValidator resolves a bearer token to the caller it was issued to.
type TokenValidator interface {
	ValidateAccessToken(token string) (models.Identity, error)
}

// Auth provides authentication and role-checking middleware.
type Auth struct {
	tokens TokenValidator
}

// NewAuth creates a new Auth middleware.
func NewAuth(tokens TokenValidator) *Auth {
	return &Auth{tokens: tokens}
}

// Authenticate validates the Bearer token and stores the caller's identity
// in the request context.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractBearerToken(r)
		if raw == "" {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Missing or invalid Authorization header", nil)
			return
		}

		id, err := a.tokens.ValidateAccessToken(raw)
		if err != nil {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Invalid or expired session", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(SetIdentity(r.Context(), id)))
	})
}

// RequireRole returns middleware that only lets callers with role through.
func (a *Auth) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := GetIdentity(r)
			if !ok || id.Role != role {
				response.Error(w, http.StatusForbidden,
					"FORBIDDEN", "Insufficient permissions", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
