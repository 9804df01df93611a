package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/campusdesk/capstone-support-backend/internal/auth"
	"github.com/campusdesk/capstone-support-backend/internal/core/domain"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// PrincipalKey is the key used to store the caller's principal in the
// request context.
const PrincipalKey contextKey = "principal"

// JWTMiddleware validates the JWT token from the Authorization header and
// stores the resulting principal in the request context. Handlers read the
// principal from there and pass it down explicitly; nothing below the
// handler layer touches the context for identity.
func JWTMiddleware(tm *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header is required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Authorization header format must be Bearer {token}", http.StatusUnauthorized)
				return
			}

			claims, err := tm.ValidateToken(parts[1])
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, claims.Principal())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext retrieves the authenticated principal stored by
// JWTMiddleware. ok is false on routes that skipped authentication.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(domain.Principal)
	return p, ok
}
