package middleware

import (
	"context"
	"net/http"
	"strings"

	"onsamuse/internal/model"
	"onsamuse/internal/service"
)

type contextKey string

const PlayerKey contextKey = "player"

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// OptionalPlayer attaches the player of a valid bearer token to the context.
// Requests without a token pass through; a bad token is rejected.
func (m *AuthMiddleware) OptionalPlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), PlayerKey, claims.Player)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetPlayer extracts the authenticated player from context
func GetPlayer(ctx context.Context) model.PlayerID {
	if v, ok := ctx.Value(PlayerKey).(model.PlayerID); ok {
		return v
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
