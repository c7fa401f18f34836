package middleware

import (
	"context"
	"net/http"
	"strings"

	"sosmed/pkg/logger"
	"sosmed/pkg/response"
	"sosmed/pkg/token"
)

type contextKey string

const (
	UserIDKey   contextKey = "userID"
	UsernameKey contextKey = "username"
)

// AuthMiddleware verifies the bearer token and puts the caller's account id
// and username in the request context.
func AuthMiddleware(tokens *token.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Browsers cannot set headers on WebSocket upgrades, so the
			// token may also come in the query string.
			tokenString := r.URL.Query().Get("token")
			if tokenString == "" {
				authHeader := r.Header.Get("Authorization")
				tokenString = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			}

			if tokenString == "" {
				response.Message(w, http.StatusUnauthorized, "Unauthorized: No token provided")
				return
			}

			claims, err := tokens.Verify(tokenString)
			if err != nil {
				logger.Sugar.Debugf("Invalid token: %v", err)
				response.Message(w, http.StatusUnauthorized, "Unauthorized: Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.ID)
			ctx = context.WithValue(ctx, UsernameKey, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated caller, or "" outside AuthMiddleware.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}
