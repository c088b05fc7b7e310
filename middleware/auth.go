package middleware

import (
	"context"
	"net/http"
	"strings"

	"datee_server/services"
)

type contextKey string

const userIDKey contextKey = "uid"

// Paths that never require a bearer token.
var authExcludedPaths = map[string]bool{
	"/":                  true,
	"/health":            true,
	"/api/user/register": true,
	"/api/auth/token":    true,
}

// Authenticate validates the Authorization bearer token on every request
// outside the excluded list and stashes the caller's uid in the request
// context. Admin routes carry their own guard and are skipped here.
func Authenticate(auth *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authExcludedPaths[r.URL.Path] ||
				strings.HasPrefix(r.URL.Path, "/api/admin/") ||
				strings.HasPrefix(r.URL.Path, "/socket.io/") {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "Missing bearer token", http.StatusUnauthorized)
				return
			}
			uid, err := auth.ValidateAccessToken(token)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, uid)))
		})
	}
}

// CallerUID returns the authenticated user's uid, or "" if the request was
// not authenticated.
func CallerUID(r *http.Request) string {
	uid, _ := r.Context().Value(userIDKey).(string)
	return uid
}

// RequireAdmin guards admin routes with the shared admin password.
func RequireAdmin(password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if password == "" || r.Header.Get("X-Admin-Password") != password {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
