package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"gurukul-backend/internal/auth"
	"gurukul-backend/internal/transport"
)

const AdminKeyHeader = "X-Admin-Key"

// IsAdminRequest reports whether r carries the admin API key or a valid admin
// access token, either in the access cookie or as a bearer token.
func IsAdminRequest(r *http.Request, adminKey string, manager *auth.Manager) bool {
	if adminKey != "" {
		if got := r.Header.Get(AdminKeyHeader); got != "" &&
			subtle.ConstantTimeCompare([]byte(got), []byte(adminKey)) == 1 {
			return true
		}
	}

	if manager == nil {
		return false
	}

	token := ""
	if cookie, err := r.Cookie(auth.AccessCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
	}
	if token == "" {
		return false
	}

	claims, err := manager.Parse(token)
	return err == nil && claims.Role == auth.RoleAdmin && claims.Kind == auth.KindAccess
}

func AdminAuth(adminKey string, manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey == "" && manager == nil {
				transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
				return
			}

			if IsAdminRequest(r, adminKey, manager) {
				next.ServeHTTP(w, r)
				return
			}

			transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		})
	}
}
