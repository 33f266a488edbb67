// Package auth provides authentication for the monitoring/admin surface.
// The tracking registry itself records sessions for any caller; only the
// operator-facing endpoints are gated.
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// contextKey is a private type for context keys.
type contextKey int

const userContextKey contextKey = iota

// User holds information about an authenticated operator.
type User struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles,omitempty"`
}

// HasRole checks whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// WithUser stores the authenticated user on the context.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// GetUser returns the authenticated user, or nil if the request was not
// authenticated.
func GetUser(ctx context.Context) *User {
	u, _ := ctx.Value(userContextKey).(*User)
	return u
}

// Authenticator validates request credentials. A nil User with a nil
// error means the credentials were absent or invalid (unauthenticated);
// a non-nil error means the check itself failed.
type Authenticator interface {
	Authenticate(r *http.Request) (*User, error)
}

// BearerToken extracts the credential from the Authorization header or,
// failing that, the X-API-Key header.
func BearerToken(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return token
	}
	return r.Header.Get("X-API-Key")
}

// Require wraps a handler so only authenticated requests reach it.
func Require(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.Authenticate(r)
			if err != nil {
				unauthorized(w, http.StatusInternalServerError, "authentication error")
				return
			}
			if user == nil {
				unauthorized(w, http.StatusUnauthorized, "authentication required")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func unauthorized(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
