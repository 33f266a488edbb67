package auth

import (
	"crypto/subtle"
	"net/http"
)

// APIKey defines one accepted operator key.
type APIKey struct {
	// Key is the secret value presented by the client.
	Key string

	// Name is the display name attributed to requests using this key.
	Name string

	// Roles assigned to this key.
	Roles []string
}

// APIKeyAuthenticator authenticates requests against a static key set.
type APIKeyAuthenticator struct {
	keys []APIKey
}

// NewAPIKeyAuthenticator creates an authenticator over the given keys.
func NewAPIKeyAuthenticator(keys []APIKey) *APIKeyAuthenticator {
	return &APIKeyAuthenticator{keys: keys}
}

// Authenticate matches the presented credential against the key set using
// constant-time comparison.
func (a *APIKeyAuthenticator) Authenticate(r *http.Request) (*User, error) {
	token := BearerToken(r)
	if token == "" {
		return nil, nil //nolint:nilnil // nil,nil means no credentials provided
	}

	for i := range a.keys {
		k := &a.keys[i]
		if subtle.ConstantTimeCompare([]byte(k.Key), []byte(token)) == 1 {
			return &User{Name: k.Name, Roles: k.Roles}, nil
		}
	}
	return nil, nil //nolint:nilnil // nil,nil means invalid key (unauthenticated)
}

// Verify interface compliance.
var _ Authenticator = (*APIKeyAuthenticator)(nil)
