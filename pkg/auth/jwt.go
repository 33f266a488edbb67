package auth

import (
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig configures the JWT authenticator.
type JWTConfig struct {
	// Issuer is the expected issuer claim.
	Issuer string

	// SigningKey is the HMAC key used to verify signatures.
	SigningKey []byte
}

// JWTAuthenticator validates HMAC-signed bearer tokens issued by the
// surrounding deployment's identity provider.
type JWTAuthenticator struct {
	cfg JWTConfig
}

// NewJWTAuthenticator creates a JWT authenticator.
func NewJWTAuthenticator(cfg JWTConfig) (*JWTAuthenticator, error) {
	if cfg.Issuer == "" {
		return nil, fmt.Errorf("jwt issuer is required")
	}
	if len(cfg.SigningKey) == 0 {
		return nil, fmt.Errorf("jwt signing key is required")
	}
	return &JWTAuthenticator{cfg: cfg}, nil
}

// Authenticate parses and validates the bearer token. Expired, unsigned,
// or foreign-issuer tokens are unauthenticated, not errors.
func (a *JWTAuthenticator) Authenticate(r *http.Request) (*User, error) {
	tokenStr := BearerToken(r)
	if tokenStr == "" {
		return nil, nil //nolint:nilnil // nil,nil means no credentials provided
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.cfg.SigningKey, nil
	}, jwt.WithIssuer(a.cfg.Issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, nil //nolint:nilnil // nil,nil means invalid token (unauthenticated)
	}

	return &User{
		Name:  subjectOf(claims),
		Roles: rolesOf(claims),
	}, nil
}

// subjectOf returns the sub claim, or empty.
func subjectOf(claims jwt.MapClaims) string {
	sub, _ := claims["sub"].(string)
	return sub
}

// rolesOf extracts the roles claim, tolerating the JSON []any decoding.
func rolesOf(claims jwt.MapClaims) []string {
	raw, ok := claims["roles"].([]any)
	if !ok {
		return nil
	}
	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}

// Verify interface compliance.
var _ Authenticator = (*JWTAuthenticator)(nil)
