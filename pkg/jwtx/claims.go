package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default token TTLs. Access tokens stay short so a leaked token has a small
// window; refresh tokens are long enough that users aren't forced to log in
// every session.
const (
	DefaultAccessTokenTTL  = 1 * time.Hour
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Token use markers carried in the "use" claim. The refresh endpoint only
// accepts refresh tokens and the authn middleware only accepts access tokens,
// so the two kinds can never stand in for each other.
const (
	TokenUseAccess  = "access"
	TokenUseRefresh = "refresh"
)

// Claims are the token claims shared across services. Keep changes additive,
// every service that trusts the shared secret decodes these.
type Claims struct {
	jwt.RegisteredClaims

	// Roles carries the user's role names ("admin", "teacher", "student").
	// Downstream services authorize against these without calling back.
	Roles []string `json:"roles,omitempty"`

	// Username of the authenticated user, for display and audit logs.
	Username string `json:"username,omitempty"`

	// TokenUse distinguishes access tokens from refresh tokens.
	TokenUse string `json:"use,omitempty"`
}

// NewAccessClaims builds claims for a short-lived access token.
func NewAccessClaims(
	subject, username string,
	roles []string,
	issuer string,
	ttl time.Duration,
	now time.Time,
) Claims {
	return newClaims(subject, username, roles, issuer, TokenUseAccess, ttl, now)
}

// NewRefreshClaims builds claims for a refresh token. It gets its own jti so
// revoking one half of a pair never affects the other.
func NewRefreshClaims(
	subject, username string,
	roles []string,
	issuer string,
	ttl time.Duration,
	now time.Time,
) Claims {
	return newClaims(subject, username, roles, issuer, TokenUseRefresh, ttl, now)
}

func newClaims(
	subject, username string,
	roles []string,
	issuer, use string,
	ttl time.Duration,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Roles:    roles,
		Username: username,
		TokenUse: use,
	}
}

// NewJTI returns a unique identifier for the "jti" claim. Revocation tracking
// keys off this value, so it must never repeat across issuances.
func NewJTI() string {
	return uuid.NewString()
}

// Expired reports whether the claims' expiry has passed at the given time.
// Tokens without an exp claim are treated as expired; we always set one.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return now.After(c.ExpiresAt.Time)
}
