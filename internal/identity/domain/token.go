package domain

import "time"

// TokenPair is what a successful login or refresh returns: a short-lived
// access token plus the refresh token used to mint the next pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string        // always "Bearer"
	ExpiresIn    time.Duration // access token lifetime
}

// Principal is the verified identity extracted from an access token. This is
// what gateways and downstream services authorize against.
type Principal struct {
	UserID    string
	Username  string
	Roles     []string
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HasRole reports whether the principal carries the given role name.
func (p Principal) HasRole(name string) bool {
	for _, r := range p.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// RevokedToken records a logged-out or rotated token identifier. Entries are
// only needed until ExpiresAt, after that the expiry check rejects the token
// anyway and housekeeping may reap the row.
type RevokedToken struct {
	JTI       string
	ExpiresAt time.Time
	RevokedAt time.Time
}
