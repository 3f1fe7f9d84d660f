package jwtx

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// Codec signs and verifies compact HS256 tokens with a single shared secret.
// Every service in the platform holds the same secret, so a token minted here
// verifies anywhere without a callback. The secret is injected at construction
// and never read from ambient state; rotating it is a restart.
type Codec struct {
	secret []byte
	issuer string
}

// NewCodec builds a Codec. The secret must be non-empty; an identity service
// signing with an empty key is a misconfiguration we refuse to run with.
func NewCodec(secret []byte, issuer string) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: empty signing secret")
	}
	return &Codec{secret: secret, issuer: issuer}, nil
}

// Issuer returns the issuer name tokens are minted and validated with.
func (c *Codec) Issuer() string { return c.issuer }

// Issue serializes the claims into a signed compact token string.
func (c *Codec) Issue(claims Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify checks the HMAC over the signed portion first, then parses the
// token and validates exp/nbf/iss. Failures come back as the sentinel errors
// above so callers can map each kind to a distinct response.
//
// The signature check runs before any claim decoding: a tampered payload
// whose JSON no longer decodes must still report an invalid signature, not a
// malformed token.
func (c *Codec) Verify(token string) (Claims, error) {
	if err := c.checkSignature(token); err != nil {
		return Claims{}, err
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, mapParseError(err)
	}
	return claims, nil
}

// checkSignature recomputes the HMAC-SHA256 over header.payload and compares
// it with the token's signature segment in constant time.
func (c *Codec) checkSignature(token string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ErrMalformed
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return ErrMalformed
	}

	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(parts[0] + "." + parts[1]))
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return ErrInvalidSig
	}
	return nil
}

// ParseUnverified decodes the claims without checking the signature or
// expiry. Only structural validity is enforced. Logout uses this: revoking an
// expired or foreign-signed token must not fail, but garbage input should.
func (c *Codec) ParseUnverified(token string) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return Claims{}, ErrMalformed
	}
	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	default:
		return ErrInvalidClaim
	}
}
