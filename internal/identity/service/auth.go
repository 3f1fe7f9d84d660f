package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openclass/identity/internal/identity/domain"
	"github.com/openclass/identity/internal/identity/obs"
	"github.com/openclass/identity/internal/identity/store"
	"github.com/openclass/identity/pkg/cryptox"
	"github.com/openclass/identity/pkg/jwtx"
	"github.com/openclass/identity/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrTokenRevoked       = errors.New("token_revoked")

	// ErrInfrastructure wraps transient backend failures (database, cache).
	// Handlers map it to 503 so callers know a retry may succeed; everything
	// else in this package is a terminal 401.
	ErrInfrastructure = errors.New("infrastructure_unavailable")
)

// AuthService implements login, verification, refresh, and logout on top of
// the token codec, the user store, and the revocation store.
type AuthService struct {
	Codec       *jwtx.Codec
	Store       store.Store
	Revocations store.RevocationStore
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
}

func infraErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrInfrastructure, op, err)
}

// Authenticate validates a username/password pair and issues a fresh token
// pair. Unknown users, inactive users, and wrong passwords all fail with the
// same ErrInvalidCredentials so callers cannot enumerate accounts.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	now := time.Now()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		obs.RecordLogin(obs.ResultDenied)
		return nil, ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			obs.RecordLogin(obs.ResultDenied)
			return nil, ErrInvalidCredentials
		}
		obs.RecordLogin(obs.ResultError)
		return nil, infraErr("get user", err)
	}

	if !user.Active {
		l.Info("login rejected for inactive user", slog.String("user_id", user.ID))
		obs.RecordLogin(obs.ResultDenied)
		return nil, ErrInvalidCredentials
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			obs.RecordLogin(obs.ResultDenied)
			return nil, ErrInvalidCredentials
		}
		// Malformed stored hash is an operational problem, not a user one.
		obs.RecordLogin(obs.ResultError)
		return nil, infraErr("verify password", err)
	}

	roles, err := s.Store.Roles().ListRoleNamesForUser(ctx, user.ID)
	if err != nil {
		obs.RecordLogin(obs.ResultError)
		return nil, infraErr("list roles", err)
	}

	pair, err := s.issuePair(user, roles, now)
	if err != nil {
		obs.RecordLogin(obs.ResultError)
		return nil, err
	}

	l.Info("user authenticated",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)
	obs.RecordLogin(obs.ResultOK)
	return pair, nil
}

// VerifyClaims runs full verification on a token: signature, expiry, issuer,
// and revocation. It returns the decoded claims on success. The httpx authn
// middleware uses this through the TokenVerifier interface.
func (s *AuthService) VerifyClaims(ctx context.Context, token string) (jwtx.Claims, error) {
	claims, err := s.Codec.Verify(token)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			obs.RecordVerification(obs.ResultExpired)
		} else {
			obs.RecordVerification(obs.ResultDenied)
		}
		return jwtx.Claims{}, err
	}

	revoked, err := s.Revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		obs.RecordVerification(obs.ResultError)
		return jwtx.Claims{}, infraErr("check revocation", err)
	}
	if revoked {
		obs.RecordVerification(obs.ResultRevoked)
		return jwtx.Claims{}, ErrTokenRevoked
	}

	obs.RecordVerification(obs.ResultOK)
	return claims, nil
}

// VerifyToken verifies a token and returns the principal it represents.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (domain.Principal, error) {
	claims, err := s.VerifyClaims(ctx, token)
	if err != nil {
		return domain.Principal{}, err
	}
	return principalFromClaims(claims), nil
}

// Refresh exchanges a valid refresh token for a new token pair. The used
// refresh token is revoked first, so each refresh token works exactly once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	now := time.Now()

	claims, err := s.Codec.Verify(refreshToken)
	if err != nil {
		obs.RecordRefresh(obs.ResultDenied)
		return nil, err
	}

	// An access token presented here must not mint new tokens.
	if claims.TokenUse != jwtx.TokenUseRefresh {
		obs.RecordRefresh(obs.ResultDenied)
		return nil, fmt.Errorf("%w: not a refresh token", jwtx.ErrInvalidClaim)
	}

	revoked, err := s.Revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		obs.RecordRefresh(obs.ResultError)
		return nil, infraErr("check revocation", err)
	}
	if revoked {
		l.Warn("refresh attempted with revoked token",
			slog.String("user_id", claims.Subject),
			slog.String("jti", claims.ID),
		)
		obs.RecordRefresh(obs.ResultRevoked)
		return nil, ErrTokenRevoked
	}

	// Re-load the user so deactivation and role changes take effect at
	// refresh time, not only at next login.
	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			obs.RecordRefresh(obs.ResultDenied)
			return nil, ErrInvalidCredentials
		}
		obs.RecordRefresh(obs.ResultError)
		return nil, infraErr("get user", err)
	}
	if !user.Active {
		obs.RecordRefresh(obs.ResultDenied)
		return nil, ErrInvalidCredentials
	}

	roles, err := s.Store.Roles().ListRoleNamesForUser(ctx, user.ID)
	if err != nil {
		obs.RecordRefresh(obs.ResultError)
		return nil, infraErr("list roles", err)
	}

	// Rotation: burn the presented token before issuing replacements. If the
	// revoke fails the whole refresh fails, which keeps the single-use
	// guarantee.
	if err := s.Revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		obs.RecordRefresh(obs.ResultError)
		return nil, infraErr("revoke refresh token", err)
	}
	obs.RecordRevocation()

	pair, err := s.issuePair(user, roles, now)
	if err != nil {
		obs.RecordRefresh(obs.ResultError)
		return nil, err
	}

	l.Info("token pair refreshed", slog.String("user_id", user.ID))
	obs.RecordRefresh(obs.ResultOK)
	return pair, nil
}

// Logout revokes the presented tokens. Tokens that are already expired are
// skipped (nothing to revoke), and revoking an already-revoked token is a
// no-op, so logout is idempotent. A structurally malformed token is still an
// error.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	l := slogx.FromContext(ctx)

	for _, token := range []string{accessToken, refreshToken} {
		if token == "" {
			continue
		}

		// Signature and expiry checks are deliberately skipped: a logout
		// request with a stolen-but-expired token should not fail, and the
		// revocation list is keyed by jti either way.
		claims, err := s.Codec.ParseUnverified(token)
		if err != nil {
			return err
		}
		if claims.Expired(time.Now()) {
			continue
		}

		if err := s.Revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return infraErr("revoke token", err)
		}
		obs.RecordRevocation()
		l.Info("token revoked",
			slog.String("user_id", claims.Subject),
			slog.String("jti", claims.ID),
		)
	}

	return nil
}

func (s *AuthService) issuePair(user domain.User, roles []string, now time.Time) (*domain.TokenPair, error) {
	access, err := s.Codec.Issue(jwtx.NewAccessClaims(
		user.ID, user.Username, roles, s.Codec.Issuer(), s.AccessTTL, now))
	if err != nil {
		return nil, err
	}

	refresh, err := s.Codec.Issue(jwtx.NewRefreshClaims(
		user.ID, user.Username, roles, s.Codec.Issuer(), s.RefreshTTL, now))
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, nil
}

func principalFromClaims(c jwtx.Claims) domain.Principal {
	p := domain.Principal{
		UserID:   c.Subject,
		Username: c.Username,
		Roles:    c.Roles,
		JTI:      c.ID,
	}
	if c.IssuedAt != nil {
		p.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p
}
