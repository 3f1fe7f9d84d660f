package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/openclass/identity/internal/identity/domain"
	"github.com/openclass/identity/internal/identity/store"
	"github.com/openclass/identity/internal/identity/store/drivers/sqlite"
	"github.com/openclass/identity/pkg/cryptox"
	"github.com/openclass/identity/pkg/idx"
	"github.com/openclass/identity/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

const testSecret = "test-secret-please-do-not-ship"

func newTestAuthService(t *testing.T) (*AuthService, store.Store) {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	codec, err := jwtx.NewCodec([]byte(testSecret), "identity-test")
	require.NoError(t, err)

	svc := &AuthService{
		Codec:       codec,
		Store:       st,
		Revocations: store.StoreRevocations{Store: st},
		AccessTTL:   time.Hour,
		RefreshTTL:  7 * 24 * time.Hour,
	}
	return svc, st
}

func seedUser(t *testing.T, st store.Store, username, password string, active bool, roles ...string) domain.User {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: hash,
		Active:       active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Users().CreateUser(ctx, u))

	for _, name := range roles {
		role, err := st.Roles().GetRoleByName(ctx, name)
		if err != nil {
			role = domain.Role{ID: idx.New().String(), Name: name, CreatedAt: now}
			require.NoError(t, st.Roles().CreateRole(ctx, role))
		}
		require.NoError(t, st.Roles().AssignRole(ctx, u.ID, role.ID))
	}
	return u
}

func TestAuthenticateIssuesVerifiablePair(t *testing.T) {
	svc, st := newTestAuthService(t)
	ctx := context.Background()

	u := seedUser(t, st, "alice", "hunter2hunter2", true, "teacher")

	pair, err := svc.Authenticate(ctx, "alice", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, "Bearer", pair.TokenType)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	principal, err := svc.VerifyToken(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, principal.UserID)
	require.Equal(t, "alice", principal.Username)
	require.Equal(t, []string{"teacher"}, principal.Roles)
	require.True(t, principal.HasRole("teacher"))
	require.False(t, principal.HasRole("admin"))
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	svc, st := newTestAuthService(t)
	ctx := context.Background()

	seedUser(t, st, "bob", "correct-password", true)
	seedUser(t, st, "mallory", "some-password", false)

	for name, attempt := range map[string][2]string{
		"unknown user":   {"nobody", "whatever"},
		"wrong password": {"bob", "wrong-password"},
		"inactive user":  {"mallory", "some-password"},
		"empty password": {"bob", ""},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, attempt[0], attempt[1])
			require.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	svc, st := newTestAuthService(t)
	ctx := context.Background()

	seedUser(t, st, "carol", "password-123", true)
	pair, err := svc.Authenticate(ctx, "carol", "password-123")
	require.NoError(t, err)

	foreign, err := jwtx.NewCodec([]byte("a-different-secret"), "identity-test")
	require.NoError(t, err)
	stolen, err := foreign.Issue(jwtx.NewAccessClaims(
		"carol-id", "carol", nil, "identity-test", time.Hour, time.Now()))
	require.NoError(t, err)

	_, err = svc.VerifyToken(ctx, stolen)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)

	// The legitimate token still verifies.
	_, err = svc.VerifyToken(ctx, pair.AccessToken)
	require.NoError(t, err)
}

func TestLogoutRevokesBothTokens(t *testing.T) {
	svc, st := newTestAuthService(t)
	ctx := context.Background()

	seedUser(t, st, "dave", "password-123", true)
	pair, err := svc.Authenticate(ctx, "dave", "password-123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.AccessToken, pair.RefreshToken))

	_, err = svc.VerifyToken(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrTokenRevoked)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenRevoked)

	// Logging out again is a no-op, not an error.
	require.NoError(t, svc.Logout(ctx, pair.AccessToken, pair.RefreshToken))
}

func TestLogoutRejectsGarbage(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	err := svc.Logout(ctx, "not-a-jwt", "")
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}

func TestLogoutSkipsExpiredTokens(t *testing.T) {
	svc, st := newTestAuthService(t)
	ctx := context.Background()

	u := seedUser(t, st, "erin", "password-123", true)

	expired, err := svc.Codec.Issue(jwtx.NewAccessClaims(
		u.ID, u.Username, nil, svc.Codec.Issuer(), time.Hour, time.Now().Add(-2*time.Hour)))
	require.NoError(t, err)

	// Nothing to revoke, nothing to fail.
	require.NoError(t, svc.Logout(ctx, expired, ""))
}

func TestRefreshRotatesAndBurnsOldToken(t *testing.T) {
	svc, st := newTestAuthService(t)
	ctx := context.Background()

	seedUser(t, st, "frank", "password-123", true, "student")
	pair, err := svc.Authenticate(ctx, "frank", "password-123")
	require.NoError(t, err)

	renewed, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.AccessToken, renewed.AccessToken)
	require.NotEqual(t, pair.RefreshToken, renewed.RefreshToken)

	// The new access token carries the same identity and roles.
	principal, err := svc.VerifyToken(ctx, renewed.AccessToken)
	require.NoError(t, err)
	require.Equal(t, []string{"student"}, principal.Roles)

	// Each refresh token works exactly once.
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenRevoked)

	// The rotated one still works.
	_, err = svc.Refresh(ctx, renewed.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, st := newTestAuthService(t)
	ctx := context.Background()

	seedUser(t, st, "grace", "password-123", true)
	pair, err := svc.Authenticate(ctx, "grace", "password-123")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
}

func TestRefreshRejectsDeactivatedUser(t *testing.T) {
	svc, st := newTestAuthService(t)
	ctx := context.Background()

	u := seedUser(t, st, "heidi", "password-123", true)
	pair, err := svc.Authenticate(ctx, "heidi", "password-123")
	require.NoError(t, err)

	require.NoError(t, st.Users().SetActive(ctx, u.ID, false))

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyClaimsEnforcesAccessUse(t *testing.T) {
	// VerifyClaims itself accepts both uses; the authn middleware filters on
	// TokenUse. Here we just confirm the use claim survives the round trip.
	svc, st := newTestAuthService(t)
	ctx := context.Background()

	seedUser(t, st, "ivan", "password-123", true)
	pair, err := svc.Authenticate(ctx, "ivan", "password-123")
	require.NoError(t, err)

	access, err := svc.VerifyClaims(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, jwtx.TokenUseAccess, access.TokenUse)

	refresh, err := svc.VerifyClaims(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, jwtx.TokenUseRefresh, refresh.TokenUse)
}
