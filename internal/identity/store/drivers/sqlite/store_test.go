package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/openclass/identity/internal/identity/domain"
	"github.com/openclass/identity/internal/identity/store"
	"github.com/openclass/identity/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	// A file-backed db per test: with a pooled *sql.DB, ":memory:" would give
	// every connection its own empty database.
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func newTestUser(username string) domain.User {
	now := time.Now().UTC()
	return domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: "$argon2id$fake",
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUsersRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	empty, err := s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	u := newTestUser("alice")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	got, err := s.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.True(t, got.Active)

	byID, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", byID.Username)

	_, err = s.Users().GetUserByUsername(ctx, "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsersDuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Users().CreateUser(ctx, newTestUser("bob")))
	err := s.Users().CreateUser(ctx, newTestUser("bob"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestUsersSetActive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("carol")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	require.NoError(t, s.Users().SetActive(ctx, u.ID, false))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, got.Active)

	require.ErrorIs(t, s.Users().SetActive(ctx, "missing", true), store.ErrNotFound)
}

func TestRolesAssignmentAndListing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	u := newTestUser("dave")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	teacher := domain.Role{ID: idx.New().String(), Name: "teacher", CreatedAt: now}
	student := domain.Role{ID: idx.New().String(), Name: "student", CreatedAt: now}
	require.NoError(t, s.Roles().CreateRole(ctx, teacher))
	require.NoError(t, s.Roles().CreateRole(ctx, student))

	require.NoError(t, s.Roles().AssignRole(ctx, u.ID, teacher.ID))
	require.NoError(t, s.Roles().AssignRole(ctx, u.ID, student.ID))
	// Re-granting is a no-op.
	require.NoError(t, s.Roles().AssignRole(ctx, u.ID, teacher.ID))

	names, err := s.Roles().ListRoleNamesForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"student", "teacher"}, names)

	// Deleting the user cascades the grants.
	require.NoError(t, s.Users().DeleteUser(ctx, u.ID))
	names, err = s.Roles().ListRoleNamesForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestRevokedTokensIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	revoked, err := s.RevokedTokens().IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, s.RevokedTokens().RevokeToken(ctx, "jti-1", exp))
	require.NoError(t, s.RevokedTokens().RevokeToken(ctx, "jti-1", exp))

	revoked, err = s.RevokedTokens().IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestRevokedTokensSweep(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.RevokedTokens().RevokeToken(ctx, "old", now.Add(-time.Minute)))
	require.NoError(t, s.RevokedTokens().RevokeToken(ctx, "live", now.Add(time.Hour)))

	removed, err := s.RevokedTokens().DeleteExpiredRevocations(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	revoked, err := s.RevokedTokens().IsTokenRevoked(ctx, "live")
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	errBoom := context.Canceled
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, newTestUser("eve")); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	_, err = s.Users().GetUserByUsername(ctx, "eve")
	require.ErrorIs(t, err, store.ErrNotFound)
}
