package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/openclass/identity/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "identity-service"

func testCodec(t *testing.T, secret string) *jwtx.Codec {
	t.Helper()
	c, err := jwtx.NewCodec([]byte(secret), testIssuer)
	require.NoError(t, err)
	return c
}

func TestNewCodecRejectsEmptySecret(t *testing.T) {
	_, err := jwtx.NewCodec(nil, testIssuer)
	require.Error(t, err)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	c := testCodec(t, "round-trip-secret")
	now := time.Now().UTC()

	claims := jwtx.NewAccessClaims("user-1", "alice", []string{"teacher", "admin"},
		testIssuer, time.Hour, now)

	token, err := c.Issue(claims)
	require.NoError(t, err)
	require.Equal(t, 3, len(strings.Split(token, ".")))

	got, err := c.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, []string{"teacher", "admin"}, got.Roles)
	require.Equal(t, claims.ID, got.ID)
	require.Equal(t, jwtx.TokenUseAccess, got.TokenUse)
}

func TestAccessAndRefreshClaimsAreDistinct(t *testing.T) {
	now := time.Now().UTC()
	access := jwtx.NewAccessClaims("user-1", "alice", nil, testIssuer, time.Hour, now)
	refresh := jwtx.NewRefreshClaims("user-1", "alice", nil, testIssuer, 7*24*time.Hour, now)

	require.NotEqual(t, access.ID, refresh.ID)
	require.Equal(t, jwtx.TokenUseRefresh, refresh.TokenUse)
	require.True(t, access.ExpiresAt.Time.Before(refresh.ExpiresAt.Time))
}

func TestVerifyExpiredToken(t *testing.T) {
	c := testCodec(t, "expiry-secret")

	claims := jwtx.NewAccessClaims("user-1", "alice", nil, testIssuer,
		-time.Minute, time.Now().UTC().Add(-time.Hour))

	token, err := c.Issue(claims)
	require.NoError(t, err)

	_, err = c.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	c := testCodec(t, "tamper-secret")
	now := time.Now().UTC()

	token, err := c.Issue(
		jwtx.NewAccessClaims("user-1", "alice", nil, testIssuer, time.Hour, now))
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	flip := func(segment string) string {
		b := []byte(segment)
		if b[4] == 'A' {
			b[4] = 'B'
		} else {
			b[4] = 'A'
		}
		return string(b)
	}

	// A byte-flip usually corrupts the claims JSON outright; the error must
	// still be the signature, not the undecodable payload.
	t.Run("flipped payload byte", func(t *testing.T) {
		tampered := parts[0] + "." + flip(parts[1]) + "." + parts[2]
		_, err := c.Verify(tampered)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("flipped header byte", func(t *testing.T) {
		tampered := flip(parts[0]) + "." + parts[1] + "." + parts[2]
		_, err := c.Verify(tampered)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	// Splicing in a cleanly-decodable payload from another token keeps the
	// JSON valid but must fail the same way.
	t.Run("spliced payload from another token", func(t *testing.T) {
		other, err := c.Issue(
			jwtx.NewAccessClaims("user-2", "mallory", []string{"admin"}, testIssuer, time.Hour, now))
		require.NoError(t, err)
		otherParts := strings.Split(other, ".")

		spliced := parts[0] + "." + otherParts[1] + "." + parts[2]
		_, err = c.Verify(spliced)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	signer := testCodec(t, "secret-a")
	verifier := testCodec(t, "secret-b")

	token, err := signer.Issue(
		jwtx.NewAccessClaims("user-1", "alice", nil, testIssuer, time.Hour, time.Now().UTC()))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestVerifyRejectsIssuerMismatch(t *testing.T) {
	other, err := jwtx.NewCodec([]byte("shared"), "some-other-service")
	require.NoError(t, err)
	c := testCodec(t, "shared")

	token, err := other.Issue(
		jwtx.NewAccessClaims("user-1", "alice", nil, "some-other-service", time.Hour, time.Now().UTC()))
	require.NoError(t, err)

	_, err = c.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestVerifyMalformedToken(t *testing.T) {
	c := testCodec(t, "malformed-secret")

	for _, token := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := c.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrMalformed, "token %q", token)
	}
}

func TestParseUnverified(t *testing.T) {
	c := testCodec(t, "parse-secret")

	t.Run("expired token still parses", func(t *testing.T) {
		claims := jwtx.NewRefreshClaims("user-1", "alice", nil, testIssuer,
			-time.Minute, time.Now().UTC().Add(-time.Hour))
		token, err := c.Issue(claims)
		require.NoError(t, err)

		got, err := c.ParseUnverified(token)
		require.NoError(t, err)
		require.Equal(t, claims.ID, got.ID)
	})

	t.Run("foreign signature still parses", func(t *testing.T) {
		other := testCodec(t, "other-secret")
		token, err := other.Issue(
			jwtx.NewAccessClaims("user-1", "alice", nil, testIssuer, time.Hour, time.Now().UTC()))
		require.NoError(t, err)

		_, err = c.ParseUnverified(token)
		require.NoError(t, err)
	})

	t.Run("garbage is malformed", func(t *testing.T) {
		_, err := c.ParseUnverified("not-a-token")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})
}

func TestExpired(t *testing.T) {
	now := time.Now().UTC()

	claims := jwtx.NewAccessClaims("user-1", "alice", nil, testIssuer, time.Hour, now)
	require.False(t, claims.Expired(now))
	require.True(t, claims.Expired(now.Add(2*time.Hour)))

	empty := &jwtx.Claims{}
	require.True(t, empty.Expired(now))
}
