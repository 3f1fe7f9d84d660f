package store

import (
	"context"
	"time"
)

// RevocationStore is the narrow interface the auth service uses to blacklist
// token IDs. The sqlite-backed Store satisfies it through StoreRevocations;
// the redis driver implements it directly with native TTL expiry.
type RevocationStore interface {
	// Revoke marks a jti as revoked until expiresAt. Idempotent.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error

	// IsRevoked reports whether a jti is currently revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// Sweep removes revocation entries that are past expiry. Drivers with
	// native TTLs may treat this as a no-op. Returns the number removed.
	Sweep(ctx context.Context, now time.Time) (int64, error)
}

// StoreRevocations adapts a Store's RevokedTokens repo to RevocationStore.
type StoreRevocations struct {
	Store Store
}

func (s StoreRevocations) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	return s.Store.RevokedTokens().RevokeToken(ctx, jti, expiresAt)
}

func (s StoreRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.Store.RevokedTokens().IsTokenRevoked(ctx, jti)
}

func (s StoreRevocations) Sweep(ctx context.Context, now time.Time) (int64, error) {
	return s.Store.RevokedTokens().DeleteExpiredRevocations(ctx, now)
}
