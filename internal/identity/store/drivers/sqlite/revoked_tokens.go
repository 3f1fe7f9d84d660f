package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type revokedTokensRepo struct {
	q querier
}

func (r *revokedTokensRepo) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	// INSERT OR IGNORE: revoking the same jti twice is a no-op, which makes
	// repeated logout calls safe.
	_, err := r.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (jti, expires_at, revoked_at)
		 VALUES (?, ?, ?)`,
		jti, expiresAt.UTC(), time.Now().UTC())
	return err
}

func (r *revokedTokensRepo) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var one int
	err := r.q.QueryRowContext(ctx,
		`SELECT 1 FROM revoked_tokens WHERE jti = ?`, jti).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *revokedTokensRepo) DeleteExpiredRevocations(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
