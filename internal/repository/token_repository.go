package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrTokenReused is returned when a refresh token that was already
// revoked shows up again. Reuse of a rotated token means the raw value
// leaked, so callers revoke the whole family.
var ErrTokenReused = errors.New("refresh token reused")

// TokenRepo stores refresh tokens in the `refresh_tokens` table. Only
// SHA-256 hashes of the raw tokens are persisted.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh records a freshly issued token hash with its expiry.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp)
	return err
}

// ValidateRefresh resolves a token hash to its owner. Expired and
// unknown tokens fail with sql.ErrNoRows; a revoked token fails with
// ErrTokenReused so the caller can treat it as a leak signal.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	var (
		userID  uint64
		expires time.Time
		revoked sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&userID, &expires, &revoked)
	if err != nil {
		return 0, err
	}
	if revoked.Valid {
		return userID, ErrTokenReused
	}
	if time.Now().UTC().After(expires) {
		return 0, sql.ErrNoRows
	}
	return userID, nil
}

// RevokeByHash retires a single token. Revoking an already revoked or
// unknown hash is a no-op.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	return err
}

// RevokeAllForUser retires every live token a user holds. Used when a
// rotated token resurfaces and the whole family must die.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}
