package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo stores refresh-token digests. Only the SHA-256 hash of a
// token ever reaches the database, so a leaked table cannot be replayed.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh records a newly issued refresh token for an account.
func (r *TokenRepo) StoreRefresh(ctx context.Context, accountID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO refresh_tokens (account_id, token_hash, expires_at) VALUES (?,?,?)`,
		accountID, tokenHash, exp)
	return err
}

// ValidateRefresh resolves a token digest to its account. Revoked and
// expired tokens report sql.ErrNoRows, indistinguishable from unknown
// ones.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT account_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash = ? LIMIT 1`,
		tokenHash)

	var (
		accountID uint64
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	if err := row.Scan(&accountID, &expiresAt, &revokedAt); err != nil {
		return 0, err
	}
	if revokedAt.Valid || !expiresAt.After(time.Now().UTC()) {
		return 0, sql.ErrNoRows
	}
	return accountID, nil
}

// RevokeByHash retires a single token. Rotation calls this before
// issuing the replacement.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP() WHERE token_hash = ? AND revoked_at IS NULL`,
		tokenHash)
	return err
}

// RevokeAllForAccount retires every live token an account holds. Logout
// and account moderation both end all sessions this way.
func (r *TokenRepo) RevokeAllForAccount(ctx context.Context, accountID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP() WHERE account_id = ? AND revoked_at IS NULL`,
		accountID)
	return err
}
