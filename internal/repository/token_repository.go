package repository

import (
    "context"
    "database/sql"
    "time"
)

// TokenRepo persists refresh-token sessions.  Only the SHA-256 hash
// of a token ever reaches the table; revocation is a timestamp so a
// session's history stays auditable.  All time comparisons happen in
// SQL against UTC_TIMESTAMP() to match the UTC discipline of the
// rest of the schema.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh records a new session hash with its expiry.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
    _, err := r.DB.ExecContext(ctx,
        "INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
        userID, tokenHash, exp)
    return err
}

// ValidateRefresh resolves a presented hash to its user.  Revoked and
// expired rows are filtered in the query, so any miss surfaces as
// sql.ErrNoRows and the caller treats it as an invalid session.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
    var userID uint64
    err := r.DB.QueryRowContext(ctx,
        `SELECT user_id FROM refresh_tokens
         WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP()
         LIMIT 1`,
        tokenHash).Scan(&userID)
    if err != nil {
        return 0, err
    }
    return userID, nil
}

// RevokeByHash ends the session carrying this hash.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
    _, err := r.DB.ExecContext(ctx,
        "UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP() WHERE token_hash = ? AND revoked_at IS NULL",
        tokenHash)
    return err
}

// RevokeAllForUser ends every live session of one user, for password
// resets and account lockout.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
    _, err := r.DB.ExecContext(ctx,
        "UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP() WHERE user_id = ? AND revoked_at IS NULL",
        userID)
    return err
}
